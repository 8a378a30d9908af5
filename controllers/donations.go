package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"github.com/Oo-jackson-oO/campus-animal-care-miniprogram/models"
	"github.com/Oo-jackson-oO/campus-animal-care-miniprogram/repository"
	"github.com/Oo-jackson-oO/campus-animal-care-miniprogram/utils"
)

type DonationController struct {
	DB   *gorm.DB
	Repo *repository.Repository[models.Campaign]
}

func NewDonationController(db *gorm.DB) *DonationController {
	return &DonationController{DB: db, Repo: repository.New[models.Campaign](db)}
}

func queryPage(r *http.Request) repository.Page {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return repository.Page{Page: page, Limit: limit, OrderBy: "created_at", Desc: true}
}

// List GET /api/donations?page=1&limit=10&status=active
func (c *DonationController) List(w http.ResponseWriter, r *http.Request) {
	filter := map[string]interface{}{}
	if status := r.URL.Query().Get("status"); status != "" {
		switch status {
		case models.CampaignStatusActive, models.CampaignStatusCompleted, models.CampaignStatusCancelled:
			filter["status"] = status
		default:
			utils.Fail(w, http.StatusBadRequest, "status must be active, completed or cancelled")
			return
		}
	}

	rows, pagination, err := c.Repo.List(r.Context(), filter, queryPage(r))
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "failed to list campaigns")
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.Response{
		Code:       http.StatusOK,
		Message:    "campaign list",
		Data:       rows,
		Pagination: pagination,
	})
}

// Detail GET /api/donations/{id}
// Returns the campaign plus aggregate pledge statistics.
func (c *DonationController) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		utils.Fail(w, http.StatusBadRequest, "campaign id must be a positive integer")
		return
	}

	campaign, err := c.Repo.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.Fail(w, http.StatusNotFound, "campaign not found")
			return
		}
		utils.Fail(w, http.StatusInternalServerError, "failed to load campaign")
		return
	}

	var stats struct {
		TotalDonations int64   `json:"total_donations"`
		TotalAmount    float64 `json:"total_amount"`
		DonorCount     int64   `json:"donor_count"`
	}
	err = c.DB.WithContext(r.Context()).Table("donation_records").
		Select("COUNT(*) as total_donations, COALESCE(SUM(amount), 0) as total_amount, COUNT(DISTINCT user_id) as donor_count").
		Where("donation_id = ? AND status = ?", id, models.PledgeStatusCompleted).
		Scan(&stats).Error
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "failed to load campaign stats")
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.Response{
		Code:    http.StatusOK,
		Message: "campaign detail",
		Data: map[string]interface{}{
			"campaign": campaign,
			"stats":    stats,
		},
	})
}

// UserRecords GET /api/donations/user/{userId}?page=1&limit=10
// Lists a user's pledges joined with their campaign titles.
func (c *DonationController) UserRecords(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "userId")
	if !ok {
		utils.Fail(w, http.StatusBadRequest, "user id must be a positive integer")
		return
	}
	page := queryPage(r)
	if page.Page < 1 {
		page.Page = 1
	}
	if page.Limit < 1 || page.Limit > 100 {
		page.Limit = 10
	}

	var rows []struct {
		ID            uint    `json:"id"`
		CampaignID    uint    `json:"donation_id"`
		Amount        float64 `json:"amount"`
		Status        string  `json:"status"`
		PaymentMethod string  `json:"payment_method"`
		CreatedAt     string  `json:"created_at"`
		CampaignTitle string  `json:"donation_title"`
	}
	q := c.DB.WithContext(r.Context()).Table("donation_records").
		Select("donation_records.id, donation_records.donation_id, donation_records.amount, "+
			"donation_records.status, donation_records.payment_method, donation_records.created_at, "+
			"donations.title as campaign_title").
		Joins("LEFT JOIN donations ON donation_records.donation_id = donations.id").
		Where("donation_records.user_id = ?", userID).
		Order("donation_records.created_at DESC")

	var total int64
	if err := c.DB.WithContext(r.Context()).Model(&models.Pledge{}).
		Where("user_id = ?", userID).Count(&total).Error; err != nil {
		utils.Fail(w, http.StatusInternalServerError, "failed to count records")
		return
	}
	if err := q.Limit(page.Limit).Offset((page.Page - 1) * page.Limit).Find(&rows).Error; err != nil {
		utils.Fail(w, http.StatusInternalServerError, "failed to list records")
		return
	}

	pages := int(total) / page.Limit
	if int(total)%page.Limit != 0 {
		pages++
	}
	utils.WriteJSON(w, http.StatusOK, utils.Response{
		Code:    http.StatusOK,
		Message: "user donation records",
		Data:    rows,
		Pagination: repository.Pagination{
			Page: page.Page, Limit: page.Limit, Total: total, Pages: pages,
		},
	})
}
