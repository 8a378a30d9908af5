package controllers

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/Oo-jackson-oO/campus-animal-care-miniprogram/models"
	"github.com/Oo-jackson-oO/campus-animal-care-miniprogram/repository"
	"github.com/Oo-jackson-oO/campus-animal-care-miniprogram/utils"
)

type NoticeController struct {
	Repo *repository.Repository[models.Notice]
}

func NewNoticeController(db *gorm.DB) *NoticeController {
	return &NoticeController{Repo: repository.New[models.Notice](db)}
}

// List GET /api/notices?page=1&limit=10&type=urgent
func (c *NoticeController) List(w http.ResponseWriter, r *http.Request) {
	filter := map[string]interface{}{"status": "active"}
	if t := r.URL.Query().Get("type"); t != "" {
		switch t {
		case "normal", "urgent", "activity":
			filter["type"] = t
		default:
			utils.Fail(w, http.StatusBadRequest, "type must be normal, urgent or activity")
			return
		}
	}

	rows, pagination, err := c.Repo.List(r.Context(), filter, queryPage(r))
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "failed to list notices")
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.Response{
		Code:       http.StatusOK,
		Message:    "notice list",
		Data:       rows,
		Pagination: pagination,
	})
}

// Detail GET /api/notices/{id}
func (c *NoticeController) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		utils.Fail(w, http.StatusBadRequest, "notice id must be a positive integer")
		return
	}

	notice, err := c.Repo.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.Fail(w, http.StatusNotFound, "notice not found")
			return
		}
		utils.Fail(w, http.StatusInternalServerError, "failed to load notice")
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.Response{
		Code:    http.StatusOK,
		Message: "notice detail",
		Data:    notice,
	})
}
