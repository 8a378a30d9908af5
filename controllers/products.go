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

type ProductController struct {
	Repo *repository.Repository[models.Product]
}

func NewProductController(db *gorm.DB) *ProductController {
	return &ProductController{Repo: repository.New[models.Product](db)}
}

// List GET /api/products?page=1&limit=10&category=...&status=1
func (c *ProductController) List(w http.ResponseWriter, r *http.Request) {
	filter := map[string]interface{}{}
	if category := r.URL.Query().Get("category"); category != "" {
		filter["category"] = category
	}
	if s := r.URL.Query().Get("status"); s != "" {
		status, err := strconv.Atoi(s)
		if err != nil || (status != models.ProductStatusActive && status != models.ProductStatusInactive) {
			utils.Fail(w, http.StatusBadRequest, "status must be 0 or 1")
			return
		}
		filter["status"] = status
	}

	rows, pagination, err := c.Repo.List(r.Context(), filter, queryPage(r))
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "failed to list products")
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.Response{
		Code:       http.StatusOK,
		Message:    "product list",
		Data:       rows,
		Pagination: pagination,
	})
}

// Detail GET /api/products/{id}
func (c *ProductController) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		utils.Fail(w, http.StatusBadRequest, "product id must be a positive integer")
		return
	}

	product, err := c.Repo.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.Fail(w, http.StatusNotFound, "product not found")
			return
		}
		utils.Fail(w, http.StatusInternalServerError, "failed to load product")
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.Response{
		Code:    http.StatusOK,
		Message: "product detail",
		Data:    product,
	})
}
