package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"github.com/Oo-jackson-oO/campus-animal-care-miniprogram/models"
	"github.com/Oo-jackson-oO/campus-animal-care-miniprogram/repository"
	"github.com/Oo-jackson-oO/campus-animal-care-miniprogram/utils"
)

type AnimalController struct {
	Repo *repository.Repository[models.Animal]
}

func NewAnimalController(db *gorm.DB) *AnimalController {
	return &AnimalController{Repo: repository.New[models.Animal](db)}
}

// List GET /api/animals?page=1&limit=10&species=cat&status=1
func (c *AnimalController) List(w http.ResponseWriter, r *http.Request) {
	filter := map[string]interface{}{}
	if species := r.URL.Query().Get("species"); species != "" {
		switch species {
		case "cat", "dog", "other":
			filter["species"] = species
		default:
			utils.Fail(w, http.StatusBadRequest, "species must be cat, dog or other")
			return
		}
	}
	if s := r.URL.Query().Get("status"); s != "" {
		status, err := strconv.Atoi(s)
		if err != nil || status < 0 || status > 1 {
			utils.Fail(w, http.StatusBadRequest, "status must be 0 or 1")
			return
		}
		filter["status"] = status
	}

	rows, pagination, err := c.Repo.List(r.Context(), filter, queryPage(r))
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "failed to list animals")
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.Response{
		Code:       http.StatusOK,
		Message:    "animal list",
		Data:       rows,
		Pagination: pagination,
	})
}

// Detail GET /api/animals/{id}
func (c *AnimalController) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		utils.Fail(w, http.StatusBadRequest, "animal id must be a positive integer")
		return
	}

	animal, err := c.Repo.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.Fail(w, http.StatusNotFound, "animal not found")
			return
		}
		utils.Fail(w, http.StatusInternalServerError, "failed to load animal")
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.Response{
		Code:    http.StatusOK,
		Message: "animal detail",
		Data:    animal,
	})
}

type createAnimalRequest struct {
	Name        string `json:"name"`
	Species     string `json:"species"`
	Gender      int    `json:"gender"`
	Description string `json:"description"`
	Location    string `json:"location"`
	ImageURL    string `json:"image_url"`
}

// Create POST /api/animals (requires auth)
func (c *AnimalController) Create(w http.ResponseWriter, r *http.Request) {
	if _, ok := utils.GetUserID(r); !ok {
		utils.Fail(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req createAnimalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || len(req.Name) > 50 {
		utils.Fail(w, http.StatusBadRequest, "name must be 1-50 characters")
		return
	}
	switch req.Species {
	case "cat", "dog", "other":
	default:
		utils.Fail(w, http.StatusBadRequest, "species must be cat, dog or other")
		return
	}
	if req.Gender < 0 || req.Gender > 2 {
		utils.Fail(w, http.StatusBadRequest, "gender must be 0, 1 or 2")
		return
	}

	animal := models.Animal{
		Name:        req.Name,
		Species:     req.Species,
		Gender:      req.Gender,
		Description: req.Description,
		Location:    req.Location,
		ImageURL:    req.ImageURL,
		Status:      1,
	}
	if err := c.Repo.Create(r.Context(), &animal); err != nil {
		utils.Fail(w, http.StatusInternalServerError, "failed to create animal")
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.Response{
		Code:    http.StatusCreated,
		Message: "animal created",
		Data:    animal,
	})
}
