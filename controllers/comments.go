package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"github.com/Oo-jackson-oO/campus-animal-care-miniprogram/models"
	"github.com/Oo-jackson-oO/campus-animal-care-miniprogram/repository"
	"github.com/Oo-jackson-oO/campus-animal-care-miniprogram/utils"
)

type CommentController struct {
	Repo *repository.Repository[models.Comment]
}

func NewCommentController(db *gorm.DB) *CommentController {
	return &CommentController{Repo: repository.New[models.Comment](db)}
}

// List GET /api/comments?animal_id=1&page=1&limit=10
func (c *CommentController) List(w http.ResponseWriter, r *http.Request) {
	animalID, err := strconv.ParseUint(r.URL.Query().Get("animal_id"), 10, 32)
	if err != nil || animalID == 0 {
		utils.Fail(w, http.StatusBadRequest, "animal_id must be a positive integer")
		return
	}

	filter := map[string]interface{}{
		"animal_id": uint(animalID),
		"status":    1,
	}
	rows, pagination, err := c.Repo.List(r.Context(), filter, queryPage(r))
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "failed to list comments")
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.Response{
		Code:       http.StatusOK,
		Message:    "comment list",
		Data:       rows,
		Pagination: pagination,
	})
}

type createCommentRequest struct {
	AnimalID uint   `json:"animal_id"`
	Content  string `json:"content"`
}

// Create POST /api/comments (requires auth; the author comes from the token)
func (c *CommentController) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.Fail(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req createCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AnimalID == 0 {
		utils.Fail(w, http.StatusBadRequest, "animal_id must be a positive integer")
		return
	}
	if req.Content == "" || len(req.Content) > 500 {
		utils.Fail(w, http.StatusBadRequest, "content must be 1-500 characters")
		return
	}

	comment := models.Comment{
		AnimalID: req.AnimalID,
		UserID:   uid,
		Content:  req.Content,
		Status:   1,
	}
	if err := c.Repo.Create(r.Context(), &comment); err != nil {
		utils.Fail(w, http.StatusInternalServerError, "failed to create comment")
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.Response{
		Code:    http.StatusCreated,
		Message: "comment created",
		Data:    comment,
	})
}
