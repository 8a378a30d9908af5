package controllers

import (
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/Oo-jackson-oO/campus-animal-care-miniprogram/utils"
)

const maxUploadBytes = 5 << 20 // 5 MiB

// UploadController stores animal and product images in the configured
// S3-compatible bucket.
type UploadController struct{}

func NewUploadController() *UploadController {
	return &UploadController{}
}

// Image POST /api/upload/image (requires auth, multipart field "file")
func (c *UploadController) Image(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.Fail(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		utils.Fail(w, http.StatusBadRequest, "file too large or malformed form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.Fail(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(path.Ext(header.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
	default:
		utils.Fail(w, http.StatusBadRequest, "only jpg, png, gif and webp images are accepted")
		return
	}

	objectName := fmt.Sprintf("images/%d/%d%s", uid, time.Now().UnixNano(), ext)
	url, err := utils.UploadImage(r.Context(), objectName, file)
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "upload failed")
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.Response{
		Code:    http.StatusOK,
		Message: "upload successful",
		Data:    map[string]interface{}{"url": url},
	})
}
