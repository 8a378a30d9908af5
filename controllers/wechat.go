package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/Oo-jackson-oO/campus-animal-care-miniprogram/models"
	"github.com/Oo-jackson-oO/campus-animal-care-miniprogram/utils"
)

// WechatController exchanges an opaque client login code for a user record.
// Without WECHAT_APPID/WECHAT_SECRET (the usual case outside production) the
// openid is derived locally so the rest of the system can be exercised.
type WechatController struct {
	DB *gorm.DB
}

func NewWechatController(db *gorm.DB) *WechatController {
	return &WechatController{DB: db}
}

type wechatLoginRequest struct {
	Code      string `json:"code"`
	Nickname  string `json:"nickname"`
	AvatarURL string `json:"avatar_url"`
}

// Login POST /api/wechat/login
func (c *WechatController) Login(w http.ResponseWriter, r *http.Request) {
	var req wechatLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		utils.Fail(w, http.StatusBadRequest, "code is required")
		return
	}

	appID := os.Getenv("WECHAT_APPID")
	secret := os.Getenv("WECHAT_SECRET")
	mock := os.Getenv("MOCK_WECHAT") == "true" || appID == "" || secret == ""

	// Only the mock path exists here; a real code2session exchange would
	// slot in where mock is false.
	if !mock {
		utils.Fail(w, http.StatusNotImplemented, "real WeChat login not configured (set MOCK_WECHAT=true)")
		return
	}
	openid := utils.MockOpenID(req.Code)
	sessionKey := utils.MockTransactionID()

	nickname := req.Nickname
	if nickname == "" {
		nickname = "WeChat User"
	}
	avatar := req.AvatarURL
	if avatar == "" {
		avatar = "/image/dog.png"
	}

	user, err := c.loginOrRegister(openid, nickname, avatar)
	if err != nil {
		log.Printf("[wechat/login] login or register failed: %v", err)
		utils.Fail(w, http.StatusInternalServerError, "login failed")
		return
	}

	utils.CacheSessionKey(r.Context(), openid, sessionKey, 24*time.Hour)

	token, err := utils.GenerateAccessToken(user.ID)
	if err != nil {
		log.Printf("[wechat/login] token generation failed: %v", err)
		utils.Fail(w, http.StatusInternalServerError, "login failed")
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.Response{
		Code:    http.StatusOK,
		Message: "login successful",
		Data: map[string]interface{}{
			"openid":      openid,
			"session_key": sessionKey,
			"token":       token,
			"user":        user,
			"mock":        mock,
		},
	})
}

// loginOrRegister finds the user by openid, updating last login, or creates
// a fresh record on first contact.
func (c *WechatController) loginOrRegister(openid, nickname, avatar string) (*models.User, error) {
	var user models.User
	err := c.DB.Where("openid = ?", openid).First(&user).Error
	if err == nil {
		now := time.Now()
		if err := c.DB.Model(&user).Update("last_login_at", &now).Error; err != nil {
			return nil, err
		}
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now()
	user = models.User{
		OpenID:      openid,
		Nickname:    nickname,
		AvatarURL:   avatar,
		Status:      1,
		LastLoginAt: &now,
	}
	if err := c.DB.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
