package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/servhunt/digimenu/apperrors"
	"github.com/servhunt/digimenu/middlewares"
	"github.com/servhunt/digimenu/models"
	"github.com/servhunt/digimenu/services"
	"github.com/servhunt/digimenu/utils"
)

// AdminAuthController handles password-based admin authentication.
type AdminAuthController struct {
	DB           *gorm.DB
	Sessions     *services.SessionService
	SecureCookie bool
}

func NewAdminAuthController(db *gorm.DB, sessions *services.SessionService, secureCookie bool) *AdminAuthController {
	return &AdminAuthController{DB: db, Sessions: sessions, SecureCookie: secureCookie}
}

// AdminSignup creates a new admin account with a bcrypt-hashed password.
func (ac *AdminAuthController) AdminSignup(c *gin.Context) {
	var req struct {
		Name            string `json:"name"`
		Username        string `json:"username"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirm_password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Username and passwords required."))
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" || req.ConfirmPassword == "" {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Username and passwords required."))
		return
	}
	if req.Password != req.ConfirmPassword {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Passwords do not match."))
		return
	}
	if len(req.Password) < 6 {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Password must be at least 6 characters."))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "password hashing failed", err))
		return
	}

	admin := models.Admin{
		Username:      req.Username,
		Password:      string(hash),
		IsOrderAccept: true,
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		admin.Name = &name
	}
	if email := strings.TrimSpace(req.Email); email != "" {
		admin.Email = &email
	}

	if err := ac.DB.Create(&admin).Error; err != nil {
		utils.RespondError(c, apperrors.FromDB(err, "Username or email already in use."))
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Admin created successfully", gin.H{
		"id":       admin.ID,
		"username": admin.Username,
	})
}

// AdminLogin verifies credentials and issues a fresh session. The generic
// failure message is the same whether the account or the password is wrong.
func (ac *AdminAuthController) AdminLogin(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Username and password required."))
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Username and password required."))
		return
	}

	var admin models.Admin
	if err := ac.DB.Where("username = ?", req.Username).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, apperrors.New(apperrors.Unauthorized, "Invalid username or password."))
			return
		}
		utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "admin lookup failed", err))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(req.Password)); err != nil {
		utils.RespondError(c, apperrors.New(apperrors.Unauthorized, "Invalid username or password."))
		return
	}

	session, err := ac.Sessions.CreateAdminSession(admin.ID, services.RequestMeta{
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	ac.setAdminCookie(c, session.Token)
	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"admin": gin.H{
			"id":       admin.ID,
			"username": admin.Username,
		},
	})
}

// AdminSessionCheck reports whether the request carries a live admin session.
func (ac *AdminAuthController) AdminSessionCheck(c *gin.Context) {
	token, _ := c.Cookie(middlewares.AdminCookie)
	admin, err := ac.Sessions.ResolveAdmin(token, c.Request.UserAgent())
	if err != nil {
		utils.ErrorLogger.Printf("admin session check: %v", err)
	}
	if admin == nil {
		middlewares.ClearSessionCookie(c, middlewares.AdminCookie)
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"admin": gin.H{
			"id":       admin.ID,
			"username": admin.Username,
		},
	})
}

// AdminLogout deletes the session row and clears the cookie.
func (ac *AdminAuthController) AdminLogout(c *gin.Context) {
	token, _ := c.Cookie(middlewares.AdminCookie)
	ac.Sessions.DeleteAdminSession(token)
	middlewares.ClearSessionCookie(c, middlewares.AdminCookie)
	utils.RespondJSON(c, http.StatusOK, "Logged out successfully", nil)
}

// ChangePassword updates the authenticated admin's password after verifying
// the current one. Other admin sessions stay valid; only passwords rotate.
func (ac *AdminAuthController) ChangePassword(c *gin.Context) {
	admin := currentAdmin(c)
	if admin == nil {
		utils.RespondError(c, apperrors.New(apperrors.Unauthorized, "Admin authentication required"))
		return
	}

	var req struct {
		CurrentPassword    string `json:"current_password"`
		NewPassword        string `json:"new_password"`
		ConfirmNewPassword string `json:"confirm_new_password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "All fields are required."))
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" || req.ConfirmNewPassword == "" {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "All fields are required."))
		return
	}
	if req.NewPassword != req.ConfirmNewPassword {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "New passwords do not match."))
		return
	}
	if len(req.NewPassword) < 6 {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "New password must be at least 6 characters."))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(req.CurrentPassword)); err != nil {
		utils.RespondError(c, apperrors.New(apperrors.Unauthorized, "Current password is incorrect."))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "password hashing failed", err))
		return
	}

	if err := ac.DB.Model(&models.Admin{}).Where("id = ?", admin.ID).
		Update("password", string(hash)).Error; err != nil {
		utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "password update failed", err))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Password changed successfully", nil)
}

func (ac *AdminAuthController) setAdminCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middlewares.AdminCookie, token,
		int(services.AdminSessionTTL/time.Second), "/", "", ac.SecureCookie, true)
}
