package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/servhunt/digimenu/apperrors"
	"github.com/servhunt/digimenu/middlewares"
	"github.com/servhunt/digimenu/models"
	"github.com/servhunt/digimenu/services"
	"github.com/servhunt/digimenu/utils"
)

// AuthController handles customer OTP authentication and session lifecycle.
type AuthController struct {
	DB           *gorm.DB
	Challenges   *services.ChallengeStore
	SMS          services.OTPProvider
	Sessions     *services.SessionService
	SecureCookie bool
}

func NewAuthController(db *gorm.DB, challenges *services.ChallengeStore, sms services.OTPProvider,
	sessions *services.SessionService, secureCookie bool) *AuthController {
	return &AuthController{
		DB:           db,
		Challenges:   challenges,
		SMS:          sms,
		Sessions:     sessions,
		SecureCookie: secureCookie,
	}
}

// SendOTP starts (or restarts) an OTP challenge for login or registration.
func (ac *AuthController) SendOTP(c *gin.Context) {
	var req struct {
		Phone string `json:"phone"`
		Type  string `json:"type"`
		Name  string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Phone number and type required."))
		return
	}
	if req.Phone == "" || req.Type == "" {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Phone number and type required."))
		return
	}

	purpose := services.OTPPurpose(req.Type)
	if !purpose.Valid() {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Type must be login or register."))
		return
	}

	mobile := cleanMobile(req.Phone)
	if !validMobile(mobile) {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Invalid mobile number."))
		return
	}
	if purpose == services.PurposeRegister && !validName(req.Name) {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Valid name required."))
		return
	}

	var existing models.Customer
	err := ac.DB.Where("phone = ?", mobile).First(&existing).Error
	exists := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "customer lookup failed", err))
		return
	}

	if purpose == services.PurposeLogin && !exists {
		utils.RespondError(c, apperrors.New(apperrors.NotFound, "Customer not found. Please register."))
		return
	}
	if purpose == services.PurposeRegister && exists {
		utils.RespondError(c, apperrors.New(apperrors.Conflict, "Customer exists. Please login."))
		return
	}

	// Any prior challenge for this phone+purpose is superseded.
	ac.Challenges.Delete(mobile, purpose)

	verificationID, err := ac.SMS.SendOTP(mobile)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	ac.Challenges.Put(mobile, purpose, strings.TrimSpace(req.Name), verificationID)
	utils.RespondJSON(c, http.StatusOK, "OTP sent successfully", nil)
}

// VerifyOTP checks the submitted code, then creates the customer (register)
// or loads them (login), purges prior sessions and sets the session cookie.
func (ac *AuthController) VerifyOTP(c *gin.Context) {
	var req struct {
		Phone string `json:"phone"`
		OTP   string `json:"otp"`
		Type  string `json:"type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Phone, OTP, and type required."))
		return
	}
	if req.Phone == "" || req.OTP == "" || req.Type == "" {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Phone, OTP, and type required."))
		return
	}

	purpose := services.OTPPurpose(req.Type)
	if !purpose.Valid() {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Type must be login or register."))
		return
	}

	mobile := cleanMobile(req.Phone)
	code := cleanMobile(req.OTP)
	if !validMobile(mobile) {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Invalid mobile number."))
		return
	}
	if !validOTP(code) {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "OTP must be 6 digits."))
		return
	}

	challenge, ok := ac.Challenges.Get(mobile, purpose)
	if !ok {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "No OTP found. Request new OTP."))
		return
	}
	if time.Now().After(challenge.ExpiresAt) {
		ac.Challenges.Delete(mobile, purpose)
		utils.RespondError(c, apperrors.New(apperrors.Validation, "OTP expired."))
		return
	}
	if challenge.Attempts >= services.MaxOTPAttempts {
		ac.Challenges.Delete(mobile, purpose)
		utils.RespondError(c, apperrors.New(apperrors.TooManyAttempts, "Too many attempts."))
		return
	}

	verified, err := ac.SMS.VerifyOTP(mobile, code, challenge.VerificationID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if !verified {
		left := ac.Challenges.RecordFailure(mobile, purpose)
		c.JSON(http.StatusUnauthorized, gin.H{
			"status":        false,
			"message":       "Invalid OTP.",
			"attempts_left": left,
		})
		return
	}

	var customer models.Customer
	if purpose == services.PurposeRegister {
		customer = models.Customer{Name: challenge.Name, Phone: mobile}
		if err := ac.DB.Create(&customer).Error; err != nil {
			utils.RespondError(c, apperrors.FromDB(err, "Customer exists. Please login."))
			return
		}
	} else {
		if err := ac.DB.Where("phone = ?", mobile).First(&customer).Error; err != nil {
			utils.RespondError(c, apperrors.New(apperrors.NotFound, "Customer not found."))
			return
		}
	}

	session, err := ac.Sessions.CreateCustomerSession(customer.ID, services.RequestMeta{
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	ac.setSessionCookie(c, session.Token)
	ac.Challenges.Delete(mobile, purpose)

	message := "Login successful"
	if purpose == services.PurposeRegister {
		message = "Registration successful"
	}
	utils.RespondJSON(c, http.StatusOK, message, gin.H{
		"customer": gin.H{
			"id":    customer.ID,
			"name":  customer.Name,
			"phone": customer.Phone,
		},
	})
}

// SessionCheck reports whether the request carries a live customer session.
// A dead cookie is cleared but the response is 200 either way.
func (ac *AuthController) SessionCheck(c *gin.Context) {
	token, _ := c.Cookie(middlewares.CustomerCookie)
	customer, err := ac.Sessions.ResolveCustomer(token)
	if err != nil {
		utils.ErrorLogger.Printf("session check: %v", err)
	}
	if customer == nil {
		middlewares.ClearSessionCookie(c, middlewares.CustomerCookie)
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"customer": gin.H{
			"id":      customer.ID,
			"name":    customer.Name,
			"phone":   customer.Phone,
			"has_dob": customer.DOB != nil,
		},
	})
}

// Logout deletes the session row if one exists and clears the cookie
// unconditionally.
func (ac *AuthController) Logout(c *gin.Context) {
	token, _ := c.Cookie(middlewares.CustomerCookie)
	ac.Sessions.DeleteCustomerSession(token)
	middlewares.ClearSessionCookie(c, middlewares.CustomerCookie)
	utils.RespondJSON(c, http.StatusOK, "Logged out successfully", nil)
}

func (ac *AuthController) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middlewares.CustomerCookie, token,
		int(services.CustomerSessionTTL/time.Second), "/", "", ac.SecureCookie, true)
}
