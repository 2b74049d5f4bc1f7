package controllers

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/servhunt/digimenu/middlewares"
	"github.com/servhunt/digimenu/models"
)

var (
	mobilePattern = regexp.MustCompile(`^[6-9]\d{9}$`)
	namePattern   = regexp.MustCompile(`^[A-Za-z\s]+$`)
	otpPattern    = regexp.MustCompile(`^\d{6}$`)
	nonDigits     = regexp.MustCompile(`\D`)
)

// cleanMobile strips everything but digits so "98765-43210" style inputs
// still validate.
func cleanMobile(raw string) string {
	return nonDigits.ReplaceAllString(raw, "")
}

func validMobile(mobile string) bool {
	return mobilePattern.MatchString(mobile)
}

func validName(name string) bool {
	trimmed := strings.TrimSpace(name)
	return len(trimmed) >= 2 && namePattern.MatchString(trimmed)
}

func validOTP(otp string) bool {
	return otpPattern.MatchString(otp)
}

// currentCustomer returns the principal set by RequireCustomer.
func currentCustomer(c *gin.Context) *models.Customer {
	v, ok := c.Get(middlewares.CtxCustomer)
	if !ok {
		return nil
	}
	customer, _ := v.(*models.Customer)
	return customer
}

// currentAdmin returns the principal set by RequireAdmin.
func currentAdmin(c *gin.Context) *models.Admin {
	v, ok := c.Get(middlewares.CtxAdmin)
	if !ok {
		return nil
	}
	admin, _ := v.(*models.Admin)
	return admin
}

// strictBool enforces the boolean contract at the interface boundary:
// JSON booleans pass through, the strings "true"/"false" (any case) are
// normalized, everything else is rejected.
func strictBool(v interface{}, fallback bool) (bool, bool) {
	switch b := v.(type) {
	case nil:
		return fallback, true
	case bool:
		return b, true
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}
