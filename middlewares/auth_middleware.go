package middlewares

import (
	"github.com/gin-gonic/gin"

	"github.com/servhunt/digimenu/apperrors"
	"github.com/servhunt/digimenu/services"
	"github.com/servhunt/digimenu/utils"
)

// Cookie names used by the two session kinds.
const (
	CustomerCookie = "sessionId"
	AdminCookie    = "adminSessionId"
)

// Context keys the auth middlewares set on a successful resolve.
const (
	CtxCustomer = "customer"
	CtxAdmin    = "admin"
)

// RequireCustomer resolves the customer session cookie. Absence, expiry or
// a lookup failure all clear the cookie and abort with 401.
func RequireCustomer(sessions *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(CustomerCookie)
		customer, err := sessions.ResolveCustomer(token)
		if err != nil {
			utils.ErrorLogger.Printf("customer session resolve: %v", err)
		}
		if customer == nil {
			ClearSessionCookie(c, CustomerCookie)
			utils.RespondError(c, apperrors.New(apperrors.Unauthorized, "Authentication required"))
			c.Abort()
			return
		}
		c.Set(CtxCustomer, customer)
		c.Next()
	}
}

// RequireAdmin resolves the admin session cookie the same way.
func RequireAdmin(sessions *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(AdminCookie)
		admin, err := sessions.ResolveAdmin(token, c.Request.UserAgent())
		if err != nil {
			utils.ErrorLogger.Printf("admin session resolve: %v", err)
		}
		if admin == nil {
			ClearSessionCookie(c, AdminCookie)
			utils.RespondError(c, apperrors.New(apperrors.Unauthorized, "Admin authentication required"))
			c.Abort()
			return
		}
		c.Set(CtxAdmin, admin)
		c.Next()
	}
}

// ClearSessionCookie expires the named cookie on the whole site.
func ClearSessionCookie(c *gin.Context, name string) {
	c.SetCookie(name, "", -1, "/", "", false, true)
}
