package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/servhunt/digimenu/config"
	"github.com/servhunt/digimenu/controllers"
	"github.com/servhunt/digimenu/middlewares"
	"github.com/servhunt/digimenu/services"
	"github.com/servhunt/digimenu/utils"
)

// Deps carries everything the route tree needs.
type Deps struct {
	DB         *gorm.DB
	Config     *config.Config
	Challenges *services.ChallengeStore
	SMS        services.OTPProvider
	Sessions   *services.SessionService
	Razorpay   *services.RazorpayService
	CDN        *services.BunnyCDNService
}

func SetupRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(deps.Config.AllowedOrigin, deps.Config.IsProduction()))
	// Global middlewares must be registered before any route; gin snapshots
	// the handler chain per route at registration time.
	r.Use(middlewares.NewRateLimiter(50, time.Second).RateLimit())

	secure := deps.Config.IsProduction()

	authCtrl := controllers.NewAuthController(deps.DB, deps.Challenges, deps.SMS, deps.Sessions, secure)
	adminAuthCtrl := controllers.NewAdminAuthController(deps.DB, deps.Sessions, secure)
	orderCtrl := controllers.NewOrderController(deps.DB, deps.Razorpay, deps.Config.Tables)
	paymentCtrl := controllers.NewPaymentController(deps.DB, deps.Razorpay)
	menuCtrl := controllers.NewMenuController(deps.DB)
	adminMenuCtrl := controllers.NewAdminMenuController(deps.DB, deps.CDN)
	profileCtrl := controllers.NewProfileController(deps.DB)
	ratingCtrl := controllers.NewRatingController(deps.DB)
	adminCtrl := controllers.NewAdminController(deps.DB)
	salesCtrl := controllers.NewSalesController(deps.DB)

	requireCustomer := middlewares.RequireCustomer(deps.Sessions)
	requireAdmin := middlewares.RequireAdmin(deps.Sessions)

	otpLimiter := middlewares.NewStrictRateLimiter()
	loginLimiter := middlewares.NewRateLimiter(10, 15*time.Minute)
	paymentLimiter := middlewares.NewPaymentRateLimiter()

	healthHandler := func(c *gin.Context) {
		utils.RespondJSON(c, http.StatusOK, "ok", nil)
	}
	r.GET("/health", healthHandler)
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	api := r.Group("/api")
	api.GET("/health", healthHandler)

	auth := api.Group("/auth")
	auth.Use(middlewares.NoStore())
	{
		auth.POST("/send-otp", otpLimiter.RateLimit(), authCtrl.SendOTP)
		auth.POST("/verify-otp", loginLimiter.RateLimit(), authCtrl.VerifyOTP)
		auth.GET("/session-check", authCtrl.SessionCheck)
		auth.POST("/logout", authCtrl.Logout)

		auth.POST("/admin/signup", loginLimiter.RateLimit(), adminAuthCtrl.AdminSignup)
		auth.POST("/admin/login", loginLimiter.RateLimit(), adminAuthCtrl.AdminLogin)
		auth.GET("/admin/session-check", adminAuthCtrl.AdminSessionCheck)
		auth.POST("/admin/logout", adminAuthCtrl.AdminLogout)
	}

	menu := api.Group("/menu")
	{
		menu.GET("/categories", menuCtrl.GetCategories)
		menu.GET("/items", menuCtrl.GetItems)
	}

	orders := api.Group("/orders")
	{
		orders.GET("/table-availability", orderCtrl.TableAvailability)
		orders.POST("/create", requireCustomer, orderCtrl.CreateOrder)
		orders.POST("/create-after-payment", requireCustomer, paymentLimiter.RateLimit(), orderCtrl.CreateOrderAfterPayment)
		orders.DELETE("/cancel/:id", requireCustomer, orderCtrl.CancelOrder)
	}
	api.GET("/orders", requireCustomer, profileCtrl.GetOrderHistory)

	payments := api.Group("/payments")
	payments.Use(paymentLimiter.RateLimit())
	{
		payments.GET("/razorpay-key", requireCustomer, paymentCtrl.RazorpayKey)
		payments.POST("/create-razorpay-order", requireCustomer, paymentCtrl.CreateRazorpayOrder)
		payments.POST("/create-order", requireCustomer, paymentCtrl.CreateOrderForExisting)
		payments.POST("/verify", requireCustomer, paymentCtrl.VerifyPayment)
	}

	api.GET("/profile", requireCustomer, profileCtrl.GetProfile)
	api.POST("/profile/dob", requireCustomer, profileCtrl.UpdateDOB)

	ratings := api.Group("/ratings")
	{
		ratings.GET("/average", ratingCtrl.AverageRating)
		ratings.GET("/recent", ratingCtrl.RecentRatings)
		ratings.POST("/submit-item", requireCustomer, ratingCtrl.SubmitItemRating)
		ratings.POST("/submit-order", requireCustomer, ratingCtrl.SubmitOrderRating)
		ratings.GET("/my-ratings", requireCustomer, ratingCtrl.MyRatings)
		ratings.GET("/ordered-items", requireCustomer, ratingCtrl.OrderedItems)
	}

	// The acceptance switch readout is public so the menu page can poll it
	// without a session.
	api.GET("/admin/order-accept-status", adminCtrl.OrderAcceptStatus)

	admin := api.Group("/admin")
	admin.Use(requireAdmin, middlewares.NoStore())
	{
		admin.PUT("/change-password", adminAuthCtrl.ChangePassword)

		admin.GET("/categories", menuCtrl.GetCategories)
		admin.POST("/categories", adminMenuCtrl.CreateCategory)
		admin.PUT("/categories/:id", adminMenuCtrl.UpdateCategory)
		admin.DELETE("/categories/:id", adminMenuCtrl.DeleteCategory)

		admin.GET("/items", adminMenuCtrl.ListItems)
		admin.POST("/items", adminMenuCtrl.CreateItem)
		admin.PUT("/items/:id", adminMenuCtrl.UpdateItem)
		admin.DELETE("/items/:id", adminMenuCtrl.DeleteItem)

		admin.GET("/orders", adminCtrl.ListOrders)
		admin.PUT("/orders/:id/status", adminCtrl.UpdateOrderStatus)
		admin.PUT("/orders/:id/mark-paid", adminCtrl.MarkOrderPaid)
		admin.DELETE("/orders/:id", adminCtrl.DeleteOrder)

		admin.GET("/dashboard/stats", adminCtrl.DashboardStats)
		admin.GET("/customer-stats", adminCtrl.CustomerStats)
		admin.GET("/users", adminCtrl.ListUsers)
		admin.GET("/users/:id", adminCtrl.GetUser)
		admin.GET("/notifications", adminCtrl.Notifications)

		admin.GET("/ratings", adminCtrl.ListRatings)
		admin.GET("/ratings/stats", adminCtrl.RatingStats)
		admin.DELETE("/ratings/:id", adminCtrl.DeleteRating)

		admin.GET("/admins", adminCtrl.ListAdmins)
		admin.PUT("/admins/:id", adminCtrl.UpdateAdmin)
		admin.DELETE("/admins/:id", adminCtrl.DeleteAdmin)

		admin.POST("/toggle-order-accept", adminCtrl.ToggleOrderAccept)
	}

	sales := api.Group("/sales", requireAdmin)
	{
		sales.GET("/stats/overview", salesCtrl.Overview)
		sales.GET("/stats/best-sellers", salesCtrl.BestSellers)
		sales.GET("/stats/worst-sellers", salesCtrl.WorstSellers)
		sales.GET("/stats/by-category", salesCtrl.ByCategory)
		sales.GET("/stats/daily", salesCtrl.Daily)
	}

	return r
}
