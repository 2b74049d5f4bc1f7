package controllers

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/servhunt/digimenu/apperrors"
	"github.com/servhunt/digimenu/models"
	"github.com/servhunt/digimenu/utils"
)

// AdminController covers the back office: order management, customer
// insight, notifications, rating moderation and admin account management.
type AdminController struct {
	DB *gorm.DB
}

func NewAdminController(db *gorm.DB) *AdminController {
	return &AdminController{DB: db}
}

// ListOrders returns orders for the admin dashboard. view_type "active"
// hides completed orders for the live board, "old" shows everything; status
// takes a single value or a comma list, date_filter narrows to today or to
// days before today, and custom_date picks one day.
func (ac *AdminController) ListOrders(c *gin.Context) {
	query := ac.DB.Model(&models.Order{}).
		Preload("Customer").
		Preload("OrderItems").
		Preload("OrderItems.Item").
		Order("created_at DESC")

	if c.Query("view_type") == "active" {
		query = query.Where("status <> ?", models.OrderCompleted)
	}

	if status := c.Query("status"); status != "" {
		statuses := strings.Split(status, ",")
		for i, s := range statuses {
			statuses[i] = strings.TrimSpace(s)
			if !models.OrderStatus(statuses[i]).Valid() {
				utils.RespondError(c, apperrors.New(apperrors.Validation, "Invalid status filter."))
				return
			}
		}
		query = query.Where("status IN ?", statuses)
	}

	dayStart := startOfDay(time.Now())
	switch c.Query("date_filter") {
	case "":
	case "today":
		query = query.Where("created_at >= ? AND created_at < ?", dayStart, dayStart.Add(24*time.Hour))
	case "old":
		query = query.Where("created_at < ?", dayStart)
	default:
		utils.RespondError(c, apperrors.New(apperrors.Validation, "date_filter must be today or old."))
		return
	}

	if date := c.Query("custom_date"); date != "" {
		day, err := time.Parse("2006-01-02", date)
		if err != nil {
			utils.RespondError(c, apperrors.New(apperrors.Validation, "custom_date must be YYYY-MM-DD."))
			return
		}
		query = query.Where("created_at >= ? AND created_at < ?", day, day.Add(24*time.Hour))
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Invalid limit."))
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Invalid offset."))
		return
	}

	var orders []models.Order
	if err := query.Limit(limit).Offset(offset).Find(&orders).Error; err != nil {
		utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "order lookup failed", err))
		return
	}

	orderIDs := make([]uint, 0, len(orders))
	for _, o := range orders {
		orderIDs = append(orderIDs, o.ID)
	}
	payments := make(map[uint]models.Payment)
	if len(orderIDs) > 0 {
		var rows []models.Payment
		if err := ac.DB.Where("order_id IN ?", orderIDs).Find(&rows).Error; err != nil {
			utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "payment lookup failed", err))
			return
		}
		for _, p := range rows {
			payments[p.OrderID] = p
		}
	}

	out := make([]gin.H, 0, len(orders))
	for _, o := range orders {
		items := make([]gin.H, 0, len(o.OrderItems))
		for _, oi := range o.OrderItems {
			items = append(items, gin.H{
				"item_id":   oi.ItemID,
				"item_name": oi.Item.Name,
				"quantity":  oi.Quantity,
				"price":     oi.Price,
			})
		}
		entry := gin.H{
			"order_id":       o.ID,
			"customer_name":  o.Customer.Name,
			"customer_phone": o.Customer.Phone,
			"table_number":   o.TableNumber,
			"total_amount":   o.TotalAmount,
			"status":         o.Status,
			"created_at":     o.CreatedAt,
			"items":          items,
		}
		if p, ok := payments[o.ID]; ok {
			entry["payment_status"] = p.Status
			entry["payment_method"] = p.Method
			if p.GatewayPaymentID != nil {
				entry["razorpay_payment_id"] = *p.GatewayPaymentID
			}
		}
		out = append(out, entry)
	}

	utils.RespondJSON(c, http.StatusOK, "Orders", gin.H{"orders": out})
}

// UpdateOrderStatus moves an order through the kitchen flow. Reaching a
// terminal status frees the table for the day.
func (ac *AdminController) UpdateOrderStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Invalid order id."))
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Status required."))
		return
	}

	status := models.OrderStatus(req.Status)
	if !status.Valid() {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Invalid status."))
		return
	}

	var order models.Order
	if err := ac.DB.First(&order, id).Error; err != nil {
		utils.RespondError(c, apperrors.New(apperrors.NotFound, "Order not found."))
		return
	}

	updates := map[string]interface{}{"status": status}
	if status.Terminal() {
		updates["active_table_key"] = nil
	}

	if err := ac.DB.Model(&order).Updates(updates).Error; err != nil {
		utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "status update failed", err))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order status updated", gin.H{
		"order_id": order.ID,
		"status":   status,
	})
}

// MarkOrderPaid settles a cash payment at the counter. The order status is
// left to the kitchen flow.
func (ac *AdminController) MarkOrderPaid(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Invalid order id."))
		return
	}

	var order models.Order
	if err := ac.DB.First(&order, id).Error; err != nil {
		utils.RespondError(c, apperrors.New(apperrors.NotFound, "Order not found."))
		return
	}

	err = ac.DB.Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		err := tx.Where("order_id = ?", order.ID).First(&payment).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			payment = models.Payment{
				OrderID: order.ID,
				Amount:  order.TotalAmount,
				Method:  models.MethodCash,
			}
		} else if err != nil {
			return err
		}

		if payment.Status == models.PaymentCompleted {
			return apperrors.New(apperrors.Conflict, "Order is already paid.")
		}

		payment.Status = models.PaymentCompleted
		payment.Method = models.MethodCash
		return tx.Save(&payment).Error
	})
	if err != nil {
		if apperrors.KindOf(err) == apperrors.Internal {
			err = apperrors.Wrap(apperrors.Internal, "payment update failed", err)
		}
		utils.RespondError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order marked as paid", gin.H{"order_id": order.ID})
}

// DeleteOrder removes an order together with its lines and payment row.
func (ac *AdminController) DeleteOrder(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Invalid order id."))
		return
	}

	var order models.Order
	if err := ac.DB.First(&order, id).Error; err != nil {
		utils.RespondError(c, apperrors.New(apperrors.NotFound, "Order not found."))
		return
	}

	err = ac.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.Payment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&order).Error
	})
	if err != nil {
		utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "order delete failed", err))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order deleted successfully", nil)
}

// DashboardStats summarizes the whole order book and today's slice of it
// for the admin landing page. Revenue counts completed payments only.
func (ac *AdminController) DashboardStats(c *gin.Context) {
	dayStart := startOfDay(time.Now())

	var totalOrders, todayOrders, pendingOrders, totalCustomers int64
	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&totalOrders, ac.DB.Model(&models.Order{})},
		{&todayOrders, ac.DB.Model(&models.Order{}).Where("created_at >= ?", dayStart)},
		{&pendingOrders, ac.DB.Model(&models.Order{}).Where("status IN ?", models.ActiveStatuses())},
		{&totalCustomers, ac.DB.Model(&models.Customer{})},
	}
	for _, cq := range counts {
		if err := cq.query.Count(cq.dest).Error; err != nil {
			utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "stats lookup failed", err))
			return
		}
	}

	revenueQuery := func(since *time.Time) (float64, error) {
		q := ac.DB.Model(&models.Order{}).
			Select("COALESCE(SUM(orders.total_amount), 0)").
			Joins("JOIN payments ON payments.order_id = orders.id").
			Where("payments.status = ?", models.PaymentCompleted)
		if since != nil {
			q = q.Where("orders.created_at >= ?", *since)
		}
		var total float64
		err := q.Scan(&total).Error
		return total, err
	}

	totalRevenue, err := revenueQuery(nil)
	if err != nil {
		utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "stats lookup failed", err))
		return
	}
	todayRevenue, err := revenueQuery(&dayStart)
	if err != nil {
		utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "stats lookup failed", err))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Dashboard stats", gin.H{
		"total_orders":    totalOrders,
		"today_orders":    todayOrders,
		"total_revenue":   totalRevenue,
		"today_revenue":   todayRevenue,
		"pending_orders":  pendingOrders,
		"total_customers": totalCustomers,
	})
}

// CustomerStats summarizes the customer base.
func (ac *AdminController) CustomerStats(c *gin.Context) {
	var total int64
	if err := ac.DB.Model(&models.Customer{}).Count(&total).Error; err != nil {
		utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "stats lookup failed", err))
		return
	}

	var today int64
	if err := ac.DB.Model(&models.Customer{}).
		Where("created_at >= ?", startOfDay(time.Now())).
		Count(&today).Error; err != nil {
		utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "stats lookup failed", err))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Customer stats", gin.H{
		"total_customers": total,
		"today_customers": today,
	})
}

// ListUsers returns every customer with order count and lifetime spend on
// completed orders, most active first.
func (ac *AdminController) ListUsers(c *gin.Context) {
	// last_order_date is an aggregate, so the drivers return it without a
	// column type. It is scanned as raw text; mysql hands back []byte and
	// sqlite a string, both of which fit.
	type userRow struct {
		ID            uint
		Name          string
		Phone         string
		JoinedDate    time.Time
		OrderCount    int64
		TotalSpent    float64
		LastOrderDate sql.NullString
	}

	var rows []userRow
	err := ac.DB.Model(&models.Customer{}).
		Select(`customers.id,
			customers.name,
			customers.phone,
			customers.created_at AS joined_date,
			COUNT(DISTINCT orders.id) AS order_count,
			COALESCE(SUM(CASE WHEN orders.status = 'completed' THEN orders.total_amount ELSE 0 END), 0) AS total_spent,
			MAX(orders.created_at) AS last_order_date`).
		Joins("LEFT JOIN orders ON orders.customer_id = customers.id").
		Group("customers.id, customers.name, customers.phone, customers.created_at").
		Order("order_count DESC, customers.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "user lookup failed", err))
		return
	}

	users := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		entry := gin.H{
			"id":              row.ID,
			"name":            row.Name,
			"phone":           row.Phone,
			"joined_date":     row.JoinedDate,
			"order_count":     row.OrderCount,
			"total_spent":     row.TotalSpent,
			"last_order_date": nil,
		}
		if row.LastOrderDate.Valid {
			entry["last_order_date"] = row.LastOrderDate.String
		}
		users = append(users, entry)
	}

	utils.RespondJSON(c, http.StatusOK, "Users", gin.H{"users": users})
}

// GetUser returns one customer with their full order history and reviews.
func (ac *AdminController) GetUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Invalid user id."))
		return
	}

	var customer models.Customer
	if err := ac.DB.First(&customer, id).Error; err != nil {
		utils.RespondError(c, apperrors.New(apperrors.NotFound, "User not found."))
		return
	}

	var orders []models.Order
	if err := ac.DB.Preload("OrderItems").Preload("OrderItems.Item").
		Where("customer_id = ?", customer.ID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "order lookup failed", err))
		return
	}

	payments := make(map[uint]models.Payment)
	if len(orders) > 0 {
		orderIDs := make([]uint, 0, len(orders))
		for _, o := range orders {
			orderIDs = append(orderIDs, o.ID)
		}
		var rows []models.Payment
		if err := ac.DB.Where("order_id IN ?", orderIDs).Find(&rows).Error; err != nil {
			utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "payment lookup failed", err))
			return
		}
		for _, p := range rows {
			payments[p.OrderID] = p
		}
	}

	orderViews := make([]gin.H, 0, len(orders))
	for _, o := range orders {
		items := make([]gin.H, 0, len(o.OrderItems))
		for _, oi := range o.OrderItems {
			items = append(items, gin.H{
				"item_name": oi.Item.Name,
				"quantity":  oi.Quantity,
				"price":     oi.Price,
			})
		}
		entry := gin.H{
			"order_id":     o.ID,
			"table_number": o.TableNumber,
			"total_amount": o.TotalAmount,
			"status":       o.Status,
			"created_at":   o.CreatedAt,
			"items":        items,
		}
		if p, ok := payments[o.ID]; ok {
			entry["payment_status"] = p.Status
			entry["payment_method"] = p.Method
		}
		orderViews = append(orderViews, entry)
	}

	var reviews []models.Rating
	if err := ac.DB.Preload("Item").
		Where("customer_id = ?", customer.ID).
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "rating lookup failed", err))
		return
	}

	reviewViews := make([]gin.H, 0, len(reviews))
	for _, r := range reviews {
		entry := gin.H{
			"rating_id":    r.ID,
			"rating_value": r.Value,
			"review_text":  r.ReviewText,
			"created_at":   r.CreatedAt,
		}
		if r.ItemID != nil {
			entry["item_id"] = *r.ItemID
			if r.Item != nil {
				entry["item_name"] = r.Item.Name
			}
		}
		if r.OrderID != nil {
			entry["order_id"] = *r.OrderID
		}
		reviewViews = append(reviewViews, entry)
	}

	utils.RespondJSON(c, http.StatusOK, "User detail", gin.H{
		"user":    customer,
		"orders":  orderViews,
		"reviews": reviewViews,
	})
}

// Notifications derives the attention feed from live data: active orders in
// the last day, today's order volume and today's signups. There is no
// notifications table.
func (ac *AdminController) Notifications(c *gin.Context) {
	now := time.Now()
	dayStart := startOfDay(now)
	notifications := make([]gin.H, 0, 3)

	var activeOrders int64
	if err := ac.DB.Model(&models.Order{}).
		Where("status IN ? AND created_at > ?", models.ActiveStatuses(), now.Add(-24*time.Hour)).
		Count(&activeOrders).Error; err != nil {
		utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "notification lookup failed", err))
		return
	}
	if activeOrders > 0 {
		notifications = append(notifications, gin.H{
			"type":     "order",
			"message":  fmt.Sprintf("%d pending order(s) need attention", activeOrders),
			"priority": "high",
		})
	}

	var todayOrders int64
	if err := ac.DB.Model(&models.Order{}).
		Where("created_at >= ?", dayStart).
		Count(&todayOrders).Error; err != nil {
		utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "notification lookup failed", err))
		return
	}
	if todayOrders > 0 {
		notifications = append(notifications, gin.H{
			"type":     "info",
			"message":  fmt.Sprintf("%d new order(s) today", todayOrders),
			"priority": "medium",
		})
	}

	var newCustomers int64
	if err := ac.DB.Model(&models.Customer{}).
		Where("created_at >= ?", dayStart).
		Count(&newCustomers).Error; err != nil {
		utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "notification lookup failed", err))
		return
	}
	if newCustomers > 0 {
		notifications = append(notifications, gin.H{
			"type":     "user",
			"message":  fmt.Sprintf("%d new customer(s) registered today", newCustomers),
			"priority": "low",
		})
	}

	utils.RespondJSON(c, http.StatusOK, "Notifications", gin.H{"notifications": notifications})
}

// ListRatings returns every rating for moderation.
func (ac *AdminController) ListRatings(c *gin.Context) {
	var ratings []models.Rating
	if err := ac.DB.Preload("Customer").Preload("Item").
		Order("created_at DESC").
		Find(&ratings).Error; err != nil {
		utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "rating lookup failed", err))
		return
	}

	out := make([]gin.H, 0, len(ratings))
	for _, r := range ratings {
		entry := gin.H{
			"rating_id":      r.ID,
			"rating_value":   r.Value,
			"review_text":    r.ReviewText,
			"customer_name":  r.Customer.Name,
			"customer_phone": r.Customer.Phone,
			"created_at":     r.CreatedAt,
		}
		if r.ItemID != nil {
			entry["item_id"] = *r.ItemID
			if r.Item != nil {
				entry["item_name"] = r.Item.Name
			}
		}
		if r.OrderID != nil {
			entry["order_id"] = *r.OrderID
		}
		out = append(out, entry)
	}

	stats, err := ac.ratingStats()
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Ratings", gin.H{
		"ratings": out,
		"total":   len(out),
		"stats": gin.H{
			"total_ratings":  stats.total,
			"average_rating": stats.average,
			"today_ratings":  stats.today,
			"with_review":    stats.withReview,
		},
	})
}

type ratingStatsResult struct {
	total      int64
	average    float64
	today      int64
	week       int64
	withReview int64
}

func (ac *AdminController) ratingStats() (*ratingStatsResult, error) {
	var stats ratingStatsResult
	dayStart := startOfDay(time.Now())

	if err := ac.DB.Model(&models.Rating{}).Count(&stats.total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "stats lookup failed", err)
	}
	if err := ac.DB.Model(&models.Rating{}).
		Select("COALESCE(AVG(value), 0)").
		Scan(&stats.average).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "stats lookup failed", err)
	}
	if err := ac.DB.Model(&models.Rating{}).
		Where("created_at >= ?", dayStart).
		Count(&stats.today).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "stats lookup failed", err)
	}
	if err := ac.DB.Model(&models.Rating{}).
		Where("created_at >= ?", dayStart.AddDate(0, 0, -7)).
		Count(&stats.week).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "stats lookup failed", err)
	}
	if err := ac.DB.Model(&models.Rating{}).
		Where("review_text IS NOT NULL AND review_text <> ''").
		Count(&stats.withReview).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "stats lookup failed", err)
	}
	return &stats, nil
}

// RatingStats returns the overall average, recency counts and the star
// distribution with every star level present.
func (ac *AdminController) RatingStats(c *gin.Context) {
	stats, err := ac.ratingStats()
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	type bucket struct {
		Value int
		Count int64
	}
	var buckets []bucket
	if err := ac.DB.Model(&models.Rating{}).
		Select("value, COUNT(id) AS count").
		Group("value").
		Scan(&buckets).Error; err != nil {
		utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "stats lookup failed", err))
		return
	}

	distribution := map[string]int64{"1": 0, "2": 0, "3": 0, "4": 0, "5": 0}
	for _, b := range buckets {
		if b.Value >= 1 && b.Value <= 5 {
			distribution[strconv.Itoa(b.Value)] = b.Count
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Rating stats", gin.H{
		"total_ratings":  stats.total,
		"average_rating": stats.average,
		"today_ratings":  stats.today,
		"week_ratings":   stats.week,
		"with_review":    stats.withReview,
		"distribution":   distribution,
	})
}

// DeleteRating removes a rating.
func (ac *AdminController) DeleteRating(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Invalid rating id."))
		return
	}

	var rating models.Rating
	if err := ac.DB.First(&rating, id).Error; err != nil {
		utils.RespondError(c, apperrors.New(apperrors.NotFound, "Rating not found."))
		return
	}

	if err := ac.DB.Delete(&rating).Error; err != nil {
		utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "rating delete failed", err))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Rating deleted successfully", nil)
}

// ListAdmins returns every admin account without password hashes.
func (ac *AdminController) ListAdmins(c *gin.Context) {
	admins := make([]models.Admin, 0)
	if err := ac.DB.Order("id ASC").Find(&admins).Error; err != nil {
		utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "admin lookup failed", err))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Admins", gin.H{"admins": admins})
}

// UpdateAdmin changes an admin's name or email.
func (ac *AdminController) UpdateAdmin(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Invalid admin id."))
		return
	}

	var admin models.Admin
	if err := ac.DB.First(&admin, id).Error; err != nil {
		utils.RespondError(c, apperrors.New(apperrors.NotFound, "Admin not found."))
		return
	}

	var req struct {
		Name  *string `json:"name"`
		Email *string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Nothing to update."))
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		if trimmed := strings.TrimSpace(*req.Name); trimmed != "" {
			updates["name"] = trimmed
		} else {
			updates["name"] = nil
		}
	}
	if req.Email != nil {
		if trimmed := strings.TrimSpace(*req.Email); trimmed != "" {
			updates["email"] = trimmed
		} else {
			updates["email"] = nil
		}
	}
	if len(updates) == 0 {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Nothing to update."))
		return
	}

	if err := ac.DB.Model(&admin).Updates(updates).Error; err != nil {
		utils.RespondError(c, apperrors.FromDB(err, "Email already in use."))
		return
	}

	ac.DB.First(&admin, id)
	utils.RespondJSON(c, http.StatusOK, "Admin updated successfully", admin)
}

// DeleteAdmin removes another admin account. Deleting yourself is rejected
// so the back office always keeps a signed-in operator.
func (ac *AdminController) DeleteAdmin(c *gin.Context) {
	caller := currentAdmin(c)
	if caller == nil {
		utils.RespondError(c, apperrors.New(apperrors.Unauthorized, "Admin authentication required"))
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Invalid admin id."))
		return
	}
	if uint(id) == caller.ID {
		utils.RespondError(c, apperrors.New(apperrors.Conflict, "You cannot delete your own account."))
		return
	}

	var admin models.Admin
	if err := ac.DB.First(&admin, id).Error; err != nil {
		utils.RespondError(c, apperrors.New(apperrors.NotFound, "Admin not found."))
		return
	}

	err = ac.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("admin_id = ?", admin.ID).Delete(&models.Session{}).Error; err != nil {
			return err
		}
		return tx.Delete(&admin).Error
	})
	if err != nil {
		utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "admin delete failed", err))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Admin deleted successfully", nil)
}

// OrderAcceptStatus is the public switch readout the menu page polls.
// Ordering is open unless some admin has turned it off.
func (ac *AdminController) OrderAcceptStatus(c *gin.Context) {
	var disabled int64
	if err := ac.DB.Model(&models.Admin{}).
		Where("is_order_accept = ?", false).
		Count(&disabled).Error; err != nil {
		utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "settings lookup failed", err))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order accept status", gin.H{
		"is_order_accept": disabled == 0,
	})
}

// ToggleOrderAccept flips the restaurant-wide acceptance switch. The value
// must be a real boolean; every admin row is set so the readout stays
// consistent.
func (ac *AdminController) ToggleOrderAccept(c *gin.Context) {
	var req struct {
		IsOrderAccept interface{} `json:"is_order_accept"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "is_order_accept must be true or false."))
		return
	}

	value, ok := strictBool(req.IsOrderAccept, true)
	if !ok || req.IsOrderAccept == nil {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "is_order_accept must be true or false."))
		return
	}

	if err := ac.DB.Model(&models.Admin{}).Where("1 = 1").
		Update("is_order_accept", value).Error; err != nil {
		utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "settings update failed", err))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order accept status updated", gin.H{
		"is_order_accept": value,
	})
}
