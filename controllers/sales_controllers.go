package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/servhunt/digimenu/apperrors"
	"github.com/servhunt/digimenu/models"
	"github.com/servhunt/digimenu/utils"
)

// SalesController builds the sales reports. Cancelled orders never count
// toward any figure.
type SalesController struct {
	DB *gorm.DB
}

func NewSalesController(db *gorm.DB) *SalesController {
	return &SalesController{DB: db}
}

// periodStart translates the period query parameter into a window start.
// The zero time means no lower bound.
func periodStart(c *gin.Context) (time.Time, bool) {
	now := time.Now()
	switch c.DefaultQuery("period", "all") {
	case "today":
		return startOfDay(now), true
	case "week":
		return startOfDay(now).AddDate(0, 0, -7), true
	case "month":
		return startOfDay(now).AddDate(0, 0, -30), true
	case "all":
		return time.Time{}, true
	}
	return time.Time{}, false
}

func (sc *SalesController) scopedOrders(start time.Time) *gorm.DB {
	query := sc.DB.Model(&models.Order{}).Where("status <> ?", models.OrderCancelled)
	if !start.IsZero() {
		query = query.Where("created_at >= ?", start)
	}
	return query
}

// Overview returns totals for the period: order count, revenue, average
// order value and the collected-versus-due split.
func (sc *SalesController) Overview(c *gin.Context) {
	start, ok := periodStart(c)
	if !ok {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "period must be today, week, month, or all."))
		return
	}

	var totals struct {
		OrderCount int64   `json:"order_count"`
		Revenue    float64 `json:"revenue"`
	}
	if err := sc.scopedOrders(start).
		Select("COUNT(id) AS order_count, COALESCE(SUM(total_amount), 0) AS revenue").
		Scan(&totals).Error; err != nil {
		utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "sales lookup failed", err))
		return
	}

	collectedQuery := sc.DB.Model(&models.Payment{}).
		Select("COALESCE(SUM(payments.amount), 0)").
		Joins("JOIN orders ON orders.id = payments.order_id").
		Where("payments.status = ? AND orders.status <> ?", models.PaymentCompleted, models.OrderCancelled)
	if !start.IsZero() {
		collectedQuery = collectedQuery.Where("orders.created_at >= ?", start)
	}

	var collected float64
	if err := collectedQuery.Scan(&collected).Error; err != nil {
		utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "sales lookup failed", err))
		return
	}

	average := 0.0
	if totals.OrderCount > 0 {
		average = totals.Revenue / float64(totals.OrderCount)
	}

	utils.RespondJSON(c, http.StatusOK, "Sales overview", gin.H{
		"order_count":     totals.OrderCount,
		"revenue":         totals.Revenue,
		"collected":       collected,
		"outstanding":     totals.Revenue - collected,
		"avg_order_value": average,
	})
}

type sellerRow struct {
	ItemID       uint    `json:"item_id"`
	ItemName     string  `json:"item_name"`
	QuantitySold int64   `json:"quantity_sold"`
	Revenue      float64 `json:"revenue"`
}

func (sc *SalesController) sellers(start time.Time, order string, limit int) ([]sellerRow, error) {
	query := sc.DB.Model(&models.OrderItem{}).
		Select(`order_items.item_id,
			menu_items.name AS item_name,
			COALESCE(SUM(order_items.quantity), 0) AS quantity_sold,
			COALESCE(SUM(order_items.quantity * order_items.price), 0) AS revenue`).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("JOIN menu_items ON menu_items.id = order_items.item_id").
		Where("orders.status <> ?", models.OrderCancelled).
		Group("order_items.item_id, menu_items.name").
		Order(order).
		Limit(limit)
	if !start.IsZero() {
		query = query.Where("orders.created_at >= ?", start)
	}

	rows := make([]sellerRow, 0, limit)
	if err := query.Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "sales lookup failed", err)
	}
	return rows, nil
}

// sellerLimit reads the limit query parameter, defaulting to ten rows.
func sellerLimit(c *gin.Context) (int, bool) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		return 0, false
	}
	return limit, true
}

// BestSellers lists the top items by quantity sold.
func (sc *SalesController) BestSellers(c *gin.Context) {
	start, ok := periodStart(c)
	if !ok {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "period must be today, week, month, or all."))
		return
	}
	limit, ok := sellerLimit(c)
	if !ok {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Invalid limit."))
		return
	}

	rows, err := sc.sellers(start, "quantity_sold DESC", limit)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Best sellers", gin.H{"items": rows})
}

// WorstSellers lists the bottom items by quantity sold. Items never ordered
// in the period do not appear; zero-sale detection belongs to the menu view.
func (sc *SalesController) WorstSellers(c *gin.Context) {
	start, ok := periodStart(c)
	if !ok {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "period must be today, week, month, or all."))
		return
	}

	limit, ok := sellerLimit(c)
	if !ok {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Invalid limit."))
		return
	}

	rows, err := sc.sellers(start, "quantity_sold ASC", limit)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Worst sellers", gin.H{"items": rows})
}

// ByCategory breaks revenue down per menu category.
func (sc *SalesController) ByCategory(c *gin.Context) {
	start, ok := periodStart(c)
	if !ok {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "period must be today, week, month, or all."))
		return
	}

	type categoryRow struct {
		CategoryID   uint    `json:"category_id"`
		CategoryName string  `json:"category_name"`
		QuantitySold int64   `json:"quantity_sold"`
		Revenue      float64 `json:"revenue"`
	}

	query := sc.DB.Model(&models.OrderItem{}).
		Select(`menu_items.category_id,
			menu_categories.name AS category_name,
			COALESCE(SUM(order_items.quantity), 0) AS quantity_sold,
			COALESCE(SUM(order_items.quantity * order_items.price), 0) AS revenue`).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("JOIN menu_items ON menu_items.id = order_items.item_id").
		Joins("JOIN menu_categories ON menu_categories.id = menu_items.category_id").
		Where("orders.status <> ?", models.OrderCancelled).
		Group("menu_items.category_id, menu_categories.name").
		Order("revenue DESC")
	if !start.IsZero() {
		query = query.Where("orders.created_at >= ?", start)
	}

	rows := make([]categoryRow, 0)
	if err := query.Scan(&rows).Error; err != nil {
		utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "sales lookup failed", err))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Sales by category", gin.H{"categories": rows})
}

// Daily returns a per-day order count and revenue series for the last N
// days (default 30), oldest first. Days without orders appear as zeros.
func (sc *SalesController) Daily(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil || days < 1 || days > 365 {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "days must be between 1 and 365."))
		return
	}
	start := startOfDay(time.Now()).AddDate(0, 0, -(days - 1))

	var orders []models.Order
	if err := sc.DB.
		Where("status <> ? AND created_at >= ?", models.OrderCancelled, start).
		Order("created_at ASC").
		Find(&orders).Error; err != nil {
		utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "sales lookup failed", err))
		return
	}

	type dayTotals struct {
		orders  int64
		revenue float64
	}
	byDay := make(map[string]*dayTotals)
	for _, o := range orders {
		key := o.CreatedAt.Format("2006-01-02")
		if byDay[key] == nil {
			byDay[key] = &dayTotals{}
		}
		byDay[key].orders++
		byDay[key].revenue += o.TotalAmount
	}

	series := make([]gin.H, 0, days)
	for day := start; !day.After(startOfDay(time.Now())); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		totals := byDay[key]
		if totals == nil {
			totals = &dayTotals{}
		}
		series = append(series, gin.H{
			"date":        key,
			"order_count": totals.orders,
			"revenue":     totals.revenue,
		})
	}

	utils.RespondJSON(c, http.StatusOK, "Daily sales", gin.H{"days": series})
}
