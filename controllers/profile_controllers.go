package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/servhunt/digimenu/apperrors"
	"github.com/servhunt/digimenu/models"
	"github.com/servhunt/digimenu/utils"
)

// ProfileController serves the authenticated customer's own data.
type ProfileController struct {
	DB *gorm.DB
}

func NewProfileController(db *gorm.DB) *ProfileController {
	return &ProfileController{DB: db}
}

// GetProfile returns the customer's profile with order count and lifetime
// spend on completed orders.
func (pc *ProfileController) GetProfile(c *gin.Context) {
	customer := currentCustomer(c)
	if customer == nil {
		utils.RespondError(c, apperrors.New(apperrors.Unauthorized, "Authentication required"))
		return
	}

	var dob *string
	if customer.DOB != nil {
		d := customer.DOB.Format("2006-01-02")
		dob = &d
	}

	var totalOrders int64
	if err := pc.DB.Model(&models.Order{}).
		Where("customer_id = ?", customer.ID).
		Count(&totalOrders).Error; err != nil {
		utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "order lookup failed", err))
		return
	}

	var totalSpent float64
	if err := pc.DB.Model(&models.Order{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Where("customer_id = ? AND status = ?", customer.ID, models.OrderCompleted).
		Scan(&totalSpent).Error; err != nil {
		utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "order lookup failed", err))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Profile", gin.H{
		"id":           customer.ID,
		"name":         customer.Name,
		"phone":        customer.Phone,
		"dob":          dob,
		"created_at":   customer.CreatedAt,
		"total_orders": totalOrders,
		"total_spent":  totalSpent,
	})
}

// GetOrderHistory returns the customer's orders, newest first, with their
// items and payment state.
func (pc *ProfileController) GetOrderHistory(c *gin.Context) {
	customer := currentCustomer(c)
	if customer == nil {
		utils.RespondError(c, apperrors.New(apperrors.Unauthorized, "Authentication required"))
		return
	}

	var orders []models.Order
	err := pc.DB.
		Preload("OrderItems").
		Preload("OrderItems.Item").
		Where("customer_id = ?", customer.ID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
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
		if err := pc.DB.Where("order_id IN ?", orderIDs).Find(&rows).Error; err != nil {
			utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "payment lookup failed", err))
			return
		}
		for _, p := range rows {
			payments[p.OrderID] = p
		}
	}

	history := make([]gin.H, 0, len(orders))
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
		history = append(history, entry)
	}

	utils.RespondJSON(c, http.StatusOK, "Order history", gin.H{"orders": history})
}

// UpdateDOB sets the customer's date of birth. The implied age must be
// between 13 and 120 years.
func (pc *ProfileController) UpdateDOB(c *gin.Context) {
	customer := currentCustomer(c)
	if customer == nil {
		utils.RespondError(c, apperrors.New(apperrors.Unauthorized, "Authentication required"))
		return
	}

	var req struct {
		DOB string `json:"dob"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.DOB == "" {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Date of birth required."))
		return
	}

	dob, err := time.Parse("2006-01-02", req.DOB)
	if err != nil {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Date of birth must be YYYY-MM-DD."))
		return
	}

	age := yearsBetween(dob, time.Now())
	if age < 13 || age > 120 {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Age must be between 13 and 120."))
		return
	}

	if err := pc.DB.Model(&models.Customer{}).Where("id = ?", customer.ID).
		Update("dob", dob).Error; err != nil {
		utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "profile update failed", err))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Date of birth updated", nil)
}

func yearsBetween(from, to time.Time) int {
	years := to.Year() - from.Year()
	anniversary := from.AddDate(years, 0, 0)
	if anniversary.After(to) {
		years--
	}
	return years
}
