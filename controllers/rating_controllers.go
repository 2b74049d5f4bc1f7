package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/servhunt/digimenu/apperrors"
	"github.com/servhunt/digimenu/models"
	"github.com/servhunt/digimenu/utils"
)

// RatingController handles item and order ratings. A customer can rate only
// what they have actually received through a completed order, once per
// target.
type RatingController struct {
	DB *gorm.DB
}

func NewRatingController(db *gorm.DB) *RatingController {
	return &RatingController{DB: db}
}

// SubmitItemRating records a rating for a menu item the customer has
// ordered and received.
func (rc *RatingController) SubmitItemRating(c *gin.Context) {
	customer := currentCustomer(c)
	if customer == nil {
		utils.RespondError(c, apperrors.New(apperrors.Unauthorized, "Authentication required"))
		return
	}

	var req struct {
		ItemID     uint   `json:"item_id"`
		Value      int    `json:"rating_value"`
		ReviewText string `json:"review_text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ItemID == 0 {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Item id and rating value required."))
		return
	}
	if req.Value < 1 || req.Value > 5 {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Rating value must be between 1 and 5."))
		return
	}

	var eligible int64
	err := rc.DB.Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("order_items.item_id = ? AND orders.customer_id = ? AND orders.status = ?",
			req.ItemID, customer.ID, models.OrderCompleted).
		Count(&eligible).Error
	if err != nil {
		utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "eligibility check failed", err))
		return
	}
	if eligible == 0 {
		utils.RespondError(c, apperrors.New(apperrors.Forbidden, "You can only rate items from completed orders."))
		return
	}

	rating := models.Rating{
		CustomerID: customer.ID,
		Value:      req.Value,
		ItemID:     &req.ItemID,
	}
	if review := strings.TrimSpace(req.ReviewText); review != "" {
		rating.ReviewText = &review
	}

	if err := rc.DB.Create(&rating).Error; err != nil {
		utils.RespondError(c, apperrors.FromDB(err, "You have already rated this item."))
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Rating submitted successfully", gin.H{"rating_id": rating.ID})
}

// SubmitOrderRating records a rating for one of the customer's completed
// orders.
func (rc *RatingController) SubmitOrderRating(c *gin.Context) {
	customer := currentCustomer(c)
	if customer == nil {
		utils.RespondError(c, apperrors.New(apperrors.Unauthorized, "Authentication required"))
		return
	}

	var req struct {
		OrderID    uint   `json:"order_id"`
		Value      int    `json:"rating_value"`
		ReviewText string `json:"review_text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.OrderID == 0 {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Order id and rating value required."))
		return
	}
	if req.Value < 1 || req.Value > 5 {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Rating value must be between 1 and 5."))
		return
	}

	var order models.Order
	err := rc.DB.Where("id = ? AND customer_id = ?", req.OrderID, customer.ID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondError(c, apperrors.New(apperrors.NotFound, "Order not found."))
		return
	}
	if err != nil {
		utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "order lookup failed", err))
		return
	}
	if order.Status != models.OrderCompleted {
		utils.RespondError(c, apperrors.New(apperrors.Forbidden, "You can only rate completed orders."))
		return
	}

	rating := models.Rating{
		CustomerID: customer.ID,
		Value:      req.Value,
		OrderID:    &req.OrderID,
	}
	if review := strings.TrimSpace(req.ReviewText); review != "" {
		rating.ReviewText = &review
	}

	if err := rc.DB.Create(&rating).Error; err != nil {
		utils.RespondError(c, apperrors.FromDB(err, "You have already rated this order."))
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Rating submitted successfully", gin.H{"rating_id": rating.ID})
}

// MyRatings lists the customer's own ratings, newest first.
func (rc *RatingController) MyRatings(c *gin.Context) {
	customer := currentCustomer(c)
	if customer == nil {
		utils.RespondError(c, apperrors.New(apperrors.Unauthorized, "Authentication required"))
		return
	}

	var ratings []models.Rating
	err := rc.DB.Preload("Item").
		Where("customer_id = ?", customer.ID).
		Order("created_at DESC").
		Find(&ratings).Error
	if err != nil {
		utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "rating lookup failed", err))
		return
	}

	out := make([]gin.H, 0, len(ratings))
	for _, r := range ratings {
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
		out = append(out, entry)
	}

	utils.RespondJSON(c, http.StatusOK, "Your ratings", gin.H{"ratings": out})
}

// OrderedItems lists the distinct items the customer can rate, with any
// rating they already gave.
func (rc *RatingController) OrderedItems(c *gin.Context) {
	customer := currentCustomer(c)
	if customer == nil {
		utils.RespondError(c, apperrors.New(apperrors.Unauthorized, "Authentication required"))
		return
	}

	type orderedItem struct {
		ItemID   uint    `json:"item_id"`
		ItemName string  `json:"item_name"`
		ImageURL *string `json:"image_url"`
		MyRating *int    `json:"my_rating"`
	}

	items := make([]orderedItem, 0)
	err := rc.DB.Model(&models.OrderItem{}).
		Select(`DISTINCT order_items.item_id,
			menu_items.name AS item_name,
			menu_items.image_url,
			ratings.value AS my_rating`).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("JOIN menu_items ON menu_items.id = order_items.item_id").
		Joins("LEFT JOIN ratings ON ratings.item_id = order_items.item_id AND ratings.customer_id = orders.customer_id").
		Where("orders.customer_id = ? AND orders.status = ?", customer.ID, models.OrderCompleted).
		Scan(&items).Error
	if err != nil {
		utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "ordered items lookup failed", err))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Rateable items", gin.H{"items": items})
}

// AverageRating is the public site-wide aggregate with a star distribution.
// An item_id parameter narrows it to one item.
func (rc *RatingController) AverageRating(c *gin.Context) {
	query := rc.DB.Model(&models.Rating{})
	if itemID := c.Query("item_id"); itemID != "" {
		query = query.Where("item_id = ?", itemID)
	}

	var result struct {
		Average float64
		Count   int64
	}
	err := query.Session(&gorm.Session{}).
		Select("COALESCE(AVG(value), 0) AS average, COUNT(id) AS count").
		Scan(&result).Error
	if err != nil {
		utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "rating lookup failed", err))
		return
	}

	type bucket struct {
		Value int
		Count int64
	}
	var buckets []bucket
	if err := query.Session(&gorm.Session{}).
		Select("value, COUNT(id) AS count").
		Group("value").
		Scan(&buckets).Error; err != nil {
		utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "rating lookup failed", err))
		return
	}

	distribution := map[string]int64{"1": 0, "2": 0, "3": 0, "4": 0, "5": 0}
	for _, b := range buckets {
		if b.Value >= 1 && b.Value <= 5 {
			distribution[strconv.Itoa(b.Value)] = b.Count
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Average rating", gin.H{
		"average_rating": result.Average,
		"total_ratings":  result.Count,
		"distribution":   distribution,
	})
}

// RecentRatings is the public review feed. Only ratings with review text
// are listed, and customer phone numbers are masked down to the last two
// digits.
func (rc *RatingController) RecentRatings(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	query := rc.DB.Preload("Customer").Preload("Item").
		Where("review_text IS NOT NULL AND review_text <> ''")
	if itemID := c.Query("item_id"); itemID != "" {
		query = query.Where("item_id = ?", itemID)
	}

	var ratings []models.Rating
	err = query.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&ratings).Error
	if err != nil {
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
			"customer_phone": maskPhone(r.Customer.Phone),
			"created_at":     r.CreatedAt,
		}
		if r.Item != nil {
			entry["item_name"] = r.Item.Name
			entry["item_image"] = r.Item.ImageURL
		}
		out = append(out, entry)
	}

	utils.RespondJSON(c, http.StatusOK, "Recent ratings", gin.H{"ratings": out})
}

func maskPhone(phone string) string {
	if len(phone) <= 2 {
		return phone
	}
	return strings.Repeat("*", len(phone)-2) + phone[len(phone)-2:]
}
