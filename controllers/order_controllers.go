package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/servhunt/digimenu/apperrors"
	"github.com/servhunt/digimenu/models"
	"github.com/servhunt/digimenu/services"
	"github.com/servhunt/digimenu/utils"
)

// OrderController handles order placement, table availability and
// cancellation.
type OrderController struct {
	DB       *gorm.DB
	Razorpay *services.RazorpayService
	Tables   []string
}

func NewOrderController(db *gorm.DB, razorpay *services.RazorpayService, tables []string) *OrderController {
	return &OrderController{DB: db, Razorpay: razorpay, Tables: tables}
}

type orderItemRequest struct {
	ItemID   uint    `json:"item_id"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type createOrderRequest struct {
	TableNumber string             `json:"table_number"`
	Items       []orderItemRequest `json:"items"`
}

// CreateOrder places a cash order. Payment starts pending and is settled
// at the counter.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	customer := currentCustomer(c)
	if customer == nil {
		utils.RespondError(c, apperrors.New(apperrors.Unauthorized, "Authentication required"))
		return
	}

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Table number and items required."))
		return
	}

	order, err := oc.placeOrder(customer, req, nil)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Order placed successfully", gin.H{
		"order_id":     order.ID,
		"table_number": order.TableNumber,
		"total_amount": order.TotalAmount,
		"status":       order.Status,
	})
}

// CreateOrderAfterPayment places an order backed by a verified online
// payment. The gateway signature must check out before anything is written.
func (oc *OrderController) CreateOrderAfterPayment(c *gin.Context) {
	customer := currentCustomer(c)
	if customer == nil {
		utils.RespondError(c, apperrors.New(apperrors.Unauthorized, "Authentication required"))
		return
	}

	var req struct {
		createOrderRequest
		RazorpayOrderID   string `json:"razorpay_order_id"`
		RazorpayPaymentID string `json:"razorpay_payment_id"`
		RazorpaySignature string `json:"razorpay_signature"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Table number, items, and payment details required."))
		return
	}
	if req.RazorpayOrderID == "" || req.RazorpayPaymentID == "" || req.RazorpaySignature == "" {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Payment details required."))
		return
	}

	if !oc.Razorpay.VerifySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Invalid payment signature. Payment verification failed."))
		return
	}

	order, err := oc.placeOrder(customer, req.createOrderRequest, &req.RazorpayPaymentID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Order placed successfully", gin.H{
		"order_id":     order.ID,
		"table_number": order.TableNumber,
		"total_amount": order.TotalAmount,
		"status":       order.Status,
	})
}

// placeOrder validates the request, freezes the cart prices, and writes the
// order, its items and its payment row in one transaction. gatewayPaymentID
// nil means a cash order with a pending payment; non-nil means a completed
// online payment.
func (oc *OrderController) placeOrder(customer *models.Customer, req createOrderRequest, gatewayPaymentID *string) (*models.Order, error) {
	accepting, err := oc.orderAcceptEnabled()
	if err != nil {
		return nil, err
	}
	if !accepting {
		return nil, apperrors.New(apperrors.Forbidden, "We are not accepting orders right now. Please try again later.")
	}

	table := strings.TrimSpace(req.TableNumber)
	if !oc.knownTable(table) {
		return nil, apperrors.New(apperrors.Validation, "Invalid table number.")
	}
	if len(req.Items) == 0 {
		return nil, apperrors.New(apperrors.Validation, "Order must contain at least one item.")
	}

	seen := make(map[uint]bool, len(req.Items))
	ids := make([]uint, 0, len(req.Items))
	for _, line := range req.Items {
		if line.ItemID == 0 || line.Quantity < 1 || line.Price <= 0 {
			return nil, apperrors.New(apperrors.Validation, "Each item needs a valid item_id, quantity of at least 1, and a price.")
		}
		if !seen[line.ItemID] {
			seen[line.ItemID] = true
			ids = append(ids, line.ItemID)
		}
	}

	var menuItems []models.MenuItem
	if err := oc.DB.Where("id IN ?", ids).Find(&menuItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "menu lookup failed", err)
	}
	if len(menuItems) != len(ids) {
		return nil, apperrors.New(apperrors.NotFound, "One or more items not found.")
	}
	for _, mi := range menuItems {
		if !mi.IsAvailable {
			return nil, apperrors.Newf(apperrors.Validation, "%s is currently unavailable.", mi.Name)
		}
	}

	now := time.Now()
	occupied, err := oc.tableOccupied(table, now)
	if err != nil {
		return nil, err
	}
	if occupied {
		return nil, apperrors.New(apperrors.Conflict, "Table is currently occupied. Please choose another table.")
	}

	// The cart price is the contract price. It is frozen into the line
	// and the total, not re-derived from the live menu.
	var total float64
	orderItems := make([]models.OrderItem, 0, len(req.Items))
	for _, line := range req.Items {
		total += line.Price * float64(line.Quantity)
		orderItems = append(orderItems, models.OrderItem{
			ItemID:   line.ItemID,
			Quantity: line.Quantity,
			Price:    line.Price,
		})
	}

	tableKey := models.TableKeyFor(table, now)
	order := &models.Order{
		CustomerID:     customer.ID,
		TableNumber:    table,
		TotalAmount:    total,
		Status:         models.OrderPending,
		ActiveTableKey: &tableKey,
	}

	payment := models.Payment{
		Amount: total,
		Status: models.PaymentPending,
		Method: models.MethodCash,
	}
	if gatewayPaymentID != nil {
		payment.Status = models.PaymentCompleted
		payment.Method = models.MethodOnline
		payment.GatewayPaymentID = gatewayPaymentID
	}

	err = oc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		for i := range orderItems {
			orderItems[i].OrderID = order.ID
		}
		if err := tx.Create(&orderItems).Error; err != nil {
			return err
		}
		payment.OrderID = order.ID
		return tx.Create(&payment).Error
	})
	if err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.New(apperrors.Conflict, "Table is currently occupied. Please choose another table.")
		}
		return nil, apperrors.Wrap(apperrors.Internal, "order creation failed", err)
	}

	order.OrderItems = orderItems
	return order, nil
}

// TableAvailability lists every table with its occupancy for today.
func (oc *OrderController) TableAvailability(c *gin.Context) {
	now := time.Now()

	var activeOrders []models.Order
	err := oc.DB.
		Where("status IN ? AND created_at >= ? AND created_at < ?",
			models.ActiveStatuses(), startOfDay(now), startOfDay(now).Add(24*time.Hour)).
		Find(&activeOrders).Error
	if err != nil {
		utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "table lookup failed", err))
		return
	}

	occupied := make(map[string]bool, len(activeOrders))
	for _, o := range activeOrders {
		occupied[o.TableNumber] = true
	}

	tables := make([]gin.H, 0, len(oc.Tables))
	for _, t := range oc.Tables {
		tables = append(tables, gin.H{
			"table_number": t,
			"occupied":     occupied[t],
		})
	}

	utils.RespondJSON(c, http.StatusOK, "Table availability", gin.H{"tables": tables})
}

// CancelOrder removes the caller's own order while it is still pending and
// unpaid. The order, its lines and its payment row are deleted together,
// which frees the table immediately.
func (oc *OrderController) CancelOrder(c *gin.Context) {
	customer := currentCustomer(c)
	if customer == nil {
		utils.RespondError(c, apperrors.New(apperrors.Unauthorized, "Authentication required"))
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Invalid order id."))
		return
	}

	err = oc.DB.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Where("id = ? AND customer_id = ?", orderID, customer.ID).
			First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.NotFound, "Order not found.")
			}
			return apperrors.Wrap(apperrors.Internal, "order lookup failed", err)
		}

		if order.Status != models.OrderPending {
			return apperrors.New(apperrors.Validation, "Cannot cancel order. Order is already being processed.")
		}

		var completedPayments int64
		if err := tx.Model(&models.Payment{}).
			Where("order_id = ? AND status = ?", order.ID, models.PaymentCompleted).
			Count(&completedPayments).Error; err != nil {
			return apperrors.Wrap(apperrors.Internal, "payment lookup failed", err)
		}
		if completedPayments > 0 {
			return apperrors.New(apperrors.Validation, "Cannot cancel order. Payment has already been completed.")
		}

		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return apperrors.Wrap(apperrors.Internal, "order item delete failed", err)
		}
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.Payment{}).Error; err != nil {
			return apperrors.Wrap(apperrors.Internal, "payment delete failed", err)
		}
		if err := tx.Delete(&order).Error; err != nil {
			return apperrors.Wrap(apperrors.Internal, "order delete failed", err)
		}
		return nil
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order cancelled successfully", nil)
}

// tableOccupied reports whether the table has an active order today.
func (oc *OrderController) tableOccupied(table string, now time.Time) (bool, error) {
	dayStart := startOfDay(now)
	var count int64
	err := oc.DB.Model(&models.Order{}).
		Where("table_number = ? AND status IN ? AND created_at >= ? AND created_at < ?",
			table, models.ActiveStatuses(), dayStart, dayStart.Add(24*time.Hour)).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Wrap(apperrors.Internal, "table lookup failed", err)
	}
	return count > 0, nil
}

// orderAcceptEnabled reports the restaurant-wide order acceptance switch.
// Ordering stays open until an admin turns it off.
func (oc *OrderController) orderAcceptEnabled() (bool, error) {
	var disabled int64
	err := oc.DB.Model(&models.Admin{}).Where("is_order_accept = ?", false).Count(&disabled).Error
	if err != nil {
		return false, apperrors.Wrap(apperrors.Internal, "settings lookup failed", err)
	}
	return disabled == 0, nil
}

func (oc *OrderController) knownTable(table string) bool {
	for _, t := range oc.Tables {
		if t == table {
			return true
		}
	}
	return false
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
