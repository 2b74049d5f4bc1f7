package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/servhunt/digimenu/apperrors"
	"github.com/servhunt/digimenu/models"
	"github.com/servhunt/digimenu/services"
	"github.com/servhunt/digimenu/utils"
)

// PaymentController exposes the Razorpay checkout flow.
type PaymentController struct {
	DB       *gorm.DB
	Razorpay *services.RazorpayService
}

func NewPaymentController(db *gorm.DB, razorpay *services.RazorpayService) *PaymentController {
	return &PaymentController{DB: db, Razorpay: razorpay}
}

// RazorpayKey returns the publishable key id for the checkout widget.
func (pc *PaymentController) RazorpayKey(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Razorpay key", gin.H{"key_id": pc.Razorpay.KeyID()})
}

// CreateRazorpayOrder opens a gateway order for the cart amount before the
// order itself is placed.
func (pc *PaymentController) CreateRazorpayOrder(c *gin.Context) {
	customer := currentCustomer(c)
	if customer == nil {
		utils.RespondError(c, apperrors.New(apperrors.Unauthorized, "Authentication required"))
		return
	}

	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Amount <= 0 {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Amount is required"))
		return
	}

	receipt := fmt.Sprintf("cart_%s", uuid.NewString()[:18])
	gatewayOrder, err := pc.Razorpay.CreateOrder(req.Amount, receipt)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Razorpay order created", gin.H{
		"razorpay_order_id": gatewayOrder.ID,
		"amount":            gatewayOrder.Amount,
		"currency":          gatewayOrder.Currency,
		"key_id":            pc.Razorpay.KeyID(),
	})
}

// CreateOrderForExisting opens a gateway order to pay an already placed
// order online. The stored total is authoritative.
func (pc *PaymentController) CreateOrderForExisting(c *gin.Context) {
	customer := currentCustomer(c)
	if customer == nil {
		utils.RespondError(c, apperrors.New(apperrors.Unauthorized, "Authentication required"))
		return
	}

	var req struct {
		OrderID uint `json:"order_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.OrderID == 0 {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Order id required."))
		return
	}

	var order models.Order
	if err := pc.DB.Where("id = ? AND customer_id = ?", req.OrderID, customer.ID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, apperrors.New(apperrors.NotFound, "Order not found."))
			return
		}
		utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "order lookup failed", err))
		return
	}
	if order.Status == models.OrderCancelled {
		utils.RespondError(c, apperrors.New(apperrors.Conflict, "Cancelled orders cannot be paid."))
		return
	}

	var payment models.Payment
	if err := pc.DB.Where("order_id = ?", order.ID).First(&payment).Error; err == nil &&
		payment.Status == models.PaymentCompleted {
		utils.RespondError(c, apperrors.New(apperrors.Conflict, "Order is already paid."))
		return
	}

	gatewayOrder, err := pc.Razorpay.CreateOrder(order.TotalAmount, fmt.Sprintf("order_%d", order.ID))
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Razorpay order created", gin.H{
		"razorpay_order_id": gatewayOrder.ID,
		"amount":            gatewayOrder.Amount,
		"currency":          gatewayOrder.Currency,
		"key_id":            pc.Razorpay.KeyID(),
	})
}

// VerifyPayment checks the gateway signature for an existing order and
// records the payment as completed. The order's status is untouched; the
// kitchen flow advances it separately.
func (pc *PaymentController) VerifyPayment(c *gin.Context) {
	customer := currentCustomer(c)
	if customer == nil {
		utils.RespondError(c, apperrors.New(apperrors.Unauthorized, "Authentication required"))
		return
	}

	var req struct {
		OrderID           uint   `json:"order_id"`
		RazorpayOrderID   string `json:"razorpay_order_id"`
		RazorpayPaymentID string `json:"razorpay_payment_id"`
		RazorpaySignature string `json:"razorpay_signature"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Order id and payment details required."))
		return
	}
	if req.OrderID == 0 || req.RazorpayOrderID == "" || req.RazorpayPaymentID == "" || req.RazorpaySignature == "" {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Order id and payment details required."))
		return
	}

	if !pc.Razorpay.VerifySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Invalid payment signature"))
		return
	}

	var order models.Order
	if err := pc.DB.Where("id = ? AND customer_id = ?", req.OrderID, customer.ID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, apperrors.New(apperrors.NotFound, "Order not found."))
			return
		}
		utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "order lookup failed", err))
		return
	}

	err := pc.DB.Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		err := tx.Where("order_id = ?", order.ID).First(&payment).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			payment = models.Payment{
				OrderID: order.ID,
				Amount:  order.TotalAmount,
			}
		} else if err != nil {
			return err
		}

		if payment.Status == models.PaymentCompleted {
			return apperrors.New(apperrors.Conflict, "Order is already paid.")
		}

		payment.Status = models.PaymentCompleted
		payment.Method = models.MethodOnline
		payment.GatewayPaymentID = &req.RazorpayPaymentID
		return tx.Save(&payment).Error
	})
	if err != nil {
		if apperrors.KindOf(err) == apperrors.Internal {
			err = apperrors.Wrap(apperrors.Internal, "payment update failed", err)
		}
		utils.RespondError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Payment verified successfully", gin.H{
		"order_id":       order.ID,
		"payment_status": models.PaymentCompleted,
	})
}
