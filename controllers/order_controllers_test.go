package controllers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servhunt/digimenu/models"
)

func TestCreateCashOrder(t *testing.T) {
	env := newTestEnv(t)
	_, cookie := env.loginCustomer(t, "9876543210")
	_, items := env.seedMenu(t)

	w := env.request(t, http.MethodPost, "/api/orders/create", map[string]interface{}{
		"table_number": "T-1",
		"items": []map[string]interface{}{
			{"item_id": items[0].ID, "quantity": 2, "price": 249.50},
			{"item_id": items[1].ID, "quantity": 1, "price": 199.00},
		},
	}, cookie)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var order models.Order
	require.NoError(t, env.DB.Preload("OrderItems").First(&order).Error)
	assert.Equal(t, "T-1", order.TableNumber)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.InDelta(t, 2*249.50+199.00, order.TotalAmount, 0.001)
	assert.Len(t, order.OrderItems, 2)
	require.NotNil(t, order.ActiveTableKey)
	assert.Equal(t, models.TableKeyFor("T-1", time.Now()), *order.ActiveTableKey)

	var payment models.Payment
	require.NoError(t, env.DB.Where("order_id = ?", order.ID).First(&payment).Error)
	assert.Equal(t, models.PaymentPending, payment.Status)
	assert.Equal(t, models.MethodCash, payment.Method)
	assert.InDelta(t, order.TotalAmount, payment.Amount, 0.001)
}

func TestCreateOrderFreezesCartPrices(t *testing.T) {
	env := newTestEnv(t)
	_, cookie := env.loginCustomer(t, "9876543210")
	_, items := env.seedMenu(t)

	// The cart price is authoritative even when the menu says otherwise.
	w := env.request(t, http.MethodPost, "/api/orders/create", map[string]interface{}{
		"table_number": "T-1",
		"items":        []map[string]interface{}{{"item_id": items[0].ID, "quantity": 2, "price": 10.00}},
	}, cookie)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var order models.Order
	require.NoError(t, env.DB.First(&order).Error)
	assert.InDelta(t, 20.00, order.TotalAmount, 0.001)

	require.NoError(t, env.DB.Model(&models.MenuItem{}).
		Where("id = ?", items[0].ID).
		Update("price", 999.99).Error)

	var line models.OrderItem
	require.NoError(t, env.DB.Where("item_id = ?", items[0].ID).First(&line).Error)
	assert.InDelta(t, 10.00, line.Price, 0.001)
}

func TestCreateOrderKeepsSeparateCartLines(t *testing.T) {
	env := newTestEnv(t)
	_, cookie := env.loginCustomer(t, "9876543210")
	_, items := env.seedMenu(t)

	// Two cart lines for the same item stay two order lines.
	w := env.request(t, http.MethodPost, "/api/orders/create", map[string]interface{}{
		"table_number": "T-1",
		"items": []map[string]interface{}{
			{"item_id": items[0].ID, "quantity": 1, "price": 249.50},
			{"item_id": items[0].ID, "quantity": 2, "price": 249.50},
		},
	}, cookie)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var lines []models.OrderItem
	require.NoError(t, env.DB.Find(&lines).Error)
	require.Len(t, lines, 2)

	var order models.Order
	require.NoError(t, env.DB.First(&order).Error)
	assert.InDelta(t, 3*249.50, order.TotalAmount, 0.001)
}

func TestCreateOrderRollsBackOnLineInsertFailure(t *testing.T) {
	env := newTestEnv(t)
	_, cookie := env.loginCustomer(t, "9876543210")
	_, items := env.seedMenu(t)

	// Breaking the line table after the menu lookup makes the second
	// insert of the transaction fail.
	require.NoError(t, env.DB.Migrator().DropTable(&models.OrderItem{}))

	w := env.request(t, http.MethodPost, "/api/orders/create", map[string]interface{}{
		"table_number": "T-1",
		"items": []map[string]interface{}{
			{"item_id": items[0].ID, "quantity": 1, "price": 249.50},
		},
	}, cookie)
	require.Equal(t, http.StatusInternalServerError, w.Code, w.Body.String())

	var orderCount, paymentCount int64
	require.NoError(t, env.DB.Model(&models.Order{}).Count(&orderCount).Error)
	require.NoError(t, env.DB.Model(&models.Payment{}).Count(&paymentCount).Error)
	assert.Zero(t, orderCount)
	assert.Zero(t, paymentCount)
}

func TestCreateOrderValidation(t *testing.T) {
	env := newTestEnv(t)
	_, cookie := env.loginCustomer(t, "9876543210")
	_, items := env.seedMenu(t)

	cases := []struct {
		name string
		body map[string]interface{}
		code int
	}{
		{"unknown table", map[string]interface{}{
			"table_number": "T-99",
			"items":        []map[string]interface{}{{"item_id": items[0].ID, "quantity": 1, "price": 249.50}},
		}, http.StatusBadRequest},
		{"no items", map[string]interface{}{
			"table_number": "T-1",
			"items":        []map[string]interface{}{},
		}, http.StatusBadRequest},
		{"zero quantity", map[string]interface{}{
			"table_number": "T-1",
			"items":        []map[string]interface{}{{"item_id": items[0].ID, "quantity": 0, "price": 249.50}},
		}, http.StatusBadRequest},
		{"missing price", map[string]interface{}{
			"table_number": "T-1",
			"items":        []map[string]interface{}{{"item_id": items[0].ID, "quantity": 1}},
		}, http.StatusBadRequest},
		{"negative price", map[string]interface{}{
			"table_number": "T-1",
			"items":        []map[string]interface{}{{"item_id": items[0].ID, "quantity": 1, "price": -5.00}},
		}, http.StatusBadRequest},
		{"unknown item", map[string]interface{}{
			"table_number": "T-1",
			"items":        []map[string]interface{}{{"item_id": 9999, "quantity": 1, "price": 100.00}},
		}, http.StatusNotFound},
		{"unavailable item", map[string]interface{}{
			"table_number": "T-1",
			"items":        []map[string]interface{}{{"item_id": items[2].ID, "quantity": 1, "price": 399.00}},
		}, http.StatusBadRequest},
	}

	for _, tc := range cases {
		w := env.request(t, http.MethodPost, "/api/orders/create", tc.body, cookie)
		assert.Equal(t, tc.code, w.Code, "%s: %s", tc.name, w.Body.String())
	}
}

func TestCreateOrderRequiresSession(t *testing.T) {
	env := newTestEnv(t)
	_, items := env.seedMenu(t)

	w := env.request(t, http.MethodPost, "/api/orders/create", map[string]interface{}{
		"table_number": "T-1",
		"items":        []map[string]interface{}{{"item_id": items[0].ID, "quantity": 1, "price": 249.50}},
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOccupiedTableRejectsSecondOrder(t *testing.T) {
	env := newTestEnv(t)
	_, firstCookie := env.loginCustomer(t, "9876543210")
	_, secondCookie := env.loginCustomer(t, "9123456789")
	_, items := env.seedMenu(t)

	w := env.request(t, http.MethodPost, "/api/orders/create", map[string]interface{}{
		"table_number": "T-1",
		"items":        []map[string]interface{}{{"item_id": items[0].ID, "quantity": 1, "price": 249.50}},
	}, firstCookie)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.request(t, http.MethodPost, "/api/orders/create", map[string]interface{}{
		"table_number": "T-1",
		"items":        []map[string]interface{}{{"item_id": items[1].ID, "quantity": 1, "price": 199.00}},
	}, secondCookie)
	assert.Equal(t, http.StatusConflict, w.Code)

	// A different table is still free.
	w = env.request(t, http.MethodPost, "/api/orders/create", map[string]interface{}{
		"table_number": "T-2",
		"items":        []map[string]interface{}{{"item_id": items[1].ID, "quantity": 1, "price": 199.00}},
	}, secondCookie)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCompletedOrderFreesTable(t *testing.T) {
	env := newTestEnv(t)
	customer, cookie := env.loginCustomer(t, "9876543210")
	_, items := env.seedMenu(t)
	_ = customer

	w := env.request(t, http.MethodPost, "/api/orders/create", map[string]interface{}{
		"table_number": "T-1",
		"items":        []map[string]interface{}{{"item_id": items[0].ID, "quantity": 1, "price": 249.50}},
	}, cookie)
	require.Equal(t, http.StatusCreated, w.Code)

	var order models.Order
	require.NoError(t, env.DB.First(&order).Error)
	require.NoError(t, env.DB.Model(&order).Updates(map[string]interface{}{
		"status":           models.OrderCompleted,
		"active_table_key": nil,
	}).Error)

	w = env.request(t, http.MethodPost, "/api/orders/create", map[string]interface{}{
		"table_number": "T-1",
		"items":        []map[string]interface{}{{"item_id": items[1].ID, "quantity": 1, "price": 199.00}},
	}, cookie)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestTableAvailability(t *testing.T) {
	env := newTestEnv(t)
	_, cookie := env.loginCustomer(t, "9876543210")
	_, items := env.seedMenu(t)

	w := env.request(t, http.MethodPost, "/api/orders/create", map[string]interface{}{
		"table_number": "T-2",
		"items":        []map[string]interface{}{{"item_id": items[0].ID, "quantity": 1, "price": 249.50}},
	}, cookie)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.request(t, http.MethodGet, "/api/orders/table-availability", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := parseBody(t, w)
	tables := body["data"].(map[string]interface{})["tables"].([]interface{})
	require.Len(t, tables, 3)

	byName := map[string]bool{}
	for _, raw := range tables {
		entry := raw.(map[string]interface{})
		byName[entry["table_number"].(string)] = entry["occupied"].(bool)
	}
	assert.False(t, byName["T-1"])
	assert.True(t, byName["T-2"])
	assert.False(t, byName["T-3"])
}

func TestCancelPendingOrder(t *testing.T) {
	env := newTestEnv(t)
	_, cookie := env.loginCustomer(t, "9876543210")
	_, items := env.seedMenu(t)

	w := env.request(t, http.MethodPost, "/api/orders/create", map[string]interface{}{
		"table_number": "T-1",
		"items":        []map[string]interface{}{{"item_id": items[0].ID, "quantity": 1, "price": 249.50}},
	}, cookie)
	require.Equal(t, http.StatusCreated, w.Code)

	var order models.Order
	require.NoError(t, env.DB.First(&order).Error)

	w = env.request(t, http.MethodDelete, "/api/orders/cancel/1", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Order, lines and payment are all gone.
	var orders, lines, payments int64
	require.NoError(t, env.DB.Model(&models.Order{}).Count(&orders).Error)
	require.NoError(t, env.DB.Model(&models.OrderItem{}).Count(&lines).Error)
	require.NoError(t, env.DB.Model(&models.Payment{}).Count(&payments).Error)
	assert.Zero(t, orders)
	assert.Zero(t, lines)
	assert.Zero(t, payments)

	// The table frees up immediately.
	w = env.request(t, http.MethodPost, "/api/orders/create", map[string]interface{}{
		"table_number": "T-1",
		"items":        []map[string]interface{}{{"item_id": items[1].ID, "quantity": 1, "price": 199.00}},
	}, cookie)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCancelRejectedForNonPending(t *testing.T) {
	env := newTestEnv(t)
	_, cookie := env.loginCustomer(t, "9876543210")
	_, items := env.seedMenu(t)

	w := env.request(t, http.MethodPost, "/api/orders/create", map[string]interface{}{
		"table_number": "T-1",
		"items":        []map[string]interface{}{{"item_id": items[0].ID, "quantity": 1, "price": 249.50}},
	}, cookie)
	require.Equal(t, http.StatusCreated, w.Code)

	require.NoError(t, env.DB.Model(&models.Order{}).Where("id = ?", 1).
		Update("status", models.OrderPreparing).Error)

	w = env.request(t, http.MethodDelete, "/api/orders/cancel/1", nil, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var orders int64
	require.NoError(t, env.DB.Model(&models.Order{}).Count(&orders).Error)
	assert.EqualValues(t, 1, orders)
}

func TestCancelRejectedWhenPaid(t *testing.T) {
	env := newTestEnv(t)
	_, cookie := env.loginCustomer(t, "9876543210")
	_, items := env.seedMenu(t)

	w := env.request(t, http.MethodPost, "/api/orders/create", map[string]interface{}{
		"table_number": "T-1",
		"items":        []map[string]interface{}{{"item_id": items[0].ID, "quantity": 1, "price": 249.50}},
	}, cookie)
	require.Equal(t, http.StatusCreated, w.Code)

	require.NoError(t, env.DB.Model(&models.Payment{}).Where("order_id = ?", 1).
		Update("status", models.PaymentCompleted).Error)

	w = env.request(t, http.MethodDelete, "/api/orders/cancel/1", nil, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCancelSomeoneElsesOrder(t *testing.T) {
	env := newTestEnv(t)
	_, ownerCookie := env.loginCustomer(t, "9876543210")
	_, otherCookie := env.loginCustomer(t, "9123456789")
	_, items := env.seedMenu(t)

	w := env.request(t, http.MethodPost, "/api/orders/create", map[string]interface{}{
		"table_number": "T-1",
		"items":        []map[string]interface{}{{"item_id": items[0].ID, "quantity": 1, "price": 249.50}},
	}, ownerCookie)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.request(t, http.MethodDelete, "/api/orders/cancel/1", nil, otherCookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateOrderAfterPayment(t *testing.T) {
	env := newTestEnv(t)
	_, cookie := env.loginCustomer(t, "9876543210")
	_, items := env.seedMenu(t)

	w := env.request(t, http.MethodPost, "/api/orders/create-after-payment", map[string]interface{}{
		"table_number":        "T-1",
		"items":               []map[string]interface{}{{"item_id": items[0].ID, "quantity": 1, "price": 249.50}},
		"razorpay_order_id":   "order_abc",
		"razorpay_payment_id": "pay_xyz",
		"razorpay_signature":  razorpaySign("order_abc", "pay_xyz"),
	}, cookie)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var payment models.Payment
	require.NoError(t, env.DB.First(&payment).Error)
	assert.Equal(t, models.PaymentCompleted, payment.Status)
	assert.Equal(t, models.MethodOnline, payment.Method)
	require.NotNil(t, payment.GatewayPaymentID)
	assert.Equal(t, "pay_xyz", *payment.GatewayPaymentID)

	var order models.Order
	require.NoError(t, env.DB.First(&order).Error)
	assert.Equal(t, models.OrderPending, order.Status, "payment never advances order status")
}

func TestCreateOrderAfterPaymentBadSignature(t *testing.T) {
	env := newTestEnv(t)
	_, cookie := env.loginCustomer(t, "9876543210")
	_, items := env.seedMenu(t)

	w := env.request(t, http.MethodPost, "/api/orders/create-after-payment", map[string]interface{}{
		"table_number":        "T-1",
		"items":               []map[string]interface{}{{"item_id": items[0].ID, "quantity": 1, "price": 249.50}},
		"razorpay_order_id":   "order_abc",
		"razorpay_payment_id": "pay_xyz",
		"razorpay_signature":  razorpaySign("order_abc", "pay_tampered"),
	}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	env.DB.Model(&models.Order{}).Count(&count)
	assert.Equal(t, int64(0), count, "nothing is written on a bad signature")
}

func TestVerifyPaymentForExistingOrder(t *testing.T) {
	env := newTestEnv(t)
	_, cookie := env.loginCustomer(t, "9876543210")
	_, items := env.seedMenu(t)

	w := env.request(t, http.MethodPost, "/api/orders/create", map[string]interface{}{
		"table_number": "T-1",
		"items":        []map[string]interface{}{{"item_id": items[0].ID, "quantity": 1, "price": 249.50}},
	}, cookie)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.request(t, http.MethodPost, "/api/payments/verify", map[string]interface{}{
		"order_id":            1,
		"razorpay_order_id":   "order_abc",
		"razorpay_payment_id": "pay_xyz",
		"razorpay_signature":  razorpaySign("order_abc", "pay_xyz"),
	}, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var payment models.Payment
	require.NoError(t, env.DB.Where("order_id = ?", 1).First(&payment).Error)
	assert.Equal(t, models.PaymentCompleted, payment.Status)
	assert.Equal(t, models.MethodOnline, payment.Method)

	var order models.Order
	require.NoError(t, env.DB.First(&order, 1).Error)
	assert.Equal(t, models.OrderPending, order.Status)

	// Paying twice is rejected.
	w = env.request(t, http.MethodPost, "/api/payments/verify", map[string]interface{}{
		"order_id":            1,
		"razorpay_order_id":   "order_abc",
		"razorpay_payment_id": "pay_xyz",
		"razorpay_signature":  razorpaySign("order_abc", "pay_xyz"),
	}, cookie)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestVerifyPaymentBadSignature(t *testing.T) {
	env := newTestEnv(t)
	_, cookie := env.loginCustomer(t, "9876543210")
	_, items := env.seedMenu(t)

	w := env.request(t, http.MethodPost, "/api/orders/create", map[string]interface{}{
		"table_number": "T-1",
		"items":        []map[string]interface{}{{"item_id": items[0].ID, "quantity": 1, "price": 249.50}},
	}, cookie)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.request(t, http.MethodPost, "/api/payments/verify", map[string]interface{}{
		"order_id":            1,
		"razorpay_order_id":   "order_abc",
		"razorpay_payment_id": "pay_xyz",
		"razorpay_signature":  "not-a-signature",
	}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var payment models.Payment
	require.NoError(t, env.DB.Where("order_id = ?", 1).First(&payment).Error)
	assert.Equal(t, models.PaymentPending, payment.Status)
}

func TestOrderingClosedWhenAcceptOff(t *testing.T) {
	env := newTestEnv(t)
	_, adminCookie := env.loginAdmin(t, "manager")
	_, cookie := env.loginCustomer(t, "9876543210")
	_, items := env.seedMenu(t)

	w := env.request(t, http.MethodPost, "/api/admin/toggle-order-accept", map[string]interface{}{
		"is_order_accept": false,
	}, adminCookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.request(t, http.MethodGet, "/api/admin/order-accept-status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := parseBody(t, w)
	assert.Equal(t, false, body["data"].(map[string]interface{})["is_order_accept"])

	w = env.request(t, http.MethodPost, "/api/orders/create", map[string]interface{}{
		"table_number": "T-1",
		"items":        []map[string]interface{}{{"item_id": items[0].ID, "quantity": 1, "price": 249.50}},
	}, cookie)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Switch back on.
	w = env.request(t, http.MethodPost, "/api/admin/toggle-order-accept", map[string]interface{}{
		"is_order_accept": true,
	}, adminCookie)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.request(t, http.MethodPost, "/api/orders/create", map[string]interface{}{
		"table_number": "T-1",
		"items":        []map[string]interface{}{{"item_id": items[0].ID, "quantity": 1, "price": 249.50}},
	}, cookie)
	assert.Equal(t, http.StatusCreated, w.Code)
}
