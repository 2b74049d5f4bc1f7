package controllers_test

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servhunt/digimenu/models"
)

func TestPublicMenu(t *testing.T) {
	env := newTestEnv(t)
	category, items := env.seedMenu(t)

	w := env.request(t, http.MethodGet, "/api/menu/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	categories := parseBody(t, w)["data"].(map[string]interface{})["categories"].([]interface{})
	require.Len(t, categories, 1)
	assert.Equal(t, "Mains", categories[0].(map[string]interface{})["category_name"])

	available := 0
	for _, item := range items {
		if item.IsAvailable {
			available++
		}
	}

	// Unavailable items are hidden from the public menu.
	w = env.request(t, http.MethodGet, "/api/menu/items", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := parseBody(t, w)["data"].(map[string]interface{})["items"].([]interface{})
	require.Len(t, list, available)

	w = env.request(t, http.MethodGet, fmt.Sprintf("/api/menu/items?category_id=%d", category.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	list = parseBody(t, w)["data"].(map[string]interface{})["items"].([]interface{})
	assert.Len(t, list, available)

	w = env.request(t, http.MethodGet, "/api/menu/items?category_id=9999", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list = parseBody(t, w)["data"].(map[string]interface{})["items"].([]interface{})
	assert.Len(t, list, 0)
}

func TestGlobalRateLimitBacksOffHotClients(t *testing.T) {
	env := newTestEnv(t)

	// The per-IP bucket holds 50 requests and refills at 50 per second,
	// so a tight loop runs out well before 80 attempts.
	limited := false
	for i := 0; i < 80; i++ {
		w := env.request(t, http.MethodGet, "/api/menu/categories", nil)
		if w.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
		require.Equal(t, http.StatusOK, w.Code)
	}
	assert.True(t, limited, "hot client was never throttled")
}

func TestAdminItemListingIncludesUnavailable(t *testing.T) {
	env := newTestEnv(t)
	_, adminCookie := env.loginAdmin(t, "manager")
	_, items := env.seedMenu(t)

	w := env.request(t, http.MethodGet, "/api/admin/items", nil, adminCookie)
	require.Equal(t, http.StatusOK, w.Code)
	list := parseBody(t, w)["data"].(map[string]interface{})["items"].([]interface{})
	require.Len(t, list, len(items))

	unavailable := 0
	for _, raw := range list {
		if raw.(map[string]interface{})["is_available"] == false {
			unavailable++
		}
	}
	assert.Equal(t, 1, unavailable)
}

func TestCreateItemKeepsUnavailableFlag(t *testing.T) {
	env := newTestEnv(t)
	_, adminCookie := env.loginAdmin(t, "manager")
	category, _ := env.seedMenu(t)

	w := env.formRequest(t, http.MethodPost, "/api/admin/items", url.Values{
		"item_name":    {"Mango Lassi"},
		"price":        {"89.00"},
		"category_id":  {fmt.Sprint(category.ID)},
		"is_available": {"false"},
	}, adminCookie)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var item models.MenuItem
	require.NoError(t, env.DB.Where("name = ?", "Mango Lassi").First(&item).Error)
	assert.False(t, item.IsAvailable)

	// The new item stays off the public menu until switched on.
	w = env.request(t, http.MethodGet, "/api/menu/items", nil)
	require.Equal(t, http.StatusOK, w.Code)
	for _, raw := range parseBody(t, w)["data"].(map[string]interface{})["items"].([]interface{}) {
		assert.NotEqual(t, "Mango Lassi", raw.(map[string]interface{})["item_name"])
	}
}

func TestMenuItemsIncludeAverageRating(t *testing.T) {
	env := newTestEnv(t)
	customer, cookie := env.loginCustomer(t, "9876543210")
	_, items := env.seedMenu(t)
	seedCompletedOrder(t, env, customer, items[0])

	w := env.request(t, http.MethodPost, "/api/ratings/submit-item", map[string]interface{}{
		"item_id":      items[0].ID,
		"rating_value": 4,
	}, cookie)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.request(t, http.MethodGet, "/api/menu/items", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := parseBody(t, w)["data"].(map[string]interface{})["items"].([]interface{})

	for _, raw := range list {
		entry := raw.(map[string]interface{})
		if uint(entry["item_id"].(float64)) == items[0].ID {
			assert.Equal(t, 4.0, entry["avg_rating"])
			assert.Equal(t, 1.0, entry["rating_count"])
			return
		}
	}
	t.Fatalf("rated item missing from menu response")
}

func TestAdminCategoryCRUD(t *testing.T) {
	env := newTestEnv(t)
	_, adminCookie := env.loginAdmin(t, "manager")

	w := env.request(t, http.MethodPost, "/api/admin/categories",
		map[string]interface{}{"category_name": "Starters"}, adminCookie)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	categoryID := uint(parseBody(t, w)["data"].(map[string]interface{})["category_id"].(float64))

	// Duplicate name conflicts.
	w = env.request(t, http.MethodPost, "/api/admin/categories",
		map[string]interface{}{"category_name": "Starters"}, adminCookie)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.request(t, http.MethodPut, fmt.Sprintf("/api/admin/categories/%d", categoryID),
		map[string]interface{}{"category_name": "Appetizers"}, adminCookie)
	require.Equal(t, http.StatusOK, w.Code)

	var category models.MenuCategory
	require.NoError(t, env.DB.First(&category, categoryID).Error)
	assert.Equal(t, "Appetizers", category.Name)

	w = env.request(t, http.MethodDelete, fmt.Sprintf("/api/admin/categories/%d", categoryID), nil, adminCookie)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAdminDeleteCategoryWithItems(t *testing.T) {
	env := newTestEnv(t)
	_, adminCookie := env.loginAdmin(t, "manager")
	category, _ := env.seedMenu(t)

	w := env.request(t, http.MethodDelete, fmt.Sprintf("/api/admin/categories/%d", category.ID), nil, adminCookie)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAdminDeleteItemReferencedByOrder(t *testing.T) {
	env := newTestEnv(t)
	_, adminCookie := env.loginAdmin(t, "manager")
	customer, _ := env.loginCustomer(t, "9876543210")
	_, items := env.seedMenu(t)
	seedCompletedOrder(t, env, customer, items[0])

	w := env.request(t, http.MethodDelete, fmt.Sprintf("/api/admin/items/%d", items[0].ID), nil, adminCookie)
	assert.Equal(t, http.StatusConflict, w.Code)

	// An unreferenced item deletes cleanly.
	w = env.request(t, http.MethodDelete, fmt.Sprintf("/api/admin/items/%d", items[1].ID), nil, adminCookie)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestProfileAndOrderHistory(t *testing.T) {
	env := newTestEnv(t)
	customer, cookie := env.loginCustomer(t, "9876543210")
	_, items := env.seedMenu(t)
	seedCompletedOrder(t, env, customer, items[0])

	w := env.request(t, http.MethodGet, "/api/profile", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	data := parseBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "9876543210", data["phone"])
	assert.Nil(t, data["dob"])
	assert.Equal(t, 1.0, data["total_orders"])
	assert.InDelta(t, 249.50, data["total_spent"].(float64), 0.001)

	w = env.request(t, http.MethodGet, "/api/orders", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	orders := parseBody(t, w)["data"].(map[string]interface{})["orders"].([]interface{})
	require.Len(t, orders, 1)
	entry := orders[0].(map[string]interface{})
	assert.Equal(t, "completed", entry["status"])
	assert.Len(t, entry["items"].([]interface{}), 1)
}

func TestUpdateDOB(t *testing.T) {
	env := newTestEnv(t)
	_, cookie := env.loginCustomer(t, "9876543210")

	w := env.request(t, http.MethodPost, "/api/profile/dob",
		map[string]interface{}{"dob": "1995-06-15"}, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.request(t, http.MethodGet, "/api/profile", nil, cookie)
	data := parseBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "1995-06-15", data["dob"])
}

func TestUpdateDOBAgeBounds(t *testing.T) {
	env := newTestEnv(t)
	_, cookie := env.loginCustomer(t, "9876543210")

	for _, dob := range []string{"2020-01-01", "1880-01-01", "not-a-date", ""} {
		w := env.request(t, http.MethodPost, "/api/profile/dob",
			map[string]interface{}{"dob": dob}, cookie)
		assert.Equal(t, http.StatusBadRequest, w.Code, "dob %q", dob)
	}
}
