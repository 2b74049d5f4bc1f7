package controllers_test

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/servhunt/digimenu/config"
	"github.com/servhunt/digimenu/models"
	"github.com/servhunt/digimenu/router"
	"github.com/servhunt/digimenu/services"
	"github.com/servhunt/digimenu/utils"
)

const testRazorpaySecret = "test_secret"

func init() {
	gin.SetMode(gin.TestMode)
	utils.InitLogger()
}

// fakeOTP is an in-memory stand-in for the SMS provider. The issued code is
// always "123456".
type fakeOTP struct {
	sendErr   error
	sendCalls int
}

func (f *fakeOTP) SendOTP(phone string) (string, error) {
	f.sendCalls++
	if f.sendErr != nil {
		return "", f.sendErr
	}
	return "ver_" + phone, nil
}

func (f *fakeOTP) VerifyOTP(phone, code, verificationID string) (bool, error) {
	return code == "123456" && verificationID == "ver_"+phone, nil
}

type testEnv struct {
	DB         *gorm.DB
	Engine     *gin.Engine
	SMS        *fakeOTP
	Sessions   *services.SessionService
	Challenges *services.ChallengeStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:ctrl_%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Customer{},
		&models.Admin{},
		&models.Session{},
		&models.MenuCategory{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.Rating{},
	))

	cfg := &config.Config{
		Env:               "test",
		AllowedOrigin:     "http://localhost:3000",
		RazorpayKeyID:     "rzp_test_key",
		RazorpayKeySecret: testRazorpaySecret,
		Tables:            []string{"T-1", "T-2", "T-3"},
	}

	challenges := services.NewChallengeStore()
	t.Cleanup(challenges.Stop)

	sms := &fakeOTP{}
	sessions := services.NewSessionService(db)

	engine := router.SetupRouter(router.Deps{
		DB:         db,
		Config:     cfg,
		Challenges: challenges,
		SMS:        sms,
		Sessions:   sessions,
		Razorpay:   services.NewRazorpayService(cfg),
		CDN:        services.NewBunnyCDNService(cfg),
	})

	return &testEnv{DB: db, Engine: engine, SMS: sms, Sessions: sessions, Challenges: challenges}
}

func (e *testEnv) request(t *testing.T, method, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "digimenu-test")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	e.Engine.ServeHTTP(w, req)
	return w
}

func (e *testEnv) formRequest(t *testing.T, method, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "digimenu-test")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	e.Engine.ServeHTTP(w, req)
	return w
}

func parseBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func sessionCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name && c.Value != "" {
			return c
		}
	}
	return nil
}

// loginCustomer creates a customer row and a live session cookie directly.
func (e *testEnv) loginCustomer(t *testing.T, phone string) (models.Customer, *http.Cookie) {
	t.Helper()
	customer := models.Customer{Name: "Test Customer", Phone: phone}
	require.NoError(t, e.DB.Create(&customer).Error)

	session, err := e.Sessions.CreateCustomerSession(customer.ID, services.RequestMeta{UserAgent: "digimenu-test"})
	require.NoError(t, err)

	return customer, &http.Cookie{Name: "sessionId", Value: session.Token}
}

// loginAdmin creates an admin row and a live admin session cookie directly.
func (e *testEnv) loginAdmin(t *testing.T, username string) (models.Admin, *http.Cookie) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	admin := models.Admin{Username: username, Password: string(hash), IsOrderAccept: true}
	require.NoError(t, e.DB.Create(&admin).Error)

	session, err := e.Sessions.CreateAdminSession(admin.ID, services.RequestMeta{UserAgent: "digimenu-test"})
	require.NoError(t, err)

	return admin, &http.Cookie{Name: "adminSessionId", Value: session.Token}
}

func (e *testEnv) seedMenu(t *testing.T) (models.MenuCategory, []models.MenuItem) {
	t.Helper()
	category := models.MenuCategory{Name: "Mains"}
	require.NoError(t, e.DB.Create(&category).Error)

	items := []models.MenuItem{
		{Name: "Paneer Tikka", CategoryID: category.ID, Price: 249.50, IsAvailable: true},
		{Name: "Veg Biryani", CategoryID: category.ID, Price: 199.00, IsAvailable: true},
		{Name: "Seasonal Special", CategoryID: category.ID, Price: 399.00, IsAvailable: false},
	}
	require.NoError(t, e.DB.Create(&items).Error)
	return category, items
}

func razorpaySign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(testRazorpaySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
