package config

import (
	"fmt"
	"os"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Config carries every environment-driven setting. Secrets are required in
// production; development falls back to sandbox values so the server still
// boots locally.
type Config struct {
	Port          string
	Env           string // "development" or "production"
	AllowedOrigin string

	DBUser string
	DBPass string
	DBHost string
	DBPort string
	DBName string

	RazorpayKeyID     string
	RazorpayKeySecret string
	RazorpayBaseURL   string

	MessageCentralSendURL     string
	MessageCentralValidateURL string
	MessageCentralCountryCode string
	MessageCentralCustomerID  string
	MessageCentralAuthToken   string

	BunnyAccessKey   string
	BunnyStorageZone string
	BunnyCDNHostname string
	BunnyBaseURL     string

	// Tables is the set of table identifiers the availability endpoint
	// reports on.
	Tables []string
}

func Load() *Config {
	cfg := &Config{
		Port:          getenv("PORT", "8080"),
		Env:           getenv("APP_ENV", "development"),
		AllowedOrigin: getenv("ALLOWED_ORIGIN", "https://www.servhunt.in"),

		DBUser: getenv("DB_USER", "root"),
		DBPass: os.Getenv("DB_PASSWORD"),
		DBHost: getenv("DB_HOST", "127.0.0.1"),
		DBPort: getenv("DB_PORT", "3306"),
		DBName: getenv("DB_NAME", "digimenu"),

		RazorpayKeyID:     os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
		RazorpayBaseURL:   getenv("RAZORPAY_BASE_URL", "https://api.razorpay.com"),

		MessageCentralSendURL:     os.Getenv("MESSAGE_CENTRAL_SEND_OTP_URL"),
		MessageCentralValidateURL: os.Getenv("MESSAGE_CENTRAL_VALIDATE_OTP_URL"),
		MessageCentralCountryCode: getenv("MESSAGE_CENTRAL_COUNTRY_CODE", "91"),
		MessageCentralCustomerID:  os.Getenv("MESSAGE_CENTRAL_CUSTOMER_ID"),
		MessageCentralAuthToken:   os.Getenv("MESSAGE_CENTRAL_AUTH_TOKEN"),

		BunnyAccessKey:   os.Getenv("BUNNY_ACCESS_KEY"),
		BunnyStorageZone: os.Getenv("BUNNY_STORAGE_ZONE"),
		BunnyCDNHostname: os.Getenv("BUNNY_CDN_HOSTNAME"),
	}
	cfg.BunnyBaseURL = getenv("BUNNY_BASE_URL", "https://storage.bunnycdn.com")

	tables := getenv("RESTAURANT_TABLES", "T-1,T-2,T-3,T-4,T-5")
	for _, t := range strings.Split(tables, ",") {
		if t = strings.TrimSpace(t); t != "" {
			cfg.Tables = append(cfg.Tables, t)
		}
	}
	return cfg
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate enforces the settings that have no safe fallback in production.
func (c *Config) Validate() error {
	if !c.IsProduction() {
		return nil
	}
	required := map[string]string{
		"DB_PASSWORD":         c.DBPass,
		"RAZORPAY_KEY_ID":     c.RazorpayKeyID,
		"RAZORPAY_KEY_SECRET": c.RazorpayKeySecret,
	}
	for name, v := range required {
		if v == "" {
			return fmt.Errorf("%s must be set in production", name)
		}
	}
	return nil
}

// InitDB opens the MySQL connection described by the config.
func (c *Config) InitDB() (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName)
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
