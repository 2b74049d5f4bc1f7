package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/servhunt/digimenu/config"
	"github.com/servhunt/digimenu/models"
	"github.com/servhunt/digimenu/router"
	"github.com/servhunt/digimenu/services"
	"github.com/servhunt/digimenu/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	utils.InitLogger()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		utils.ErrorLogger.Fatalf("Invalid configuration: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := cfg.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	autoMigrate(db)

	challenges := services.NewChallengeStore()
	defer challenges.Stop()

	deps := router.Deps{
		DB:         db,
		Config:     cfg,
		Challenges: challenges,
		SMS:        services.NewMessageCentralClient(cfg),
		Sessions:   services.NewSessionService(db),
		Razorpay:   services.NewRazorpayService(cfg),
		CDN:        services.NewBunnyCDNService(cfg),
	}

	r := router.SetupRouter(deps)

	utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.Customer{},
		&models.Admin{},
		&models.Session{},
		&models.MenuCategory{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.Rating{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
}
