package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/servhunt/digimenu/apperrors"
	"github.com/servhunt/digimenu/models"
	"github.com/servhunt/digimenu/utils"
)

// MenuController serves the public menu.
type MenuController struct {
	DB *gorm.DB
}

func NewMenuController(db *gorm.DB) *MenuController {
	return &MenuController{DB: db}
}

// GetCategories lists every menu category.
func (mc *MenuController) GetCategories(c *gin.Context) {
	categories := make([]models.MenuCategory, 0)
	if err := mc.DB.Order("name ASC").Find(&categories).Error; err != nil {
		utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "category lookup failed", err))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Categories", gin.H{"categories": categories})
}

type menuItemView struct {
	ItemID      uint    `json:"item_id"`
	ItemName    string  `json:"item_name"`
	CategoryID  uint    `json:"category_id"`
	Category    string  `json:"category_name"`
	Price       float64 `json:"price"`
	ImageURL    *string `json:"image_url"`
	Description *string `json:"description"`
	IsAvailable bool    `json:"is_available"`
	AvgRating   float64 `json:"avg_rating"`
	RatingCount int64   `json:"rating_count"`
}

// GetItems lists available menu items with their average rating. An
// optional category_id query narrows the result.
func (mc *MenuController) GetItems(c *gin.Context) {
	query := mc.DB.Model(&models.MenuItem{}).
		Where("menu_items.is_available = ?", true).
		Select(`menu_items.id AS item_id,
			menu_items.name AS item_name,
			menu_items.category_id,
			menu_categories.name AS category,
			menu_items.price,
			menu_items.image_url,
			menu_items.description,
			menu_items.is_available,
			COALESCE(AVG(ratings.value), 0) AS avg_rating,
			COUNT(ratings.id) AS rating_count`).
		Joins("JOIN menu_categories ON menu_categories.id = menu_items.category_id").
		Joins("LEFT JOIN ratings ON ratings.item_id = menu_items.id").
		Group("menu_items.id, menu_items.name, menu_items.category_id, menu_categories.name, menu_items.price, menu_items.image_url, menu_items.description, menu_items.is_available").
		Order("menu_categories.name ASC, menu_items.name ASC")

	if categoryID := c.Query("category_id"); categoryID != "" {
		query = query.Where("menu_items.category_id = ?", categoryID)
	}

	items := make([]menuItemView, 0)
	if err := query.Scan(&items).Error; err != nil {
		utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "menu lookup failed", err))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Menu items", gin.H{"items": items})
}
