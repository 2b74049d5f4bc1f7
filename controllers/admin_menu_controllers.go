package controllers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/servhunt/digimenu/apperrors"
	"github.com/servhunt/digimenu/models"
	"github.com/servhunt/digimenu/services"
	"github.com/servhunt/digimenu/utils"
)

const maxImageSize = 5 << 20

// AdminMenuController handles menu management: categories, items and item
// images on the CDN.
type AdminMenuController struct {
	DB  *gorm.DB
	CDN *services.BunnyCDNService
}

func NewAdminMenuController(db *gorm.DB, cdn *services.BunnyCDNService) *AdminMenuController {
	return &AdminMenuController{DB: db, CDN: cdn}
}

// ListItems returns every menu item, including unavailable ones, for the
// management screens.
func (amc *AdminMenuController) ListItems(c *gin.Context) {
	type itemRow struct {
		ItemID      uint    `json:"item_id"`
		ItemName    string  `json:"item_name"`
		CategoryID  uint    `json:"category_id"`
		Category    string  `json:"category_name"`
		Price       float64 `json:"price"`
		ImageURL    *string `json:"image_url"`
		Description *string `json:"description"`
		IsAvailable bool    `json:"is_available"`
	}

	items := make([]itemRow, 0)
	err := amc.DB.Model(&models.MenuItem{}).
		Select(`menu_items.id AS item_id,
			menu_items.name AS item_name,
			menu_items.category_id,
			menu_categories.name AS category,
			menu_items.price,
			menu_items.image_url,
			menu_items.description,
			menu_items.is_available`).
		Joins("LEFT JOIN menu_categories ON menu_categories.id = menu_items.category_id").
		Order("menu_categories.name ASC, menu_items.name ASC").
		Scan(&items).Error
	if err != nil {
		utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "item lookup failed", err))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Menu items", gin.H{"items": items})
}

// CreateCategory adds a menu category. Names are unique.
func (amc *AdminMenuController) CreateCategory(c *gin.Context) {
	var req struct {
		Name string `json:"category_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Category name required."))
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Category name required."))
		return
	}

	category := models.MenuCategory{Name: req.Name}
	if err := amc.DB.Create(&category).Error; err != nil {
		utils.RespondError(c, apperrors.FromDB(err, "Category already exists."))
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Category created successfully", category)
}

// UpdateCategory renames a category.
func (amc *AdminMenuController) UpdateCategory(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Invalid category id."))
		return
	}

	var req struct {
		Name string `json:"category_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Category name required."))
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Category name required."))
		return
	}

	var category models.MenuCategory
	if err := amc.DB.First(&category, id).Error; err != nil {
		utils.RespondError(c, apperrors.New(apperrors.NotFound, "Category not found."))
		return
	}

	if err := amc.DB.Model(&category).Update("name", req.Name).Error; err != nil {
		utils.RespondError(c, apperrors.FromDB(err, "Category already exists."))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Category updated successfully", category)
}

// DeleteCategory removes an empty category. Categories still holding items
// cannot be deleted.
func (amc *AdminMenuController) DeleteCategory(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Invalid category id."))
		return
	}

	var category models.MenuCategory
	if err := amc.DB.First(&category, id).Error; err != nil {
		utils.RespondError(c, apperrors.New(apperrors.NotFound, "Category not found."))
		return
	}

	var itemCount int64
	if err := amc.DB.Model(&models.MenuItem{}).Where("category_id = ?", id).Count(&itemCount).Error; err != nil {
		utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "category lookup failed", err))
		return
	}
	if itemCount > 0 {
		utils.RespondError(c, apperrors.New(apperrors.Conflict, "Category still has menu items. Move or delete them first."))
		return
	}

	if err := amc.DB.Delete(&category).Error; err != nil {
		utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "category delete failed", err))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Category deleted successfully", nil)
}

// CreateItem adds a menu item from a multipart form, uploading an optional
// image to the CDN first.
func (amc *AdminMenuController) CreateItem(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("item_name"))
	priceStr := c.PostForm("price")
	categoryStr := c.PostForm("category_id")
	description := strings.TrimSpace(c.PostForm("description"))

	if name == "" || priceStr == "" || categoryStr == "" {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Item name, price, and category required."))
		return
	}

	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil || price <= 0 {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Price must be a positive number."))
		return
	}
	categoryID, err := strconv.ParseUint(categoryStr, 10, 64)
	if err != nil {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Invalid category id."))
		return
	}

	var category models.MenuCategory
	if err := amc.DB.First(&category, categoryID).Error; err != nil {
		utils.RespondError(c, apperrors.New(apperrors.NotFound, "Category not found."))
		return
	}

	available := true
	if raw := c.PostForm("is_available"); raw != "" {
		parsed, ok := strictBool(raw, true)
		if !ok {
			utils.RespondError(c, apperrors.New(apperrors.Validation, "is_available must be true or false."))
			return
		}
		available = parsed
	}

	item := models.MenuItem{
		Name:        name,
		CategoryID:  uint(categoryID),
		Price:       price,
		IsAvailable: available,
	}
	if description != "" {
		item.Description = &description
	}

	if imageURL, err := amc.uploadImage(c); err != nil {
		utils.RespondError(c, err)
		return
	} else if imageURL != "" {
		item.ImageURL = &imageURL
	}

	if err := amc.DB.Create(&item).Error; err != nil {
		utils.RespondError(c, apperrors.FromDB(err, "Menu item already exists."))
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Menu item created successfully", item)
}

// UpdateItem patches a menu item. Only the form fields present are
// changed; a replacement image retires the old one from the CDN.
func (amc *AdminMenuController) UpdateItem(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Invalid item id."))
		return
	}

	var item models.MenuItem
	if err := amc.DB.First(&item, id).Error; err != nil {
		utils.RespondError(c, apperrors.New(apperrors.NotFound, "Menu item not found."))
		return
	}

	updates := map[string]interface{}{}

	if name := strings.TrimSpace(c.PostForm("item_name")); name != "" {
		updates["name"] = name
	}
	if priceStr := c.PostForm("price"); priceStr != "" {
		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil || price <= 0 {
			utils.RespondError(c, apperrors.New(apperrors.Validation, "Price must be a positive number."))
			return
		}
		updates["price"] = price
	}
	if categoryStr := c.PostForm("category_id"); categoryStr != "" {
		categoryID, err := strconv.ParseUint(categoryStr, 10, 64)
		if err != nil {
			utils.RespondError(c, apperrors.New(apperrors.Validation, "Invalid category id."))
			return
		}
		var category models.MenuCategory
		if err := amc.DB.First(&category, categoryID).Error; err != nil {
			utils.RespondError(c, apperrors.New(apperrors.NotFound, "Category not found."))
			return
		}
		updates["category_id"] = uint(categoryID)
	}
	if description, ok := c.GetPostForm("description"); ok {
		trimmed := strings.TrimSpace(description)
		if trimmed == "" {
			updates["description"] = nil
		} else {
			updates["description"] = trimmed
		}
	}
	if raw := c.PostForm("is_available"); raw != "" {
		parsed, ok := strictBool(raw, item.IsAvailable)
		if !ok {
			utils.RespondError(c, apperrors.New(apperrors.Validation, "is_available must be true or false."))
			return
		}
		updates["is_available"] = parsed
	}

	oldImage := ""
	if imageURL, err := amc.uploadImage(c); err != nil {
		utils.RespondError(c, err)
		return
	} else if imageURL != "" {
		if item.ImageURL != nil {
			oldImage = *item.ImageURL
		}
		updates["image_url"] = imageURL
	}

	if len(updates) == 0 {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "No fields to update."))
		return
	}

	if err := amc.DB.Model(&item).Updates(updates).Error; err != nil {
		utils.RespondError(c, apperrors.FromDB(err, "Menu item already exists."))
		return
	}

	if oldImage != "" {
		if err := amc.CDN.DeleteImage(oldImage); err != nil {
			utils.ErrorLogger.Printf("failed to delete replaced image %s: %v", oldImage, err)
		}
	}

	amc.DB.First(&item, id)
	utils.RespondJSON(c, http.StatusOK, "Menu item updated successfully", item)
}

// DeleteItem removes a menu item and its CDN image. Items referenced by any
// order line are kept for history and cannot be deleted; mark them
// unavailable instead.
func (amc *AdminMenuController) DeleteItem(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondError(c, apperrors.New(apperrors.Validation, "Invalid item id."))
		return
	}

	var item models.MenuItem
	if err := amc.DB.First(&item, id).Error; err != nil {
		utils.RespondError(c, apperrors.New(apperrors.NotFound, "Menu item not found."))
		return
	}

	var referenced int64
	if err := amc.DB.Model(&models.OrderItem{}).Where("item_id = ?", id).Count(&referenced).Error; err != nil {
		utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "item lookup failed", err))
		return
	}
	if referenced > 0 {
		utils.RespondError(c, apperrors.New(apperrors.Conflict, "Item appears in past orders. Mark it unavailable instead."))
		return
	}

	if err := amc.DB.Delete(&item).Error; err != nil {
		utils.RespondError(c, apperrors.Wrap(apperrors.Internal, "item delete failed", err))
		return
	}

	if item.ImageURL != nil {
		if err := amc.CDN.DeleteImage(*item.ImageURL); err != nil {
			utils.ErrorLogger.Printf("failed to delete image %s: %v", *item.ImageURL, err)
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Menu item deleted successfully", nil)
}

// uploadImage pushes the optional multipart "image" file to the CDN and
// returns its public URL, or "" when no file was sent.
func (amc *AdminMenuController) uploadImage(c *gin.Context) (string, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return "", nil
	}
	if file.Size > maxImageSize {
		return "", apperrors.New(apperrors.Validation, "Image must be 5MB or smaller.")
	}

	src, err := file.Open()
	if err != nil {
		return "", apperrors.Wrap(apperrors.Internal, "image read failed", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return "", apperrors.Wrap(apperrors.Internal, "image read failed", err)
	}

	return amc.CDN.UploadImage(data, file.Filename, "menu-items")
}
