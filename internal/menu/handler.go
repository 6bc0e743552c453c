package menu

import (
	"time"

	"siparis-backend/internal/audit"
	"siparis-backend/internal/auth"
	"siparis-backend/internal/database"
	"siparis-backend/internal/models"
	"siparis-backend/internal/plan"

	"github.com/gofiber/fiber/v2"
)

type MenuItemRequest struct {
	Name        string  `json:"name"`
	NameEn      string  `json:"name_en"`
	Price       float64 `json:"price"`
	IsAvailable *bool   `json:"is_available"`
	CategoryID  *uint   `json:"category_id"`
}

type MenuItemResponse struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	NameEn      string  `json:"name_en"`
	Price       float64 `json:"price"`
	IsAvailable bool    `json:"is_available"`
	CategoryID  *uint   `json:"category_id"`
}

func toMenuItemResponse(m *models.MenuItem) MenuItemResponse {
	return MenuItemResponse{
		ID:          m.ID,
		Name:        m.Name,
		NameEn:      m.NameEn,
		Price:       m.Price,
		IsAvailable: m.IsAvailable,
		CategoryID:  m.CategoryID,
	}
}

// GET /api/menu (public)
// Sabit menü: satışta olan ürünler, kategori sırasına göre gruplu.
func PublicMenuHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var categories []models.MenuCategory
		if err := database.DB.Order("sort_order ASC, name ASC").Find(&categories).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Menü listelenemedi")
		}

		var items []models.MenuItem
		if err := database.DB.Where("is_available = ?", true).Order("name ASC").Find(&items).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Menü listelenemedi")
		}

		type CategoryGroup struct {
			ID     uint               `json:"id"`
			Name   string             `json:"name"`
			NameEn string             `json:"name_en"`
			Items  []MenuItemResponse `json:"items"`
		}

		groups := make([]CategoryGroup, 0, len(categories))
		uncategorized := make([]MenuItemResponse, 0)

		byCategory := make(map[uint][]MenuItemResponse)
		for i := range items {
			item := &items[i]
			if item.CategoryID == nil {
				uncategorized = append(uncategorized, toMenuItemResponse(item))
				continue
			}
			byCategory[*item.CategoryID] = append(byCategory[*item.CategoryID], toMenuItemResponse(item))
		}

		for _, cat := range categories {
			groups = append(groups, CategoryGroup{
				ID:     cat.ID,
				Name:   cat.Name,
				NameEn: cat.NameEn,
				Items:  byCategory[cat.ID],
			})
		}

		return c.JSON(fiber.Map{
			"categories":    groups,
			"uncategorized": uncategorized,
		})
	}
}

// GET /api/menu/today (public)
// Günün menüsü: çorba, yemekler, kalan adetler. Plan yoksa hata DEĞİL boş
// liste döner - o gün özel yemek yok demektir.
func TodayMenuHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := plan.GetPlanForDate(database.DB, time.Now())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Günün menüsü okunamadı")
		}
		if p == nil {
			return c.JSON(fiber.Map{
				"date":   plan.DateOnly(time.Now()).Format("2006-01-02"),
				"soup":   nil,
				"dishes": []plan.PlanItemResponse{},
				"notes":  "",
			})
		}

		resp := plan.ToPlanResponse(p)

		var soup *MenuItemResponse
		if p.Soup != nil {
			s := toMenuItemResponse(p.Soup)
			soup = &s
		}

		return c.JSON(fiber.Map{
			"date":   resp.Date,
			"soup":   soup,
			"dishes": resp.Items,
			"notes":  resp.Notes,
		})
	}
}

// POST /api/admin/menu-items
func CreateMenuItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body MenuItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.Name == "" || body.Price < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "İsim zorunlu, fiyat negatif olamaz")
		}

		item := models.MenuItem{
			Name:        body.Name,
			NameEn:      body.NameEn,
			Price:       body.Price,
			IsAvailable: true,
			CategoryID:  body.CategoryID,
		}
		if body.IsAvailable != nil {
			item.IsAvailable = *body.IsAvailable
		}

		if err := database.DB.Create(&item).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün oluşturulamadı")
		}

		userID, userName, err := auth.CurrentUser(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "menu_item",
				EntityID:    item.ID,
				Action:      models.AuditActionCreate,
				Description: "Menü ürünü eklendi: " + item.Name,
				After:       item,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(toMenuItemResponse(&item))
	}
}

// PUT /api/admin/menu-items/:id
func UpdateMenuItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz ürün ID")
		}

		var item models.MenuItem
		if err := database.DB.First(&item, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		var body MenuItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.Name == "" || body.Price < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "İsim zorunlu, fiyat negatif olamaz")
		}

		before := item

		item.Name = body.Name
		item.NameEn = body.NameEn
		item.Price = body.Price
		item.CategoryID = body.CategoryID
		if body.IsAvailable != nil {
			item.IsAvailable = *body.IsAvailable
		}

		if err := database.DB.Save(&item).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün güncellenemedi")
		}

		userID, userName, err := auth.CurrentUser(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "menu_item",
				EntityID:    item.ID,
				Action:      models.AuditActionUpdate,
				Description: "Menü ürünü güncellendi: " + item.Name,
				Before:      before,
				After:       item,
			})
		}

		return c.JSON(toMenuItemResponse(&item))
	}
}

// DELETE /api/admin/menu-items/:id
func DeleteMenuItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz ürün ID")
		}

		var item models.MenuItem
		if err := database.DB.First(&item, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		// Günün menüsünde kullanılan ürün silinemez, önce plandan çıkarılmalı
		var planCount int64
		database.DB.Model(&models.DailyPlanItem{}).Where("menu_item_id = ?", item.ID).Count(&planCount)
		if planCount > 0 {
			return fiber.NewError(fiber.StatusConflict, "Ürün günlük planlarda kullanılıyor, önce planlardan çıkarın")
		}

		if err := database.DB.Delete(&item).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün silinemedi")
		}

		userID, userName, err := auth.CurrentUser(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "menu_item",
				EntityID:    item.ID,
				Action:      models.AuditActionDelete,
				Description: "Menü ürünü silindi: " + item.Name,
				Before:      item,
			})
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/menu-items (personel - satışta olmayanlar dahil tam liste)
func ListMenuItemsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var items []models.MenuItem
		if err := database.DB.Order("name ASC").Find(&items).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürünler listelenemedi")
		}

		resp := make([]MenuItemResponse, 0, len(items))
		for i := range items {
			resp = append(resp, toMenuItemResponse(&items[i]))
		}
		return c.JSON(resp)
	}
}

type CategoryRequest struct {
	Name      string `json:"name"`
	NameEn    string `json:"name_en"`
	SortOrder int    `json:"sort_order"`
}

// POST /api/admin/menu-categories
func CreateCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CategoryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Kategori adı zorunlu")
		}

		cat := models.MenuCategory{
			Name:      body.Name,
			NameEn:    body.NameEn,
			SortOrder: body.SortOrder,
		}
		if err := database.DB.Create(&cat).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kategori oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(cat)
	}
}

// GET /api/menu-categories
func ListCategoriesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var categories []models.MenuCategory
		if err := database.DB.Order("sort_order ASC, name ASC").Find(&categories).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kategoriler listelenemedi")
		}
		return c.JSON(categories)
	}
}
