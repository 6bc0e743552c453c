package plan

import (
	"errors"
	"time"

	"siparis-backend/internal/audit"
	"siparis-backend/internal/auth"
	"siparis-backend/internal/database"
	"siparis-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type SavePlanRequest struct {
	Date   string            `json:"date"` // "2025-12-09"
	SoupID *uint             `json:"soup_id"`
	Notes  string            `json:"notes"`
	Dishes []DishRequestItem `json:"dishes"`
}

type DishRequestItem struct {
	MenuItemID        uint `json:"menu_item_id"`
	QuantityAvailable *int `json:"quantity_available"` // null = sınırsız
}

type CopyPlanRequest struct {
	SourceDate string `json:"source_date"`
	TargetDate string `json:"target_date"`
}

type PlanItemResponse struct {
	ID                uint    `json:"id"`
	MenuItemID        uint    `json:"menu_item_id"`
	Name              string  `json:"name"`
	NameEn            string  `json:"name_en"`
	Price             float64 `json:"price"`
	QuantityAvailable *int    `json:"quantity_available"`
	SoldCount         int     `json:"sold_count"`
	Remaining         *int    `json:"remaining"` // null = sınırsız
	SoldOut           bool    `json:"sold_out"`
}

type PlanResponse struct {
	ID       uint               `json:"id"`
	Date     string             `json:"date"`
	SoupID   *uint              `json:"soup_id"`
	SoupName string             `json:"soup_name,omitempty"`
	Notes    string             `json:"notes"`
	Items    []PlanItemResponse `json:"items"`
}

// ToPlanResponse: Plan + türetilmiş alanlar (remaining, sold_out) tek yanıtta.
func ToPlanResponse(p *models.DailyPlan) PlanResponse {
	resp := PlanResponse{
		ID:     p.ID,
		Date:   p.Date.Format("2006-01-02"),
		SoupID: p.SoupID,
		Notes:  p.Notes,
		Items:  make([]PlanItemResponse, 0, len(p.Items)),
	}
	if p.Soup != nil {
		resp.SoupName = p.Soup.Name
	}
	for i := range p.Items {
		item := &p.Items[i]
		resp.Items = append(resp.Items, PlanItemResponse{
			ID:                item.ID,
			MenuItemID:        item.MenuItemID,
			Name:              item.MenuItem.Name,
			NameEn:            item.MenuItem.NameEn,
			Price:             item.MenuItem.Price,
			QuantityAvailable: item.QuantityAvailable,
			SoldCount:         item.SoldCount,
			Remaining:         item.Remaining(),
			SoldOut:           item.SoldOut,
		})
	}
	return resp
}

// PUT /api/admin/daily-plans
// Günün menüsünü kaydeder: plan upsert + yemek listesi komple değişim.
func SavePlanHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SavePlanRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		d, err := time.Parse("2006-01-02", body.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
		}

		for _, dish := range body.Dishes {
			if dish.MenuItemID == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "menu_item_id zorunlu")
			}
			if dish.QuantityAvailable != nil && *dish.QuantityAvailable < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "quantity_available negatif olamaz")
			}
		}

		p, err := UpsertPlan(database.DB, d, body.SoupID, body.Notes)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Plan kaydedilemedi")
		}

		selections := make([]DishSelection, 0, len(body.Dishes))
		for _, dish := range body.Dishes {
			selections = append(selections, DishSelection{
				MenuItemID:        dish.MenuItemID,
				QuantityAvailable: dish.QuantityAvailable,
			})
		}

		if err := ReplaceDishes(database.DB, p.ID, selections); err != nil {
			if errors.Is(err, ErrDuplicateDish) {
				return fiber.NewError(fiber.StatusBadRequest, ErrDuplicateDish.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Yemek listesi kaydedilemedi")
		}

		saved, err := GetPlanForDate(database.DB, d)
		if err != nil || saved == nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Plan okunamadı")
		}

		userID, userName, err := auth.CurrentUser(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "daily_plan",
				EntityID:    saved.ID,
				Action:      models.AuditActionUpdate,
				Description: "Günün menüsü kaydedildi: " + body.Date,
				After:       ToPlanResponse(saved),
			})
		}

		return c.JSON(ToPlanResponse(saved))
	}
}

// GET /api/admin/daily-plans/:date
// Plan yoksa hata değil null döner - plansız gün normal bir durumdur.
func GetPlanHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := time.Parse("2006-01-02", c.Params("date"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
		}

		p, err := GetPlanForDate(database.DB, d)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Plan okunamadı")
		}
		if p == nil {
			return c.JSON(fiber.Map{"plan": nil})
		}

		return c.JSON(fiber.Map{"plan": ToPlanResponse(p)})
	}
}

// POST /api/admin/daily-plans/copy
// Genelde "dünün menüsünü bugüne kopyala" için kullanılır; satış sayaçları
// sıfırlanmış olarak kopyalanır.
func CopyPlanHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CopyPlanRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		source, err := time.Parse("2006-01-02", body.SourceDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "source_date formatı 'YYYY-MM-DD' olmalı")
		}
		target, err := time.Parse("2006-01-02", body.TargetDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "target_date formatı 'YYYY-MM-DD' olmalı")
		}

		p, err := CopyPlan(database.DB, source, target)
		if err != nil {
			if errors.Is(err, ErrSourcePlanNotFound) {
				return fiber.NewError(fiber.StatusNotFound, ErrSourcePlanNotFound.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Plan kopyalanamadı")
		}

		userID, userName, err := auth.CurrentUser(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "daily_plan",
				EntityID:    p.ID,
				Action:      models.AuditActionCreate,
				Description: "Plan kopyalandı: " + body.SourceDate + " -> " + body.TargetDate,
				After:       ToPlanResponse(p),
			})
		}

		return c.Status(fiber.StatusCreated).JSON(ToPlanResponse(p))
	}
}
