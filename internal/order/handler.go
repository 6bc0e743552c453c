package order

import (
	"errors"
	"time"

	"siparis-backend/internal/audit"
	"siparis-backend/internal/auth"
	"siparis-backend/internal/config"
	"siparis-backend/internal/database"
	"siparis-backend/internal/ledger"
	"siparis-backend/internal/models"
	"siparis-backend/internal/notify"

	"github.com/gofiber/fiber/v2"
)

type CreateOrderRequest struct {
	CustomerName  string                   `json:"customer_name"`
	CustomerPhone string                   `json:"customer_phone"`
	CustomerEmail string                   `json:"customer_email"`
	PickupTime    string                   `json:"pickup_time"` // "2025-12-09 12:30"
	Note          string                   `json:"note"`
	PaymentMethod string                   `json:"payment_method"` // "online" | "pickup"
	Lines         []CreateOrderLineRequest `json:"lines"`
}

type CreateOrderLineRequest struct {
	MenuItemID      *uint `json:"menu_item_id"`
	DailyPlanItemID *uint `json:"daily_plan_item_id"`
	Quantity        int   `json:"quantity"`
}

type OrderLineResponse struct {
	ID          uint    `json:"id"`
	ItemName    string  `json:"item_name"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity"`
	LineTotal   float64 `json:"line_total"`
	StockFailed bool    `json:"stock_failed"`
}

type OrderResponse struct {
	ID            uint                `json:"id"`
	OrderNo       string              `json:"order_no"`
	CustomerName  string              `json:"customer_name"`
	CustomerPhone string              `json:"customer_phone"`
	PickupTime    string              `json:"pickup_time"`
	Note          string              `json:"note"`
	PaymentMethod string              `json:"payment_method"`
	Subtotal      float64             `json:"subtotal"`
	Surcharge     float64             `json:"surcharge"`
	TotalAmount   float64             `json:"total_amount"`
	Status        string              `json:"status"`
	StockIssue    bool                `json:"stock_issue"`
	Lines         []OrderLineResponse `json:"lines"`
	CreatedAt     string              `json:"created_at"`
}

func toOrderResponse(o *models.Order) OrderResponse {
	lines := make([]OrderLineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, OrderLineResponse{
			ID:          l.ID,
			ItemName:    l.ItemName,
			UnitPrice:   l.UnitPrice,
			Quantity:    l.Quantity,
			LineTotal:   l.LineTotal,
			StockFailed: l.StockFailed,
		})
	}
	return OrderResponse{
		ID:            o.ID,
		OrderNo:       o.OrderNo,
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
		PickupTime:    o.PickupTime.Format("2006-01-02 15:04"),
		Note:          o.Note,
		PaymentMethod: string(o.PaymentMethod),
		Subtotal:      o.Subtotal,
		Surcharge:     o.Surcharge,
		TotalAmount:   o.TotalAmount,
		Status:        string(o.Status),
		StockIssue:    o.StockIssue,
		Lines:         lines,
		CreatedAt:     o.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// POST /api/orders (public - checkout)
func CreateOrderHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		pickupTime, err := time.Parse("2006-01-02 15:04", body.PickupTime)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Teslim saati 'YYYY-MM-DD HH:MM' formatında olmalı")
		}

		lines := make([]SubmitLine, 0, len(body.Lines))
		for _, l := range body.Lines {
			lines = append(lines, SubmitLine{
				MenuItemID:      l.MenuItemID,
				DailyPlanItemID: l.DailyPlanItemID,
				Quantity:        l.Quantity,
			})
		}

		result, err := Submit(database.DB, SubmitRequest{
			CustomerName:  body.CustomerName,
			CustomerPhone: body.CustomerPhone,
			CustomerEmail: body.CustomerEmail,
			PickupTime:    pickupTime,
			Note:          body.Note,
			PaymentMethod: models.PaymentMethod(body.PaymentMethod),
			OrderNoPrefix: cfg.OrderNoPrefix,
			Lines:         lines,
		})
		if err != nil {
			var unavailable *UnavailableError
			switch {
			case errors.As(err, &unavailable):
				return fiber.NewError(fiber.StatusConflict, unavailable.Error())
			case errors.Is(err, ledger.ErrItemNotFound):
				return fiber.NewError(fiber.StatusBadRequest, "Sipariş edilen ürünlerden biri menüde yok")
			case errors.Is(err, ErrMissingCustomer),
				errors.Is(err, ErrMissingPickupTime),
				errors.Is(err, ErrInvalidPayment),
				errors.Is(err, ErrLineWithoutItem),
				errors.Is(err, ErrInvalidOrder):
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			default:
				return fiber.NewError(fiber.StatusInternalServerError, "Sipariş alınamadı, lütfen tekrar deneyin")
			}
		}

		// Bildirim - ateşle-unut, sonucu sipariş yanıtını etkilemez
		go notify.OrderCreated(cfg.NotifyWebhookURL, result.Order)

		warnings := make([]string, 0, len(result.UnavailableItems))
		for _, name := range result.UnavailableItems {
			warnings = append(warnings, name+" siparişiniz alındıktan sonra tükendi, restoran sizinle iletişime geçecek")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"order_no":     result.Order.OrderNo,
			"total_amount": result.Order.TotalAmount,
			"stock_issue":  result.Order.StockIssue,
			"warnings":     warnings,
		})
	}
}

// GET /api/orders (personel)
func ListOrdersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := database.DB.Preload("Lines").Order("created_at DESC")

		if dateStr := c.Query("date"); dateStr != "" {
			d, err := time.Parse("2006-01-02", dateStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
			}
			query = query.Where("created_at >= ? AND created_at < ?", d, d.AddDate(0, 0, 1))
		}
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}

		var orders []models.Order
		if err := query.Find(&orders).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Siparişler listelenemedi")
		}

		resp := make([]OrderResponse, 0, len(orders))
		for i := range orders {
			resp = append(resp, toOrderResponse(&orders[i]))
		}
		return c.JSON(resp)
	}
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

var validStatuses = map[models.OrderStatus]bool{
	models.OrderStatusNew:       true,
	models.OrderStatusPreparing: true,
	models.OrderStatusReady:     true,
	models.OrderStatusDelivered: true,
	models.OrderStatusCancelled: true,
}

// PUT /api/orders/:id/status (personel)
func UpdateOrderStatusHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz sipariş ID")
		}

		var body UpdateOrderStatusRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		newStatus := models.OrderStatus(body.Status)
		if !validStatuses[newStatus] {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz sipariş durumu")
		}

		var o models.Order
		if err := database.DB.First(&o, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Sipariş bulunamadı")
		}

		oldStatus := o.Status
		if err := database.DB.Model(&o).Update("status", newStatus).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sipariş durumu güncellenemedi")
		}

		userID, userName, err := auth.CurrentUser(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "order",
				EntityID:    o.ID,
				Action:      models.AuditActionUpdate,
				Description: "Sipariş durumu: " + string(oldStatus) + " -> " + string(newStatus),
				Before:      fiber.Map{"status": oldStatus},
				After:       fiber.Map{"status": newStatus},
			})
		}

		o.Status = newStatus
		return c.JSON(toOrderResponse(&o))
	}
}
