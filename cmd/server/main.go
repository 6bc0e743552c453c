package main

import (
	"log"
	"strings"

	"siparis-backend/internal/audit"
	"siparis-backend/internal/auth"
	"siparis-backend/internal/config"
	"siparis-backend/internal/database"
	"siparis-backend/internal/menu"
	"siparis-backend/internal/models"
	"siparis-backend/internal/order"
	"siparis-backend/internal/plan"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Beklenmeyen sunucu hatası",
			})
		},
	})

	// CORS origins'i virgülle ayrılmış string'den array'e çevir
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Public - sipariş sitesi
	api.Get("/menu", menu.PublicMenuHandler())
	api.Get("/menu/today", menu.TodayMenuHandler())
	api.Post("/orders", order.CreateOrderHandler(cfg))

	// Protected - personel
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Sipariş takibi
	protected.Get("/orders", order.ListOrdersHandler())
	protected.Put("/orders/:id/status", order.UpdateOrderStatusHandler())

	// Menü listeleri (personel)
	protected.Get("/menu-items", menu.ListMenuItemsHandler())
	protected.Get("/menu-categories", menu.ListCategoriesHandler())

	// Admin - menü ve plan yönetimi
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))

	// Menü yönetimi
	adminRoutes.Post("/menu-items", menu.CreateMenuItemHandler())
	adminRoutes.Put("/menu-items/:id", menu.UpdateMenuItemHandler())
	adminRoutes.Delete("/menu-items/:id", menu.DeleteMenuItemHandler())
	adminRoutes.Post("/menu-categories", menu.CreateCategoryHandler())

	// Günlük plan yönetimi
	adminRoutes.Put("/daily-plans", plan.SavePlanHandler())
	adminRoutes.Get("/daily-plans/:date", plan.GetPlanHandler())
	adminRoutes.Post("/daily-plans/copy", plan.CopyPlanHandler())

	// Audit logs
	adminRoutes.Get("/audit-logs", audit.ListAuditLogsHandler())

	log.Println("Server çalışıyor port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
