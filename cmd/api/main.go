package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-apotek-pos/internal/handler"
	"go-apotek-pos/internal/mailer"
	"go-apotek-pos/internal/middleware"
	"go-apotek-pos/internal/model"
	"go-apotek-pos/internal/repository"
	"go-apotek-pos/internal/service"
	"go-apotek-pos/internal/webhook"
	"go-apotek-pos/internal/ws"
	"go-apotek-pos/pkg/cache"
	"go-apotek-pos/pkg/database"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// 2. Setup Database
	db := database.ConnectDB()
	// Auto Migrate (Hati-hati di production, sebaiknya pakai tools migrasi terpisah)
	db.AutoMigrate(
		&model.User{}, &model.Privilege{}, &model.Role{},
		&model.Vendor{}, &model.Product{},
		&model.Shift{}, &model.Order{}, &model.OrderItem{},
		&model.StockOpnameSession{}, &model.StockOpnameItem{},
		&model.InventoryLog{}, &model.StoreSettings{},
	)

	// 3. Seed default privileges, roles, and admin user
	seedPrivilegesRolesAndAdmin(db)

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. Optional Redis cache for dashboard stats
	var store cache.Cache = cache.NoopCache{}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		redisCache := cache.NewRedisCache(addr, os.Getenv("REDIS_PASSWORD"), 0)
		if err := redisCache.Ping(context.Background()); err != nil {
			log.Printf("Warning: Redis unavailable, dashboard cache disabled: %v", err)
		} else {
			store = redisCache
			defer redisCache.Close()
		}
	}

	// 6. Outbound integrations
	dispatcher := webhook.NewDispatcher()
	mail := mailer.FromEnv()

	// 7. Dependency Injection (Wiring Layers)
	userRepo := repository.NewUserRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	productRepo := repository.NewProductRepo(db)
	vendorRepo := repository.NewVendorRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	opnameRepo := repository.NewOpnameRepo(db)
	logRepo := repository.NewInventoryLogRepo(db)
	shiftRepo := repository.NewShiftRepo(db)
	settingsRepo := repository.NewSettingsRepo(db)

	authService := service.NewAuthService(userRepo, wsHub)
	userService := service.NewUserService(userRepo, privilegeRepo, roleRepo)
	catalogService := service.NewCatalogService(productRepo, vendorRepo, logRepo, wsHub)
	orderService := service.NewOrderService(orderRepo, productRepo, shiftRepo, settingsRepo, wsHub, dispatcher, mail)
	opnameService := service.NewOpnameService(opnameRepo, productRepo, settingsRepo, wsHub, dispatcher)
	shiftService := service.NewShiftService(shiftRepo, wsHub)
	reportService := service.NewReportService(orderRepo, opnameRepo, store)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleRepo)
	productHandler := handler.NewProductHandler(catalogService)
	vendorHandler := handler.NewVendorHandler(catalogService)
	orderHandler := handler.NewOrderHandler(orderService)
	opnameHandler := handler.NewOpnameHandler(opnameService)
	shiftHandler := handler.NewShiftHandler(shiftService)
	reportHandler := handler.NewReportHandler(reportService)
	settingsHandler := handler.NewSettingsHandler(settingsRepo)
	storefrontHandler := handler.NewStorefrontHandler(catalogService, orderService)

	// 8. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Apotek POS v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 9. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	// Auth Routes (No authentication required)
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/validate-token", authHandler.ValidateToken)
	auth.Post("/heartbeat", middleware.RequireAuth(userRepo), authHandler.Heartbeat)

	// Storefront Routes (customer-facing, no auth)
	storeGroup := api.Group("/store")
	storeGroup.Get("/products", storefrontHandler.GetProducts)
	storeGroup.Post("/orders", storefrontHandler.CreateOrder)
	storeGroup.Get("/orders/:code", storefrontHandler.GetOrderStatus)

	// Payment gateway callback (server-to-server)
	api.Post("/payments/qris/callback", orderHandler.PaymentCallback)

	// ============ PROTECTED ROUTES ============
	// All routes below require authentication
	protected := api.Group("", middleware.RequireAuth(userRepo))

	// Product Routes (with privilege checks)
	protected.Get("/products", middleware.RequirePrivilege("product:view"), productHandler.GetProducts)
	protected.Get("/products/low-stock", middleware.RequirePrivilege("product:view"), productHandler.GetLowStockProducts)
	protected.Get("/products/:id", middleware.RequirePrivilege("product:view"), productHandler.GetProduct)
	protected.Get("/products/:id/logs", middleware.RequirePrivilege("product:view"), productHandler.GetProductHistory)
	protected.Post("/products", middleware.RequirePrivilege("product:create"), productHandler.CreateProduct)
	protected.Put("/products/:id", middleware.RequirePrivilege("product:update"), productHandler.UpdateProduct)
	protected.Delete("/products/:id", middleware.RequirePrivilege("product:delete"), productHandler.DeleteProduct)

	// Vendor Routes
	protected.Get("/vendors", middleware.RequirePrivilege("vendor:view"), vendorHandler.GetVendors)
	protected.Get("/vendors/:id", middleware.RequirePrivilege("vendor:view"), vendorHandler.GetVendor)
	protected.Post("/vendors", middleware.RequirePrivilege("vendor:manage"), vendorHandler.CreateVendor)
	protected.Put("/vendors/:id", middleware.RequirePrivilege("vendor:manage"), vendorHandler.UpdateVendor)
	protected.Delete("/vendors/:id", middleware.RequirePrivilege("vendor:manage"), vendorHandler.DeleteVendor)

	// Order Routes (POS checkout and back office)
	protected.Get("/orders", middleware.RequirePrivilege("order:view"), orderHandler.GetOrders)
	protected.Get("/orders/:id", middleware.RequirePrivilege("order:view"), orderHandler.GetOrder)
	protected.Post("/orders", middleware.RequirePrivilege("order:create"), orderHandler.Checkout)
	protected.Post("/orders/:id/settle", middleware.RequirePrivilege("order:update"), orderHandler.SettlePickup)
	protected.Post("/orders/:id/complete", middleware.RequirePrivilege("order:update"), orderHandler.CompleteOrder)
	protected.Post("/orders/:id/cancel", middleware.RequirePrivilege("order:cancel"), orderHandler.CancelOrder)

	// Register Shift Routes
	protected.Get("/shifts", middleware.RequirePrivilege("shift:view"), shiftHandler.GetShifts)
	protected.Get("/shifts/open", middleware.RequirePrivilege("shift:view"), shiftHandler.GetOpenShift)
	protected.Post("/shifts/open", middleware.RequirePrivilege("shift:manage"), shiftHandler.OpenShift)
	protected.Post("/shifts/:id/close", middleware.RequirePrivilege("shift:manage"), shiftHandler.CloseShift)

	// Stock Opname Routes
	protected.Get("/opname/sessions", middleware.RequirePrivilege("opname:view"), opnameHandler.GetSessions)
	protected.Get("/opname/sessions/:id/items", middleware.RequirePrivilege("opname:view"), opnameHandler.GetSessionItems)
	protected.Post("/opname/sessions", middleware.RequirePrivilege("opname:manage"), opnameHandler.StartSession)
	protected.Put("/opname/items/:id", middleware.RequirePrivilege("opname:manage"), opnameHandler.RecordCount)
	protected.Post("/opname/sessions/:id/finalize", middleware.RequirePrivilege("opname:finalize"), opnameHandler.FinalizeSession)
	protected.Post("/opname/sessions/:id/cancel", middleware.RequirePrivilege("opname:manage"), opnameHandler.CancelSession)

	// Report Routes
	protected.Get("/reports/dashboard", middleware.RequirePrivilege("report:view"), reportHandler.GetDashboardStats)
	protected.Get("/reports/sales", middleware.RequirePrivilege("report:view"), reportHandler.GetSalesSummary)
	protected.Get("/reports/sales/export", middleware.RequirePrivilege("report:view"), reportHandler.ExportSalesReport)
	protected.Get("/reports/opname/:id/export", middleware.RequirePrivilege("report:view"), reportHandler.ExportOpnameSession)

	// Settings Routes
	protected.Get("/settings", middleware.RequirePrivilege("settings:view"), settingsHandler.GetSettings)
	protected.Put("/settings", middleware.RequirePrivilege("settings:manage"), settingsHandler.UpdateSettings)

	// User Management Routes (with privilege checks)
	protected.Get("/users", userHandler.GetUsers)
	protected.Get("/users/:id", userHandler.GetUser)
	protected.Post("/users", middleware.RequirePrivilege("user:create"), userHandler.CreateUser)
	protected.Put("/users/:id", middleware.RequirePrivilege("user:update"), userHandler.UpdateUser)
	protected.Delete("/users/:id", middleware.RequirePrivilege("user:delete"), userHandler.DeleteUser)
	protected.Put("/users/:id/privileges", middleware.RequirePrivilege("user:update_privilege"), userHandler.UpdateUserPrivileges)

	// Role Routes
	protected.Get("/roles", roleHandler.GetRoles)

	// Privileges Route (list all available privileges)
	protected.Get("/privileges", func(c *fiber.Ctx) error {
		privileges, err := privilegeRepo.FindAll()
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch privileges"})
		}
		return c.JSON(privileges)
	})

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 10. Graceful Shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

// seedPrivilegesRolesAndAdmin creates default privileges, roles, and admin user if they don't exist
func seedPrivilegesRolesAndAdmin(db *gorm.DB) {
	privilegeRepo := repository.NewPrivilegeRepo(db)
	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	// 1. Seed privileges first
	if err := privilegeRepo.SeedDefaults(); err != nil {
		log.Printf("Warning: Failed to seed privileges: %v", err)
	}

	// 2. Seed roles
	if err := roleRepo.SeedDefaults(); err != nil {
		log.Printf("Warning: Failed to seed roles: %v", err)
	}

	// 3. Assign privileges to roles
	allPrivileges, _ := privilegeRepo.FindAll()

	// MASTER_ADMIN gets ALL privileges
	masterRole, err := roleRepo.FindByCode(model.RoleMasterAdmin)
	if err == nil && len(masterRole.Privileges) == 0 {
		db.Model(&masterRole).Association("Privileges").Replace(allPrivileges)
		log.Println("✅ MASTER_ADMIN role assigned all privileges")
	}

	// ADMIN gets everything except user management
	adminRole, err := roleRepo.FindByCode(model.RoleAdmin)
	if err == nil && len(adminRole.Privileges) == 0 {
		adminPrivileges := []model.Privilege{}
		for _, p := range allPrivileges {
			if p.Code != "user:create" && p.Code != "user:update" && p.Code != "user:delete" && p.Code != "user:update_privilege" {
				adminPrivileges = append(adminPrivileges, p)
			}
		}
		db.Model(&adminRole).Association("Privileges").Replace(adminPrivileges)
		log.Println("✅ ADMIN role assigned limited privileges")
	}

	// CASHIER only gets what the POS screen needs
	cashierRole, err := roleRepo.FindByCode(model.RoleCashier)
	if err == nil && len(cashierRole.Privileges) == 0 {
		cashierPrivileges, err := privilegeRepo.FindByCodes(model.CashierPrivileges)
		if err == nil {
			db.Model(&cashierRole).Association("Privileges").Replace(cashierPrivileges)
			log.Println("✅ CASHIER role assigned POS privileges")
		}
	}

	// 4. Create default admin user with MASTER_ADMIN role
	_, err = userRepo.FindByEmail("admin@example.com")
	if err != nil {
		masterRole, _ := roleRepo.FindByCode(model.RoleMasterAdmin)

		admin := &model.User{
			Email:       "admin@example.com",
			FullName:    "Master Administrator",
			PhoneNumber: "",
			RoleID:      &masterRole.ID,
			IsActive:    true,
			Privileges:  masterRole.Privileges,
		}
		admin.CreatedBy = "system"
		admin.UpdatedBy = "system"

		if err := admin.SetPassword("admin123"); err != nil {
			log.Printf("Warning: Failed to hash admin password: %v", err)
			return
		}

		if err := userRepo.Create(admin); err != nil {
			log.Printf("Warning: Failed to create admin user: %v", err)
		} else {
			log.Println("✅ Admin user created: admin@example.com / admin123 (MASTER_ADMIN)")
		}
	}
}
