package main

import (
	"log"
	"time"

	"moonal-billing/internal/auth"
	"moonal-billing/internal/billing"
	"moonal-billing/internal/config"
	"moonal-billing/internal/database"
	"moonal-billing/internal/handlers"
	"moonal-billing/internal/middleware"
	"moonal-billing/internal/pdf"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("❌ Config error: ", err)
	}

	auth.Init(cfg.JwtSecret)
	database.Connect(cfg)

	// Wire the billing engine and the letterhead into the handler layer
	handlers.Billing = billing.NewService(database.DB)
	handlers.DefaultVatRate = decimal.NewFromFloat(cfg.DefaultVatRate)
	handlers.Company = pdf.CompanyInfo{
		Name:    cfg.CompanyName,
		Address: cfg.CompanyAddress,
		Pan:     cfg.CompanyPan,
		Phone:   cfg.CompanyPhone,
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.AllowedOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "online"}) })
	r.POST("/login", handlers.Login)

	// Only opens if we explicitly allow it in .env
	if cfg.AllowRegistration {
		r.POST("/register", handlers.Register)
		log.Println("⚠️ WARNING: Registration route is OPEN. Disable this in production!")
	} else {
		log.Println("🔒 Registration route is safely DISABLED.")
	}

	// --- PROTECTED ROUTES ---
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware())
	{
		// PUBLIC TO STAFF & ADMIN
		api.POST("/password", handlers.ChangePassword)

		api.GET("/products", handlers.GetProducts)
		api.GET("/products/options", handlers.GetProductOptions)

		api.GET("/customers", handlers.GetCustomers)
		api.POST("/customers", handlers.AddCustomer)
		api.PUT("/customers/:id", handlers.UpdateCustomer)

		api.GET("/invoices", handlers.GetInvoices)
		api.POST("/invoices", handlers.CreateInvoice)
		api.GET("/invoices/reasons", handlers.GetCancellationReasons)
		api.GET("/invoices/:id", handlers.GetInvoice)
		api.GET("/invoices/:id/pdf", handlers.GetInvoicePDF)

		// ADMIN ONLY
		admin := api.Group("/")
		admin.Use(middleware.RequireRole("admin"))
		{
			admin.POST("/ask", handlers.AskAI)

			admin.POST("/products", handlers.AddProduct)
			admin.PUT("/products/:id", handlers.UpdateProduct)
			admin.DELETE("/products/:id", handlers.DeleteProduct)
			admin.DELETE("/customers/:id", handlers.DeleteCustomer)

			// Cancellation issues a credit note; it is an accounting event,
			// so it stays behind the admin gate.
			admin.POST("/invoices/:id/cancel", handlers.CancelInvoice)

			admin.GET("/reports", handlers.GetSalesReport)
			admin.GET("/reports/sales-register", handlers.GetSalesRegister)
			admin.GET("/reports/sales-register/export", handlers.ExportSalesRegister)
			admin.GET("/reports/monthly", handlers.GetMonthlySummary)
			admin.GET("/reports/low-stock", handlers.GetLowStock)
		}
	}

	log.Println("🚀 Server starting on " + cfg.Addr)
	if err := r.Run(cfg.Addr); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}
