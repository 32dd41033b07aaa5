package router

import (
	"time"

	"counterdesk/internal/config"
	"counterdesk/internal/handler"
	"counterdesk/internal/infra"
	"counterdesk/internal/middleware"
	"counterdesk/internal/model"
	"counterdesk/internal/repository"
	"counterdesk/internal/service"
	"counterdesk/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, catalog *config.ReasonCatalog, webhookCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)
	registerRepo := repository.NewRegisterRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	inventorySvc := service.NewInventoryService(productRepo, movementRepo)
	registerSvc := service.NewRegisterService(registerRepo)
	productSvc := service.NewProductService(productRepo, inventorySvc)
	discountSvc := service.NewDiscountService(catalog, service.AuthorizationPolicy{
		MaxAmountWithoutAuth:  cfg.MaxDiscountAmount(),
		MaxPercentWithoutAuth: cfg.MaxDiscountPercent(),
	})

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	saleSvc := service.NewSaleService(saleRepo, productRepo, paymentRepo, reservationRepo,
		registerRepo, inventorySvc, registerSvc, discountSvc, cfg.TaxRate())
	reversalSvc := service.NewReversalService(saleRepo, productRepo, paymentRepo,
		reservationRepo, movementRepo, registerRepo, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	salesH := handler.NewSalesHandler(saleSvc, reversalSvc)
	adjustmentsH := handler.NewAdjustmentsHandler(discountSvc, catalog)
	productsH := handler.NewProductsHandler(productSvc, inventorySvc)
	registerH := handler.NewRegisterHandler(registerSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, webhookCB))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	anyRole := middleware.RequireRole(model.RoleCashier, model.RoleSupervisor, model.RoleAdmin)
	elevated := middleware.RequireRole(model.RoleSupervisor, model.RoleAdmin)

	v1 := r.Group("/v1", jwtMW)
	{
		// Sales — any operator can sell; only supervisors and admins cancel
		v1.POST("/sales", anyRole, salesH.RegisterSale)
		v1.GET("/sales", anyRole, salesH.ListSales)
		v1.PATCH("/sales/:id/complete", anyRole, salesH.CompleteSale)
		v1.GET("/sales/:id/reversal-preview", elevated, salesH.PreviewReversal)
		v1.POST("/sales/:id/reversal", elevated, salesH.ExecuteReversal)

		// Line adjustment dry-run — any operator (errors include AUTH_REQUIRED)
		v1.POST("/sales/adjustments/validate", anyRole, adjustmentsH.ValidateAdjustment)
		v1.GET("/discount-reasons", anyRole, adjustmentsH.ListReasons)

		// Products
		v1.POST("/products", elevated, productsH.Create)
		v1.GET("/products", anyRole, productsH.List)
		v1.GET("/products/:id", anyRole, productsH.GetByID)
		v1.PATCH("/products/:id/stock", elevated, productsH.AdjustStock)
		v1.GET("/products/:id/movements", elevated, productsH.ListMovements)

		// Register sessions
		register := v1.Group("/register")
		{
			register.POST("/open", anyRole, registerH.Open)
			register.POST("/movement", anyRole, registerH.RecordMovement)
			register.POST("/close", anyRole, registerH.Close)
			register.GET("/:id/report", anyRole, registerH.Report)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
