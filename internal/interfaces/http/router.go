package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/rs/zerolog"

	appanalytics "github.com/jhoicas/Mayorista-api/internal/application/analytics"
	"github.com/jhoicas/Mayorista-api/internal/application/auth"
	"github.com/jhoicas/Mayorista-api/internal/application/billing"
	"github.com/jhoicas/Mayorista-api/internal/application/credit"
	"github.com/jhoicas/Mayorista-api/internal/application/crm"
	"github.com/jhoicas/Mayorista-api/internal/application/dto"
	"github.com/jhoicas/Mayorista-api/internal/application/feed"
	"github.com/jhoicas/Mayorista-api/internal/application/notify"
	"github.com/jhoicas/Mayorista-api/internal/application/sales"
	"github.com/jhoicas/Mayorista-api/internal/application/standing"
	"github.com/jhoicas/Mayorista-api/internal/application/usecase"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CompanyUC     *usecase.CompanyUseCase
	ProductUC     *usecase.ProductUseCase
	CustomerUC    *usecase.CustomerUseCase
	AuthUC        *auth.AuthUseCase
	ModuleService *usecase.ModuleService
	LeadUC        *crm.LeadUseCase
	QuoteUC       *sales.QuoteUseCase
	OrderUC       *sales.OrderUseCase
	StandingUC    *standing.UseCase
	CreditUC      *credit.UseCase
	DocumentUC    *billing.DocumentUseCase
	PaymentUC     *billing.PaymentUseCase
	Notifications *notify.Service
	DashboardUC   *appanalytics.DashboardUseCase
	Hub           *feed.Hub
	Webhooks      WebhookRecorder
	Shutdown      context.Context // cierra los streams SSE abiertos
	JWTSecret     string
	PublicLimit   int // peticiones por minuto por IP en /public; 0 = 30
	Log           zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	shutdown := deps.Shutdown
	if shutdown == nil {
		shutdown = context.Background()
	}

	// Público: formulario de leads y enlaces mágicos de cotizaciones.
	limit := deps.PublicLimit
	if limit <= 0 {
		limit = 30
	}
	public := app.Group("/public", limiter.New(limiter.Config{
		Max:        limit,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{Code: "RATE_LIMITED", Message: "demasiadas solicitudes"})
		},
	}))
	leadHandler := NewLeadHandler(deps.LeadUC)
	public.Post("/leads", leadHandler.Capture)
	publicQuotes := NewPublicQuoteHandler(deps.QuoteUC)
	public.Get("/quotes/respond", publicQuotes.Confirm)
	public.Post("/quotes/respond", publicQuotes.Respond)

	// Webhooks (firma HMAC, sin token)
	webhookHandler := NewPaymentWebhookHandler(deps.PaymentUC, deps.Webhooks)
	app.Post("/webhooks/payments", webhookHandler.Handle)

	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	admin := RequireRole(entity.RoleAdmin)
	sellers := RequireRole(entity.RoleAdmin, entity.RoleVentas)
	finance := RequireRole(entity.RoleAdmin, entity.RoleFinanzas)
	module := func(name string) fiber.Handler {
		return RequireModule(name, deps.ModuleService, deps.Log)
	}

	companies := protected.Group("/companies", admin)
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	companies.Get("/", companyHandler.List)
	companies.Post("/", companyHandler.Create)
	companies.Get("/:id", companyHandler.GetByID)

	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/", sellers, productHandler.Create)
	products.Put("/:id", sellers, productHandler.Update)

	creditHandler := NewCreditHandler(deps.CreditUC)
	customers := protected.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.Get)
	customers.Post("/", sellers, customerHandler.Create)
	customers.Put("/:id", sellers, customerHandler.Update)
	customers.Get("/:id/credit", module(entity.ModuleCredit), creditHandler.GetByCustomer)
	customers.Get("/:id/credit/ledger", module(entity.ModuleCredit), creditHandler.Ledger)

	leads := protected.Group("/leads", module(entity.ModuleCRM), sellers)
	leads.Post("/", leadHandler.Create)
	leads.Get("/", leadHandler.List)
	leads.Get("/:id", leadHandler.Get)
	leads.Patch("/:id/status", leadHandler.UpdateStatus)
	leads.Post("/:id/convert", leadHandler.Convert)

	quotes := protected.Group("/quotes", module(entity.ModuleOrders))
	quoteHandler := NewQuoteHandler(deps.QuoteUC)
	quotes.Get("/", quoteHandler.List)
	quotes.Get("/:id", quoteHandler.Get)
	quotes.Post("/", sellers, quoteHandler.Create)
	quotes.Post("/:id/send", sellers, quoteHandler.Send)
	quotes.Post("/:id/accept", sellers, quoteHandler.Accept)
	quotes.Post("/:id/reject", sellers, quoteHandler.Reject)
	quotes.Post("/:id/convert", sellers, quoteHandler.Convert)

	// El stream va antes de /:id para que no lo capture como ID.
	orders := protected.Group("/orders", module(entity.ModuleOrders))
	orderHandler := NewOrderHandler(deps.OrderUC, deps.DocumentUC)
	streamHandler := NewStreamHandler(shutdown, deps.Hub, deps.Log)
	orders.Get("/stream", streamHandler.Stream)
	orders.Get("/", orderHandler.List)
	orders.Post("/", sellers, orderHandler.Create)
	orders.Post("/bulk-status", sellers, orderHandler.BulkUpdateStatus)
	orders.Get("/:id", orderHandler.Get)
	orders.Patch("/:id/status", orderHandler.UpdateStatus)
	orders.Get("/:id/history", orderHandler.History)
	orders.Get("/:id/documents/:kind", orderHandler.Document)

	standingOrders := protected.Group("/standing-orders", module(entity.ModuleStandingOrders))
	standingHandler := NewStandingOrderHandler(deps.StandingUC)
	standingOrders.Post("/run-due", admin, standingHandler.RunDue)
	standingOrders.Post("/generations/:id/approve", sellers, standingHandler.ApproveGeneration)
	standingOrders.Post("/generations/:id/reject", sellers, standingHandler.RejectGeneration)
	standingOrders.Get("/", standingHandler.List)
	standingOrders.Post("/", sellers, standingHandler.Create)
	standingOrders.Get("/:id", standingHandler.Get)
	standingOrders.Put("/:id", sellers, standingHandler.Update)
	standingOrders.Post("/:id/pause", sellers, standingHandler.Pause)
	standingOrders.Post("/:id/resume", sellers, standingHandler.Resume)
	standingOrders.Post("/:id/cancel", sellers, standingHandler.Cancel)
	standingOrders.Post("/:id/generate", sellers, standingHandler.GenerateNow)
	standingOrders.Get("/:id/generations", standingHandler.History)

	creditGroup := protected.Group("/credit", module(entity.ModuleCredit))
	creditGroup.Get("/", finance, creditHandler.List)
	creditGroup.Post("/requests", sellers, creditHandler.Request)
	creditGroup.Post("/:id/approve", finance, creditHandler.Approve)
	creditGroup.Post("/:id/reject", finance, creditHandler.Reject)
	creditGroup.Post("/:id/suspend", finance, creditHandler.Suspend)
	creditGroup.Post("/:id/reactivate", finance, creditHandler.Reactivate)
	creditGroup.Post("/:id/limit", finance, creditHandler.AdjustLimit)

	notifications := protected.Group("/notifications")
	notificationHandler := NewNotificationHandler(deps.Notifications)
	notifications.Get("/", notificationHandler.List)
	notifications.Get("/unread-count", notificationHandler.UnreadCount)
	notifications.Post("/read-all", notificationHandler.MarkAllRead)
	notifications.Post("/:id/read", notificationHandler.MarkRead)

	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	protected.Get("/dashboard/summary", dashboardHandler.GetSummary)
}
