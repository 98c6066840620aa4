package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	appanalytics "github.com/jhoicas/Mayorista-api/internal/application/analytics"
	"github.com/jhoicas/Mayorista-api/internal/application/auth"
	"github.com/jhoicas/Mayorista-api/internal/application/billing"
	"github.com/jhoicas/Mayorista-api/internal/application/credit"
	"github.com/jhoicas/Mayorista-api/internal/application/crm"
	"github.com/jhoicas/Mayorista-api/internal/application/feed"
	"github.com/jhoicas/Mayorista-api/internal/application/notify"
	"github.com/jhoicas/Mayorista-api/internal/application/sales"
	"github.com/jhoicas/Mayorista-api/internal/application/scheduler"
	"github.com/jhoicas/Mayorista-api/internal/application/standing"
	"github.com/jhoicas/Mayorista-api/internal/application/usecase"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/infrastructure/cache"
	"github.com/jhoicas/Mayorista-api/internal/infrastructure/captcha"
	"github.com/jhoicas/Mayorista-api/internal/infrastructure/email"
	"github.com/jhoicas/Mayorista-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Mayorista-api/internal/infrastructure/migration"
	infrapdf "github.com/jhoicas/Mayorista-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Mayorista-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Mayorista-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/Mayorista-api/internal/interfaces/http"
	"github.com/jhoicas/Mayorista-api/pkg/config"
	"github.com/jhoicas/Mayorista-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	zl := log.Zerolog()
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	// ctx se cancela al recibir la señal de apagado: detiene scheduler, listener y streams SSE.
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if cfg.App.AutoMigrate {
		migrate(cfg.DB, zl)
	}

	pool, err := postgres.NewPool(ctx, cfg.DB, zl)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	store := postgres.NewStore(pool)
	txRunner := postgres.NewTxRunner(pool)
	m := metrics.New()

	// Locks de generación e idempotencia de webhooks: Redis si está configurado, si no en memoria.
	var (
		locker standing.Locker          = cache.NewMemoryLocker()
		events billing.IdempotencyStore = cache.NewMemoryIdempotencyStore()
	)
	if cfg.Redis.Addr != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		locker = cache.NewRedisLocker(rdb, "mayorista:lock:")
		events = cache.NewRedisIdempotencyStore(rdb, "mayorista:event:")
	}

	var files billing.DocumentStore = postgres.NewDocumentBlobStore(pool)
	if cfg.Storage.Bucket != "" {
		s3, err := storage.NewS3Store(ctx, cfg.Storage, zl)
		if err != nil {
			log.Fatal().Err(err).Msg("cliente S3")
		}
		if err := s3.EnsureBucket(ctx); err != nil {
			log.Fatal().Err(err).Str("bucket", cfg.Storage.Bucket).Msg("bucket de documentos")
		}
		files = s3
	}

	var verifier crm.CaptchaVerifier
	if cfg.Captcha.Secret != "" {
		verifier = captcha.NewVerifier(cfg.Captcha.Secret, cfg.Captcha.MinScore, zl)
	}

	notifier := notify.NewService(store.Notifications, store.Users, email.Instrumented(email.NewSender(cfg.SMTP, zl), m), zl)
	creditUC := credit.NewUseCase(store, txRunner, notifier, zl)
	quoteUC := sales.NewQuoteUseCase(store, txRunner, creditUC, notifier, sales.LinkConfig{
		Secret:  cfg.JWT.Secret,
		Issuer:  cfg.JWT.Issuer,
		BaseURL: cfg.Links.PublicBaseURL,
		TTL:     cfg.Links.MagicLinkTTL,
	}, zl)
	orderUC := sales.NewOrderUseCase(store, txRunner, creditUC)
	standingUC := standing.NewUseCase(store, txRunner, quoteUC, creditUC, notifier, locker, cfg.Scheduler.Workers, zl)
	documentUC := billing.NewDocumentUseCase(store, infrapdf.NewRenderer(), files, zl)
	paymentUC := billing.NewPaymentUseCase(store, txRunner, creditUC, events, notifier, cfg.Webhook.PaymentSecret, zl)
	authUC := auth.NewAuthUseCase(store.Users, store.Companies, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	// Cambios de estado de pedidos: documentos, correo al cliente y clientes SSE.
	hub := feed.NewHub()
	bus := feed.NewBus(zl)
	bus.Subscribe("documents", feed.DocumentHandler(documentUC), entity.OrderConfirmed, entity.OrderShipped)
	bus.Subscribe("customer_email", feed.CustomerNotificationHandler(store, notifier))
	bus.Subscribe("sse", hub)
	m.Gauge("feed", "sse_clients", "Clientes SSE conectados.", func() float64 { return float64(hub.Clients()) })
	m.Gauge("feed", "sse_dropped_total", "Eventos descartados por clientes SSE lentos.", func() float64 { return float64(hub.Dropped()) })

	if cfg.Feed.Enabled {
		connCfg, err := postgres.ConnConfig(cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("configuración del listener")
		}
		listener := postgres.NewListener(connCfg, cfg.Feed, bus, m, zl)
		go func() {
			if err := listener.Run(ctx); err != nil {
				log.Error().Err(err).Msg("listener de pedidos detenido")
			}
		}()
	}

	var runner *scheduler.Runner
	if cfg.Scheduler.Enabled {
		runner = scheduler.NewRunner(cfg.Scheduler.Interval, m, zl,
			scheduler.StandingJob(standingUC, m),
			scheduler.ExpireQuotesJob(quoteUC),
			scheduler.CreditOverdueJob(creditUC),
		)
		runner.Start(ctx)
	}

	// Sin WriteTimeout: los streams SSE de /api/orders/stream son de larga duración.
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(m.Middleware())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Mayorista API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", m.Handler())

	httpRouter.Router(app, httpRouter.RouterDeps{
		CompanyUC:     usecase.NewCompanyUseCase(store.Companies),
		ProductUC:     usecase.NewProductUseCase(store.Products),
		CustomerUC:    usecase.NewCustomerUseCase(store.Customers),
		AuthUC:        authUC,
		ModuleService: usecase.NewModuleService(store.Companies, 5*time.Minute),
		LeadUC:        crm.NewLeadUseCase(store, txRunner, verifier),
		QuoteUC:       quoteUC,
		OrderUC:       orderUC,
		StandingUC:    standingUC,
		CreditUC:      creditUC,
		DocumentUC:    documentUC,
		PaymentUC:     paymentUC,
		Notifications: notifier,
		DashboardUC:   appanalytics.NewDashboardUseCase(postgres.NewAnalyticsRepository(pool)),
		Hub:           hub,
		Webhooks:      m,
		Shutdown:      ctx,
		JWTSecret:     cfg.JWT.Secret,
		Log:           zl,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if runner != nil {
		runner.Stop()
	}
	notifier.Wait()

	log.Info().Msg("aplicación detenida")
}

func migrate(db config.DBConfig, log zerolog.Logger) {
	mg, err := migration.New(db.ConnectionString(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}
	defer mg.Close()
	if err := mg.Up(); err != nil {
		log.Fatal().Err(err).Msg("aplicar migraciones")
	}
}
