package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pedidos-backend/internal/audit"
	"pedidos-backend/internal/auth"
	"pedidos-backend/internal/catalog"
	"pedidos-backend/internal/config"
	"pedidos-backend/internal/cycle"
	"pedidos-backend/internal/dashboard"
	"pedidos-backend/internal/database"
	"pedidos-backend/internal/employee"
	"pedidos-backend/internal/mail"
	"pedidos-backend/internal/metrics"
	"pedidos-backend/internal/middleware"
	"pedidos-backend/internal/migrate"
	"pedidos-backend/internal/order"
	"pedidos-backend/internal/report"
	"pedidos-backend/internal/settings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/juju/clock"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type services struct {
	audit     *audit.Service
	auth      *auth.Service
	catalog   *catalog.Service
	cycles    *cycle.Service
	dashboard *dashboard.Service
	employees *employee.Service
	migrate   *migrate.Service
	orders    *order.Service
	settings  *settings.Service
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("configuração inválida")
	}
	setupLogger(cfg)
	for _, w := range cfg.Warnings() {
		log.Warn().Msg(w)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("falha ao conectar no postgres")
	}

	rdb, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("falha ao conectar no redis")
	}

	var cache settings.Cache
	if rdb != nil {
		cache = settings.NewRedisCache(rdb, cfg.SettingsCacheTTL())
	} else {
		cache = settings.NewMemoryCache(cfg.SettingsCacheTTL())
	}

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL())
	svc := buildServices(cfg, db, cache, issuer)

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler,
		BodyLimit:    cfg.MaxLogoBytes + 4*1024*1024,
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: !cfg.IsProduction()}))
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())
	app.Use(metrics.Middleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.AllowedOrigins(),
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods:  "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		ExposeHeaders: "X-Total-Count, X-Request-ID, Content-Disposition",
	}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	registerRoutes(app, svc, issuer, db, rdb)

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("servidor no ar")
		if err := app.Listen(":" + cfg.HTTPPort); err != nil {
			log.Fatal().Err(err).Msg("erro no servidor")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("encerrando servidor")
	if err := app.ShutdownWithTimeout(15 * time.Second); err != nil {
		log.Error().Err(err).Msg("encerramento forçado")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("servidor encerrado")
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func buildServices(cfg *config.Config, db *gorm.DB, cache settings.Cache, issuer *auth.TokenIssuer) *services {
	auditSvc := audit.NewService(audit.NewRepository(db))
	settingsSvc := settings.NewService(settings.NewRepository(db), cache, settings.Defaults{
		AdminPassword: cfg.DefaultAdminPassword,
		CompanyName:   cfg.DefaultCompanyName,
		RecoveryEmail: cfg.DefaultRecoveryEmail,
	}, cfg.MaxLogoBytes)
	employeeRepo := employee.NewRepository(db)
	employeeSvc := employee.NewService(employeeRepo, auditSvc)
	catalogSvc := catalog.NewService(catalog.NewRepository(db))
	cycleSvc := cycle.NewService(cycle.NewRepository(db), clock.WallClock, cfg.Location())

	authSvc := auth.NewService(employeeRepo, settingsSvc, issuer, auditSvc)
	if mailer := mail.NewMailer(cfg); mailer != nil {
		authSvc.SetNotifier(mailer)
	}

	orderSvc := order.NewService(order.NewRepository(db), catalogSvc, cycleSvc, employeeSvc, settingsSvc, auditSvc)

	return &services{
		audit:     auditSvc,
		auth:      authSvc,
		catalog:   catalogSvc,
		cycles:    cycleSvc,
		dashboard: dashboard.NewService(dashboard.NewRepository(db), cycleSvc, orderSvc),
		employees: employeeSvc,
		migrate:   migrate.NewService(migrate.NewStore(db), settingsSvc),
		orders:    orderSvc,
		settings:  settingsSvc,
	}
}

func registerRoutes(app *fiber.App, svc *services, issuer *auth.TokenIssuer, db *gorm.DB, rdb *redis.Client) {
	api := app.Group("/api")

	// Públicas
	api.Get("/health", healthHandler(db, rdb))
	api.Get("/settings", auth.OptionalJWT(issuer), settings.GetSettingsHandler(svc.settings, auth.IsAdmin))

	authRoutes := api.Group("/auth", limiter.New(limiter.Config{
		Max:        20,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "Muitas tentativas. Aguarde um minuto.")
		},
	}))
	authRoutes.Post("/check", auth.CheckHandler(svc.auth))
	authRoutes.Post("/login", auth.LoginHandler(svc.auth))
	authRoutes.Post("/create-password", auth.CreatePasswordHandler(svc.auth))
	authRoutes.Post("/recover", auth.RecoverHandler(svc.auth))

	// Com sessão (funcionário ou administrador). As rotas de administrador
	// vêm depois, pois o middleware de grupo vale para tudo que segue.
	protected := api.Group("", auth.JWTMiddleware(issuer))

	protected.Get("/auth/me", auth.MeHandler())
	protected.Get("/cycle/current", cycle.CurrentHandler(svc.cycles))
	protected.Get("/groups", catalog.ListGroupsHandler(svc.catalog))
	protected.Get("/products", catalog.ListProductsHandler(svc.catalog))
	protected.Get("/orders/employee/:id", order.ListByEmployeeHandler(svc.orders))
	protected.Get("/orders/:id", order.GetHandler(svc.orders))
	protected.Post("/orders", order.SubmitHandler(svc.orders))
	protected.Patch("/orders/:id", order.UpdateHandler(svc.orders))
	protected.Delete("/orders/:id", order.ClearHandler(svc.orders))

	adminRoutes := protected.Group("", auth.RequireRole(auth.RoleAdmin))

	// Configurações
	adminRoutes.Patch("/settings", settings.UpdateSettingsHandler(svc.settings))
	adminRoutes.Post("/settings/logo", settings.UploadLogoHandler(svc.settings))

	// Funcionários
	adminRoutes.Get("/employees", employee.ListHandler(svc.employees))
	adminRoutes.Post("/employees", employee.CreateHandler(svc.employees))
	adminRoutes.Post("/employees/bulk", employee.BulkHandler(svc.employees))
	adminRoutes.Post("/employees/sync", employee.SyncHandler(svc.employees))
	adminRoutes.Patch("/employees/:id/unlock", employee.UnlockHandler(svc.employees))
	adminRoutes.Patch("/employees/:id", employee.UpdateHandler(svc.employees))
	adminRoutes.Delete("/employees/:id", employee.DeleteHandler(svc.employees))

	// Catálogo: reorder antes de /:id
	adminRoutes.Post("/groups", catalog.CreateGroupHandler(svc.catalog))
	adminRoutes.Patch("/groups/reorder", catalog.ReorderGroupsHandler(svc.catalog))
	adminRoutes.Patch("/groups/:id", catalog.UpdateGroupHandler(svc.catalog))
	adminRoutes.Delete("/groups/:id", catalog.DeleteGroupHandler(svc.catalog))

	adminRoutes.Post("/subgroups", catalog.CreateSubgroupHandler(svc.catalog))
	adminRoutes.Patch("/subgroups/reorder", catalog.ReorderSubgroupsHandler(svc.catalog))
	adminRoutes.Patch("/subgroups/:id", catalog.UpdateSubgroupHandler(svc.catalog))
	adminRoutes.Delete("/subgroups/:id", catalog.DeleteSubgroupHandler(svc.catalog))

	adminRoutes.Post("/products", catalog.CreateProductHandler(svc.catalog))
	adminRoutes.Patch("/products/reorder", catalog.ReorderProductsHandler(svc.catalog))
	adminRoutes.Patch("/products/:id", catalog.UpdateProductHandler(svc.catalog))
	adminRoutes.Delete("/products/:id", catalog.DeleteProductHandler(svc.catalog))

	// Ciclos
	adminRoutes.Get("/cycles", cycle.ListHandler(svc.cycles))
	adminRoutes.Post("/cycles", cycle.CreateHandler(svc.cycles))
	adminRoutes.Patch("/cycles/:id", cycle.UpdateHandler(svc.cycles))

	// Pedidos
	adminRoutes.Get("/orders", order.ListHandler(svc.orders))
	adminRoutes.Get("/orders/cycle/:id/export", report.ExportHandler(svc.orders, svc.cycles))
	adminRoutes.Get("/orders/cycle/:id", order.ListByCycleHandler(svc.orders))

	adminRoutes.Get("/dashboard/summary", dashboard.SummaryHandler(svc.dashboard))
	adminRoutes.Get("/dashboard/annual", dashboard.AnnualChartHandler(svc.dashboard, func() int { return svc.cycles.Now().Year() }))

	adminRoutes.Get("/audit-logs", audit.ListAuditLogsHandler(svc.audit))
	adminRoutes.Post("/migrate", migrate.Handler(svc.migrate))
}

// GET /api/health
func healthHandler(db *gorm.DB, rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		status := fiber.Map{"database": "ok"}
		code := fiber.StatusOK
		if err := database.Ping(ctx, db); err != nil {
			status["database"] = "erro"
			code = fiber.StatusServiceUnavailable
		}
		if rdb != nil {
			status["redis"] = "ok"
			if err := rdb.Ping(ctx).Err(); err != nil {
				status["redis"] = "erro"
				code = fiber.StatusServiceUnavailable
			}
		}
		return c.Status(code).JSON(status)
	}
}
