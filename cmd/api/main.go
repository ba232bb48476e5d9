package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/ocr-invoice-api/internal/application/invoicing"
	"github.com/jhoicas/ocr-invoice-api/internal/application/mapping"
	"github.com/jhoicas/ocr-invoice-api/internal/application/validation"
	"github.com/jhoicas/ocr-invoice-api/internal/domain/repository"
	infrapdf "github.com/jhoicas/ocr-invoice-api/internal/infrastructure/pdf"
	"github.com/jhoicas/ocr-invoice-api/internal/infrastructure/postgres"
	"github.com/jhoicas/ocr-invoice-api/internal/infrastructure/sqlite"
	"github.com/jhoicas/ocr-invoice-api/internal/infrastructure/ubl"
	"github.com/jhoicas/ocr-invoice-api/internal/infrastructure/xlsx"
	httpRouter "github.com/jhoicas/ocr-invoice-api/internal/interfaces/http"
	"github.com/jhoicas/ocr-invoice-api/pkg/config"
	"github.com/jhoicas/ocr-invoice-api/pkg/logger"
)

// storage repositorio, transacciones y cierre según DB_DRIVER.
type storage struct {
	repo     repository.InvoiceRepository
	txRunner invoicing.InvoiceTxRunner
	close    func()
}

func openStorage(ctx context.Context, cfg config.DBConfig) (*storage, error) {
	if cfg.Driver == config.DriverSQLite {
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &storage{
			repo:     sqlite.NewInvoiceRepository(db),
			txRunner: sqlite.NewTxRunner(db),
			close:    func() { _ = db.Close() },
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &storage{
		repo:     postgres.NewInvoiceRepository(pool),
		txRunner: postgres.NewTxRunner(pool),
		close:    pool.Close,
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := openStorage(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DB.Driver).Msg("conexión a base de datos")
	}
	defer store.close()

	zl := log.Zerolog()

	// Pipeline OCR → factura
	processUC := invoicing.NewProcessOCRUseCase(
		mapping.NewMapper(zl),
		validation.NewValidator(zl),
		store.txRunner,
		zl,
	)
	queryUC := invoicing.NewInvoiceQueryUseCase(store.repo, zl)

	// Exportaciones: PDF, UBL y Excel
	exportUC := invoicing.NewExportUseCase(
		store.repo,
		infrapdf.NewMarotoPDFGenerator(),
		ubl.NewXMLBuilderService(),
		xlsx.NewExporter(zl),
		zl,
	)

	schema, err := httpRouter.NewOCRSchema()
	if err != nil {
		log.Fatal().Err(err).Msg("compilar esquema OCR")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestID())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  strings.ReplaceAll(cfg.HTTP.CORSOrigins, " ", ""),
		AllowMethods:  "GET,POST,PATCH,DELETE,OPTIONS",
		ExposeHeaders: "ETag,X-Request-ID,Content-Disposition",
	}))
	app.Use(httpRouter.RequestLogger(zl))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.HTTP.DocsPath); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.DocsPath,
			Path:     "docs",
			Title:    cfg.App.Name,
		}))
	} else {
		log.Warn().Str("path", cfg.HTTP.DocsPath).Msg("swagger.json no encontrado, /docs deshabilitado")
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		APIPrefix: cfg.HTTP.APIPrefix,
		Invoices: httpRouter.NewInvoiceHandler(
			processUC, queryUC, exportUC, schema, validator.New(), cfg.Pagination,
		),
		System: httpRouter.NewSystemHandler(
			httpRouter.ServiceInfo{Name: cfg.App.Name, Version: cfg.App.Version, Docs: "/docs"},
			queryUC,
			log.ErrorCounts,
		),
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
