package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/rmarquesvinicius/vendas-api/internal/application/importer"
	"github.com/rmarquesvinicius/vendas-api/internal/application/listing"
	"github.com/rmarquesvinicius/vendas-api/internal/domain/nfe"
	"github.com/rmarquesvinicius/vendas-api/internal/infrastructure/erp"
	"github.com/rmarquesvinicius/vendas-api/internal/infrastructure/postgres"
	httpRouter "github.com/rmarquesvinicius/vendas-api/internal/interfaces/http"
	"github.com/rmarquesvinicius/vendas-api/pkg/config"
	"github.com/rmarquesvinicius/vendas-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("carregar configuração: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicação")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexão ao PostgreSQL")
	}
	defer pool.Close()

	source, err := erp.NewSource(cfg.ERP)
	if err != nil {
		log.Fatal().Err(err).Msg("conexão à réplica do ERP")
	}
	defer func() { _ = source.Close() }()

	invoiceRepo := postgres.NewInvoiceRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	listingUC := listing.NewUseCase(invoiceRepo)
	importerUC := importer.NewUseCase(source, txRunner, buildParser(cfg), log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ListingUC:  listingUC,
		ImporterUC: importerUC,
		JWTSecret:  cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("sinal de desligamento recebido, encerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("desligamento do servidor")
	}
}

// buildParser escolhe o parser de NFe conforme a configuração: o tolerante a
// tag soup por padrão, o estrito quando a fonte garante XML bem formado.
func buildParser(cfg *config.Config) nfe.Parser {
	if cfg.Import.StrictXML {
		return nfe.NewETreeParser()
	}
	return nfe.NewStreamParser()
}
