package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rmarquesvinicius/vendas-api/internal/application/importer"
	"github.com/rmarquesvinicius/vendas-api/internal/application/listing"
)

// RouterDeps dependências para o router.
type RouterDeps struct {
	ListingUC  *listing.UseCase
	ImporterUC *importer.UseCase
	JWTSecret  string
}

// Router registra as rotas da API. Toda a API exige Bearer Token; disparar
// importação e anotar nota exigem o papel operador.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	invoices := api.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.ListingUC)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:number", invoiceHandler.GetByNumber)
	invoices.Patch("/:number/comment", RequireRole(RoleOperator), invoiceHandler.Annotate)

	imports := api.Group("/imports", RequireRole(RoleOperator))
	importHandler := NewImportHandler(deps.ImporterUC)
	imports.Post("/", importHandler.Create)
}
