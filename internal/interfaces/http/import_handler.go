package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/rmarquesvinicius/vendas-api/internal/application/dto"
	"github.com/rmarquesvinicius/vendas-api/internal/application/importer"
	"github.com/rmarquesvinicius/vendas-api/internal/domain"
	"github.com/rmarquesvinicius/vendas-api/internal/domain/nfe"
)

// ImportHandler dispara a importação de um período (requer papel operador).
type ImportHandler struct {
	uc *importer.UseCase
}

// NewImportHandler constrói o handler.
func NewImportHandler(uc *importer.UseCase) *ImportHandler {
	return &ImportHandler{uc: uc}
}

// Create roda a importação do mês pedido. A chamada é síncrona: o motor é
// sequencial por contrato, então não há o que paralelizar ou enfileirar.
// POST /api/imports
func (h *ImportHandler) Create(c *fiber.Ctx) error {
	var in dto.ImportRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	count, err := h.uc.Run(c.Context(), in.Year, in.Month)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		case errors.Is(err, importer.ErrSource):
			return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "ERP_SOURCE", Message: err.Error()})
		case errors.Is(err, nfe.ErrParse),
			errors.Is(err, nfe.ErrUnknownCFOP),
			errors.Is(err, importer.ErrNumberMismatch),
			errors.Is(err, importer.ErrDateMismatch),
			errors.Is(err, domain.ErrInvalidInvoice):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "IMPORT_ABORTED", Message: err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
		}
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ImportResponse{
		Year:    in.Year,
		Month:   in.Month,
		Records: count,
	})
}
