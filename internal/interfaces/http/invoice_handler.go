package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/rmarquesvinicius/vendas-api/internal/application/dto"
	"github.com/rmarquesvinicius/vendas-api/internal/application/listing"
	"github.com/rmarquesvinicius/vendas-api/internal/domain"
)

// InvoiceHandler trata as consultas ao ledger de notas.
type InvoiceHandler struct {
	uc *listing.UseCase
}

// NewInvoiceHandler constrói o handler.
func NewInvoiceHandler(uc *listing.UseCase) *InvoiceHandler {
	return &InvoiceHandler{uc: uc}
}

// List lista as notas de um mês.
// GET /api/invoices?year=2023&month=1
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	year, errY := strconv.Atoi(c.Query("year"))
	month, errM := strconv.Atoi(c.Query("month"))
	if errY != nil || errM != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parâmetros year e month obrigatórios"})
	}
	invoices, err := h.uc.ByPeriod(c.Context(), year, month)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.NewInvoiceList(invoices))
}

// GetByNumber devolve uma nota pelo número.
// GET /api/invoices/:number
func (h *InvoiceHandler) GetByNumber(c *fiber.Ctx) error {
	number, err := strconv.Atoi(c.Params("number"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "número inválido"})
	}
	invoice, err := h.uc.Get(c.Context(), number)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "nota não encontrada"})
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.NewInvoiceResponse(invoice))
}

// Annotate grava a anotação manual de uma nota (requer papel operador).
// PATCH /api/invoices/:number/comment
func (h *InvoiceHandler) Annotate(c *fiber.Ctx) error {
	number, err := strconv.Atoi(c.Params("number"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "número inválido"})
	}
	var in dto.CommentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	if err := h.uc.Annotate(c.Context(), number, in.Comment); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "nota não encontrada"})
		}
		if errors.Is(err, domain.ErrInvalidInvoice) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
