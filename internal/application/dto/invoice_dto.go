package dto

import (
	"github.com/rmarquesvinicius/vendas-api/internal/domain/entity"
	"github.com/rmarquesvinicius/vendas-api/pkg/format"
)

// InvoiceResponse representação de uma nota do ledger na API.
// Total e Tax saem formatados em pt-BR (agrupamento de milhar, duas casas).
type InvoiceResponse struct {
	Number        int      `json:"number"`
	Display       string   `json:"display"`
	Date          string   `json:"date"`
	Customer      string   `json:"customer,omitempty"`
	Nature        string   `json:"nature"`
	NatureDisplay string   `json:"nature_display"`
	Total         *string  `json:"total,omitempty"`
	Tax           *string  `json:"tax,omitempty"`
	Tickets       []string `json:"tickets,omitempty"`
	Comment       string   `json:"comment,omitempty"`
}

// NewInvoiceResponse converte a entidade para a representação da API.
func NewInvoiceResponse(inv *entity.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		Number:        inv.Number,
		Display:       inv.String(),
		Date:          inv.Date.Format("2006-01-02"),
		Customer:      inv.Customer,
		Nature:        string(inv.Nature),
		NatureDisplay: inv.Nature.Display(),
		Tickets:       inv.TicketList(),
		Comment:       inv.Comment,
	}
	if inv.Total.Valid {
		s := format.Money(inv.Total.Decimal)
		resp.Total = &s
	}
	if inv.Tax.Valid {
		s := format.Money(inv.Tax.Decimal)
		resp.Tax = &s
	}
	return resp
}

// NewInvoiceList converte a lista vinda do repositório.
func NewInvoiceList(invoices []*entity.Invoice) []InvoiceResponse {
	out := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, NewInvoiceResponse(inv))
	}
	return out
}

// ImportRequest corpo de POST /api/imports.
type ImportRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// ImportResponse resultado de uma importação bem-sucedida.
type ImportResponse struct {
	Year    int `json:"year"`
	Month   int `json:"month"`
	Records int `json:"records"`
}

// CommentRequest corpo de PATCH /api/invoices/:number/comment.
type CommentRequest struct {
	Comment string `json:"comment"`
}
