package repository

import (
	"context"
	"time"

	"github.com/rmarquesvinicius/vendas-api/internal/domain/entity"
)

// InvoiceRepository persistência do ledger de notas fiscais.
type InvoiceRepository interface {
	// Save grava a nota, sobrescrevendo o registro existente de mesmo número
	// (a importação é idempotente por número).
	Save(ctx context.Context, invoice *entity.Invoice) error

	// GetByNumber devolve a nota ou domain.ErrNotFound.
	GetByNumber(ctx context.Context, number int) (*entity.Invoice, error)

	// ListByPeriod devolve as notas emitidas no intervalo, em ordem crescente de número.
	ListByPeriod(ctx context.Context, begin, end time.Time) ([]*entity.Invoice, error)

	// UpdateComment grava a anotação manual da nota.
	UpdateComment(ctx context.Context, number int, comment string) error
}
