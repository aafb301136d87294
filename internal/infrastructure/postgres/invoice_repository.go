package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rmarquesvinicius/vendas-api/internal/domain"
	"github.com/rmarquesvinicius/vendas-api/internal/domain/entity"
	"github.com/rmarquesvinicius/vendas-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementação de InvoiceRepository (usável com pool ou tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// Save grava a nota, sobrescrevendo o registro de mesmo número se existir.
// A reimportação de um período regrava todos os campos, inclusive comment.
func (r *InvoiceRepo) Save(ctx context.Context, invoice *entity.Invoice) error {
	query := `
		INSERT INTO invoices (number, date, customer, nature, total, tax, tickets, comment)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (number) DO UPDATE
		SET date     = EXCLUDED.date,
		    customer = EXCLUDED.customer,
		    nature   = EXCLUDED.nature,
		    total    = EXCLUDED.total,
		    tax      = EXCLUDED.tax,
		    tickets  = EXCLUDED.tickets,
		    comment  = EXCLUDED.comment`
	_, err := r.q.Exec(ctx, query,
		invoice.Number, invoice.Date, nullIfEmpty(invoice.Customer), string(invoice.Nature),
		invoice.Total, invoice.Tax, nullIfEmpty(invoice.Tickets), nullIfEmpty(invoice.Comment),
	)
	if err != nil {
		return fmt.Errorf("upsert invoice: %w", err)
	}
	return nil
}

const selectColumns = `number, date, customer, nature, total, tax, tickets, comment`

// GetByNumber devolve a nota ou domain.ErrNotFound.
func (r *InvoiceRepo) GetByNumber(ctx context.Context, number int) (*entity.Invoice, error) {
	query := `SELECT ` + selectColumns + ` FROM invoices WHERE number = $1`
	invoice, err := scanInvoice(r.q.QueryRow(ctx, query, number))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return invoice, nil
}

// ListByPeriod devolve as notas do intervalo em ordem crescente de número.
func (r *InvoiceRepo) ListByPeriod(ctx context.Context, begin, end time.Time) ([]*entity.Invoice, error) {
	query := `SELECT ` + selectColumns + `
		FROM invoices
		WHERE date BETWEEN $1 AND $2
		ORDER BY number ASC`
	rows, err := r.q.Query(ctx, query, begin, end)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var out []*entity.Invoice
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		out = append(out, invoice)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return out, nil
}

// UpdateComment grava a anotação manual da nota.
func (r *InvoiceRepo) UpdateComment(ctx context.Context, number int, comment string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE invoices SET comment = $2 WHERE number = $1`,
		number, nullIfEmpty(comment),
	)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	var customer, tickets, comment *string
	var nature string
	if err := row.Scan(
		&inv.Number, &inv.Date, &customer, &nature,
		&inv.Total, &inv.Tax, &tickets, &comment,
	); err != nil {
		return nil, err
	}
	inv.Nature = entity.Nature(nature)
	inv.Customer = derefStr(customer)
	inv.Tickets = derefStr(tickets)
	inv.Comment = derefStr(comment)
	return &inv, nil
}
