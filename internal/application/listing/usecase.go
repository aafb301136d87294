// Package listing expõe consultas de leitura sobre o ledger de notas e a
// única escrita manual permitida, a anotação de comentário.
package listing

import (
	"context"
	"fmt"
	"time"

	"github.com/rmarquesvinicius/vendas-api/internal/domain"
	"github.com/rmarquesvinicius/vendas-api/internal/domain/entity"
	"github.com/rmarquesvinicius/vendas-api/internal/domain/repository"
)

// UseCase consultas do ledger.
type UseCase struct {
	repo repository.InvoiceRepository
}

// NewUseCase constrói o caso de uso com o repositório do ledger.
func NewUseCase(repo repository.InvoiceRepository) *UseCase {
	return &UseCase{repo: repo}
}

// ByPeriod lista as notas do mês em ordem crescente de número.
func (uc *UseCase) ByPeriod(ctx context.Context, year, month int) ([]*entity.Invoice, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: mês %d", domain.ErrInvalidInput, month)
	}
	begin := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := begin.AddDate(0, 1, -1)
	return uc.repo.ListByPeriod(ctx, begin, end)
}

// Get devolve uma nota pelo número.
func (uc *UseCase) Get(ctx context.Context, number int) (*entity.Invoice, error) {
	if number <= 0 {
		return nil, fmt.Errorf("%w: número %d", domain.ErrInvalidInput, number)
	}
	return uc.repo.GetByNumber(ctx, number)
}

// Annotate grava a anotação manual da nota. O campo comment nunca é escrito
// pela importação; este é o seu único caminho de escrita.
func (uc *UseCase) Annotate(ctx context.Context, number int, comment string) error {
	invoice, err := uc.repo.GetByNumber(ctx, number)
	if err != nil {
		return err
	}
	invoice.Comment = comment
	if err := invoice.Validate(); err != nil {
		return err
	}
	return uc.repo.UpdateComment(ctx, number, comment)
}
