package listing_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmarquesvinicius/vendas-api/internal/application/listing"
	"github.com/rmarquesvinicius/vendas-api/internal/domain"
	"github.com/rmarquesvinicius/vendas-api/internal/domain/entity"
)

type stubRepo struct {
	invoices map[int]*entity.Invoice
	updated  map[int]string
	listed   []*entity.Invoice
}

func newStubRepo(invoices ...*entity.Invoice) *stubRepo {
	r := &stubRepo{invoices: map[int]*entity.Invoice{}, updated: map[int]string{}}
	for _, inv := range invoices {
		r.invoices[inv.Number] = inv
		r.listed = append(r.listed, inv)
	}
	return r
}

func (r *stubRepo) Save(_ context.Context, inv *entity.Invoice) error {
	r.invoices[inv.Number] = inv
	return nil
}

func (r *stubRepo) GetByNumber(_ context.Context, number int) (*entity.Invoice, error) {
	if inv, ok := r.invoices[number]; ok {
		return inv, nil
	}
	return nil, domain.ErrNotFound
}

func (r *stubRepo) ListByPeriod(_ context.Context, _, _ time.Time) ([]*entity.Invoice, error) {
	return r.listed, nil
}

func (r *stubRepo) UpdateComment(_ context.Context, number int, comment string) error {
	if _, ok := r.invoices[number]; !ok {
		return domain.ErrNotFound
	}
	r.updated[number] = comment
	return nil
}

func sale(number int) *entity.Invoice {
	return &entity.Invoice{
		Number:   number,
		Date:     time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC),
		Customer: "CLIENTE",
		Nature:   entity.NatureSale,
	}
}

func TestByPeriod_MesInvalido(t *testing.T) {
	uc := listing.NewUseCase(newStubRepo())

	_, err := uc.ByPeriod(context.Background(), 2023, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGet_NaoEncontrada(t *testing.T) {
	uc := listing.NewUseCase(newStubRepo())

	_, err := uc.Get(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGet_NumeroInvalido(t *testing.T) {
	uc := listing.NewUseCase(newStubRepo())

	_, err := uc.Get(context.Background(), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAnnotate_GravaComentario(t *testing.T) {
	repo := newStubRepo(sale(7))
	uc := listing.NewUseCase(repo)

	err := uc.Annotate(context.Background(), 7, "conferida manualmente")
	require.NoError(t, err)
	assert.Equal(t, "conferida manualmente", repo.updated[7])
}

// TestAnnotate_ComentarioLongoRejeitado: a anotação passa pela validação da
// entidade antes de persistir; acima de 100 caracteres nada é gravado.
func TestAnnotate_ComentarioLongoRejeitado(t *testing.T) {
	repo := newStubRepo(sale(8))
	uc := listing.NewUseCase(repo)

	long := make([]byte, 101)
	for i := range long {
		long[i] = 'x'
	}
	err := uc.Annotate(context.Background(), 8, string(long))
	assert.ErrorIs(t, err, domain.ErrInvalidInvoice)
	assert.Empty(t, repo.updated)
}

func TestAnnotate_NotaInexistente(t *testing.T) {
	uc := listing.NewUseCase(newStubRepo())

	err := uc.Annotate(context.Background(), 99, "qualquer")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
