package importer

import (
	"context"
	"time"

	"github.com/rmarquesvinicius/vendas-api/internal/domain/repository"
)

// InvoiceRow linha da consulta primária no banco operacional do ERP.
// Os campos chegam como o ERP os guarda; a coerção é papel do motor.
type InvoiceRow struct {
	Number        string    // NUMERO textual; deve coagir para inteiro positivo
	Date          time.Time // DATA_EMISSAO
	XML           []byte    // documento fiscal embutido, qualquer charset
	ReceiptStatus string    // RECIBO_CODSTATUS; "100" = autorizada pela SEFAZ
	CancelStatus  string    // CANCELA_CODSTATUS; não vazio = cancelada
}

// RowIterator cursor sobre o resultado da consulta primária. O motor o
// mantém aberto durante toda a execução e o fecha em qualquer saída.
type RowIterator interface {
	Next() bool
	Row() (InvoiceRow, error)
	Err() error
	Close() error
}

// SalesSource fonte somente leitura do sistema de vendas (ERP).
type SalesSource interface {
	// InvoicesByPeriod devolve um cursor sobre as notas emitidas no
	// intervalo fechado, uma linha por documento, ordenadas por número
	// crescente. O colapso de repetidas do motor depende dessa ordem.
	InvoicesByPeriod(ctx context.Context, begin, end time.Time) (RowIterator, error)

	// TicketsFor devolve as referências de cupom (NUMERO_IMP) ligadas ao
	// número do documento, na ordem da consulta, sem deduplicar.
	TicketsFor(ctx context.Context, number int) ([]string, error)
}

// TxRunner executa fn com um repositório atado a uma transação do ledger.
// Erro de fn implica rollback: ou o período inteiro é gravado, ou nada é.
type TxRunner interface {
	Run(ctx context.Context, fn func(repo repository.InvoiceRepository) error) error
}
