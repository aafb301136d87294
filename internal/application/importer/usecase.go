// Package importer traz as notas fiscais emitidas em um mês do banco
// operacional do ERP para o ledger limpo.
//
// A execução é sequencial e transacional: as linhas chegam ordenadas por
// número, cada uma é classificada (cancelada, denegada ou válida), o XML das
// válidas é lido e conferido contra os metadados da linha, e o lote inteiro é
// gravado em uma única transação. Qualquer inconsistência aborta a execução —
// importação parcial corromperia silenciosamente os totais do período.
package importer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/rmarquesvinicius/vendas-api/internal/domain"
	"github.com/rmarquesvinicius/vendas-api/internal/domain/entity"
	"github.com/rmarquesvinicius/vendas-api/internal/domain/nfe"
	"github.com/rmarquesvinicius/vendas-api/internal/domain/repository"
	"github.com/rmarquesvinicius/vendas-api/pkg/logger"
)

// receiptStatusAuthorized código de recibo da SEFAZ para nota autorizada.
const receiptStatusAuthorized = "100"

// Erros fatais da execução.
var (
	ErrSource         = errors.New("falha na fonte de dados do ERP")
	ErrNumberMismatch = errors.New("número no XML difere do número da linha do ERP")
	ErrDateMismatch   = errors.New("data no XML difere da data da linha do ERP")
)

// UseCase é o motor de importação de um período.
type UseCase struct {
	source SalesSource
	tx     TxRunner
	parser nfe.Parser
	log    *logger.Logger
}

// NewUseCase constrói o motor.
func NewUseCase(source SalesSource, tx TxRunner, parser nfe.Parser, log *logger.Logger) *UseCase {
	return &UseCase{source: source, tx: tx, parser: parser, log: log}
}

// Run importa as notas emitidas no mês indicado e devolve quantos registros
// foram gravados. Em erro, a transação é revertida e o ledger fica intocado
// para o período.
func (uc *UseCase) Run(ctx context.Context, year, month int) (int, error) {
	if month < 1 || month > 12 {
		return 0, fmt.Errorf("%w: mês %d", domain.ErrInvalidInput, month)
	}
	begin, end := periodBounds(year, month)

	log := uc.log.With().
		Str("run_id", uuid.New().String()).
		Int("year", year).
		Int("month", month).
		Logger()
	log.Info().
		Str("begin", begin.Format("2006-01-02")).
		Str("end", end.Format("2006-01-02")).
		Msg("iniciando importação do período")

	count := 0
	err := uc.tx.Run(ctx, func(repo repository.InvoiceRepository) error {
		n, err := uc.importPeriod(ctx, log, repo, begin, end)
		count = n
		return err
	})
	if err != nil {
		log.Error().Err(err).Msg("importação abortada; nenhum registro gravado")
		return 0, err
	}
	log.Info().Int("records", count).Msg("importação concluída")
	return count, nil
}

func (uc *UseCase) importPeriod(ctx context.Context, log zerolog.Logger, repo repository.InvoiceRepository, begin, end time.Time) (int, error) {
	rows, err := uc.source.InvoicesByPeriod(ctx, begin, end)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSource, err)
	}
	defer func() { _ = rows.Close() }()

	count := 0
	last := 0
	for rows.Next() {
		row, err := rows.Row()
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrSource, err)
		}
		number, err := strconv.Atoi(strings.TrimSpace(row.Number))
		if err != nil || number <= 0 {
			return 0, fmt.Errorf("número %q da linha do ERP não é um inteiro positivo", row.Number)
		}

		// A consulta vem ordenada por número; linha repetida do mesmo
		// documento é colapsada aqui, não é erro.
		if number == last {
			continue
		}
		last = number

		invoice, err := uc.buildInvoice(ctx, number, row)
		if err != nil {
			return 0, err
		}
		if err := invoice.Validate(); err != nil {
			return 0, fmt.Errorf("nota %d: %w", number, err)
		}
		if err := repo.Save(ctx, invoice); err != nil {
			return 0, fmt.Errorf("nota %d: gravar no ledger: %w", number, err)
		}
		log.Debug().Int("number", number).Str("nature", string(invoice.Nature)).Msg("nota gravada")
		count++
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSource, err)
	}
	return count, nil
}

// buildInvoice monta o registro de uma linha do ERP. Prioridade da
// classificação: cancelada > denegada > XML processado. Nos dois primeiros
// casos o XML nunca é tocado.
func (uc *UseCase) buildInvoice(ctx context.Context, number int, row InvoiceRow) (*entity.Invoice, error) {
	invoice := &entity.Invoice{Number: number, Date: row.Date}

	if row.CancelStatus != "" {
		invoice.Nature = entity.NatureCanceled
		return invoice, nil
	}
	if row.ReceiptStatus != receiptStatusAuthorized {
		invoice.Nature = entity.NatureDenied
		return invoice, nil
	}

	pix, err := uc.parser.Parse(row.XML)
	if err != nil {
		return nil, fmt.Errorf("nota %d: %w", number, err)
	}

	// O índice do ERP e o documento embutido precisam concordar; divergência
	// indica que o lote inteiro não é confiável.
	if pix.Number != number {
		return nil, fmt.Errorf("nota %d: %w (XML traz %d)", number, ErrNumberMismatch, pix.Number)
	}
	if !sameDate(pix.Date, row.Date) {
		return nil, fmt.Errorf("nota %d: %w (XML traz %s, ERP traz %s)",
			number, ErrDateMismatch, pix.Date.Format("2006-01-02"), row.Date.Format("2006-01-02"))
	}

	nature, err := nfe.Classify(pix.Operation)
	if err != nil {
		return nil, fmt.Errorf("nota %d: %w", number, err)
	}
	invoice.Nature = nature
	invoice.Customer = strings.ToUpper(pix.Customer)
	invoice.Total = decimal.NewNullDecimal(pix.Total)
	invoice.Tax = decimal.NewNullDecimal(pix.Tax)

	// Só notas de venda carregam cupons.
	if nature == entity.NatureSale {
		refs, err := uc.source.TicketsFor(ctx, number)
		if err != nil {
			return nil, fmt.Errorf("nota %d: cupons: %w: %v", number, ErrSource, err)
		}
		invoice.Tickets = joinTickets(refs)
	}
	return invoice, nil
}

// joinTickets descarta referências vazias, deduplica preservando a ordem da
// consulta e junta com vírgula. Sem referências, o campo fica vazio (NULL).
func joinTickets(refs []string) string {
	seen := make(map[string]bool, len(refs))
	kept := make([]string, 0, len(refs))
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" || seen[ref] {
			continue
		}
		seen[ref] = true
		kept = append(kept, ref)
	}
	return strings.Join(kept, ",")
}

// periodBounds devolve o primeiro e o último dia do mês (intervalo fechado).
func periodBounds(year, month int) (time.Time, time.Time) {
	begin := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := begin.AddDate(0, 1, -1)
	return begin, end
}

func sameDate(a, b time.Time) bool {
	return a.Format("2006-01-02") == b.Format("2006-01-02")
}
