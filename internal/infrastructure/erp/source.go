// Package erp implementa a fonte somente leitura do sistema de vendas,
// consultando a réplica do banco operacional (tabelas VENDAS_NFE e ITEVENDAS)
// via database/sql + sqlx. O driver é configurável; a consulta usa ? e é
// religada com Rebind para o placeholder nativo do driver.
package erp

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/rmarquesvinicius/vendas-api/internal/application/importer"
	"github.com/rmarquesvinicius/vendas-api/pkg/config"
)

var _ importer.SalesSource = (*Source)(nil)

// Source fonte de notas do ERP.
type Source struct {
	db *sqlx.DB
}

// NewSource abre a conexão com a réplica do ERP.
func NewSource(cfg config.ERPConfig) (*Source, error) {
	db, err := sqlx.Connect(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("conectar à réplica do ERP: %w", err)
	}
	// Fonte de leitura sequencial; não precisa de pool largo.
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	return &Source{db: db}, nil
}

// Close fecha a conexão.
func (s *Source) Close() error {
	return s.db.Close()
}

// Uma linha por documento (sem join com itens); o XML autoritativo vem uma
// única vez e o colapso no motor fica trivial. A ordem por número é contrato
// do motor de importação.
const invoicesQuery = `
	SELECT NUMERO, DATA_EMISSAO, XML, RECIBO_CODSTATUS, CANCELA_CODSTATUS
	FROM VENDAS_NFE
	WHERE DOC = 'NF' AND DATA_EMISSAO BETWEEN ? AND ?
	ORDER BY NUMERO ASC`

const ticketsQuery = `
	SELECT DISTINCT NUMERO_IMP
	FROM ITEVENDAS
	WHERE DOC = 'NF' AND NUMERO = ?`

// InvoicesByPeriod devolve o cursor da consulta primária do período.
func (s *Source) InvoicesByPeriod(ctx context.Context, begin, end time.Time) (importer.RowIterator, error) {
	rows, err := s.db.QueryxContext(ctx, s.db.Rebind(invoicesQuery), begin, end)
	if err != nil {
		return nil, fmt.Errorf("consultar VENDAS_NFE: %w", err)
	}
	return &rowIterator{rows: rows}, nil
}

// TicketsFor devolve as referências de cupom ligadas ao documento, na ordem
// da consulta. Referências nulas viram string vazia; o motor as descarta.
func (s *Source) TicketsFor(ctx context.Context, number int) ([]string, error) {
	var refs []sql.NullString
	if err := s.db.SelectContext(ctx, &refs, s.db.Rebind(ticketsQuery), number); err != nil {
		return nil, fmt.Errorf("consultar ITEVENDAS: %w", err)
	}
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.String)
	}
	return out, nil
}

// erpRow espelha as colunas da consulta primária.
type erpRow struct {
	Numero           string         `db:"numero"`
	DataEmissao      time.Time      `db:"data_emissao"`
	XML              []byte         `db:"xml"`
	ReciboCodStatus  sql.NullString `db:"recibo_codstatus"`
	CancelaCodStatus sql.NullString `db:"cancela_codstatus"`
}

type rowIterator struct {
	rows *sqlx.Rows
}

func (it *rowIterator) Next() bool {
	return it.rows.Next()
}

func (it *rowIterator) Row() (importer.InvoiceRow, error) {
	var r erpRow
	if err := it.rows.StructScan(&r); err != nil {
		return importer.InvoiceRow{}, fmt.Errorf("ler linha de VENDAS_NFE: %w", err)
	}
	return importer.InvoiceRow{
		Number:        r.Numero,
		Date:          r.DataEmissao,
		XML:           r.XML,
		ReceiptStatus: r.ReciboCodStatus.String,
		CancelStatus:  r.CancelaCodStatus.String,
	}, nil
}

func (it *rowIterator) Err() error {
	return it.rows.Err()
}

func (it *rowIterator) Close() error {
	return it.rows.Close()
}
