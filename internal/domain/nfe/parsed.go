// Package nfe lê os campos necessários do XML de uma NFe (modelo 55) e
// classifica a natureza da operação pelo CFOP.
//
// Dois parsers implementam o mesmo contrato: StreamParser tolera tag soup
// (o ERP às vezes entrega o XML como quase-HTML) e ETreeParser exige um
// documento bem formado. Para entrada válida os dois produzem o mesmo
// resultado.
package nfe

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// ParsedNFe é o resultado imutável da leitura de um XML de NFe.
type ParsedNFe struct {
	Number    int             // nNF, número sequencial declarado no documento
	Date      time.Time       // dhEmi truncado à data, ou dEmi
	Customer  string          // dest/xNome
	Operation decimal.Decimal // CFOP com 3 decimais implícitos (1411 -> 1.411)
	Total     decimal.Decimal // ICMSTot/vNF
	Tax       decimal.Decimal // ICMSTot/vICMS
}

// Parser extrai os campos necessários do XML de uma nota.
type Parser interface {
	Parse(raw []byte) (*ParsedNFe, error)
}

// Erros de leitura do documento.
var (
	ErrParse        = errors.New("falha ao ler o XML da nota")
	ErrXMLMalformed = errors.New("estrutura do XML malformada")
	ErrInvalidCFOP  = errors.New("CFOP inválido no XML")
)

// MissingFieldError indica um campo obrigatório ausente no documento.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return "campo obrigatório ausente no XML: " + e.Field
}

// rawFields valores textuais coletados pelos parsers, antes da conversão.
// String vazia significa campo não encontrado.
type rawFields struct {
	number   string
	date     string
	customer string
	cfop     string
	total    string
	tax      string
}

// newParsedNFe converte os valores textuais coletados em um ParsedNFe,
// validando presença e formato de cada campo.
func newParsedNFe(r rawFields) (*ParsedNFe, error) {
	for _, f := range []struct{ name, value string }{
		{"nNF", r.number},
		{"dhEmi/dEmi", r.date},
		{"xNome", r.customer},
		{"CFOP", r.cfop},
		{"vNF", r.total},
		{"vICMS", r.tax},
	} {
		if f.value == "" {
			return nil, fmt.Errorf("%w: %w", ErrParse, &MissingFieldError{Field: f.name})
		}
	}

	number, err := strconv.Atoi(r.number)
	if err != nil || number <= 0 {
		return nil, fmt.Errorf("%w: nNF %q não é um inteiro positivo", ErrParse, r.number)
	}

	// dhEmi vem como timestamp com offset; só a porção da data interessa.
	date, err := time.Parse("2006-01-02", truncateDate(r.date))
	if err != nil {
		return nil, fmt.Errorf("%w: data de emissão %q: %v", ErrParse, r.date, err)
	}

	operation, err := normalizeCFOP(r.cfop)
	if err != nil {
		return nil, err
	}

	total, err := decimal.NewFromString(r.total)
	if err != nil {
		return nil, fmt.Errorf("%w: vNF %q não é numérico", ErrParse, r.total)
	}
	tax, err := decimal.NewFromString(r.tax)
	if err != nil {
		return nil, fmt.Errorf("%w: vICMS %q não é numérico", ErrParse, r.tax)
	}

	return &ParsedNFe{
		Number:    number,
		Date:      date,
		Customer:  r.customer,
		Operation: operation,
		Total:     total,
		Tax:       tax,
	}, nil
}

// truncateDate corta um timestamp ISO para a porção YYYY-MM-DD.
func truncateDate(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}

// normalizeCFOP converte o código de 4 dígitos para decimal com 3 decimais
// implícitos (1411 -> 1.411), o formato das chaves da tabela de classificação.
func normalizeCFOP(code string) (decimal.Decimal, error) {
	if len(code) != 4 {
		return decimal.Zero, fmt.Errorf("%w: %q deve ter 4 dígitos", ErrInvalidCFOP, code)
	}
	n, err := strconv.ParseInt(code, 10, 64)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q não é numérico", ErrInvalidCFOP, code)
	}
	return decimal.New(n, -3), nil
}
