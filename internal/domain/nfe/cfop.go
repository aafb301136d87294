package nfe

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rmarquesvinicius/vendas-api/internal/domain/entity"
)

// ErrUnknownCFOP indica um CFOP fora da tabela de classificação.
// Classificar silenciosamente seria um risco de correção em dados fiscais,
// então a importação do documento é abortada.
var ErrUnknownCFOP = errors.New("CFOP sem natureza cadastrada")

// natureByCFOP tabela imutável CFOP -> natureza da operação.
// As chaves usam o formato canônico de 3 decimais implícitos (ver normalizeCFOP).
var natureByCFOP = map[string]entity.Nature{
	"1.202": entity.NatureSaleReturn,
	"1.411": entity.NatureSaleReturn,
	"2.202": entity.NatureSaleReturn,
	"2.411": entity.NatureSaleReturn,
	"5.929": entity.NatureSale,
	"6.929": entity.NatureSale,
	"5.202": entity.NaturePurchaseReturn,
	"5.411": entity.NaturePurchaseReturn,
	"6.202": entity.NaturePurchaseReturn,
	"6.411": entity.NaturePurchaseReturn,
	"6.915": entity.NatureRMA,
	"6.949": entity.NatureRMA,
}

// Classify devolve a natureza da operação para o CFOP normalizado.
func Classify(operation decimal.Decimal) (entity.Nature, error) {
	if nature, ok := natureByCFOP[operation.String()]; ok {
		return nature, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownCFOP, operation)
}
