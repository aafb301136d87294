package entity

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/rmarquesvinicius/vendas-api/internal/domain"
)

// Nature classifica a natureza da operação de uma nota fiscal persistida.
type Nature string

// Valores possíveis de Nature (um caractere na coluna do ledger).
const (
	NatureSale           Nature = "S" // venda ao consumidor
	NatureSkipped        Nature = "K" // número pulado, nunca gravado pela importação
	NatureCanceled       Nature = "C" // cancelada no ERP
	NatureDenied         Nature = "D" // denegada pela SEFAZ
	NatureSaleReturn     Nature = "U" // devolução de venda
	NaturePurchaseReturn Nature = "P" // devolução de compra
	NatureRMA            Nature = "R" // retorno de mercadoria (RMA)
)

// natureDisplay nomes de exibição, no espírito do choices do ledger.
var natureDisplay = map[Nature]string{
	NatureSale:           "Venda",
	NatureSkipped:        "Pulada",
	NatureCanceled:       "Cancelada",
	NatureDenied:         "Denegada",
	NatureSaleReturn:     "Devolução de venda",
	NaturePurchaseReturn: "Devolução de compra",
	NatureRMA:            "RMA",
}

// Valid informa se o valor pertence à enumeração.
func (n Nature) Valid() bool {
	_, ok := natureDisplay[n]
	return ok
}

// Display devolve o nome legível da natureza.
func (n Nature) Display() string {
	return natureDisplay[n]
}

// FromDocument informa se a natureza implica que o XML da nota foi lido
// (canceladas e denegadas nunca têm o documento processado).
func (n Nature) FromDocument() bool {
	return n != NatureCanceled && n != NatureDenied
}

// Invoice é o registro limpo de uma nota fiscal no ledger.
// Number é a chave primária; a importação regrava o registro inteiro a cada
// execução (upsert por número). Campos string vazios viram NULL na persistência.
type Invoice struct {
	Number   int
	Date     time.Time
	Customer string              // nome do destinatário, em maiúsculas
	Nature   Nature
	Total    decimal.NullDecimal // vNF; ausente em canceladas/denegadas
	Tax      decimal.NullDecimal // vICMS; ausente em canceladas/denegadas
	Tickets  string              // referências de cupom separadas por vírgula; só em vendas
	Comment  string              // anotação manual, nunca escrito pela importação
}

// TicketList devolve as referências de cupom como fatia (vazia se não houver).
func (i *Invoice) TicketList() []string {
	if i.Tickets == "" {
		return nil
	}
	return strings.Split(i.Tickets, ",")
}

func (i *Invoice) String() string {
	if i.Customer != "" {
		return fmt.Sprintf("%06d - %s", i.Number, i.Customer)
	}
	return fmt.Sprintf("%06d - [%s]", i.Number, strings.ToUpper(i.Nature.Display()))
}

// Validate confere as restrições da entidade antes de persistir.
// Retorna ErrInvalidInvoice agrupado com um FieldError por campo violado.
func (i *Invoice) Validate() error {
	var errs []error

	if i.Number <= 0 {
		errs = append(errs, &domain.FieldError{Field: "number", Reason: "deve ser um inteiro positivo"})
	}
	if i.Date.IsZero() {
		errs = append(errs, &domain.FieldError{Field: "date", Reason: "obrigatório"})
	}
	if !i.Nature.Valid() {
		errs = append(errs, &domain.FieldError{Field: "nature", Reason: fmt.Sprintf("valor desconhecido %q", string(i.Nature))})
	}
	// Limites de coluna em caracteres, não em bytes: nomes com acento ocupam
	// mais bytes em UTF-8 mas cabem no varchar do mesmo tamanho.
	if utf8.RuneCountInString(i.Customer) > 60 {
		errs = append(errs, &domain.FieldError{Field: "customer", Reason: "máximo de 60 caracteres"})
	}
	if utf8.RuneCountInString(i.Comment) > 100 {
		errs = append(errs, &domain.FieldError{Field: "comment", Reason: "máximo de 100 caracteres"})
	}

	// Cupons só existem em vendas, como lista de inteiros separada por vírgula.
	if i.Tickets != "" {
		if i.Nature != NatureSale {
			errs = append(errs, &domain.FieldError{Field: "tickets", Reason: "permitido apenas em notas de venda"})
		}
		if utf8.RuneCountInString(i.Tickets) > 100 {
			errs = append(errs, &domain.FieldError{Field: "tickets", Reason: "máximo de 100 caracteres"})
		}
		for _, ref := range i.TicketList() {
			if !isDigits(ref) {
				errs = append(errs, &domain.FieldError{Field: "tickets", Reason: fmt.Sprintf("referência %q não é numérica", ref)})
				break
			}
		}
	}

	// Total e imposto só existem quando o XML foi processado.
	if !i.Nature.FromDocument() {
		if i.Total.Valid {
			errs = append(errs, &domain.FieldError{Field: "total", Reason: "não permitido em notas " + strings.ToLower(i.Nature.Display()) + "s"})
		}
		if i.Tax.Valid {
			errs = append(errs, &domain.FieldError{Field: "tax", Reason: "não permitido em notas " + strings.ToLower(i.Nature.Display()) + "s"})
		}
	}

	if len(errs) > 0 {
		return errors.Join(append([]error{domain.ErrInvalidInvoice}, errs...)...)
	}
	return nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
