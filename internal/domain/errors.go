package domain

import (
	"errors"
	"fmt"
)

// Erros de domínio (sem dependências externas).
var (
	ErrNotFound       = errors.New("recurso não encontrado")
	ErrInvalidInput   = errors.New("entrada inválida")
	ErrInvalidInvoice = errors.New("nota fiscal inválida")
)

// FieldError aponta o campo que violou uma restrição da entidade.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}
