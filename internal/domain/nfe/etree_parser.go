package nfe

import (
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
)

// ETreeParser monta a árvore do documento com beevik/etree e consulta os
// caminhos explícitos do layout da NFe. Exige XML bem formado; é a opção
// para fontes que entregam o documento estrito, com ou sem namespace.
type ETreeParser struct{}

// NewETreeParser constrói o parser estrito.
func NewETreeParser() *ETreeParser {
	return &ETreeParser{}
}

var _ Parser = (*ETreeParser)(nil)

// Parse implementa o contrato do Parser.
func (p *ETreeParser) Parse(raw []byte) (*ParsedNFe, error) {
	content, err := decodeDocument(raw)
	if err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	// O conteúdo já chega em UTF-8; a declaração de charset original é ignorada.
	doc.ReadSettings.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		return input, nil
	}
	if err := doc.ReadFromString(content); err != nil {
		return nil, fmt.Errorf("%w: %w: %v", ErrParse, ErrXMLMalformed, err)
	}

	// O bloco infNFe pode vir na raiz ou embrulhado em nfeProc/NFe,
	// com ou sem prefixo de namespace.
	infNFe := findDescendant(&doc.Element, "infNFe")
	if infNFe == nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, &MissingFieldError{Field: "infNFe"})
	}

	var r rawFields

	if ide := childElement(infNFe, "ide"); ide != nil {
		r.number = childText(ide, "nNF")
		// Só uma das duas variantes de data existe em um documento dado.
		if dh := childText(ide, "dhEmi"); dh != "" {
			r.date = truncateDate(dh)
		} else {
			r.date = childText(ide, "dEmi")
		}
	}
	if dest := childElement(infNFe, "dest"); dest != nil {
		r.customer = childText(dest, "xNome")
	}
	if det := childElement(infNFe, "det"); det != nil {
		if prod := childElement(det, "prod"); prod != nil {
			r.cfop = childText(prod, "CFOP")
		}
	}
	if total := childElement(infNFe, "total"); total != nil {
		if icmsTot := childElement(total, "ICMSTot"); icmsTot != nil {
			r.total = childText(icmsTot, "vNF")
			r.tax = childText(icmsTot, "vICMS")
		}
	}

	return newParsedNFe(r)
}

// childElement devolve o primeiro filho direto com o nome local dado,
// ignorando prefixo de namespace e caixa.
func childElement(el *etree.Element, name string) *etree.Element {
	for _, c := range el.ChildElements() {
		if strings.EqualFold(c.Tag, name) {
			return c
		}
	}
	return nil
}

// childText devolve o texto do primeiro filho direto com o nome local dado.
func childText(el *etree.Element, name string) string {
	c := childElement(el, name)
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.Text())
}

// findDescendant busca em profundidade o primeiro elemento com o nome local dado.
func findDescendant(el *etree.Element, name string) *etree.Element {
	for _, c := range el.ChildElements() {
		if strings.EqualFold(c.Tag, name) {
			return c
		}
		if found := findDescendant(c, name); found != nil {
			return found
		}
	}
	return nil
}
