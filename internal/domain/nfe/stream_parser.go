package nfe

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// StreamParser percorre o documento evento a evento com o tokenizador de
// golang.org/x/net/html, sem montar árvore. Tolera o XML quase-HTML que o
// ERP entrega em algumas versões (entidades soltas, maiúsculas inconsistentes).
//
// A atribuição de cada valor é restrita por caminho: um flag por seção
// ancestral relevante marca se ela está aberta no caminho até o nó corrente,
// e o texto de uma folha só preenche um slot do resultado quando toda a
// cadeia exigida está aberta ao mesmo tempo. O formato da NFe reusa nomes
// genéricos (xNome, vNF) em seções não relacionadas; sem esse controle o
// valor errado venceria.
type StreamParser struct{}

// NewStreamParser constrói o parser tolerante.
func NewStreamParser() *StreamParser {
	return &StreamParser{}
}

var _ Parser = (*StreamParser)(nil)

// Seções ancestrais rastreadas (sempre em minúsculas; o tokenizador já
// normaliza os nomes de tag).
var trackedSections = []string{"infnfe", "ide", "dest", "det", "prod", "total", "icmstot"}

type streamState struct {
	track   map[string]bool
	current string // tag aberta imediatamente antes do texto corrente
	stack   []string
	raw     rawFields
}

// Parse implementa o contrato do Parser.
func (p *StreamParser) Parse(raw []byte) (*ParsedNFe, error) {
	content, err := decodeDocument(raw)
	if err != nil {
		return nil, err
	}

	st := &streamState{track: make(map[string]bool, len(trackedSections))}
	for _, s := range trackedSections {
		st.track[s] = false
	}

	z := html.NewTokenizer(strings.NewReader(content))
	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() != io.EOF {
				return nil, fmt.Errorf("%w: %w: %v", ErrParse, ErrXMLMalformed, z.Err())
			}
			if len(st.stack) > 0 {
				return nil, fmt.Errorf("%w: %w: tag <%s> não fechada", ErrParse, ErrXMLMalformed, st.stack[len(st.stack)-1])
			}
			return newParsedNFe(st.raw)

		case html.StartTagToken:
			name, _ := z.TagName()
			st.open(string(name))

		case html.SelfClosingTagToken:
			st.current = ""

		case html.EndTagToken:
			name, _ := z.TagName()
			if err := st.close(string(name)); err != nil {
				return nil, err
			}

		case html.TextToken:
			if data := strings.TrimSpace(string(z.Text())); data != "" {
				st.handleText(data)
			}
		}
	}
}

func (st *streamState) open(tag string) {
	st.current = tag
	st.stack = append(st.stack, tag)
	if _, ok := st.track[tag]; ok {
		st.track[tag] = true
	}
}

func (st *streamState) close(tag string) error {
	st.current = ""
	if len(st.stack) == 0 || st.stack[len(st.stack)-1] != tag {
		return fmt.Errorf("%w: %w: </%s> sem abertura correspondente", ErrParse, ErrXMLMalformed, tag)
	}
	st.stack = st.stack[:len(st.stack)-1]
	if _, ok := st.track[tag]; ok {
		st.track[tag] = false
	}
	return nil
}

// handleText atribui o texto ao slot correspondente quando a cadeia de
// seções ancestrais exigida está aberta.
func (st *streamState) handleText(data string) {
	if !st.track["infnfe"] {
		return
	}
	switch {
	case st.track["ide"]:
		switch st.current {
		case "nnf":
			st.raw.number = data
		case "dhemi":
			st.raw.date = truncateDate(data)
		case "demi":
			// variante antiga do layout: data simples no lugar do timestamp
			st.raw.date = data
		}
		st.free([]string{"ide"}, st.raw.number, st.raw.date)
	case st.track["dest"]:
		if st.current == "xnome" {
			st.raw.customer = data
			st.free([]string{"dest"})
		}
	case st.track["det"] && st.track["prod"]:
		if st.current == "cfop" {
			st.raw.cfop = data
			st.free([]string{"det", "prod"})
		}
	case st.track["total"] && st.track["icmstot"]:
		switch st.current {
		case "vnf":
			st.raw.total = data
		case "vicms":
			st.raw.tax = data
		}
		st.free([]string{"total", "icmstot"}, st.raw.total, st.raw.tax)
	}
}

// free baixa os flags das seções quando todos os valores exigidos já foram
// capturados, para que tags homônimas mais adiante não sobrescrevam o
// resultado. É uma otimização; a correção vem da cadeia de ancestrais.
func (st *streamState) free(sections []string, ifHas ...string) {
	for _, v := range ifHas {
		if v == "" {
			return
		}
	}
	for _, s := range sections {
		st.track[s] = false
	}
}
