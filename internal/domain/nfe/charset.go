package nfe

import (
	"bytes"
	"fmt"
	"regexp"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var (
	xmlProlog    = regexp.MustCompile(`(?i)^\s*<\?xml[^>]*\?>`)
	encodingDecl = regexp.MustCompile(`(?i)encoding\s*=\s*["']([^"']+)["']`)
)

// decodeDocument devolve o conteúdo do XML como texto UTF-8.
// NFes antigas circulam declaradas como ISO-8859-1; o restante do pacote
// trabalha sempre sobre UTF-8. A declaração de charset só vale dentro do
// prólogo <?xml ...?>; o mesmo texto em conteúdo de elemento é ignorado.
func decodeDocument(raw []byte) (string, error) {
	raw = bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF})

	prolog := xmlProlog.Find(raw)
	if prolog == nil {
		return string(raw), nil
	}
	if m := encodingDecl.FindSubmatch(prolog); m != nil {
		switch string(bytes.ToUpper(m[1])) {
		case "UTF-8", "UTF8":
			// nada a fazer
		case "ISO-8859-1", "LATIN1", "WINDOWS-1252":
			out, _, err := transform.Bytes(charmap.ISO8859_1.NewDecoder(), raw)
			if err != nil {
				return "", fmt.Errorf("%w: transcodificação ISO-8859-1: %v", ErrParse, err)
			}
			return string(out), nil
		default:
			return "", fmt.Errorf("%w: charset %q não suportado", ErrParse, m[1])
		}
	}
	return string(raw), nil
}
