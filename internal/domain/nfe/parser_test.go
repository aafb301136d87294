package nfe_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmarquesvinicius/vendas-api/internal/domain/nfe"
)

// docTimestamp layout 4.00: namespace padrão, data como timestamp (dhEmi) e
// os nomes genéricos repetidos fora das seções esperadas (xNome no emitente e
// na transportadora, vICMS no imposto do item) que o parser deve ignorar.
const docTimestamp = `<?xml version="1.0" encoding="UTF-8"?>
<nfeProc xmlns="http://www.portalfiscal.inf.br/nfe" versao="4.00">
 <NFe>
  <infNFe Id="NFe35230112345678000199550010000010501000010509" versao="4.00">
   <ide>
    <cUF>35</cUF>
    <natOp>VENDA DE MERCADORIA</natOp>
    <serie>1</serie>
    <nNF>1050</nNF>
    <dhEmi>2023-01-15T10:30:00-03:00</dhEmi>
    <tpNF>1</tpNF>
   </ide>
   <emit>
    <CNPJ>12345678000199</CNPJ>
    <xNome>COMERCIO EXEMPLO LTDA</xNome>
   </emit>
   <dest>
    <CPF>12345678909</CPF>
    <xNome>Mercado Silva Ltda</xNome>
   </dest>
   <det nItem="1">
    <prod>
     <cProd>0001</cProd>
     <xProd>MERCADORIA DIVERSA</xProd>
     <CFOP>5929</CFOP>
     <vProd>1000.00</vProd>
    </prod>
    <imposto>
     <ICMS><ICMS00><vICMS>179.99</vICMS></ICMS00></ICMS>
    </imposto>
   </det>
   <total>
    <ICMSTot>
     <vBC>1000.00</vBC>
     <vICMS>180.00</vICMS>
     <vNF>1000.00</vNF>
    </ICMSTot>
   </total>
   <transp>
    <transporta><xNome>TRANSPORTADORA QUALQUER SA</xNome></transporta>
   </transp>
  </infNFe>
 </NFe>
</nfeProc>`

// docPlainDate layout antigo: sem namespace nem nfeProc, data simples (dEmi)
// e vICMS antes de vNF dentro do ICMSTot.
const docPlainDate = `<?xml version="1.0" encoding="UTF-8"?>
<NFe>
 <infNFe versao="2.00">
  <ide>
   <serie>1</serie>
   <nNF>987</nNF>
   <dEmi>2012-07-03</dEmi>
  </ide>
  <dest>
   <xNome>PADARIA CENTRAL</xNome>
  </dest>
  <det>
   <prod><CFOP>1411</CFOP></prod>
  </det>
  <total>
   <ICMSTot>
    <vICMS>12.50</vICMS>
    <vNF>250.00</vNF>
   </ICMSTot>
  </total>
 </infNFe>
</NFe>`

const docMissingCustomer = `<NFe><infNFe>
 <ide><nNF>55</nNF><dEmi>2023-02-01</dEmi></ide>
 <det><prod><CFOP>5929</CFOP></prod></det>
 <total><ICMSTot><vNF>10.00</vNF><vICMS>1.80</vICMS></ICMSTot></total>
</infNFe></NFe>`

const docBadCFOP = `<NFe><infNFe>
 <ide><nNF>55</nNF><dEmi>2023-02-01</dEmi></ide>
 <dest><xNome>CLIENTE</xNome></dest>
 <det><prod><CFOP>59A9</CFOP></prod></det>
 <total><ICMSTot><vNF>10.00</vNF><vICMS>1.80</vICMS></ICMSTot></total>
</infNFe></NFe>`

const docMalformed = `<NFe><infNFe><ide><nNF>10</nNF></NFe>`

// docLatin1 NFes antigas circulam em ISO-8859-1; 0xC3 é o "Ã" de JOÃO.
const docLatin1 = `<?xml version="1.0" encoding="ISO-8859-1"?>
<NFe><infNFe>
 <ide><nNF>300</nNF><dEmi>2015-11-20</dEmi></ide>
 <dest><xNome>JO` + "\xc3" + `O E MARIA ME</xNome></dest>
 <det><prod><CFOP>6929</CFOP></prod></det>
 <total><ICMSTot><vNF>99.90</vNF><vICMS>17.98</vICMS></ICMSTot></total>
</infNFe></NFe>`

// docEncodingNoTexto não tem prólogo <?xml ...?>; o texto de um elemento
// contém algo com cara de declaração de charset, que não pode valer como tal.
const docEncodingNoTexto = `<NFe><infNFe>
 <ide><nNF>88</nNF><dEmi>2023-03-01</dEmi></ide>
 <dest><xNome>GRAFICA ENCODING LTDA</xNome></dest>
 <det><prod><CFOP>5929</CFOP></prod></det>
 <total><ICMSTot><vNF>10.00</vNF><vICMS>1.80</vICMS></ICMSTot></total>
 <infAdic><infCpl>arquivo gerado com encoding="Shift-JIS" no sistema legado</infCpl></infAdic>
</infNFe></NFe>`

// parsers os dois parsers devem produzir o mesmo resultado para entrada válida.
func parsers() map[string]nfe.Parser {
	return map[string]nfe.Parser{
		"stream": nfe.NewStreamParser(),
		"etree":  nfe.NewETreeParser(),
	}
}

func TestParse_LayoutComTimestamp(t *testing.T) {
	for name, p := range parsers() {
		t.Run(name, func(t *testing.T) {
			pix, err := p.Parse([]byte(docTimestamp))
			require.NoError(t, err)

			assert.Equal(t, 1050, pix.Number)
			assert.Equal(t, time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC), pix.Date,
				"dhEmi deve ser truncado à porção da data")
			assert.Equal(t, "Mercado Silva Ltda", pix.Customer,
				"o xNome deve vir do destinatário, não do emitente nem da transportadora")
			assert.Equal(t, "5.929", pix.Operation.String())
			assert.True(t, pix.Total.Equal(decimal.NewFromFloat(1000.00)), "vNF: %s", pix.Total)
			assert.True(t, pix.Tax.Equal(decimal.NewFromFloat(180.00)),
				"vICMS deve vir do ICMSTot, não do imposto do item: %s", pix.Tax)
		})
	}
}

func TestParse_LayoutComDataSimples(t *testing.T) {
	for name, p := range parsers() {
		t.Run(name, func(t *testing.T) {
			pix, err := p.Parse([]byte(docPlainDate))
			require.NoError(t, err)

			assert.Equal(t, 987, pix.Number)
			assert.Equal(t, time.Date(2012, 7, 3, 0, 0, 0, 0, time.UTC), pix.Date)
			assert.Equal(t, "PADARIA CENTRAL", pix.Customer)
			assert.Equal(t, "1.411", pix.Operation.String())
			assert.True(t, pix.Total.Equal(decimal.NewFromFloat(250.00)))
			assert.True(t, pix.Tax.Equal(decimal.NewFromFloat(12.50)))
		})
	}
}

// TestParse_ParsersEquivalentes garante o contrato: os dois parsers produzem
// resultado idêntico para o mesmo documento válido.
func TestParse_ParsersEquivalentes(t *testing.T) {
	for _, doc := range []string{docTimestamp, docPlainDate, docLatin1} {
		a, errA := nfe.NewStreamParser().Parse([]byte(doc))
		b, errB := nfe.NewETreeParser().Parse([]byte(doc))
		require.NoError(t, errA)
		require.NoError(t, errB)
		assert.Equal(t, a, b)
	}
}

func TestParse_CampoAusente(t *testing.T) {
	for name, p := range parsers() {
		t.Run(name, func(t *testing.T) {
			_, err := p.Parse([]byte(docMissingCustomer))
			require.Error(t, err)
			assert.ErrorIs(t, err, nfe.ErrParse)

			var missing *nfe.MissingFieldError
			require.True(t, errors.As(err, &missing))
			assert.Equal(t, "xNome", missing.Field)
		})
	}
}

func TestParse_CFOPInvalido(t *testing.T) {
	for name, p := range parsers() {
		t.Run(name, func(t *testing.T) {
			_, err := p.Parse([]byte(docBadCFOP))
			assert.ErrorIs(t, err, nfe.ErrInvalidCFOP)
		})
	}
}

func TestParse_Malformado(t *testing.T) {
	for name, p := range parsers() {
		t.Run(name, func(t *testing.T) {
			_, err := p.Parse([]byte(docMalformed))
			assert.ErrorIs(t, err, nfe.ErrXMLMalformed)
		})
	}
}

// TestParse_DeclaracaoDeCharsetSoValeNoProlog: sem prólogo, o documento é
// tratado como UTF-8 mesmo que algum texto mencione um charset qualquer.
func TestParse_DeclaracaoDeCharsetSoValeNoProlog(t *testing.T) {
	for name, p := range parsers() {
		t.Run(name, func(t *testing.T) {
			pix, err := p.Parse([]byte(docEncodingNoTexto))
			require.NoError(t, err)
			assert.Equal(t, 88, pix.Number)
			assert.Equal(t, "GRAFICA ENCODING LTDA", pix.Customer)
		})
	}
}

func TestParse_Latin1(t *testing.T) {
	for name, p := range parsers() {
		t.Run(name, func(t *testing.T) {
			pix, err := p.Parse([]byte(docLatin1))
			require.NoError(t, err)
			assert.Equal(t, "JOÃO E MARIA ME", pix.Customer)
		})
	}
}
