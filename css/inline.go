// Package css extracts styling from the inline declaration strings document
// nodes carry and resolves it into output-ready run attributes.
package css

import (
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"

	"dcx/units"
)

// Parser parses inline CSS declaration strings.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new inline style parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css")}
}

// ParseInline splits an inline style string ("color: red; font-size: 12pt")
// into a property/value map. Properties are lower-cased, values trimmed.
// Malformed declarations contribute no entry and are never an error.
// Declarations are parsed one at a time so a bad one cannot poison the rest.
func (p *Parser) ParseInline(style string) map[string]string {
	props := make(map[string]string)
	for _, decl := range strings.Split(style, ";") {
		if strings.TrimSpace(decl) == "" {
			continue
		}
		prop, val, ok := p.parseDeclaration(decl)
		if !ok {
			p.log.Debug("Skipping malformed inline declaration", zap.String("declaration", decl))
			continue
		}
		props[prop] = val
	}
	return props
}

func (p *Parser) parseDeclaration(decl string) (prop, val string, ok bool) {
	input := parse.NewInput(strings.NewReader(decl))
	parser := css.NewParser(input, true)

	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return prop, val, ok
		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			prop = strings.ToLower(strings.TrimSpace(string(data)))
			val = tokensToValue(parser.Values())
			ok = prop != "" && val != ""
		}
	}
}

// tokensToValue reassembles declaration value tokens into a trimmed string,
// collapsing token boundaries to single spaces. The tokenizer swallows
// whitespace after commas, so the separator is restored explicitly.
func tokensToValue(tokens []css.Token) string {
	var sb strings.Builder
	for _, t := range tokens {
		if t.TokenType == css.WhitespaceToken {
			if s := sb.String(); len(s) > 0 && s[len(s)-1] != ' ' {
				sb.WriteByte(' ')
			}
			continue
		}
		sb.Write(t.Data)
		if t.TokenType == css.CommaToken {
			sb.WriteByte(' ')
		}
	}
	return strings.TrimSpace(sb.String())
}

// Defaults carries document-wide fallbacks captured once per export from the
// rendered root element.
type Defaults struct {
	FontFamily         string
	FontSizeHalfPoints int
}

// RunStyle is the resolved styling of a single text run. Zero values mean
// "not specified" and leave the corresponding output attribute unset.
type RunStyle struct {
	Color              string // hex, no leading '#'
	Background         string // hex, no leading '#'
	FontFamily         string
	FontSizeHalfPoints int
	LineHeight         int // w:spacing line units, 240 = single
}

// ResolveRunStyle converts parsed inline properties into output-ready values,
// falling back to document defaults for font family and size. The fallback
// chain for font-size: explicit and parseable wins; explicit but unparseable
// (unsupported unit) or absent falls back to the document default; when both
// are absent the size stays unset.
func (p *Parser) ResolveRunStyle(props map[string]string, def Defaults) RunStyle {
	var rs RunStyle

	if c, ok := units.ColorToHex(props["color"]); ok {
		rs.Color = c
	}
	if c, ok := units.ColorToHex(props["background-color"]); ok {
		rs.Background = c
	}

	if f, ok := units.NormalizeFontFamily(props["font-family"]); ok {
		rs.FontFamily = f
	} else {
		rs.FontFamily = def.FontFamily
	}

	if sz, ok := units.CSSSizeToHalfPoints(props["font-size"]); ok {
		rs.FontSizeHalfPoints = sz
	} else {
		if v := props["font-size"]; v != "" {
			p.log.Debug("Unsupported font-size, using document default", zap.String("font-size", v))
		}
		rs.FontSizeHalfPoints = def.FontSizeHalfPoints
	}

	if lh, ok := units.CSSLineHeightToLine(props["line-height"], rs.FontSizeHalfPoints); ok {
		rs.LineHeight = lh
	}

	return rs
}
