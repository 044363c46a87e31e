package server

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// fontSubstitutions maps fonts commonly produced by office converters to
// their metric-compatible free counterparts. The substitute is appended to
// the inline font-family declaration, keeping the original as first choice.
var fontSubstitutions = []struct {
	from, to string
}{
	{"Calibri", "Carlito"},
	{"Cambria", "Caladea"},
	{"Arial", "Arimo"},
	{"Times New Roman", "Tinos"},
	{"Courier New", "Cousine"},
}

// readConvertedHTML loads the converter output honoring whatever charset the
// converter declared. Old converters still emit windows-125x pages.
func readConvertedHTML(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("unable to open converter output: %w", err)
	}
	defer f.Close()

	r, err := charset.NewReader(f, "text/html")
	if err != nil {
		return "", fmt.Errorf("unable to determine output charset: %w", err)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("unable to read converter output: %w", err)
	}
	return string(data), nil
}

// postProcessHTML rewrites the converter output for consumption by the
// editor: font substitution on inline styles and display hygiene on images.
// The returned markup is the body content only.
func postProcessHTML(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("unable to parse converter output: %w", err)
	}

	doc.Find("[style]").Each(func(_ int, sel *goquery.Selection) {
		style, _ := sel.Attr("style")
		if updated, changed := substituteFonts(style); changed {
			sel.SetAttr("style", updated)
		}
	})

	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		fixImage(sel)
	})

	body, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("unable to serialize body: %w", err)
	}
	return strings.TrimSpace(body), nil
}

// substituteFonts appends the free counterpart to every font-family
// declaration naming a substitutable font. Declarations already carrying the
// substitute are left alone.
func substituteFonts(style string) (string, bool) {
	decls := strings.Split(style, ";")
	changed := false
	for i, decl := range decls {
		name, value, ok := strings.Cut(decl, ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(name), "font-family") {
			continue
		}
		for _, sub := range fontSubstitutions {
			if containsFont(value, sub.from) && !containsFont(value, sub.to) {
				decls[i] = strings.TrimRight(decl, " ") + ", " + sub.to
				changed = true
				break
			}
		}
	}
	if !changed {
		return style, false
	}
	return strings.Join(decls, ";"), true
}

func containsFont(familyList, font string) bool {
	for _, f := range strings.Split(familyList, ",") {
		f = strings.Trim(strings.TrimSpace(f), `'"`)
		if strings.EqualFold(f, font) {
			return true
		}
	}
	return false
}

// fixImage applies display defaults so converter output cannot blow up the
// editor layout: bounded width, preserved aspect, non-empty alt.
func fixImage(sel *goquery.Selection) {
	style, _ := sel.Attr("style")
	for _, decl := range []struct{ prop, value string }{
		{"max-width", "100%"},
		{"height", "auto"},
		{"display", "inline-block"},
	} {
		if !hasDeclaration(style, decl.prop) {
			if style != "" && !strings.HasSuffix(strings.TrimSpace(style), ";") {
				style += "; "
			}
			style += decl.prop + ": " + decl.value + ";"
		}
	}
	sel.SetAttr("style", strings.TrimSpace(style))

	if alt, ok := sel.Attr("alt"); !ok || alt == "" {
		sel.SetAttr("alt", "image")
	}
}

func hasDeclaration(style, prop string) bool {
	for _, decl := range strings.Split(style, ";") {
		name, _, ok := strings.Cut(decl, ":")
		if ok && strings.EqualFold(strings.TrimSpace(name), prop) {
			return true
		}
	}
	return false
}
