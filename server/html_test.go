package server

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSubstituteFonts(t *testing.T) {
	for _, tc := range []struct {
		name    string
		style   string
		want    string
		changed bool
	}{
		{
			"calibri",
			"font-family: Calibri",
			"font-family: Calibri, Carlito",
			true,
		},
		{
			"case insensitive",
			"font-family: arial",
			"font-family: arial, Arimo",
			true,
		},
		{
			"quoted multi word",
			`font-family: "Times New Roman", serif`,
			`font-family: "Times New Roman", serif, Tinos`,
			true,
		},
		{
			"already substituted",
			"font-family: Calibri, Carlito",
			"font-family: Calibri, Carlito",
			false,
		},
		{
			"unknown font untouched",
			"font-family: Comic Sans MS",
			"font-family: Comic Sans MS",
			false,
		},
		{
			"other declarations preserved",
			"color: red; font-family: Cambria; font-size: 12pt",
			"color: red; font-family: Cambria, Caladea; font-size: 12pt",
			true,
		},
		{
			"no font-family",
			"color: red",
			"color: red",
			false,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, changed := substituteFonts(tc.style)
			if got != tc.want || changed != tc.changed {
				t.Errorf("substituteFonts(%q) = (%q, %v), want (%q, %v)",
					tc.style, got, changed, tc.want, tc.changed)
			}
		})
	}
}

func TestPostProcessHTML(t *testing.T) {
	in := `<html><head><title>x</title></head><body>
<p style="font-family: Courier New">code</p>
<img src="a.png">
<img src="b.png" alt="chart" style="width: 50px">
</body></html>`

	out, err := postProcessHTML(in)
	if err != nil {
		t.Fatalf("postProcessHTML: %v", err)
	}

	if strings.Contains(out, "<title>") {
		t.Error("head content must not leak into the result")
	}
	if !strings.Contains(out, "Courier New, Cousine") {
		t.Errorf("font substitution missing: %q", out)
	}
	if !strings.Contains(out, "max-width: 100%") {
		t.Errorf("image hygiene style missing: %q", out)
	}
	if !strings.Contains(out, `alt="image"`) {
		t.Errorf("default alt missing: %q", out)
	}
	if !strings.Contains(out, `alt="chart"`) {
		t.Errorf("existing alt must be preserved: %q", out)
	}
	if !strings.Contains(out, "width: 50px") {
		t.Errorf("existing image style must be preserved: %q", out)
	}
}

func TestReadConvertedHTMLCharset(t *testing.T) {
	// windows-1251 encoded "привет" with a declaring meta tag
	raw := []byte("<html><head><meta charset=\"windows-1251\"></head><body>" +
		"\xef\xf0\xe8\xe2\xe5\xf2</body></html>")

	path := filepath.Join(t.TempDir(), "out.html")
	if err := os.WriteFile(path, raw, 0644); err != nil {
		t.Fatal(err)
	}

	got, err := readConvertedHTML(path)
	if err != nil {
		t.Fatalf("readConvertedHTML: %v", err)
	}
	if !strings.Contains(got, "привет") {
		t.Errorf("charset decoding failed: %q", got)
	}
}

func TestReadConvertedHTMLMissing(t *testing.T) {
	if _, err := readConvertedHTML(filepath.Join(t.TempDir(), "nope.html")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
