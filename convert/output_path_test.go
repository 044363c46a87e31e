package convert

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"

	"dcx/config"
	"dcx/state"
)

func testEnv(t *testing.T) *state.LocalEnv {
	t.Helper()
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatal(err)
	}
	return &state.LocalEnv{Cfg: cfg, Log: zaptest.NewLogger(t)}
}

func TestBuildOutputPathDefault(t *testing.T) {
	env := testEnv(t)
	c := testContent("Ignored", "sub/dir/book.json")

	got := buildOutputPath(c, "sub/dir/book.json", "/out", env)
	want := filepath.Join("/out", "sub", "dir", "document.docx")
	if got != want {
		t.Errorf("buildOutputPath() = %q, want %q", got, want)
	}
}

func TestBuildOutputPathNoDirs(t *testing.T) {
	env := testEnv(t)
	env.NoDirs = true
	c := testContent("", "sub/dir/book.json")

	got := buildOutputPath(c, "sub/dir/book.json", "/out", env)
	want := filepath.Join("/out", "document.docx")
	if got != want {
		t.Errorf("buildOutputPath() = %q, want %q", got, want)
	}
}

func TestBuildOutputPathTemplate(t *testing.T) {
	env := testEnv(t)
	env.NoDirs = true
	env.Cfg.Document.OutputNameTemplate = "{{.Title}}"
	c := testContent("My Book", "book.json")

	got := buildOutputPath(c, "book.json", "/out", env)
	want := filepath.Join("/out", "My Book.docx")
	if got != want {
		t.Errorf("buildOutputPath() = %q, want %q", got, want)
	}
}

func TestBuildOutputPathTemplateSubdirs(t *testing.T) {
	env := testEnv(t)
	env.NoDirs = true
	env.Cfg.Document.OutputNameTemplate = "{{.Title}}/{{.SourceFile}}"
	c := testContent("Series", "vol1.json")

	got := buildOutputPath(c, "vol1.json", "/out", env)
	want := filepath.Join("/out", "Series", "vol1.docx")
	if got != want {
		t.Errorf("buildOutputPath() = %q, want %q", got, want)
	}
}

func TestBuildOutputPathTransliterate(t *testing.T) {
	env := testEnv(t)
	env.NoDirs = true
	env.Cfg.Document.OutputNameTemplate = "{{.Title}}"
	env.Cfg.Document.FileNameTransliterate = true
	c := testContent("Война и мир", "book.json")

	got := buildOutputPath(c, "book.json", "/out", env)
	want := filepath.Join("/out", "voina-i-mir.docx")
	if got != want {
		t.Errorf("buildOutputPath() = %q, want %q", got, want)
	}
}

func TestBuildOutputPathBadTemplateFallsBack(t *testing.T) {
	env := testEnv(t)
	env.NoDirs = true
	env.Cfg.Document.OutputNameTemplate = "{{.NoSuchField}}"
	c := testContent("x", "book.json")

	got := buildOutputPath(c, "book.json", "/out", env)
	want := filepath.Join("/out", "document.docx")
	if got != want {
		t.Errorf("buildOutputPath() = %q, want %q", got, want)
	}
}
