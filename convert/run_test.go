package convert

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"

	"dcx/config"
	"dcx/state"
)

const testSnapshot = `{"root":{"type":"root","children":[
	{"type":"heading","tag":"h1","children":[{"type":"text","text":"My Title"}]},
	{"type":"paragraph","children":[{"type":"text","text":"Hello"}]}
]}}`

const testSidecar = `{"tables":[],"images":[],"fontFamily":"Roboto","fontSizePx":16}`

func testContext(t *testing.T) (context.Context, *state.LocalEnv) {
	t.Helper()
	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)

	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("unable to load default configuration: %v", err)
	}
	env.Cfg = cfg
	env.Log = zaptest.NewLogger(t)
	return ctx, env
}

func TestProcessSingleSnapshot(t *testing.T) {
	ctx, env := testContext(t)

	srcDir, dst := t.TempDir(), t.TempDir()
	src := filepath.Join(srcDir, "book.json")
	if err := os.WriteFile(src, []byte(testSnapshot), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(sidecarPath(src), []byte(testSidecar), 0644); err != nil {
		t.Fatal(err)
	}

	if err := process(ctx, src, dst, env.Log); err != nil {
		t.Fatalf("process: %v", err)
	}

	out := filepath.Join(dst, "document.docx")
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("expected output %s: %v", out, err)
	}
}

func TestProcessSnapshotWithoutSidecar(t *testing.T) {
	ctx, env := testContext(t)

	srcDir, dst := t.TempDir(), t.TempDir()
	src := filepath.Join(srcDir, "plain.json")
	if err := os.WriteFile(src, []byte(testSnapshot), 0644); err != nil {
		t.Fatal(err)
	}

	if err := process(ctx, src, dst, env.Log); err != nil {
		t.Fatalf("process: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dst, "document.docx")); err != nil {
		t.Fatalf("missing output: %v", err)
	}
}

func TestProcessDirectory(t *testing.T) {
	ctx, env := testContext(t)
	// distinct names per source, otherwise everything is document.docx
	env.Cfg.Document.OutputNameTemplate = "{{.SourceFile}}"

	srcDir, dst := t.TempDir(), t.TempDir()
	for _, name := range []string{"b.json", "a.json"} {
		if err := os.WriteFile(filepath.Join(srcDir, name), []byte(testSnapshot), 0644); err != nil {
			t.Fatal(err)
		}
	}
	// files that must be skipped quietly
	if err := os.WriteFile(filepath.Join(srcDir, "a.layout.json"), []byte(testSidecar), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(srcDir, "notes.txt"), []byte("skip me"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := process(ctx, srcDir, dst, env.Log); err != nil {
		t.Fatalf("process: %v", err)
	}

	for _, name := range []string{"a.docx", "b.docx"} {
		if _, err := os.Stat(filepath.Join(dst, name)); err != nil {
			t.Errorf("missing output %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dst, "notes.docx")); err == nil {
		t.Error("non-snapshot file must not be converted")
	}
}

func TestProcessArchive(t *testing.T) {
	ctx, env := testContext(t)
	env.Cfg.Document.OutputNameTemplate = "{{.SourceFile}}"

	srcDir, dst := t.TempDir(), t.TempDir()
	arcPath := filepath.Join(srcDir, "books.zip")

	f, err := os.Create(arcPath)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for _, entry := range []struct{ name, data string }{
		{"docs/a.json", testSnapshot},
		{"docs/a.layout.json", testSidecar},
		{"docs/readme.txt", "skip"},
	} {
		w, err := zw.Create(entry.name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(entry.data)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	if err := process(ctx, arcPath, dst, env.Log); err != nil {
		t.Fatalf("process: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dst, "docs", "a.docx")); err != nil {
		t.Fatalf("missing output from archive: %v", err)
	}
}

func TestProcessOverwrite(t *testing.T) {
	ctx, env := testContext(t)

	srcDir, dst := t.TempDir(), t.TempDir()
	src := filepath.Join(srcDir, "book.json")
	if err := os.WriteFile(src, []byte(testSnapshot), 0644); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dst, "document.docx")
	if err := os.WriteFile(out, []byte("placeholder"), 0644); err != nil {
		t.Fatal(err)
	}

	// refusal is logged, not returned, and the file stays put
	if err := process(ctx, src, dst, env.Log); err != nil {
		t.Fatalf("process: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "placeholder" {
		t.Error("existing file must not be overwritten without the flag")
	}

	env.Overwrite = true
	if err := process(ctx, src, dst, env.Log); err != nil {
		t.Fatalf("process with overwrite: %v", err)
	}
	data, err = os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) == "placeholder" {
		t.Error("file was not replaced with overwrite enabled")
	}
}

func TestProcessMissingSource(t *testing.T) {
	ctx, env := testContext(t)
	if err := process(ctx, filepath.Join(t.TempDir(), "missing.json"), t.TempDir(), env.Log); err == nil {
		t.Fatal("expected error for missing source")
	}
}
