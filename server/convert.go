package server

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// converterFunc turns an office document into an HTML file inside outDir and
// returns the path of the produced file.
type converterFunc func(ctx context.Context, inputPath, outDir string) (string, error)

// execConverter runs an external office converter binary the way LibreOffice
// expects it: soffice --headless --convert-to html --outdir <dir> <input>.
func execConverter(binary string) converterFunc {
	return func(ctx context.Context, inputPath, outDir string) (string, error) {
		cmd := exec.CommandContext(ctx, binary,
			"--headless", "--convert-to", "html", "--outdir", outDir, inputPath)

		out, err := cmd.CombinedOutput()
		if err != nil {
			return "", fmt.Errorf("converter failed: %w (%s)", err, strings.TrimSpace(string(out)))
		}

		htmlPath := htmlOutputPath(inputPath, outDir)
		if _, err := os.Stat(htmlPath); err != nil {
			return "", fmt.Errorf("converter produced no output: %w", err)
		}
		return htmlPath, nil
	}
}

// htmlOutputPath mirrors the converter's naming: input base name with the
// extension replaced by .html, placed in outDir.
func htmlOutputPath(inputPath, outDir string) string {
	base := filepath.Base(inputPath)
	base = strings.TrimSuffix(base, filepath.Ext(base)) + ".html"
	return filepath.Join(outDir, base)
}
