package content

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dcx/layout"
	"dcx/misc"
	"dcx/model"
	"dcx/state"
)

// Content encapsulates everything one export works from: the parsed document
// tree, the flattened block sequence and the layout geometry the blocks are
// correlated with by document order.
type Content struct {
	SrcName  string
	ExportID string

	Root   *model.Node
	Layout *layout.Snapshot
	Blocks []Block

	WorkDir string
}

// Prepare reads, parses and flattens a document snapshot for conversion.
// ls carries the rendered-surface geometry, nil means nothing was measured.
func Prepare(ctx context.Context, r io.Reader, ls *layout.Snapshot, srcName string, log *zap.Logger) (*Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	env := state.EnvFromContext(ctx)

	root, err := model.ParseSnapshot(r, log)
	if err != nil {
		return nil, fmt.Errorf("unable to parse document snapshot: %w", err)
	}

	if ls == nil {
		ls = &layout.Snapshot{}
	}
	ls.Validate(root.CountKind(model.KindTable), root.CountKind(model.KindImage), log)

	// Snapshot-provided defaults win over configured ones.
	defaults := ls.Defaults
	if defaults.FontFamily == "" {
		defaults.FontFamily = env.Cfg.Document.FontFamily
	}
	if defaults.FontSizeHalfPoints == 0 {
		defaults.FontSizeHalfPoints = env.Cfg.Document.FontSizeHalfPoints()
	}

	blocks := NewFlattener(defaults, log).Flatten(root)

	exportID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("unable to generate export ID: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", misc.GetAppName()+"-")
	if err != nil {
		return nil, fmt.Errorf("unable to create temporary directory: %w", err)
	}
	env.Rpt.Store(fmt.Sprintf("%s-%s", misc.GetAppName(), exportID), tmpDir)

	c := &Content{
		SrcName:  srcName,
		ExportID: exportID.String(),
		Root:     root,
		Layout:   ls,
		Blocks:   blocks,
		WorkDir:  tmpDir,
	}

	// Save flattened document to file for debugging
	if env.Rpt != nil {
		name := filepath.Base(srcName) + "_flattened"
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte(c.String()), 0644); err != nil {
			return nil, fmt.Errorf("unable to write flattened doc for debugging: %w", err)
		}
	}

	return c, nil
}
