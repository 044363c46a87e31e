// Package layout carries the rendered-surface geometry an export works from:
// per-table column widths and per-image display sizes captured by the editor
// at export start, plus the document-wide font defaults. The geometry arrives
// as a JSON sidecar next to the document snapshot and is correlated with the
// flattened tree purely by document order.
package layout

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"dcx/css"
	"dcx/units"
)

const (
	// UsableWidth is the printable page width in twips with the fixed
	// 720-twip margins on US Letter.
	UsableWidth = 9360

	// legacyThreeColumns is the tuned fallback for unmeasured 3-column
	// tables. Open question: does not generalize, kept for compatibility.
	legacyThreeCol = 2200
)

// MeasuredTable holds the first-row column widths of one rendered table in
// twips. Columns is nil when the table had no rows at measurement time.
type MeasuredTable struct {
	Columns []int
	Total   int
}

// MeasuredImage holds the rendered size of one image element in pixels.
type MeasuredImage struct {
	WidthPx  float64
	HeightPx float64
}

// Snapshot is the geometry sidecar after unit conversion. A zero Snapshot is
// valid and means "nothing was measured": every lookup falls back.
type Snapshot struct {
	Tables   []MeasuredTable
	Images   []MeasuredImage
	Defaults css.Defaults
}

// sidecar is the on-disk JSON shape. Table slots may be null (rowless table),
// pixel widths are floats as reported by the rendering surface.
type sidecar struct {
	Tables []([]float64) `json:"tables"`
	Images []struct {
		WidthPx  float64 `json:"widthPx"`
		HeightPx float64 `json:"heightPx"`
	} `json:"images"`
	FontFamily string  `json:"fontFamily"`
	FontSizePx float64 `json:"fontSizePx"`
}

// ReadSnapshot decodes a geometry sidecar, converting table columns px->twips
// and the default font size px->half-points.
func ReadSnapshot(r io.Reader, log *zap.Logger) (*Snapshot, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("layout")

	var sc sidecar
	dec := json.NewDecoder(r)
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("unable to decode layout sidecar: %w", err)
	}

	s := &Snapshot{}
	for i, cols := range sc.Tables {
		var mt MeasuredTable
		for _, px := range cols {
			w := units.PxToTwips(px)
			mt.Columns = append(mt.Columns, w)
			mt.Total += w
		}
		if mt.Columns == nil {
			log.Debug("Table measured without rows", zap.Int("table", i))
		}
		s.Tables = append(s.Tables, mt)
	}
	for _, img := range sc.Images {
		s.Images = append(s.Images, MeasuredImage{WidthPx: img.WidthPx, HeightPx: img.HeightPx})
	}
	if sc.FontFamily != "" {
		s.Defaults.FontFamily = sc.FontFamily
	}
	if sc.FontSizePx > 0 {
		s.Defaults.FontSizeHalfPoints = units.PxToPoints(sc.FontSizePx) * 2
	}
	return s, nil
}

// ReadSnapshotFile loads a sidecar from disk. A missing file is not an error,
// it simply yields an empty snapshot.
func ReadSnapshotFile(path string, log *zap.Logger) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Snapshot{}, nil
		}
		return nil, fmt.Errorf("unable to open layout sidecar: %w", err)
	}
	defer f.Close()
	return ReadSnapshot(f, log)
}

// Validate checks the order-correlation invariant: the sidecar must carry one
// entry per table and per image node of the flattened document. A mismatch is
// logged and the extra or missing entries fall back, the export continues.
func (s *Snapshot) Validate(tableCount, imageCount int, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("layout")

	if len(s.Tables) != 0 && len(s.Tables) != tableCount {
		log.Warn("Measured table count does not match document, falling back to even widths",
			zap.Int("measured", len(s.Tables)), zap.Int("document", tableCount))
	}
	if len(s.Images) != 0 && len(s.Images) != imageCount {
		log.Warn("Measured image count does not match document, falling back to natural sizes",
			zap.Int("measured", len(s.Images)), zap.Int("document", imageCount))
	}
}

// Table returns the measurement for the i-th table in document order.
// ok is false when the slot is absent or was measured without rows.
func (s *Snapshot) Table(i int) (MeasuredTable, bool) {
	if s == nil || i < 0 || i >= len(s.Tables) || s.Tables[i].Columns == nil {
		return MeasuredTable{}, false
	}
	return s.Tables[i], true
}

// Image returns the measurement for the i-th image in document order.
func (s *Snapshot) Image(i int) (MeasuredImage, bool) {
	if s == nil || i < 0 || i >= len(s.Images) {
		return MeasuredImage{}, false
	}
	m := s.Images[i]
	if m.WidthPx <= 0 || m.HeightPx <= 0 {
		return MeasuredImage{}, false
	}
	return m, true
}

// FallbackColumns distributes the usable page width over n unmeasured
// columns. Three columns keep the historical uneven split, everything else
// divides evenly with the remainder going to the last column.
func FallbackColumns(n int) MeasuredTable {
	if n <= 0 {
		return MeasuredTable{}
	}
	mt := MeasuredTable{Total: UsableWidth}
	if n == 3 {
		mt.Columns = []int{legacyThreeCol, legacyThreeCol, UsableWidth - 2*legacyThreeCol}
		return mt
	}
	w := UsableWidth / n
	for i := 0; i < n-1; i++ {
		mt.Columns = append(mt.Columns, w)
	}
	mt.Columns = append(mt.Columns, UsableWidth-w*(n-1))
	return mt
}
