package layout

import (
	"slices"
	"strings"
	"testing"
)

const sampleSidecar = `{
	"tables": [
		[124, 124, 376],
		null
	],
	"images": [
		{"widthPx": 200, "heightPx": 150}
	],
	"fontFamily": "Roboto",
	"fontSizePx": 16
}`

func TestReadSnapshot(t *testing.T) {
	s, err := ReadSnapshot(strings.NewReader(sampleSidecar), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(s.Tables) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(s.Tables))
	}
	mt, ok := s.Table(0)
	if !ok {
		t.Fatal("first table should be measured")
	}
	if want := []int{1860, 1860, 5640}; !slices.Equal(mt.Columns, want) {
		t.Errorf("columns = %v, want %v", mt.Columns, want)
	}
	if mt.Total != 9360 {
		t.Errorf("total = %d, want 9360", mt.Total)
	}
	if _, ok := s.Table(1); ok {
		t.Error("rowless table slot should not be measured")
	}

	img, ok := s.Image(0)
	if !ok || img.WidthPx != 200 || img.HeightPx != 150 {
		t.Errorf("image = %+v ok=%v, want 200x150", img, ok)
	}

	if s.Defaults.FontFamily != "Roboto" {
		t.Errorf("default family = %q, want Roboto", s.Defaults.FontFamily)
	}
	if s.Defaults.FontSizeHalfPoints != 24 {
		t.Errorf("default size = %d half-points, want 24", s.Defaults.FontSizeHalfPoints)
	}
}

func TestReadSnapshotBad(t *testing.T) {
	if _, err := ReadSnapshot(strings.NewReader("not json"), nil); err == nil {
		t.Error("expected decode error")
	}
}

func TestLookupOutOfRange(t *testing.T) {
	var s Snapshot
	if _, ok := s.Table(0); ok {
		t.Error("empty snapshot should have no tables")
	}
	if _, ok := s.Image(5); ok {
		t.Error("empty snapshot should have no images")
	}
}

func TestFallbackColumns(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		expected []int
	}{
		{"three_uses_legacy_split", 3, []int{2200, 2200, 4960}},
		{"two_even", 2, []int{4680, 4680}},
		{"one_full_width", 1, []int{9360}},
		{"seven_remainder_to_last", 7, []int{1337, 1337, 1337, 1337, 1337, 1337, 1338}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mt := FallbackColumns(tt.n)
			if !slices.Equal(mt.Columns, tt.expected) {
				t.Errorf("FallbackColumns(%d) = %v, want %v", tt.n, mt.Columns, tt.expected)
			}
			if mt.Total != 9360 {
				t.Errorf("total = %d, want 9360", mt.Total)
			}
		})
	}
}
