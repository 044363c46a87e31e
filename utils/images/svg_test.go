package images

import "testing"

func TestRasterizeSVG(t *testing.T) {
	t.Run("intrinsic", func(t *testing.T) {
		svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 50"><rect width="100" height="50"/></svg>`)
		img, err := RasterizeSVG(svg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 50 {
			t.Fatalf("unexpected bounds: %v", img.Bounds())
		}
	})

	t.Run("oversized_clamped", func(t *testing.T) {
		svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100000 50000"><rect width="100000" height="50000"/></svg>`)
		img, err := RasterizeSVG(svg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if img.Bounds().Dx() != 8192 || img.Bounds().Dy() != 4096 {
			t.Fatalf("unexpected bounds: %v", img.Bounds())
		}
	})

	t.Run("not_svg", func(t *testing.T) {
		if _, err := RasterizeSVG([]byte("plain text")); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("no_shapes", func(t *testing.T) {
		svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10"></svg>`)
		if _, err := RasterizeSVG(svg); err == nil {
			t.Fatal("expected error")
		}
	})
}
