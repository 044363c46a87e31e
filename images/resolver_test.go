package images

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
)

func encodeTestPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("unable to encode test png: %v", err)
	}
	return buf.Bytes()
}

func TestResolveDataURI(t *testing.T) {
	r := NewResolver(nil, nil)
	data := encodeTestPNG(t, 20, 10)
	src := "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)

	res := r.Resolve(context.Background(), src)
	if res == nil {
		t.Fatal("expected resolved image")
	}
	if res.Width != 20 || res.Height != 10 {
		t.Errorf("dimensions = %dx%d, want 20x10", res.Width, res.Height)
	}
	if res.Format != "png" {
		t.Errorf("format = %q, want png", res.Format)
	}
	if img, _, err := image.Decode(bytes.NewReader(res.Data)); err != nil || img.Bounds().Dx() != 20 {
		t.Errorf("resolved bytes do not decode back: %v", err)
	}
}

func TestResolveDataURISVG(t *testing.T) {
	r := NewResolver(nil, nil)
	svg := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 40 20"><rect width="40" height="20"/></svg>`
	src := "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg))

	res := r.Resolve(context.Background(), src)
	if res == nil {
		t.Fatal("expected resolved image")
	}
	if res.Format != "png" {
		t.Errorf("format = %q, want png", res.Format)
	}
	if res.Width != 40 || res.Height != 20 {
		t.Errorf("dimensions = %dx%d, want 40x20", res.Width, res.Height)
	}
}

func TestResolveRemote(t *testing.T) {
	data := encodeTestPNG(t, 8, 8)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	r := NewResolver(srv.Client(), nil)
	res := r.Resolve(context.Background(), srv.URL+"/pic.png")
	if res == nil {
		t.Fatal("expected resolved image")
	}
	if res.Width != 8 || res.Height != 8 || res.Format != "png" {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestResolveRemoteFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		http.NotFound(w, req)
	}))
	defer srv.Close()

	r := NewResolver(srv.Client(), nil)
	if res := r.Resolve(context.Background(), srv.URL+"/gone.png"); res != nil {
		t.Errorf("expected nil for missing remote image, got %+v", res)
	}
}

func TestResolveUndecodableFallsBackToRaw(t *testing.T) {
	r := NewResolver(nil, nil)
	raw := []byte("GIF89a truncated beyond hope")
	src := "data:image/gif;base64," + base64.StdEncoding.EncodeToString(raw)

	res := r.Resolve(context.Background(), src)
	if res == nil {
		t.Fatal("expected raw passthrough")
	}
	if !bytes.Equal(res.Data, raw) {
		t.Error("raw bytes should pass through unchanged")
	}
	if res.Format != "gif" {
		t.Errorf("format = %q, want gif from signature sniff", res.Format)
	}
	if res.Width != DefaultWidthPx || res.Height != DefaultHeightPx {
		t.Errorf("dimensions = %dx%d, want defaults %dx%d", res.Width, res.Height, DefaultWidthPx, DefaultHeightPx)
	}
}

func TestResolveMalformedDataURI(t *testing.T) {
	r := NewResolver(nil, nil)
	if res := r.Resolve(context.Background(), "data:image/png;base64"); res != nil {
		t.Errorf("expected nil for malformed data uri, got %+v", res)
	}
}
