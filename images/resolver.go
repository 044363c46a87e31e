// Package images turns image references found in a document snapshot into
// normalized raster bytes plus intrinsic pixel dimensions. A reference is
// either a data URI or a remote URL. Resolution never fails the export:
// anything unresolvable is logged and dropped.
package images

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	imgutil "dcx/utils/images"
)

const (
	// Pixel dimensions assumed when no decode path yields any.
	DefaultWidthPx  = 400
	DefaultHeightPx = 300

	maxImageBytes = 64 << 20
)

// Resolved is an image ready for embedding: normalized bytes, native pixel
// size and one of the supported container formats (png, jpeg, gif).
type Resolved struct {
	Data   []byte
	Width  int
	Height int
	Format string
}

// Resolver fetches and normalizes image references.
type Resolver struct {
	client *http.Client
	log    *zap.Logger
}

// NewResolver creates a Resolver. A nil client gets a default with a 30s
// timeout.
func NewResolver(client *http.Client, log *zap.Logger) *Resolver {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{client: client, log: log.Named("images")}
}

// Resolve turns src into a Resolved image or nil when the reference cannot be
// fetched or made sense of. Each source is attempted once, no retries.
//
// The preferred path decodes the bytes and re-encodes to PNG so the embedded
// image is always in a format the consumer understands. When decoding fails
// the raw bytes are passed through with the format sniffed from magic bytes
// and the default pixel size assumed.
func (r *Resolver) Resolve(ctx context.Context, src string) *Resolved {
	data, mimeType, err := r.fetch(ctx, src)
	if err != nil {
		r.log.Warn("Unable to fetch image, dropping", zap.String("src", summarizeSrc(src)), zap.Error(err))
		return nil
	}
	if len(data) == 0 {
		r.log.Warn("Empty image, dropping", zap.String("src", summarizeSrc(src)))
		return nil
	}

	if strings.Contains(strings.ToLower(mimeType), "svg") || filetype.IsMIME(data, "image/svg+xml") || looksLikeSVG(data) {
		if res := r.rasterize(data, src); res != nil {
			return res
		}
		// fall through to the raw paths, maybe the sniffer knows better
	}

	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		w, h := img.Bounds().Dx(), img.Bounds().Dy()
		if encoded, err := encodePNG(img); err == nil {
			return &Resolved{Data: encoded, Width: w, Height: h, Format: "png"}
		}
		r.log.Warn("Unable to re-encode image, passing raw bytes through", zap.String("src", summarizeSrc(src)))
		return &Resolved{Data: data, Width: w, Height: h, Format: sniffFormat(data)}
	}

	r.log.Debug("Image does not decode, passing raw bytes through", zap.String("src", summarizeSrc(src)))
	return &Resolved{Data: data, Width: DefaultWidthPx, Height: DefaultHeightPx, Format: sniffFormat(data)}
}

func (r *Resolver) rasterize(data []byte, src string) *Resolved {
	img, err := imgutil.RasterizeSVG(data)
	if err != nil {
		r.log.Warn("Unable to rasterize SVG", zap.String("src", summarizeSrc(src)), zap.Error(err))
		return nil
	}
	encoded, err := encodePNG(img)
	if err != nil {
		r.log.Warn("Unable to encode rasterized SVG", zap.String("src", summarizeSrc(src)), zap.Error(err))
		return nil
	}
	return &Resolved{Data: encoded, Width: img.Bounds().Dx(), Height: img.Bounds().Dy(), Format: "png"}
}

func (r *Resolver) fetch(ctx context.Context, src string) ([]byte, string, error) {
	if strings.HasPrefix(src, "data:") {
		return decodeDataURI(src)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, "", fmt.Errorf("bad image url: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("unable to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unable to fetch image: status %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, "", fmt.Errorf("unable to read image body: %w", err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// decodeDataURI handles "data:<mime>[;base64],<payload>".
func decodeDataURI(src string) ([]byte, string, error) {
	meta, payload, found := strings.Cut(strings.TrimPrefix(src, "data:"), ",")
	if !found {
		return nil, "", fmt.Errorf("malformed data uri")
	}

	mimeType, _, _ := strings.Cut(meta, ";")
	if strings.Contains(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, "", fmt.Errorf("unable to decode data uri: %w", err)
		}
		return data, mimeType, nil
	}

	unescaped, err := url.PathUnescape(payload)
	if err != nil {
		return nil, "", fmt.Errorf("unable to unescape data uri: %w", err)
	}
	return []byte(unescaped), mimeType, nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.DefaultCompression)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// sniffFormat detects the container format from magic bytes, defaulting to
// png when unrecognized or unsupported.
func sniffFormat(data []byte) string {
	switch t, _ := filetype.Match(data); t {
	case matchers.TypeJpeg:
		return "jpeg"
	case matchers.TypeGif:
		return "gif"
	default:
		return "png"
	}
}

func looksLikeSVG(data []byte) bool {
	head := bytes.TrimSpace(data)
	if len(head) > 512 {
		head = head[:512]
	}
	return bytes.HasPrefix(head, []byte("<svg")) || bytes.Contains(head, []byte("<svg"))
}

// summarizeSrc keeps log lines readable when src is a multi-megabyte data
// URI.
func summarizeSrc(src string) string {
	const limit = 96
	if len(src) <= limit {
		return src
	}
	return src[:limit] + "..."
}
