package convert

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
)

const (
	snapshotExt = ".json"
	sidecarExt  = ".layout.json"
)

// isArchiveFile checks whether the file is a zip archive worth looking into.
// Extension is checked first so we do not sniff every file in a directory walk.
func isArchiveFile(path string) (bool, error) {
	if !strings.EqualFold(filepath.Ext(path), ".zip") {
		return false, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("unable to open file: %w", err)
	}
	defer f.Close()

	head := make([]byte, 262)
	n, err := f.Read(head)
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("unable to read file header: %w", err)
	}
	return filetype.IsType(head[:n], matchers.TypeZip), nil
}

// isSnapshotFile checks whether the file looks like a document snapshot:
// a ".json" file (but not a layout sidecar) starting with a JSON object.
func isSnapshotFile(path string) (bool, error) {
	if !isSnapshotName(path) {
		return false, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("unable to open file: %w", err)
	}
	defer f.Close()

	head := make([]byte, 64)
	n, err := f.Read(head)
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("unable to read file header: %w", err)
	}
	return startsJSONObject(head[:n]), nil
}

// isSnapshotInArchive applies the same test to a zip entry.
func isSnapshotInArchive(f *zip.File) (bool, error) {
	if !isSnapshotName(f.FileHeader.Name) {
		return false, nil
	}

	r, err := f.Open()
	if err != nil {
		return false, fmt.Errorf("unable to open archive entry: %w", err)
	}
	defer r.Close()

	head := make([]byte, 64)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return false, fmt.Errorf("unable to read archive entry: %w", err)
	}
	return startsJSONObject(head[:n]), nil
}

func isSnapshotName(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, snapshotExt) && !strings.HasSuffix(lower, sidecarExt)
}

func startsJSONObject(head []byte) bool {
	head = bytes.TrimLeft(head, " \t\r\n")
	return len(head) > 0 && head[0] == '{'
}

// sidecarPath returns the layout sidecar name for a snapshot path:
// "book.json" pairs with "book.layout.json".
func sidecarPath(snapshot string) string {
	return strings.TrimSuffix(snapshot, snapshotExt) + sidecarExt
}
