package convert

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

func TestIsArchiveFile(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("non-zip extension", func(t *testing.T) {
		filePath := filepath.Join(tmpDir, "test.txt")
		if err := os.WriteFile(filePath, []byte("not a zip"), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}
		got, err := isArchiveFile(filePath)
		if err != nil {
			t.Errorf("isArchiveFile() error = %v", err)
		}
		if got {
			t.Error("isArchiveFile() = true, want false")
		}
	})

	t.Run("zip extension but invalid content", func(t *testing.T) {
		filePath := filepath.Join(tmpDir, "test.zip")
		if err := os.WriteFile(filePath, []byte("not a real zip file"), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}
		got, err := isArchiveFile(filePath)
		if err != nil {
			t.Errorf("isArchiveFile() error = %v", err)
		}
		if got {
			t.Error("isArchiveFile() = true, want false")
		}
	})

	t.Run("valid zip file", func(t *testing.T) {
		filePath := filepath.Join(tmpDir, "test2.zip")
		zipFile, err := os.Create(filePath)
		if err != nil {
			t.Fatalf("Failed to create zip file: %v", err)
		}
		w := zip.NewWriter(zipFile)
		f, err := w.Create("test.txt")
		if err != nil {
			t.Fatalf("Failed to create file in zip: %v", err)
		}
		f.Write(make([]byte, 300))
		w.Close()
		zipFile.Close()

		got, err := isArchiveFile(filePath)
		if err != nil {
			t.Errorf("isArchiveFile() error = %v", err)
		}
		if !got {
			t.Error("isArchiveFile() = false, want true")
		}
	})

	t.Run("non-existent file", func(t *testing.T) {
		if _, err := isArchiveFile("/nonexistent/file.zip"); err == nil {
			t.Error("Expected error for non-existent file, got nil")
		}
	})
}

func TestIsSnapshotFile(t *testing.T) {
	tmpDir := t.TempDir()

	for _, tc := range []struct {
		name    string
		file    string
		content string
		want    bool
	}{
		{"snapshot", "doc.json", `{"root":{"type":"root"}}`, true},
		{"leading whitespace", "doc2.json", "\n\t {\"root\":{}}", true},
		{"layout sidecar excluded", "doc.layout.json", `{"tables":[]}`, false},
		{"wrong extension", "doc.txt", `{"root":{}}`, false},
		{"json array", "arr.json", `[1,2,3]`, false},
		{"not json at all", "garbage.json", "hello", false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			filePath := filepath.Join(tmpDir, tc.file)
			if err := os.WriteFile(filePath, []byte(tc.content), 0644); err != nil {
				t.Fatalf("Failed to create test file: %v", err)
			}
			got, err := isSnapshotFile(filePath)
			if err != nil {
				t.Errorf("isSnapshotFile() error = %v", err)
			}
			if got != tc.want {
				t.Errorf("isSnapshotFile(%s) = %v, want %v", tc.file, got, tc.want)
			}
		})
	}
}

func TestSidecarPath(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want string
	}{
		{"doc.json", "doc.layout.json"},
		{"dir/doc.json", "dir/doc.layout.json"},
		{"noext", "noext.layout.json"},
	} {
		if got := sidecarPath(tc.in); got != tc.want {
			t.Errorf("sidecarPath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
