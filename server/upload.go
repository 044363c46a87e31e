package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type uploadResponse struct {
	HTML  string `json:"html,omitempty"`
	Error string `json:"error,omitempty"`
}

// handleUpload accepts one multipart "file" field, converts it to HTML and
// responds with the post-processed markup. Uploaded and intermediate files
// are removed before responding on every exit path.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	log := s.log.With(zap.String("remote", r.RemoteAddr))

	if err := r.ParseMultipartForm(int64(s.cfg.UploadLimitMB) << 20); err != nil {
		log.Warn("Malformed upload request", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, uploadResponse{Error: "invalid multipart request"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		log.Warn("Upload request without file field", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, uploadResponse{Error: "missing file field"})
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".doc" && ext != ".docx" {
		log.Warn("Rejecting upload with unsupported extension", zap.String("file", header.Filename))
		writeJSON(w, http.StatusBadRequest, uploadResponse{Error: "only .doc and .docx files are supported"})
		return
	}

	workDir, err := os.MkdirTemp("", "upload-"+uuid.NewString())
	if err != nil {
		log.Error("Unable to create work directory", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, uploadResponse{Error: "conversion failed"})
		return
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			log.Warn("Unable to clean work directory", zap.String("dir", workDir), zap.Error(err))
		}
	}()

	inputPath := filepath.Join(workDir, "input"+ext)
	if err := saveUpload(file, inputPath); err != nil {
		log.Error("Unable to save upload", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, uploadResponse{Error: "conversion failed"})
		return
	}

	htmlPath, err := s.convert(r.Context(), inputPath, workDir)
	if err != nil {
		log.Error("Converter failed", zap.String("file", header.Filename), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, uploadResponse{Error: "conversion failed"})
		return
	}

	html, err := readConvertedHTML(htmlPath)
	if err != nil {
		log.Error("Unable to read converter output", zap.String("file", htmlPath), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, uploadResponse{Error: "conversion failed"})
		return
	}

	processed, err := postProcessHTML(html)
	if err != nil {
		log.Error("Unable to post-process converter output", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, uploadResponse{Error: "conversion failed"})
		return
	}

	log.Info("Upload converted", zap.String("file", header.Filename), zap.Int("html_bytes", len(processed)))
	writeJSON(w, http.StatusOK, uploadResponse{HTML: processed})
}

func saveUpload(src io.Reader, dst string) (err error) {
	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("unable to create file: %w", err)
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	if _, err := io.Copy(f, src); err != nil {
		return fmt.Errorf("unable to store upload: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, resp uploadResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
