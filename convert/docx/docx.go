package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/beevik/etree"
	fixzip "github.com/hidez8891/zip"
	"go.uber.org/zap"

	"dcx/config"
	"dcx/content"
	"dcx/images"
)

// Generate creates the DOCX output file.
func Generate(ctx context.Context, c *content.Content, outputPath string, cfg *config.DocumentConfig, log *zap.Logger) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	log.Info("Generating DOCX", zap.String("output", outputPath))

	resolved := resolveImages(ctx, c.Blocks, log)

	b := newBuilder(c.Layout, resolved, log)
	b.build(c.Blocks)

	_, tmpName := filepath.Split(outputPath)
	tmpName = filepath.Join(c.WorkDir, tmpName)

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	f, err := os.Create(tmpName)
	if err != nil {
		return fmt.Errorf("unable to create output file: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	defer zw.Close()

	if err := writeContentTypes(zw); err != nil {
		return fmt.Errorf("unable to write content types: %w", err)
	}
	if err := writeRootRels(zw); err != nil {
		return fmt.Errorf("unable to write package relationships: %w", err)
	}
	if err := writeXMLToZip(zw, "word/document.xml", b.doc); err != nil {
		return fmt.Errorf("unable to write document: %w", err)
	}
	if err := writeDocumentRels(zw, b.rels); err != nil {
		return fmt.Errorf("unable to write document relationships: %w", err)
	}
	if err := writeStyles(zw); err != nil {
		return fmt.Errorf("unable to write styles: %w", err)
	}
	for _, m := range b.media {
		if err := writeDataToZip(zw, "word/media/"+m.Name, m.Data); err != nil {
			return fmt.Errorf("unable to write image %s: %w", m.Name, err)
		}
	}

	// make sure buffers are flushed before continuing
	if err := zw.Close(); err != nil {
		return fmt.Errorf("unable to close output archive: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("unable to finalize output file: %w", err)
	}
	// clean temporary file
	defer os.Remove(tmpName)

	if cfg.FixZip {
		return copyZipWithoutDataDescriptors(tmpName, outputPath)
	}
	return copyFile(tmpName, outputPath)
}

// resolveImages fetches every image referenced by the flattened blocks,
// keyed by document order index. Failed images are simply absent so the
// builder can drop them.
func resolveImages(ctx context.Context, blocks []content.Block, log *zap.Logger) map[int]*images.Resolved {
	resolver := images.NewResolver(nil, log)
	resolved := make(map[int]*images.Resolved)

	var walk func(blocks []content.Block)
	walk = func(blocks []content.Block) {
		for i := range blocks {
			blk := &blocks[i]
			for ri := range blk.Runs {
				r := &blk.Runs[ri]
				if r.Kind != content.RunImage {
					continue
				}
				if res := resolver.Resolve(ctx, r.Src); res != nil {
					resolved[r.ImageIndex] = res
				}
			}
			for _, row := range blk.Rows {
				for _, cell := range row {
					walk(cell.Blocks)
				}
			}
		}
	}
	walk(blocks)
	return resolved
}

func writeContentTypes(zw *zip.Writer) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)

	types := doc.CreateElement("Types")
	types.CreateAttr("xmlns", "http://schemas.openxmlformats.org/package/2006/content-types")

	for _, d := range []struct{ ext, mime string }{
		{"rels", "application/vnd.openxmlformats-package.relationships+xml"},
		{"xml", "application/xml"},
		{"png", "image/png"},
		{"jpeg", "image/jpeg"},
		{"gif", "image/gif"},
	} {
		def := types.CreateElement("Default")
		def.CreateAttr("Extension", d.ext)
		def.CreateAttr("ContentType", d.mime)
	}

	for _, o := range []struct{ part, mime string }{
		{"/word/document.xml", "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"},
		{"/word/styles.xml", "application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"},
	} {
		ov := types.CreateElement("Override")
		ov.CreateAttr("PartName", o.part)
		ov.CreateAttr("ContentType", o.mime)
	}

	return writeXMLToZip(zw, "[Content_Types].xml", doc)
}

func writeRootRels(zw *zip.Writer) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)

	rels := doc.CreateElement("Relationships")
	rels.CreateAttr("xmlns", "http://schemas.openxmlformats.org/package/2006/relationships")

	rel := rels.CreateElement("Relationship")
	rel.CreateAttr("Id", "rId1")
	rel.CreateAttr("Type", "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument")
	rel.CreateAttr("Target", "word/document.xml")

	return writeXMLToZip(zw, "_rels/.rels", doc)
}

func writeDocumentRels(zw *zip.Writer, extra []relationship) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)

	rels := doc.CreateElement("Relationships")
	rels.CreateAttr("xmlns", "http://schemas.openxmlformats.org/package/2006/relationships")

	styles := rels.CreateElement("Relationship")
	styles.CreateAttr("Id", "rId1")
	styles.CreateAttr("Type", "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles")
	styles.CreateAttr("Target", "styles.xml")

	for _, r := range extra {
		rel := rels.CreateElement("Relationship")
		rel.CreateAttr("Id", r.ID)
		rel.CreateAttr("Type", r.Type)
		rel.CreateAttr("Target", r.Target)
		if r.External {
			rel.CreateAttr("TargetMode", "External")
		}
	}

	return writeXMLToZip(zw, "word/_rels/document.xml.rels", doc)
}

func writeXMLToZip(zw *zip.Writer, name string, doc *etree.Document) error {
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return err
	}
	return writeDataToZip(zw, name, buf.Bytes())
}

// writeDataToZip stores the part without a modification time so repeated
// exports of the same content produce identical archives.
func writeDataToZip(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:   name,
		Method: zip.Deflate,
	})
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func copyZipWithoutDataDescriptors(from, to string) error {

	out, err := os.Create(to)
	if err != nil {
		return fmt.Errorf("unable to create target file (%s): %w", to, err)
	}
	defer out.Close()

	r, err := fixzip.OpenReader(from)
	if err != nil {
		return fmt.Errorf("unable to read archive file (%s): %w", from, err)
	}
	defer r.Close()

	w := fixzip.NewWriter(out)
	defer w.Close()

	for _, file := range r.File {
		// unset data descriptor flag.
		file.Flags &= ^fixzip.FlagDataDescriptor

		// copy zip entry
		if err := w.CopyFile(file); err != nil {
			return fmt.Errorf("unable to write target file (%s): %w", to, err)
		}
	}
	return nil
}

func copyFile(src, dst string) error {

	sourceFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer sourceFile.Close()

	destinationFile, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer destinationFile.Close()

	if _, err = io.Copy(destinationFile, sourceFile); err != nil {
		return fmt.Errorf("failed to copy file contents: %w", err)
	}

	if err = destinationFile.Close(); err != nil {
		return fmt.Errorf("failed to close destination file: %w", err)
	}
	return nil
}
