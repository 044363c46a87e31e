package docx

import (
	"fmt"
	"strconv"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"dcx/content"
	"dcx/units"
)

var formatExtensions = map[string]string{
	"png":  "png",
	"jpeg": "jpeg",
	"gif":  "gif",
}

// imageRun renders one image run as an inline drawing, or nil when the image
// failed to resolve and was dropped.
func (b *builder) imageRun(r *content.Run, inCell bool) *etree.Element {
	res := b.resolved[r.ImageIndex]
	if res == nil {
		b.log.Warn("Image was not resolved, dropping", zap.Int("image", r.ImageIndex))
		return nil
	}

	wPt, hPt := b.imageSize(r.ImageIndex, res.Width, res.Height)
	if !inCell {
		wPt, hPt = boostAndCap(wPt, hPt)
	}

	ext, ok := formatExtensions[res.Format]
	if !ok {
		ext = "png"
	}
	b.imageNum++
	name := fmt.Sprintf("image%d.%s", b.imageNum, ext)
	b.media = append(b.media, mediaFile{Name: name, Data: res.Data})

	relID := b.addRelationship(relationship{
		Type:   "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image",
		Target: "media/" + name,
	})

	b.drawingID++
	return drawing(b.drawingID, relID, name, wPt*emuPerPoint, hPt*emuPerPoint)
}

// imageSize prefers the rendered size over the decoded natural size, both
// converted px to pt.
func (b *builder) imageSize(index, naturalW, naturalH int) (wPt, hPt int) {
	if m, ok := b.layout.Image(index); ok {
		return units.PxToPoints(m.WidthPx), units.PxToPoints(m.HeightPx)
	}
	return units.PxToPoints(float64(naturalW)), units.PxToPoints(float64(naturalH))
}

// boostAndCap applies the top-level 10% boost, then caps width at
// maxImageWidthPt scaling height to keep the aspect ratio.
func boostAndCap(wPt, hPt int) (int, int) {
	w := float64(wPt) * imageBoost
	h := float64(hPt) * imageBoost
	if w > maxImageWidthPt {
		h = h * maxImageWidthPt / w
		w = maxImageWidthPt
	}
	return int(w), int(h)
}

func drawing(id int, relID, name string, cx, cy int) *etree.Element {
	run := etree.NewElement("w:r")
	inline := run.CreateElement("w:drawing").CreateElement("wp:inline")
	for _, attr := range []string{"distT", "distB", "distL", "distR"} {
		inline.CreateAttr(attr, "0")
	}

	extent := inline.CreateElement("wp:extent")
	extent.CreateAttr("cx", strconv.Itoa(cx))
	extent.CreateAttr("cy", strconv.Itoa(cy))

	docPr := inline.CreateElement("wp:docPr")
	docPr.CreateAttr("id", strconv.Itoa(id))
	docPr.CreateAttr("name", name)

	graphic := inline.CreateElement("a:graphic")
	graphicData := graphic.CreateElement("a:graphicData")
	graphicData.CreateAttr("uri", "http://schemas.openxmlformats.org/drawingml/2006/picture")

	pic := graphicData.CreateElement("pic:pic")

	nvPicPr := pic.CreateElement("pic:nvPicPr")
	cNvPr := nvPicPr.CreateElement("pic:cNvPr")
	cNvPr.CreateAttr("id", strconv.Itoa(id))
	cNvPr.CreateAttr("name", name)
	nvPicPr.CreateElement("pic:cNvPicPr")

	blipFill := pic.CreateElement("pic:blipFill")
	blipFill.CreateElement("a:blip").CreateAttr("r:embed", relID)
	blipFill.CreateElement("a:stretch").CreateElement("a:fillRect")

	spPr := pic.CreateElement("pic:spPr")
	xfrm := spPr.CreateElement("a:xfrm")
	off := xfrm.CreateElement("a:off")
	off.CreateAttr("x", "0")
	off.CreateAttr("y", "0")
	ext := xfrm.CreateElement("a:ext")
	ext.CreateAttr("cx", strconv.Itoa(cx))
	ext.CreateAttr("cy", strconv.Itoa(cy))
	prstGeom := spPr.CreateElement("a:prstGeom")
	prstGeom.CreateAttr("prst", "rect")
	prstGeom.CreateElement("a:avLst")

	return run
}
