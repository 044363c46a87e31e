package docx

import (
	"archive/zip"

	"github.com/beevik/etree"
)

type headingDef struct {
	id           string
	name         string
	sizeHalf     string
	color        string
	spacingAfter string
}

var headingDefs = []headingDef{
	{"Heading1", "heading 1", "32", "2E74B5", "120"},
	{"Heading2", "heading 2", "26", "2E74B5", "120"},
	{"Heading3", "heading 3", "24", "1F4D78", "120"},
}

// writeStyles emits the fixed style sheet. Run level formatting is produced
// inline by the builder, so only paragraph styles and the hyperlink character
// style live here.
func writeStyles(zw *zip.Writer) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)

	styles := doc.CreateElement("w:styles")
	styles.CreateAttr("xmlns:w", "http://schemas.openxmlformats.org/wordprocessingml/2006/main")

	normal := styles.CreateElement("w:style")
	normal.CreateAttr("w:type", "paragraph")
	normal.CreateAttr("w:default", "1")
	normal.CreateAttr("w:styleId", "Normal")
	styleName(normal, "Normal")

	for _, h := range headingDefs {
		st := styles.CreateElement("w:style")
		st.CreateAttr("w:type", "paragraph")
		st.CreateAttr("w:styleId", h.id)
		styleName(st, h.name)
		st.CreateElement("w:basedOn").CreateAttr("w:val", "Normal")
		st.CreateElement("w:next").CreateAttr("w:val", "Normal")

		pPr := st.CreateElement("w:pPr")
		pPr.CreateElement("w:keepNext")
		spacing := pPr.CreateElement("w:spacing")
		spacing.CreateAttr("w:before", "240")
		spacing.CreateAttr("w:after", h.spacingAfter)

		rPr := st.CreateElement("w:rPr")
		rPr.CreateElement("w:b")
		rPr.CreateElement("w:color").CreateAttr("w:val", h.color)
		rPr.CreateElement("w:sz").CreateAttr("w:val", h.sizeHalf)
		rPr.CreateElement("w:szCs").CreateAttr("w:val", h.sizeHalf)
	}

	link := styles.CreateElement("w:style")
	link.CreateAttr("w:type", "character")
	link.CreateAttr("w:styleId", "Hyperlink")
	styleName(link, "Hyperlink")
	linkPr := link.CreateElement("w:rPr")
	linkPr.CreateElement("w:color").CreateAttr("w:val", linkColor)
	linkPr.CreateElement("w:u").CreateAttr("w:val", "single")

	return writeXMLToZip(zw, "word/styles.xml", doc)
}

func styleName(style *etree.Element, name string) {
	style.CreateElement("w:name").CreateAttr("w:val", name)
}
