// Package docx generates the WordprocessingML package for a prepared
// document: one section of paragraphs, tables and embedded images zipped
// together with its parts and relationships.
package docx

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"dcx/content"
	"dcx/images"
	"dcx/layout"
	"dcx/model"
)

// Page geometry in twips: US Letter with half-inch margins on all sides.
const (
	pageWidth  = 12240
	pageHeight = 15840
	pageMargin = 720
)

const (
	// linkColor is forced on hyperlink runs regardless of resolved style.
	linkColor = "0000FF"

	// monoFont overrides the resolved family on code runs.
	monoFont = "Courier New"

	// Top-level images get a 10% visual boost, then a hard width cap.
	// Open question: the boost is an empirical fidelity value.
	imageBoost      = 1.1
	maxImageWidthPt = 700

	// emuPerPoint converts typographic points to EMUs for w:drawing extents.
	emuPerPoint = 12700

	nbsp = " "
)

type relationship struct {
	ID       string
	Type     string
	Target   string
	External bool
}

type mediaFile struct {
	Name string
	Data []byte
}

// builder accumulates the document body together with the relationships and
// media parts body elements refer to. One builder serves one export.
type builder struct {
	doc  *etree.Document
	body *etree.Element

	rels  []relationship
	media []mediaFile

	layout   *layout.Snapshot
	resolved map[int]*images.Resolved
	log      *zap.Logger

	tableIndex int
	imageNum   int
	drawingID  int
}

func newBuilder(ls *layout.Snapshot, resolved map[int]*images.Resolved, log *zap.Logger) *builder {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)

	root := doc.CreateElement("w:document")
	root.CreateAttr("xmlns:w", "http://schemas.openxmlformats.org/wordprocessingml/2006/main")
	root.CreateAttr("xmlns:r", "http://schemas.openxmlformats.org/officeDocument/2006/relationships")
	root.CreateAttr("xmlns:wp", "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing")
	root.CreateAttr("xmlns:a", "http://schemas.openxmlformats.org/drawingml/2006/main")
	root.CreateAttr("xmlns:pic", "http://schemas.openxmlformats.org/drawingml/2006/picture")

	return &builder{
		doc:      doc,
		body:     root.CreateElement("w:body"),
		layout:   ls,
		resolved: resolved,
		log:      log,
	}
}

// build appends all blocks to the body and closes the single section.
func (b *builder) build(blocks []content.Block) {
	for i := range blocks {
		b.appendBlock(&blocks[i])
	}
	b.appendSectionProperties()
}

func (b *builder) appendBlock(blk *content.Block) {
	switch blk.Kind {
	case content.BlockTable:
		b.appendTable(blk)
	default:
		b.body.AddChild(b.paragraph(blk, false))
	}
}

var headingStyles = map[string]string{
	"h1": "Heading1",
	"h2": "Heading2",
}

func headingStyle(tag string) string {
	if s, ok := headingStyles[tag]; ok {
		return s
	}
	return "Heading3"
}

var alignmentValues = map[model.Alignment]string{
	model.AlignCenter:  "center",
	model.AlignRight:   "right",
	model.AlignJustify: "both",
}

// paragraph renders one non-table block as a w:p element.
func (b *builder) paragraph(blk *content.Block, inCell bool) *etree.Element {
	p := etree.NewElement("w:p")
	pPr := p.CreateElement("w:pPr")

	if blk.Kind == content.BlockHeading {
		pPr.CreateElement("w:pStyle").CreateAttr("w:val", headingStyle(blk.Tag))
	}

	// anything unmapped, including unset, renders left which is the default
	if jc, ok := alignmentValues[blk.Alignment]; ok {
		pPr.CreateElement("w:jc").CreateAttr("w:val", jc)
	}

	spacing := pPr.CreateElement("w:spacing")
	spacing.CreateAttr("w:before", strconv.Itoa(blk.SpacingBefore))
	spacing.CreateAttr("w:after", strconv.Itoa(blk.SpacingAfter))
	if blk.LineSpacing > 0 {
		spacing.CreateAttr("w:line", strconv.Itoa(blk.LineSpacing))
		spacing.CreateAttr("w:lineRule", "auto")
	}

	if blk.Kind == content.BlockListItem {
		marker := "• "
		if blk.Ordered {
			marker = fmt.Sprintf("%d. ", blk.Index+1)
		}
		p.AddChild(textRun(marker, nil))
	}
	if blk.Kind == content.BlockQuote {
		p.AddChild(textRun("“", nil))
	}

	for i := range blk.Runs {
		b.appendRun(p, &blk.Runs[i], inCell)
	}

	if blk.Kind == content.BlockQuote {
		p.AddChild(textRun("”", nil))
	}
	return p
}

func (b *builder) appendRun(p *etree.Element, r *content.Run, inCell bool) {
	switch r.Kind {
	case content.RunBreak:
		br := etree.NewElement("w:r")
		br.CreateElement("w:br")
		p.AddChild(br)
	case content.RunImage:
		if el := b.imageRun(r, inCell); el != nil {
			p.AddChild(el)
		}
	case content.RunText:
		if r.IsLink {
			b.appendHyperlink(p, r)
			return
		}
		for _, el := range b.textElements(r) {
			p.AddChild(el)
		}
	}
}

// appendHyperlink wraps the run in an external-relationship hyperlink with
// the fixed link color and forced underline.
func (b *builder) appendHyperlink(p *etree.Element, r *content.Run) {
	relID := b.addRelationship(relationship{
		Type:     "http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink",
		Target:   r.URL,
		External: true,
	})

	link := p.CreateElement("w:hyperlink")
	link.CreateAttr("r:id", relID)

	forced := *r
	forced.Style.Color = linkColor
	for _, el := range b.textElements(&forced) {
		link.AddChild(el)
	}
}

// textElements renders one text run, splitting embedded newlines into break
// separated lines and tabs into tab separated segments.
func (b *builder) textElements(r *content.Run) []*etree.Element {
	var out []*etree.Element
	for li, line := range strings.Split(r.Text, "\n") {
		if li > 0 {
			br := etree.NewElement("w:r")
			br.CreateElement("w:br")
			out = append(out, br)
		}
		run := etree.NewElement("w:r")
		run.AddChild(runProperties(r))
		for si, segment := range strings.Split(line, "\t") {
			if si > 0 {
				run.CreateElement("w:tab")
			}
			t := run.CreateElement("w:t")
			t.CreateAttr("xml:space", "preserve")
			t.SetText(padInteriorSpaces(segment))
		}
		out = append(out, run)
	}
	return out
}

// padInteriorSpaces turns every run of 2+ spaces into one space followed by
// non-breaking spaces so consuming renderers cannot collapse them.
func padInteriorSpaces(s string) string {
	var sb strings.Builder
	spaces := 0
	flush := func() {
		if spaces == 0 {
			return
		}
		sb.WriteByte(' ')
		sb.WriteString(strings.Repeat(nbsp, spaces-1))
		spaces = 0
	}
	for _, r := range s {
		if r == ' ' {
			spaces++
			continue
		}
		flush()
		sb.WriteRune(r)
	}
	flush()
	return sb.String()
}

// runProperties renders w:rPr for a text run.
func runProperties(r *content.Run) *etree.Element {
	rPr := etree.NewElement("w:rPr")

	family := r.Style.FontFamily
	if r.Format.Code() {
		family = monoFont
	}
	if family != "" {
		fonts := rPr.CreateElement("w:rFonts")
		fonts.CreateAttr("w:ascii", family)
		fonts.CreateAttr("w:hAnsi", family)
	}
	if r.Format.Bold() {
		rPr.CreateElement("w:b")
	}
	if r.Format.Italic() {
		rPr.CreateElement("w:i")
	}
	if r.Format.Strikethrough() {
		rPr.CreateElement("w:strike")
	}
	if r.Format.Underline() || r.IsLink {
		rPr.CreateElement("w:u").CreateAttr("w:val", "single")
	}
	if r.Style.Color != "" {
		rPr.CreateElement("w:color").CreateAttr("w:val", r.Style.Color)
	}
	if r.Style.Background != "" {
		shd := rPr.CreateElement("w:shd")
		shd.CreateAttr("w:val", "clear")
		shd.CreateAttr("w:color", "auto")
		shd.CreateAttr("w:fill", r.Style.Background)
	}
	if r.Style.FontSizeHalfPoints > 0 {
		sz := strconv.Itoa(r.Style.FontSizeHalfPoints)
		rPr.CreateElement("w:sz").CreateAttr("w:val", sz)
		rPr.CreateElement("w:szCs").CreateAttr("w:val", sz)
	}
	return rPr
}

// textRun renders a marker or quote decoration run without styling.
func textRun(text string, rPr *etree.Element) *etree.Element {
	run := etree.NewElement("w:r")
	if rPr != nil {
		run.AddChild(rPr)
	}
	t := run.CreateElement("w:t")
	t.CreateAttr("xml:space", "preserve")
	t.SetText(text)
	return run
}

func (b *builder) addRelationship(rel relationship) string {
	rel.ID = fmt.Sprintf("rId%d", len(b.rels)+2) // rId1 is styles.xml
	b.rels = append(b.rels, rel)
	return rel.ID
}
