package docx

import (
	"strconv"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"dcx/content"
	"dcx/layout"
)

// tableBorder is the uniform border width in eighths of a point.
const tableBorder = 1

// appendTable renders one table block with spacer paragraphs around it.
// Tables cannot carry spacing natively, hence the explicit spacers.
func (b *builder) appendTable(blk *content.Block) {
	// a table node may legitimately arrive without rows, its measurement
	// slot is still consumed to keep document-order correlation
	if len(blk.Rows) == 0 {
		b.log.Debug("Skipping table without rows", zap.Int("table", b.tableIndex))
		b.tableIndex++
		return
	}

	cols := b.tableColumns(blk)
	b.tableIndex++

	b.body.AddChild(spacerParagraph(blk.SpacingBefore, 0))

	tbl := b.body.CreateElement("w:tbl")

	tblPr := tbl.CreateElement("w:tblPr")
	width := tblPr.CreateElement("w:tblW")
	width.CreateAttr("w:w", strconv.Itoa(cols.Total))
	width.CreateAttr("w:type", "dxa")
	tblPr.CreateElement("w:tblLayout").CreateAttr("w:type", "fixed")

	borders := tblPr.CreateElement("w:tblBorders")
	for _, side := range []string{"top", "start", "bottom", "end", "insideH", "insideV"} {
		border := borders.CreateElement("w:" + side)
		border.CreateAttr("w:val", "single")
		border.CreateAttr("w:sz", strconv.Itoa(tableBorder))
		border.CreateAttr("w:space", "0")
		border.CreateAttr("w:color", "000000")
	}

	margins := tblPr.CreateElement("w:tblCellMar")
	for _, mar := range []struct {
		side  string
		width int
	}{{"top", 100}, {"start", 120}, {"bottom", 100}, {"end", 120}} {
		m := margins.CreateElement("w:" + mar.side)
		m.CreateAttr("w:w", strconv.Itoa(mar.width))
		m.CreateAttr("w:type", "dxa")
	}

	grid := tbl.CreateElement("w:tblGrid")
	for _, w := range cols.Columns {
		grid.CreateElement("w:gridCol").CreateAttr("w:w", strconv.Itoa(w))
	}

	for _, row := range blk.Rows {
		tr := tbl.CreateElement("w:tr")
		for ci, cell := range row {
			tc := tr.CreateElement("w:tc")
			tcPr := tc.CreateElement("w:tcPr")
			tcW := tcPr.CreateElement("w:tcW")
			tcW.CreateAttr("w:w", strconv.Itoa(columnWidth(cols, ci)))
			tcW.CreateAttr("w:type", "dxa")

			for bi := range cell.Blocks {
				tc.AddChild(b.paragraph(&cell.Blocks[bi], true))
			}
			// a cell must contain at least one paragraph
			if len(cell.Blocks) == 0 {
				tc.CreateElement("w:p")
			}
		}
	}

	b.body.AddChild(spacerParagraph(0, blk.SpacingAfter))
}

// tableColumns picks the measured widths for the table in document order,
// scaled down proportionally when they overflow the printable width, or the
// fallback distribution when unmeasured.
func (b *builder) tableColumns(blk *content.Block) layout.MeasuredTable {
	cols := 0
	for _, row := range blk.Rows {
		if len(row) > cols {
			cols = len(row)
		}
	}

	mt, ok := b.layout.Table(b.tableIndex)
	if !ok {
		b.log.Debug("Table has no measurement, distributing usable width",
			zap.Int("table", b.tableIndex), zap.Int("columns", cols))
		return layout.FallbackColumns(cols)
	}

	if mt.Total > layout.UsableWidth {
		scaled := layout.MeasuredTable{}
		for _, w := range mt.Columns {
			sw := w * layout.UsableWidth / mt.Total
			scaled.Columns = append(scaled.Columns, sw)
			scaled.Total += sw
		}
		return scaled
	}
	return mt
}

func columnWidth(mt layout.MeasuredTable, i int) int {
	if i < len(mt.Columns) {
		return mt.Columns[i]
	}
	if len(mt.Columns) > 0 {
		return mt.Columns[len(mt.Columns)-1]
	}
	return layout.UsableWidth
}

// spacerParagraph is an empty paragraph carrying only vertical spacing.
func spacerParagraph(before, after int) *etree.Element {
	p := etree.NewElement("w:p")
	spacing := p.CreateElement("w:pPr").CreateElement("w:spacing")
	spacing.CreateAttr("w:before", strconv.Itoa(before))
	spacing.CreateAttr("w:after", strconv.Itoa(after))
	return p
}

// appendSectionProperties closes the body with the single fixed-geometry
// section.
func (b *builder) appendSectionProperties() {
	sectPr := b.body.CreateElement("w:sectPr")

	pgSz := sectPr.CreateElement("w:pgSz")
	pgSz.CreateAttr("w:w", strconv.Itoa(pageWidth))
	pgSz.CreateAttr("w:h", strconv.Itoa(pageHeight))

	pgMar := sectPr.CreateElement("w:pgMar")
	for _, side := range []string{"top", "right", "bottom", "left"} {
		pgMar.CreateAttr("w:"+side, strconv.Itoa(pageMargin))
	}
	pgMar.CreateAttr("w:header", strconv.Itoa(pageMargin))
	pgMar.CreateAttr("w:footer", strconv.Itoa(pageMargin))
	pgMar.CreateAttr("w:gutter", "0")
}
