package content

import (
	"dcx/css"
	"dcx/utils/debug"
)

var blockKindNames = map[BlockKind]string{
	BlockParagraph: "paragraph",
	BlockHeading:   "heading",
	BlockQuote:     "quote",
	BlockListItem:  "list-item",
	BlockTable:     "table",
}

var runKindNames = map[RunKind]string{
	RunText:  "text",
	RunBreak: "break",
	RunImage: "image",
}

// String returns a readable dump of the flattened document and its layout
// geometry. It exists solely for manual inspection during debugging.
func (c *Content) String() string {
	if c == nil {
		return "<nil Content>"
	}

	tw := debug.NewTreeWriter()
	tw.Line(0, "Document %q, export %s", c.SrcName, c.ExportID)
	tw.Line(0, "Blocks: %d", len(c.Blocks))
	for i, b := range c.Blocks {
		dumpBlock(tw, 1, i, &b)
	}

	if c.Layout != nil && (len(c.Layout.Tables) > 0 || len(c.Layout.Images) > 0) {
		tw.Line(0, "Layout snapshot:")
		for i, mt := range c.Layout.Tables {
			tw.Line(1, "Table[%d] columns=%v total=%d", i, mt.Columns, mt.Total)
		}
		for i, mi := range c.Layout.Images {
			tw.Line(1, "Image[%d] %gx%g px", i, mi.WidthPx, mi.HeightPx)
		}
	}

	return tw.String()
}

func dumpBlock(tw *debug.TreeWriter, depth, idx int, b *Block) {
	switch b.Kind {
	case BlockHeading:
		tw.Line(depth, "Block[%d] heading tag=%q align=%v", idx, b.Tag, b.Alignment)
	case BlockListItem:
		tw.Line(depth, "Block[%d] list-item ordered=%v index=%d", idx, b.Ordered, b.Index)
	case BlockTable:
		tw.Line(depth, "Block[%d] table rows=%d", idx, len(b.Rows))
		for r, row := range b.Rows {
			tw.Line(depth+1, "Row[%d] cells=%d", r, len(row))
			for ci, cell := range row {
				tw.Line(depth+2, "Cell[%d]", ci)
				for bi := range cell.Blocks {
					dumpBlock(tw, depth+3, bi, &cell.Blocks[bi])
				}
			}
		}
		return
	default:
		tw.Line(depth, "Block[%d] %s align=%v spacing=%d/%d line=%d",
			idx, blockKindNames[b.Kind], b.Alignment, b.SpacingBefore, b.SpacingAfter, b.LineSpacing)
	}

	for ri, r := range b.Runs {
		switch r.Kind {
		case RunText:
			tw.TextBlock(depth+1, "Run["+runKindNames[r.Kind]+"]", r.Text)
			if r.IsLink {
				tw.Line(depth+2, "link url=%q", r.URL)
			}
			if r.Style != (css.RunStyle{}) {
				tw.Line(depth+2, "style color=%q bg=%q font=%q size=%d line=%d",
					r.Style.Color, r.Style.Background, r.Style.FontFamily, r.Style.FontSizeHalfPoints, r.Style.LineHeight)
			}
		case RunImage:
			tw.Line(depth+1, "Run[image] index=%d src=%q", r.ImageIndex, summarize(r.Src))
		default:
			tw.Line(depth+1, "Run[%s] #%d", runKindNames[r.Kind], ri)
		}
	}
}

func summarize(s string) string {
	const limit = 64
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
