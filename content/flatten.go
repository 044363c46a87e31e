package content

import (
	"go.uber.org/zap"

	"dcx/css"
	"dcx/model"
	"dcx/units"
)

// Paragraph spacing in twips. Uniform small values keep visual rhythm close
// to the editor; table cell paragraphs differ because cells carry their own
// margins.
const (
	SpacingBefore     = 60
	SpacingAfter      = 100
	CellSpacingBefore = 0
	CellSpacingAfter  = 120
)

// RunKind discriminates flat run descriptors.
type RunKind int

const (
	RunText RunKind = iota
	RunBreak
	RunImage
)

// Run is one inline item of a flattened block with its style fully resolved.
type Run struct {
	Kind   RunKind
	Text   string
	Format model.FormatFlags
	Style  css.RunStyle

	IsLink bool
	URL    string

	// image runs; ImageIndex correlates with layout measurements by
	// document order
	Src        string
	ImageIndex int
}

// BlockKind discriminates flattened blocks.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockQuote
	BlockListItem
	BlockTable
)

// Cell is one table cell holding its own paragraph-like sub-blocks.
type Cell struct {
	Blocks []Block
}

// Block is one flattened output block in document order.
type Block struct {
	Kind BlockKind
	Runs []Run

	Alignment     model.Alignment
	LineSpacing   int // 1/240 line units, 0 means unset
	SpacingBefore int
	SpacingAfter  int

	// heading
	Tag string

	// list item
	Ordered bool
	Index   int // zero-based position within its list

	// table
	Rows [][]Cell
}

type linkContext struct {
	isLink bool
	url    string
}

// Flattener walks a document tree and produces ordered flat blocks. It owns
// the export-scoped image counter, so one Flattener serves exactly one
// export.
type Flattener struct {
	css      *css.Parser
	defaults css.Defaults
	log      *zap.Logger

	imageIndex int
}

// NewFlattener creates a Flattener resolving styles against the given
// document defaults.
func NewFlattener(defaults css.Defaults, log *zap.Logger) *Flattener {
	if log == nil {
		log = zap.NewNop()
	}
	return &Flattener{
		css:      css.NewParser(log),
		defaults: defaults,
		log:      log.Named("flatten"),
	}
}

// Flatten dispatches over the root's children. Blocks come out in document
// order; image runs are numbered in the same order for measurement
// correlation.
func (f *Flattener) Flatten(root *model.Node) []Block {
	var blocks []Block
	if root == nil {
		return blocks
	}

	for _, n := range root.Children {
		switch n.Kind {
		case model.KindHeading:
			if b, ok := f.runBlock(n, BlockHeading); ok {
				b.Tag = n.Tag
				blocks = append(blocks, b)
			}
		case model.KindQuote:
			if b, ok := f.runBlock(n, BlockQuote); ok {
				blocks = append(blocks, b)
			}
		case model.KindList:
			blocks = append(blocks, f.flattenList(n)...)
		case model.KindTable:
			blocks = append(blocks, f.flattenTable(n))
		case model.KindParagraph:
			b, _ := f.runBlock(n, BlockParagraph)
			// empty paragraphs stay, they are user-inserted blank lines
			blocks = append(blocks, b)
		default:
			if b, ok := f.runBlock(n, BlockParagraph); ok {
				blocks = append(blocks, b)
			} else {
				f.log.Debug("Dropping node without content", zap.Stringer("kind", n.Kind))
			}
		}
	}
	return blocks
}

// runBlock builds a top-level block from the node's collected runs. ok is
// false when the node produced no runs.
func (f *Flattener) runBlock(n *model.Node, kind BlockKind) (Block, bool) {
	b := Block{
		Kind:          kind,
		Runs:          f.collectRuns(n, linkContext{}),
		Alignment:     n.Alignment,
		LineSpacing:   f.lineSpacing(n),
		SpacingBefore: SpacingBefore,
		SpacingAfter:  SpacingAfter,
	}
	return b, len(b.Runs) > 0
}

func (f *Flattener) flattenList(list *model.Node) []Block {
	ordered := list.Tag == "ol"

	var blocks []Block
	idx := 0
	for _, item := range list.Children {
		if item.Kind != model.KindListItem {
			f.log.Debug("Skipping stray list child", zap.Stringer("kind", item.Kind))
			continue
		}
		b, ok := f.runBlock(item, BlockListItem)
		if !ok {
			idx++
			continue
		}
		// alignment and line height come from the list node, not the item
		b.Alignment = list.Alignment
		b.LineSpacing = f.lineSpacing(list)
		b.Ordered = ordered
		b.Index = idx
		blocks = append(blocks, b)
		idx++
	}
	return blocks
}

func (f *Flattener) flattenTable(table *model.Node) Block {
	b := Block{
		Kind:          BlockTable,
		Alignment:     table.Alignment,
		SpacingBefore: SpacingBefore,
		SpacingAfter:  SpacingAfter,
	}

	for _, row := range table.Children {
		if row.Kind != model.KindTableRow {
			continue
		}
		var cells []Cell
		for _, cell := range row.Children {
			if cell.Kind != model.KindTableCell {
				continue
			}
			cells = append(cells, f.flattenCell(cell))
		}
		b.Rows = append(b.Rows, cells)
	}
	return b
}

// flattenCell turns every element child of a cell into a paragraph sub-block,
// whatever its kind, so nested lists and stray containers keep their text. A
// cell with only inline children gets them folded into one synthetic
// paragraph.
func (f *Flattener) flattenCell(cell *model.Node) Cell {
	var c Cell
	for _, n := range cell.Children {
		if inlineKind(n.Kind) {
			continue
		}
		c.Blocks = append(c.Blocks, Block{
			Kind:          BlockParagraph,
			Runs:          f.collectRuns(n, linkContext{}),
			Alignment:     n.Alignment,
			LineSpacing:   f.lineSpacing(n),
			SpacingBefore: CellSpacingBefore,
			SpacingAfter:  CellSpacingAfter,
		})
	}
	if len(c.Blocks) == 0 {
		c.Blocks = append(c.Blocks, Block{
			Kind:          BlockParagraph,
			Runs:          f.collectRuns(cell, linkContext{}),
			Alignment:     cell.Alignment,
			SpacingBefore: CellSpacingBefore,
			SpacingAfter:  CellSpacingAfter,
		})
	}
	return c
}

// inlineKind reports whether the node contributes runs rather than blocks.
func inlineKind(k model.NodeKind) bool {
	switch k {
	case model.KindText, model.KindLineBreak, model.KindLink, model.KindImage:
		return true
	}
	return false
}

// collectRuns gathers inline runs of a subtree, threading the innermost link
// context down to text runs.
func (f *Flattener) collectRuns(n *model.Node, lc linkContext) []Run {
	switch n.Kind {
	case model.KindText:
		if n.Content == "" {
			return nil
		}
		style := f.css.ResolveRunStyle(f.css.ParseInline(n.Style), f.defaults)
		return []Run{{
			Kind:   RunText,
			Text:   n.Content,
			Format: n.Format,
			Style:  style,
			IsLink: lc.isLink,
			URL:    lc.url,
		}}
	case model.KindLineBreak:
		return []Run{{Kind: RunBreak}}
	case model.KindImage:
		r := Run{Kind: RunImage, Src: n.Src, ImageIndex: f.imageIndex}
		f.imageIndex++
		return []Run{r}
	case model.KindLink:
		lc = linkContext{isLink: true, url: n.URL}
	}

	var runs []Run
	for _, c := range n.Children {
		runs = append(runs, f.collectRuns(c, lc)...)
	}
	return runs
}

// lineSpacing resolves the block's own line-height declaration, if any.
func (f *Flattener) lineSpacing(n *model.Node) int {
	if n.Style == "" {
		return 0
	}
	props := f.css.ParseInline(n.Style)
	lh, ok := units.CSSLineHeightToLine(props["line-height"], f.defaults.FontSizeHalfPoints)
	if !ok {
		return 0
	}
	return lh
}
