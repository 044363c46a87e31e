// Package model defines the read-only document tree the exporter consumes.
//
// The editing surface serializes its state as a JSON tree of typed nodes;
// ParseSnapshot turns that into a closed tagged union discriminated by Kind so
// the flattener can match exhaustively instead of type-probing at runtime.
package model

import "strings"

// NodeKind discriminates document tree nodes.
type NodeKind int

const (
	KindUnknown NodeKind = iota
	KindRoot
	KindParagraph
	KindHeading
	KindQuote
	KindList
	KindListItem
	KindTable
	KindTableRow
	KindTableCell
	KindText
	KindLineBreak
	KindLink
	KindImage
)

var kindNames = map[string]NodeKind{
	"root":      KindRoot,
	"paragraph": KindParagraph,
	"heading":   KindHeading,
	"quote":     KindQuote,
	"list":      KindList,
	"listitem":  KindListItem,
	"table":     KindTable,
	"tablerow":  KindTableRow,
	"tablecell": KindTableCell,
	"text":      KindText,
	"linebreak": KindLineBreak,
	"link":      KindLink,
	"image":     KindImage,
}

func (k NodeKind) String() string {
	for name, kind := range kindNames {
		if kind == k {
			return name
		}
	}
	return "unknown"
}

// ParseNodeKind maps a serialized node type to its kind. Unrecognized types
// yield KindUnknown - such nodes stay traversable generic containers.
func ParseNodeKind(s string) NodeKind {
	return kindNames[strings.ToLower(s)]
}

// FormatFlags is the inline-format bitmask text nodes carry.
type FormatFlags int

const (
	FormatBold FormatFlags = 1 << iota
	FormatItalic
	FormatStrikethrough
	FormatUnderline
	FormatCode
)

func (f FormatFlags) Bold() bool          { return f&FormatBold != 0 }
func (f FormatFlags) Italic() bool        { return f&FormatItalic != 0 }
func (f FormatFlags) Strikethrough() bool { return f&FormatStrikethrough != 0 }
func (f FormatFlags) Underline() bool     { return f&FormatUnderline != 0 }
func (f FormatFlags) Code() bool          { return f&FormatCode != 0 }

// Alignment of block-level nodes.
type Alignment int

const (
	AlignDefault Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
	AlignJustify
)

// ParseAlignment maps a serialized element format string to an Alignment.
// Anything unrecognized (including empty) is AlignDefault which renders LEFT.
func ParseAlignment(s string) Alignment {
	switch strings.ToLower(s) {
	case "left":
		return AlignLeft
	case "center":
		return AlignCenter
	case "right":
		return AlignRight
	case "justify":
		return AlignJustify
	}
	return AlignDefault
}

// Node is a single document tree node. Only the fields relevant to the node's
// Kind are populated; Children is ordered and may be empty.
type Node struct {
	Kind     NodeKind
	Children []*Node

	// text nodes
	Content string
	Format  FormatFlags
	Style   string // raw inline CSS declarations

	// block-level nodes
	Alignment Alignment
	Tag       string // heading: h1|h2|h3; list: ol|ul

	// link nodes
	URL string

	// image nodes
	Src string
}

// CountKind returns the number of nodes of the given kind in the subtree,
// in document order. Used to validate layout snapshots against the tree.
func (n *Node) CountKind(kind NodeKind) int {
	if n == nil {
		return 0
	}
	count := 0
	if n.Kind == kind {
		count++
	}
	for _, c := range n.Children {
		count += c.CountKind(kind)
	}
	return count
}

// Title returns the plain text of the first non-empty heading or paragraph,
// used for output file name templating.
func (n *Node) Title() string {
	if n == nil {
		return ""
	}
	for _, c := range n.Children {
		if c.Kind == KindHeading || c.Kind == KindParagraph {
			if t := strings.TrimSpace(c.PlainText()); t != "" {
				return t
			}
		}
	}
	return ""
}

// PlainText concatenates the text content of the subtree.
func (n *Node) PlainText() string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	if n.Kind == KindText {
		sb.WriteString(n.Content)
	}
	for _, c := range n.Children {
		sb.WriteString(c.PlainText())
	}
	return sb.String()
}
