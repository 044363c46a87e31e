package model

import (
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// rawNode mirrors the serialized editor state. Element nodes store alignment
// in "format" as a string while text nodes store the style bitmask there as a
// number, hence json.RawMessage.
type rawNode struct {
	Type     string          `json:"type"`
	Children []rawNode       `json:"children"`
	Text     string          `json:"text"`
	Format   json.RawMessage `json:"format"`
	Style    string          `json:"style"`
	Tag      string          `json:"tag"`
	ListType string          `json:"listType"`
	URL      string          `json:"url"`
	Src      string          `json:"src"`
}

type rawSnapshot struct {
	Root *rawNode `json:"root"`
}

// ParseSnapshot reads a serialized editor state and builds the document tree.
// The snapshot is the atomic read of the document model: nothing mutates it
// afterwards, so the returned tree is safe to walk without locking.
func ParseSnapshot(r io.Reader, log *zap.Logger) (*Node, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var snap rawSnapshot
	dec := json.NewDecoder(r)
	if err := dec.Decode(&snap); err != nil {
		return nil, fmt.Errorf("unable to decode editor state: %w", err)
	}
	if snap.Root == nil {
		return nil, fmt.Errorf("editor state has no root node")
	}

	root := buildNode(snap.Root, log)
	if root.Kind != KindRoot {
		return nil, fmt.Errorf("editor state root has unexpected type %q", snap.Root.Type)
	}
	return root, nil
}

func buildNode(raw *rawNode, log *zap.Logger) *Node {
	n := &Node{
		Kind:    ParseNodeKind(raw.Type),
		Content: raw.Text,
		Style:   raw.Style,
		Tag:     raw.Tag,
		URL:     raw.URL,
		Src:     raw.Src,
	}

	switch n.Kind {
	case KindText:
		var flags int
		if len(raw.Format) > 0 {
			if err := json.Unmarshal(raw.Format, &flags); err != nil {
				log.Debug("Ignoring non-numeric format on text node", zap.ByteString("format", raw.Format))
			}
		}
		n.Format = FormatFlags(flags)
	case KindUnknown:
		log.Debug("Unknown node type, treating as generic container", zap.String("type", raw.Type))
		fallthrough
	default:
		var align string
		if len(raw.Format) > 0 {
			if err := json.Unmarshal(raw.Format, &align); err == nil {
				n.Alignment = ParseAlignment(align)
			}
		}
	}

	// Older editor states carry the list type instead of a tag.
	if n.Kind == KindList && n.Tag == "" {
		switch raw.ListType {
		case "number":
			n.Tag = "ol"
		case "bullet":
			n.Tag = "ul"
		}
	}

	for i := range raw.Children {
		n.Children = append(n.Children, buildNode(&raw.Children[i], log))
	}
	return n
}
