package model

import (
	"strings"
	"testing"
)

const sampleState = `{
  "root": {
    "type": "root",
    "format": "",
    "children": [
      {
        "type": "heading",
        "tag": "h1",
        "format": "center",
        "children": [
          {"type": "text", "text": "Title", "format": 1}
        ]
      },
      {
        "type": "paragraph",
        "format": "",
        "children": [
          {"type": "text", "text": "Hello ", "format": 0},
          {
            "type": "link",
            "url": "https://example.com",
            "children": [{"type": "text", "text": "world", "format": 0}]
          },
          {"type": "linebreak"},
          {"type": "text", "text": "styled", "format": 10, "style": "color: #ff0000; font-size: 12pt"}
        ]
      },
      {
        "type": "list",
        "listType": "number",
        "children": [
          {"type": "listitem", "children": [{"type": "text", "text": "one", "format": 0}]},
          {"type": "listitem", "children": [{"type": "text", "text": "two", "format": 0}]}
        ]
      },
      {
        "type": "table",
        "children": [
          {
            "type": "tablerow",
            "children": [
              {"type": "tablecell", "children": [{"type": "paragraph", "children": []}]},
              {"type": "tablecell", "children": [{"type": "paragraph", "children": []}]}
            ]
          }
        ]
      },
      {"type": "image", "src": "data:image/png;base64,AAAA"}
    ]
  }
}`

func TestParseSnapshot(t *testing.T) {
	root, err := ParseSnapshot(strings.NewReader(sampleState), nil)
	if err != nil {
		t.Fatalf("ParseSnapshot failed: %v", err)
	}

	if root.Kind != KindRoot {
		t.Fatalf("root kind = %v, want root", root.Kind)
	}
	if len(root.Children) != 5 {
		t.Fatalf("root has %d children, want 5", len(root.Children))
	}

	heading := root.Children[0]
	if heading.Kind != KindHeading || heading.Tag != "h1" {
		t.Errorf("first child = %v/%q, want heading/h1", heading.Kind, heading.Tag)
	}
	if heading.Alignment != AlignCenter {
		t.Errorf("heading alignment = %v, want center", heading.Alignment)
	}
	if !heading.Children[0].Format.Bold() {
		t.Error("heading text should be bold")
	}

	para := root.Children[1]
	if para.Kind != KindParagraph || len(para.Children) != 4 {
		t.Fatalf("second child = %v with %d children, want paragraph with 4", para.Kind, len(para.Children))
	}
	link := para.Children[1]
	if link.Kind != KindLink || link.URL != "https://example.com" {
		t.Errorf("link node = %v/%q", link.Kind, link.URL)
	}
	if para.Children[2].Kind != KindLineBreak {
		t.Errorf("expected linebreak, got %v", para.Children[2].Kind)
	}
	styled := para.Children[3]
	if !styled.Format.Italic() || !styled.Format.Underline() || styled.Format.Bold() {
		t.Errorf("format flags = %b, want italic+underline", styled.Format)
	}
	if styled.Style == "" {
		t.Error("styled text lost its inline style")
	}

	list := root.Children[2]
	if list.Kind != KindList || list.Tag != "ol" {
		t.Errorf("list = %v/%q, want list/ol (from listType)", list.Kind, list.Tag)
	}

	if got := root.CountKind(KindTable); got != 1 {
		t.Errorf("CountKind(table) = %d, want 1", got)
	}
	if got := root.CountKind(KindImage); got != 1 {
		t.Errorf("CountKind(image) = %d, want 1", got)
	}

	if title := root.Title(); title != "Title" {
		t.Errorf("Title() = %q, want %q", title, "Title")
	}
}

func TestParseSnapshotErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not_json", "garbage"},
		{"no_root", `{"something": 1}`},
		{"wrong_root_type", `{"root": {"type": "paragraph"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSnapshot(strings.NewReader(tt.input), nil); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestParseSnapshotUnknownNodes(t *testing.T) {
	const state = `{
	  "root": {
	    "type": "root",
	    "children": [
	      {"type": "collapsible", "children": [
	        {"type": "paragraph", "children": [{"type": "text", "text": "inside", "format": 0}]}
	      ]}
	    ]
	  }
	}`

	root, err := ParseSnapshot(strings.NewReader(state), nil)
	if err != nil {
		t.Fatalf("ParseSnapshot failed: %v", err)
	}
	unknown := root.Children[0]
	if unknown.Kind != KindUnknown {
		t.Fatalf("kind = %v, want unknown", unknown.Kind)
	}
	if got := root.PlainText(); got != "inside" {
		t.Errorf("PlainText() = %q, unknown container should stay traversable", got)
	}
}
