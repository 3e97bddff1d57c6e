// Package markup builds small chat documents out of typed nodes and
// serialises them to MessageML or plain text.
package markup

import (
	"encoding/xml"
	"slices"
	"strings"
)

type Kind int

const (
	Text Kind = iota
	Bold
	Italic
	LineBreak
	Link
	CashTag
	HashTag
	BulletList
	Chime
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	case LineBreak:
		return "br"
	case Link:
		return "link"
	case CashTag:
		return "cash"
	case HashTag:
		return "hash"
	case BulletList:
		return "list"
	case Chime:
		return "chime"
	}
	return "unknown"
}

// Node is one element of a document. Value holds the text, the href of a
// link or the tag name; Items holds the entries of a bullet list.
type Node struct {
	Kind  Kind
	Value string
	Items []string
}

// Builder accumulates nodes. Every method returns a new Builder, so a
// partially built document can be shared and extended independently.
type Builder struct {
	nodes []Node
}

func NewBuilder() Builder {
	return Builder{}
}

func (b Builder) add(n Node) Builder {
	nodes := make([]Node, len(b.nodes), len(b.nodes)+1)
	copy(nodes, b.nodes)
	return Builder{nodes: append(nodes, n)}
}

func (b Builder) Paragraph(text string) Builder { return b.add(Node{Kind: Text, Value: text}) }

func (b Builder) Bold(text string) Builder { return b.add(Node{Kind: Bold, Value: text}) }

func (b Builder) Italic(text string) Builder { return b.add(Node{Kind: Italic, Value: text}) }

func (b Builder) LineBreak() Builder { return b.add(Node{Kind: LineBreak}) }

func (b Builder) Link(href string) Builder { return b.add(Node{Kind: Link, Value: href}) }

func (b Builder) CashTag(tag string) Builder { return b.add(Node{Kind: CashTag, Value: tag}) }

func (b Builder) HashTag(tag string) Builder { return b.add(Node{Kind: HashTag, Value: tag}) }

func (b Builder) Chime() Builder { return b.add(Node{Kind: Chime}) }

func (b Builder) Bullets(items ...string) Builder {
	return b.add(Node{Kind: BulletList, Items: slices.Clone(items)})
}

func (b Builder) Len() int { return len(b.nodes) }

// Build freezes the accumulated nodes into a Document.
func (b Builder) Build() Document {
	nodes := make([]Node, len(b.nodes))
	for i, n := range b.nodes {
		n.Items = slices.Clone(n.Items)
		nodes[i] = n
	}
	return Document{nodes: nodes}
}

// Document is an immutable sequence of nodes.
type Document struct {
	nodes []Node
}

func (d Document) Len() int { return len(d.nodes) }

func (d Document) Empty() bool { return len(d.nodes) == 0 }

// Nodes returns a copy of the document's nodes.
func (d Document) Nodes() []Node {
	out := make([]Node, len(d.nodes))
	for i, n := range d.nodes {
		n.Items = slices.Clone(n.Items)
		out[i] = n
	}
	return out
}

// MessageML serialises the document to a <messageML> element. An empty
// document yields "".
func (d Document) MessageML() string {
	if d.Empty() {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("<messageML>")
	for _, n := range d.nodes {
		switch n.Kind {
		case Text:
			sb.WriteString(escape(n.Value))
		case Bold:
			sb.WriteString("<b>" + escape(n.Value) + "</b>")
		case Italic:
			sb.WriteString("<i>" + escape(n.Value) + "</i>")
		case LineBreak:
			sb.WriteString("<br/>")
		case Chime:
			sb.WriteString("<chime/>")
		case Link:
			sb.WriteString(`<a href="` + escape(n.Value) + `"/>`)
		case CashTag:
			sb.WriteString(`<cash tag="` + escape(n.Value) + `"/>`)
		case HashTag:
			sb.WriteString(`<hash tag="` + escape(n.Value) + `"/>`)
		case BulletList:
			sb.WriteString("<ul>")
			for _, item := range n.Items {
				sb.WriteString("<li>" + escape(item) + "</li>")
			}
			sb.WriteString("</ul>")
		}
	}
	sb.WriteString("</messageML>")
	return StripControl(sb.String())
}

// Text flattens the document to plain text. Links are written as their
// href followed by a space.
func (d Document) Text() string {
	var sb strings.Builder
	for _, n := range d.nodes {
		switch n.Kind {
		case Text, Bold, Italic:
			sb.WriteString(n.Value)
		case LineBreak:
			sb.WriteString(" ")
		case Link:
			sb.WriteString(n.Value + " ")
		case CashTag:
			sb.WriteString("$" + n.Value)
		case HashTag:
			sb.WriteString("#" + n.Value)
		case BulletList:
			for _, item := range n.Items {
				sb.WriteString("- " + item + " ")
			}
		}
	}
	return StripControl(sb.String())
}

func (d Document) String() string { return d.MessageML() }

func escape(s string) string {
	var sb strings.Builder
	_ = xml.EscapeText(&sb, []byte(StripControl(s)))
	return sb.String()
}

// StripControl removes every character below U+0020.
func StripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 {
			return -1
		}
		return r
	}, s)
}
