package xrechnung

import "github.com/beevik/etree"

// Attr is an XML attribute on a maybe-node.
type Attr struct {
	Key   string
	Value string
}

// Node is a present-or-absent XML tree node. Absent nodes are represented as
// nil and are pruned while the tree is assembled, so optional fields that
// carry no value never surface as empty elements in the rendered document.
type Node struct {
	tag      string
	text     string
	attrs    []Attr
	children []*Node
}

// Elem creates an always-present element, dropping absent children.
func Elem(tag string, children ...*Node) *Node {
	n := &Node{tag: tag}
	for _, child := range children {
		if child != nil {
			n.children = append(n.children, child)
		}
	}
	return n
}

// OptElem creates a wrapper element that is itself absent when every child is
// absent.
func OptElem(tag string, children ...*Node) *Node {
	n := Elem(tag, children...)
	if len(n.children) == 0 {
		return nil
	}
	return n
}

// Txt creates a text element, absent when the value is empty.
func Txt(tag, value string, attrs ...Attr) *Node {
	if value == "" {
		return nil
	}
	return &Node{tag: tag, text: value, attrs: attrs}
}

func (n *Node) build(parent *etree.Element) {
	el := parent.CreateElement(n.tag)
	for _, a := range n.attrs {
		el.CreateAttr(a.Key, a.Value)
	}
	if n.text != "" {
		el.SetText(n.text)
	}
	for _, child := range n.children {
		child.build(el)
	}
}

// render serializes the tree as an indented UTF-8 XML document without BOM.
func (n *Node) render() (string, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	n.build(&doc.Element)
	doc.Indent(2)
	return doc.WriteToString()
}
