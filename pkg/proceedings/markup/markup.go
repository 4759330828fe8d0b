// Package markup wraps a lenient HTML/XML parse in a small read-only
// tree query API. The session files are TEI-flavoured XML with enough
// real-world damage (unclosed elements, stray entities) that a strict
// XML decoder rejects them; the tolerant parser accepts anything and
// the query layer only relies on tag names and attributes.
package markup

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Node is one element of the parsed document tree.
type Node struct {
	n *html.Node
}

// Parse reads a whole document and returns its root node.
func Parse(r io.Reader) (*Node, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return &Node{n: root}, nil
}

// Tag returns the lower-cased element name.
func (d *Node) Tag() string {
	if d.n.Type != html.ElementNode {
		return ""
	}
	return d.n.Data
}

// Attr returns the value of the named attribute. Attribute names are
// matched case-insensitively; the parser lower-cases them anyway.
func (d *Node) Attr(name string) (string, bool) {
	name = strings.ToLower(name)
	for _, a := range d.n.Attr {
		if strings.ToLower(a.Key) == name {
			return a.Val, true
		}
	}
	return "", false
}

// Find returns every descendant element with the given tag name whose
// attributes match all entries of attrs, in document order. The node
// itself is never included. Tag names are compared lower-cased.
func (d *Node) Find(tag string, attrs map[string]string) []*Node {
	var out []*Node
	tag = strings.ToLower(tag)
	for c := d.n.FirstChild; c != nil; c = c.NextSibling {
		collect(c, tag, attrs, &out)
	}
	return out
}

// FindFirst returns the first match of Find, or nil.
func (d *Node) FindFirst(tag string, attrs map[string]string) *Node {
	tag = strings.ToLower(tag)
	for c := d.n.FirstChild; c != nil; c = c.NextSibling {
		if n := findFirst(c, tag, attrs); n != nil {
			return n
		}
	}
	return nil
}

// FindShallow is Find restricted to direct children.
func (d *Node) FindShallow(tag string, attrs map[string]string) []*Node {
	var out []*Node
	tag = strings.ToLower(tag)
	for c := d.n.FirstChild; c != nil; c = c.NextSibling {
		node := &Node{n: c}
		if matches(c, tag, attrs) {
			out = append(out, node)
		}
	}
	return out
}

// Text returns the concatenated text of every descendant text node.
func (d *Node) Text() string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.n)
	return b.String()
}

func collect(n *html.Node, tag string, attrs map[string]string, out *[]*Node) {
	if matches(n, tag, attrs) {
		*out = append(*out, &Node{n: n})
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collect(c, tag, attrs, out)
	}
}

func findFirst(n *html.Node, tag string, attrs map[string]string) *Node {
	if matches(n, tag, attrs) {
		return &Node{n: n}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, tag, attrs); found != nil {
			return found
		}
	}
	return nil
}

func matches(n *html.Node, tag string, attrs map[string]string) bool {
	if n.Type != html.ElementNode || n.Data != tag {
		return false
	}
	node := &Node{n: n}
	for k, v := range attrs {
		got, ok := node.Attr(k)
		if !ok || got != v {
			return false
		}
	}
	return true
}
