package fragment

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrInvalidInput is returned when a transcoder function receives something
// other than the node shape it documents. It always indicates a programming
// error in the caller, never a transient condition, so it is never retried.
var ErrInvalidInput = errors.New("loregen: invalid transcoder input")

// TextType is the Type value that marks a text leaf.
const TextType = "text"

// Node is the JSON-side representation of a fragment tree. A Node is either a
// text leaf (Type == [TextType], Content set, no TagName or Children) or an
// element node (TagName set, Children optional). No node mixes both shapes.
type Node struct {
	Type     string  `json:"type,omitempty"`
	Content  string  `json:"content,omitempty"`
	TagName  string  `json:"tagName,omitempty"`
	Children []*Node `json:"children,omitempty"`
}

// IsText reports whether n is a text leaf.
func (n *Node) IsText() bool {
	return n != nil && n.Type == TextType
}

// FromElement converts a parsed HTML element into its JSON node
// representation. It visits child nodes in document order: a text child
// contributes a leaf only when its trimmed content is non-empty, an element
// child recurses. Children is left nil when no qualifying child exists.
// Tag names are lowercased so the round trip is case-insensitive.
//
// The argument must be an element node; anything else returns
// [ErrInvalidInput].
func FromElement(el *html.Node) (*Node, error) {
	if el == nil || el.Type != html.ElementNode {
		return nil, fmt.Errorf("%w: expected an HTML element", ErrInvalidInput)
	}

	node := &Node{TagName: strings.ToLower(el.Data)}
	var children []*Node
	for child := el.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case html.TextNode:
			if content := strings.TrimSpace(child.Data); content != "" {
				children = append(children, &Node{Type: TextType, Content: content})
			}
		case html.ElementNode:
			childNode, err := FromElement(child)
			if err != nil {
				return nil, err
			}
			children = append(children, childNode)
		}
	}
	if len(children) > 0 {
		node.Children = children
	}
	return node, nil
}

// Render materializes a JSON node tree as an HTML element. Children are
// appended in order, text leaves becoming text nodes and element nodes
// recursing. When Children is absent but Content carries a string, a single
// text child is synthesized from it; legacy fragments used that shape for
// leaves.
//
// A nil node or a node without a tag name returns [ErrInvalidInput].
func Render(node *Node) (*html.Node, error) {
	if node == nil {
		return nil, fmt.Errorf("%w: expected a fragment node", ErrInvalidInput)
	}
	if node.TagName == "" {
		return nil, fmt.Errorf("%w: fragment node has no tag name", ErrInvalidInput)
	}

	tag := strings.ToLower(node.TagName)
	el := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}

	if node.Children == nil {
		if node.Content != "" {
			el.AppendChild(&html.Node{Type: html.TextNode, Data: node.Content})
		}
		return el, nil
	}

	for _, child := range node.Children {
		if child == nil {
			return nil, fmt.Errorf("%w: nil child node", ErrInvalidInput)
		}
		if child.IsText() {
			el.AppendChild(&html.Node{Type: html.TextNode, Data: child.Content})
			continue
		}
		childEl, err := Render(child)
		if err != nil {
			return nil, err
		}
		el.AppendChild(childEl)
	}
	return el, nil
}

// RenderHTML renders a JSON node tree directly to an HTML string.
func RenderHTML(node *Node) (string, error) {
	el, err := Render(node)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := html.Render(&sb, el); err != nil {
		return "", fmt.Errorf("rendering fragment: %w", err)
	}
	return sb.String(), nil
}

// Parse parses an HTML fragment string and returns its first element node,
// ready to be handed to [FromElement]. It returns [ErrInvalidInput] when the
// fragment contains no element.
func Parse(htmlFragment string) (*html.Node, error) {
	nodes, err := html.ParseFragment(strings.NewReader(htmlFragment), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return nil, fmt.Errorf("parsing fragment: %w", err)
	}
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			return n, nil
		}
	}
	return nil, fmt.Errorf("%w: fragment contains no element", ErrInvalidInput)
}
