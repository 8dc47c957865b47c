// Package htmltext renders the human-visible text of an HTML document. The rod
// adapter uses it when the live innerText of a page cannot be read.
package htmltext

import (
	"strings"

	"golang.org/x/net/html"
)

type Config struct {
	// SkipTags never contribute text.
	SkipTags []string
	// BlockTags are separated from their neighbours by a line break.
	BlockTags []string
}

var DefaultConfig = Config{
	SkipTags: []string{
		"script", "style", "noscript", "template", "head", "title",
		"svg", "iframe", "object", "canvas",
	},
	BlockTags: []string{
		"p", "div", "section", "article", "header", "footer", "main", "nav", "aside",
		"h1", "h2", "h3", "h4", "h5", "h6", "ul", "ol", "li", "table", "tr",
		"pre", "blockquote", "form", "br", "hr",
	},
}

// VisibleText returns the text of the <body> (or the whole document when there is
// no body) with skipped tags, comments and elements carrying the hidden attribute
// removed. Whitespace is preserved apart from the breaks inserted around blocks.
func VisibleText(rawHTML string, cfg *Config) (string, error) {
	if cfg == nil {
		cfg = &DefaultConfig
	}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", err
	}

	root := findBodyNode(doc)
	if root == nil {
		root = doc
	}

	var sb strings.Builder
	writeText(&sb, root, cfg)
	return strings.TrimSpace(sb.String()), nil
}

func findBodyNode(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBodyNode(c); b != nil {
			return b
		}
	}
	return nil
}

func writeText(sb *strings.Builder, n *html.Node, cfg *Config) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.CommentNode, html.DoctypeNode:
		return
	case html.ElementNode:
		if isOneOf(n.Data, cfg.SkipTags...) || isHidden(n) {
			return
		}
	}

	block := n.Type == html.ElementNode && isOneOf(n.Data, cfg.BlockTags...)
	if block {
		sb.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(sb, c, cfg)
	}
	if block {
		sb.WriteByte('\n')
	}
}

func isHidden(n *html.Node) bool {
	for _, a := range n.Attr {
		switch a.Key {
		case "hidden":
			return true
		case "aria-hidden":
			if a.Val == "true" {
				return true
			}
		case "type":
			if n.Data == "input" && a.Val == "hidden" {
				return true
			}
		}
	}
	return false
}

func isOneOf(s string, candidates ...string) bool {
	for _, c := range candidates {
		if s == c {
			return true
		}
	}
	return false
}
