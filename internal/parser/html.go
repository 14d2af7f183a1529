package parser

import (
	"fmt"
	"io"

	"golang.org/x/net/html"
)

// ParseHTML parses an HTML document or fragment and returns its <body>.
// The parser always synthesises html/head/body, so the result is never nil
// on success.
func ParseHTML(r io.Reader) (*html.Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	if body := findBody(doc); body != nil {
		return body, nil
	}
	return doc, nil
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
