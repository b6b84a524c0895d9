package format

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Elements whose text is markup, code or metadata rather than prose.
var skipElements = map[string]bool{
	"script":   true,
	"style":    true,
	"code":     true,
	"pre":      true,
	"head":     true,
	"template": true,
	"math":     true,
}

// TranslateFunc translates one plain-text chunk.
type TranslateFunc func(ctx context.Context, text string) (string, error)

// TranslateHTML rewrites an HTML fragment by translating each prose text
// node in place, leaving tags, attributes and non-prose elements untouched.
// Inter-tag whitespace survives so the document reflows the way it came in.
func TranslateHTML(ctx context.Context, fragment string, translate TranslateFunc) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	body := doc.Find("body")
	for _, node := range body.Nodes {
		if err := walk(ctx, node, translate); err != nil {
			return "", err
		}
	}

	out, err := body.Html()
	if err != nil {
		return "", fmt.Errorf("serialize html: %w", err)
	}
	return out, nil
}

func walk(ctx context.Context, n *html.Node, translate TranslateFunc) error {
	if n.Type == html.ElementNode && skipElements[n.Data] {
		return nil
	}
	if n.Type == html.TextNode {
		return translateTextNode(ctx, n, translate)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := walk(ctx, c, translate); err != nil {
			return err
		}
	}
	return nil
}

func translateTextNode(ctx context.Context, n *html.Node, translate TranslateFunc) error {
	text := strings.TrimSpace(n.Data)
	if text == "" {
		return nil
	}

	translated, err := translate(ctx, text)
	if err != nil {
		return err
	}

	leading := n.Data[:len(n.Data)-len(strings.TrimLeftFunc(n.Data, unicode.IsSpace))]
	trailing := n.Data[len(strings.TrimRightFunc(n.Data, unicode.IsSpace)):]
	n.Data = leading + translated + trailing
	return nil
}
