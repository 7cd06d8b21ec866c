package docpipe

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hazyhaar/perfector/docmodel"
	"github.com/hazyhaar/perfector/ingest"
)

// importHTML converts an HTML file into the document model. The markup is
// sanitised, converted to Markdown, and handed to the Markdown importer; the
// <title> element seeds the title fallback.
func (p *Pipeline) importHTML(path string, opt ingest.Options) (*docmodel.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return p.importHTMLBytes(data, opt)
}

func (p *Pipeline) importHTMLBytes(data []byte, opt ingest.Options) (*docmodel.Document, error) {
	node, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	if title := findHTMLTitle(node); title != "" {
		opt.FileName = title
	}

	// Strip scripts, styles and event handlers before conversion; pasted or
	// fetched HTML is untrusted.
	clean := bluemonday.UGCPolicy().SanitizeBytes(data)

	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
		),
	)
	md, err := conv.ConvertString(string(clean))
	if err != nil || strings.TrimSpace(md) == "" {
		// Conversion failure degrades to the visible text.
		md = collectHTMLText(node)
	}

	return p.ing.FromMarkdown(md, opt), nil
}

// findHTMLTitle extracts the <title> text.
func findHTMLTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.DataAtom == atom.Title {
		if n.FirstChild != nil {
			return strings.TrimSpace(n.FirstChild.Data)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findHTMLTitle(c); t != "" {
			return t
		}
	}
	return ""
}

// collectHTMLText extracts all visible text from a node subtree.
func collectHTMLText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(text)
			}
		}
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript:
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
