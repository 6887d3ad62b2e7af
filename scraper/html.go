package scraper

import (
	"bytes"
	"context"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"golang.org/x/net/html"

	"nyc_buildings/extract"
	"nyc_buildings/models"
)

// HTMLProvider replays saved page sources (for example the files written by
// FileDebugSink) instead of driving a browser.
type HTMLProvider struct {
	Files map[models.ViewKind]string
}

func NewHTMLProvider(overviewPath, violationsPath string) *HTMLProvider {
	files := make(map[models.ViewKind]string)
	if overviewPath != "" {
		files[models.ViewOverview] = overviewPath
	}
	if violationsPath != "" {
		files[models.ViewViolations] = violationsPath
	}
	return &HTMLProvider{Files: files}
}

func (p *HTMLProvider) FetchView(ctx context.Context, pageURL string, kind models.ViewKind) (*extract.View, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, ok := p.Files[kind]
	if !ok {
		return nil, eris.Wrapf(ErrNoPage, "html: no saved page for %s view", kind)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(ErrNoPage, "html: read %s: %v", path, err)
	}

	return ParseView(data, pageURL, kind)
}

// ParseView renders a page source the way a browser reports it: body text
// with block elements on their own lines, the first h1 and every div's text.
func ParseView(data []byte, pageURL string, kind models.ViewKind) (*extract.View, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, eris.Wrap(err, "html: parse page")
	}

	view := &extract.View{
		Kind:    kind,
		URL:     pageURL,
		Text:    innerText(doc.Find("body")),
		Heading: strings.TrimSpace(innerText(doc.Find("h1").First())),
	}
	if kind == models.ViewOverview {
		doc.Find("div").Each(func(_ int, s *goquery.Selection) {
			view.Blocks = append(view.Blocks, strings.TrimSpace(innerText(s)))
		})
	}
	return view, nil
}

var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"dd": true, "div": true, "dl": true, "dt": true, "fieldset": true,
	"figcaption": true, "figure": true, "footer": true, "form": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "li": true, "main": true, "nav": true,
	"ol": true, "p": true, "pre": true, "section": true, "table": true,
	"tr": true, "ul": true,
}

var skipTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true, "head": true,
}

// innerText approximates HTMLElement.innerText: whitespace inside a text run
// is collapsed and block boundaries become newlines.
func innerText(sel *goquery.Selection) string {
	var sb strings.Builder
	space := false
	atBreak := func() bool {
		return sb.Len() == 0 || strings.HasSuffix(sb.String(), "\n") || strings.HasSuffix(sb.String(), "\t")
	}
	brk := func(c byte) {
		sb.WriteByte(c)
		space = false
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			words := strings.Fields(n.Data)
			if len(words) == 0 {
				space = space || n.Data != ""
				return
			}
			if (space || isSpace(n.Data[0])) && !atBreak() {
				sb.WriteByte(' ')
			}
			sb.WriteString(strings.Join(words, " "))
			space = isSpace(n.Data[len(n.Data)-1])
			return
		case html.ElementNode:
			if skipTags[n.Data] {
				return
			}
			if n.Data == "br" {
				brk('\n')
				return
			}
			if (n.Data == "td" || n.Data == "th") && !atBreak() {
				brk('\t')
			}
		}

		block := n.Type == html.ElementNode && blockTags[n.Data]
		if block {
			brk('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			brk('\n')
		}
	}

	for _, n := range sel.Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	return strings.Join(extract.Lines(sb.String()), "\n")
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
