// Package extract pulls the readable text out of a web page.
//
// The selection strategy mirrors what readers actually see: known
// content-bearing containers first, then substantial paragraphs, then
// same-origin iframes, and as a last resort the whole page's visible
// text, truncated.
package extract

import (
	"bytes"
	"context"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"persona-l/config"
)

const (
	// minContainerText is the minimum text length for a content
	// container or paragraph run to count as the page's content.
	minContainerText = 100

	// minParagraphText filters out boilerplate one-liner paragraphs.
	minParagraphText = 20

	// maxFallbackText caps the whole-page fallback.
	maxFallbackText = 5000
)

// selector identifies a content-bearing container. Zero fields are
// wildcards; a match requires every set field.
type selector struct {
	tag   string
	class string
	id    string
}

// contentSelectors is ordered by priority; the first container whose text
// clears minContainerText wins. The class/id names cover the common blog
// and CMS layouts the original extension targeted.
var contentSelectors = []selector{
	{tag: "article"},
	{tag: "main"},
	{class: "content"},
	{class: "post"},
	{class: "article"},
	{id: "content"},
	{id: "main"},
	{class: "post-content"},
	{class: "entry-content"},
	{class: "se-main-container"},
	{class: "post-view"},
	{id: "postViewArea"},
}

// Result is the extracted page content
type Result struct {
	URL     string
	Title   string
	Content string
}

// Extractor fetches pages and extracts their text
type Extractor struct {
	fetcher *Fetcher
}

// New creates an extractor using the given fetcher
func New(fetcher *Fetcher) *Extractor {
	return &Extractor{fetcher: fetcher}
}

// FromURL downloads a page and extracts its readable text. Same-origin
// iframes are fetched best-effort when the page itself yields too little;
// cross-origin frames are skipped silently.
func (e *Extractor) FromURL(ctx context.Context, pageURL string) (Result, error) {
	body, err := e.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return Result{}, err
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}

	result := Result{
		URL:   pageURL,
		Title: pageTitle(doc),
	}

	if content := ExtractContent(doc); content != "" {
		result.Content = content
		return result, nil
	}

	if content := e.extractFromIframes(ctx, pageURL, doc); content != "" {
		result.Content = content
		return result, nil
	}

	result.Content = fallbackText(doc)
	return result, nil
}

// ExtractContent runs the container and paragraph passes over a parsed
// document. Returns "" when neither pass yields enough text.
func ExtractContent(doc *html.Node) string {
	for _, sel := range contentSelectors {
		if node := findFirst(doc, sel); node != nil {
			text := strings.TrimSpace(nodeText(node))
			if len(text) > minContainerText {
				return text
			}
		}
	}

	var paragraphs []string
	walk(doc, func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "p" {
			text := strings.TrimSpace(nodeText(n))
			if len(text) > minParagraphText {
				paragraphs = append(paragraphs, text)
			}
		}
	})

	if combined := strings.Join(paragraphs, "\n\n"); len(combined) > minContainerText {
		return combined
	}

	return ""
}

// extractFromIframes applies the content passes inside same-origin
// iframes. Any fetch or parse failure skips the frame; the browser's
// same-origin rule makes inaccessible frames an expected outcome here,
// not an error.
func (e *Extractor) extractFromIframes(ctx context.Context, pageURL string, doc *html.Node) string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}

	var srcs []string
	walk(doc, func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "iframe" {
			if src := attrValue(n, "src"); src != "" {
				srcs = append(srcs, src)
			}
		}
	})

	for _, src := range srcs {
		frameURL, err := base.Parse(src)
		if err != nil {
			continue
		}
		if !sameOrigin(base, frameURL) {
			continue
		}

		body, err := e.fetcher.Fetch(ctx, frameURL.String())
		if err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[Extract] iframe fetch skipped (%s): %v", frameURL, err)
			}
			continue
		}

		frameDoc, err := html.Parse(bytes.NewReader(body))
		if err != nil {
			continue
		}

		if content := ExtractContent(frameDoc); content != "" {
			return content
		}

		if text := strings.TrimSpace(nodeText(frameDoc)); len(text) > minContainerText {
			return text
		}
	}

	return ""
}

func sameOrigin(a, b *url.URL) bool {
	return a.Scheme == b.Scheme && a.Host == b.Host
}

// fallbackText returns the whole page's visible text, truncated
func fallbackText(doc *html.Node) string {
	text := strings.TrimSpace(nodeText(doc))
	runes := []rune(text)
	if len(runes) > maxFallbackText {
		return string(runes[:maxFallbackText])
	}
	return text
}

func pageTitle(doc *html.Node) string {
	var title string
	walk(doc, func(n *html.Node) {
		if title == "" && n.Type == html.ElementNode && n.Data == "title" {
			title = strings.TrimSpace(nodeText(n))
		}
	})
	return title
}

// skippedElements never contribute visible text
var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"head":     true,
	"iframe":   true,
}

// nodeText collects the visible text below a node, whitespace-normalized
func nodeText(n *html.Node) string {
	var sb strings.Builder
	collectText(n, &sb)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.ElementNode && skippedElements[n.Data] {
		return
	}
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		sb.WriteString(" ")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
}

// findFirst returns the first node matching the selector, depth-first
func findFirst(n *html.Node, sel selector) *html.Node {
	if matches(n, sel) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, sel); found != nil {
			return found
		}
	}
	return nil
}

func matches(n *html.Node, sel selector) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if sel.tag != "" && n.Data != sel.tag {
		return false
	}
	if sel.id != "" && attrValue(n, "id") != sel.id {
		return false
	}
	if sel.class != "" && !hasClass(n, sel.class) {
		return false
	}
	return true
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attrValue(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func attrValue(n *html.Node, name string) string {
	for _, attr := range n.Attr {
		if attr.Key == name {
			return attr.Val
		}
	}
	return ""
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}
