// Package webcontent fetches web pages and reduces them to readable text
// suitable for ingestion and flashcard generation. Extraction never fails
// loudly: any network, protocol, or parse problem yields "absent" and a log
// line, so callers can skip bad sources and keep going.
package webcontent

import (
	"context"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const (
	// fetchTimeout bounds the whole fetch, redirects included.
	fetchTimeout = 15 * time.Second

	// browserUserAgent is sent on every request; many sites serve empty or
	// blocking pages to default Go client UAs.
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// strippedTags are removed wholesale before text extraction: they carry
// boilerplate or non-content.
var strippedTags = map[string]bool{
	"script": true,
	"style":  true,
	"nav":    true,
	"footer": true,
	"header": true,
	"aside":  true,
	"form":   true,
	"meta":   true,
	"link":   true,
}

// blockTags start a new line in the extracted text.
var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "main": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"li": true, "ul": true, "ol": true, "br": true, "tr": true, "td": true,
	"blockquote": true, "pre": true, "table": true,
}

// contentClassPattern identifies elements whose class or id suggests they
// hold the main content of the page.
var contentClassPattern = regexp.MustCompile(`(?i)content|main|article|body`)

// Extractor fetches URLs and extracts their readable text.
type Extractor struct {
	client *http.Client
	log    *slog.Logger
}

// NewExtractor constructs an Extractor. Redirects are followed with the
// http.Client default policy; the timeout covers the entire exchange.
func NewExtractor(log *slog.Logger) *Extractor {
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{
		client: &http.Client{Timeout: fetchTimeout},
		log:    log,
	}
}

// FetchURLContent downloads rawURL and returns its readable text. The second
// return value is false when no content could be extracted for any reason:
// unreachable host, non-success status, non-HTML payload, or a page that
// reduces to whitespace. Every failure is logged; none is returned as an
// error.
//
// A URL without a scheme is fetched as http://; the server may upgrade to
// https via redirect.
func (e *Extractor) FetchURLContent(ctx context.Context, rawURL string) (string, bool) {
	u := strings.TrimSpace(rawURL)
	if u == "" {
		e.log.Warn("content extraction skipped, empty URL")
		return "", false
	}
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		u = "http://" + u
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		e.log.Warn("content extraction failed, bad URL", "url", rawURL, "error", err)
		return "", false
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		e.log.Warn("content extraction failed, request error", "url", u, "error", err)
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		e.log.Warn("content extraction failed, non-success status",
			"url", u, "status", resp.StatusCode)
		return "", false
	}

	// Media types are case-insensitive, and a response that does not declare
	// one is not trusted to be HTML.
	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "text/html") {
		e.log.Warn("content extraction skipped, not HTML",
			"url", u, "content_type", contentType)
		return "", false
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		e.log.Warn("content extraction failed, parse error", "url", u, "error", err)
		return "", false
	}

	stripNodes(doc)

	root := findContentRoot(doc)
	if root == nil {
		root = doc
	}

	text := extractText(root)
	if text == "" {
		e.log.Warn("content extraction produced no text", "url", u)
		return "", false
	}

	e.log.Debug("content extracted", "url", u, "chars", len(text))
	return text, true
}

// stripNodes removes boilerplate elements from the tree in place.
func stripNodes(n *html.Node) {
	var next *html.Node
	for c := n.FirstChild; c != nil; c = next {
		next = c.NextSibling
		if c.Type == html.ElementNode && strippedTags[c.Data] {
			n.RemoveChild(c)
			continue
		}
		stripNodes(c)
	}
}

// findContentRoot looks for the most content-bearing element: <main> or
// <article> first, then any element whose class or id matches the content
// pattern. Returns nil when nothing stands out.
func findContentRoot(doc *html.Node) *html.Node {
	if n := findElement(doc, "main"); n != nil {
		return n
	}
	if n := findElement(doc, "article"); n != nil {
		return n
	}
	return findByClassOrID(doc)
}

// findElement returns the first element with the given tag name.
func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// findByClassOrID returns the first element whose class or id attribute
// matches contentClassPattern, skipping <body> itself so the match is a
// genuine sub-region.
func findByClassOrID(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data != "body" && n.Data != "html" {
		for _, attr := range n.Attr {
			if (attr.Key == "class" || attr.Key == "id") && contentClassPattern.MatchString(attr.Val) {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByClassOrID(c); found != nil {
			return found
		}
	}
	return nil
}

// extractText walks the tree collecting text nodes, inserting line breaks at
// block boundaries, and normalizes the result to trimmed, non-empty lines
// joined by single newlines.
func extractText(root *html.Node) string {
	var sb strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
		case html.ElementNode:
			if blockTags[n.Data] {
				sb.WriteByte('\n')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockTags[n.Data] {
			sb.WriteByte('\n')
		}
	}
	walk(root)

	lines := strings.Split(sb.String(), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
