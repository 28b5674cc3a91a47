package quotefed

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// QuoteBatch holds the quote candidates scraped from one rendered section.
// Candidates may be empty; that is a valid result, not an error.
type QuoteBatch struct {
	Title      string
	Candidates []string
}

// inlineTags is the allow-list of element names kept inside a quote
// candidate before text extraction: emphasis, links, and a few monospace
// and abbreviation tags. Anything else that appears as an immediate child
// of a list item -- reference markers, nested lists, templates -- is noise
// and gets replaced with a space. Superscript and subscript stay out: on a
// wiki, <sup> is almost always a footnote marker like [1].
var inlineTags = map[string]bool{
	"b":      true,
	"i":      true,
	"strong": true,
	"em":     true,
	"mark":   true,
	"small":  true,
	"del":    true,
	"s":      true,
	"strike": true,
	"ins":    true,
	"a":      true,
	"code":   true,
	"tt":     true,
	"kbd":    true,
	"samp":   true,
	"abbr":   true,
}

// sectionTextResponse mirrors the section render parse response. Parse is
// absent when the requested section does not exist.
type sectionTextResponse struct {
	Parse *struct {
		Title string `json:"title"`
		Text  struct {
			Content string `json:"*"`
		} `json:"text"`
	} `json:"parse"`
}

// SectionQuotes renders one section of a page and scrapes quote candidates
// out of its markup. Returns ErrInvalidSection when the wiki reports the
// section does not exist.
func (c *Client) SectionQuotes(ctx context.Context, pageID int, sectionIndex string) (*QuoteBatch, error) {
	params := url.Values{}
	params.Set("action", "parse")
	params.Set("noimages", "")
	params.Set("pageid", strconv.Itoa(pageID))
	params.Set("section", sectionIndex)

	var resp sectionTextResponse
	if err := c.get(ctx, "section render", params, &resp); err != nil {
		return nil, err
	}
	if resp.Parse == nil {
		return nil, ErrInvalidSection
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.Parse.Text.Content))
	if err != nil {
		return nil, &RemoteError{Op: "section render", Err: fmt.Errorf("failed to parse HTML: %w", err)}
	}

	return &QuoteBatch{
		Title:      resp.Parse.Title,
		Candidates: extractCandidates(doc),
	}, nil
}

// extractCandidates walks every top-level list item in the rendered section
// and turns each one into a candidate string, in document order, without
// deduplication. A list item nested inside another list item is part of its
// parent quote's annotation, not a candidate of its own.
func extractCandidates(doc *goquery.Document) []string {
	// Classify before extracting: candidateText detaches nested lists, which
	// would make a nested item look top-level once its parent is processed.
	var topLevel []*goquery.Selection
	doc.Find("li").Each(func(_ int, li *goquery.Selection) {
		if li.ParentsFiltered("li").Length() == 0 {
			topLevel = append(topLevel, li)
		}
	})

	var candidates []string
	for _, li := range topLevel {
		candidates = append(candidates, candidateText(li))
	}
	return candidates
}

// candidateText produces the plain text of one list item. Immediate child
// elements outside the inline allow-list are replaced with a single space
// before extraction, so words that were visually separated by a removed
// element don't run together. Runs of whitespace collapse to one space.
func candidateText(li *goquery.Selection) string {
	node := li.Get(0)

	for child := node.FirstChild; child != nil; {
		next := child.NextSibling
		if child.Type == html.ElementNode && !inlineTags[child.Data] {
			node.InsertBefore(&html.Node{Type: html.TextNode, Data: " "}, child)
			node.RemoveChild(child)
		}
		child = next
	}

	return strings.Join(strings.Fields(li.Text()), " ")
}
