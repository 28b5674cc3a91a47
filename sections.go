package quotefed

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
)

// SectionOutline is the set of candidate section indexes for one page, plus
// the canonical page title. The title may differ from the page originally
// requested when the wiki resolved a redirect. SectionIndexes is never empty.
type SectionOutline struct {
	PageID         int
	Title          string
	SectionIndexes []string
}

// wikiSection is one entry of a page's section outline. Index is the opaque
// value the render call takes; Number is the dotted position in the heading
// hierarchy ("1", "1.2", "2").
type wikiSection struct {
	Index  string `json:"index"`
	Number string `json:"number"`
}

// sectionsResponse mirrors the prop=sections parse response.
type sectionsResponse struct {
	Parse *struct {
		Title    string        `json:"title"`
		Sections []wikiSection `json:"sections"`
	} `json:"parse"`
}

// Sections fetches the section outline for a page and narrows it to the
// sections likely to hold quotation lists.
func (c *Client) Sections(ctx context.Context, pageID int) (*SectionOutline, error) {
	params := url.Values{}
	params.Set("action", "parse")
	params.Set("prop", "sections")
	params.Set("pageid", strconv.Itoa(pageID))

	var resp sectionsResponse
	if err := c.get(ctx, "sections", params, &resp); err != nil {
		return nil, err
	}
	if resp.Parse == nil {
		return nil, &RemoteError{Op: "sections", Err: errors.New("response has no parse object")}
	}

	return &SectionOutline{
		PageID:         pageID,
		Title:          resp.Parse.Title,
		SectionIndexes: pickQuoteSections(resp.Parse.Sections),
	}, nil
}

// pickQuoteSections collects the subsections of the first top-level section
// (dotted numbers "1.x"), which is where quotation lists live on this kind
// of wiki. When the page has no such subsections, the top-level section
// itself is the only candidate.
func pickQuoteSections(sections []wikiSection) []string {
	var indexes []string
	for _, s := range sections {
		parts := strings.Split(s.Number, ".")
		if len(parts) >= 2 && parts[0] == "1" {
			indexes = append(indexes, s.Index)
		}
	}

	if len(indexes) == 0 {
		indexes = []string{"1"}
	}
	return indexes
}
