package quotefed

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

// FetchQuoteOfTheDay fetches an RSS or Atom quote-of-the-day feed and
// returns its newest entry as a QuoteResult. The gofeed library detects and
// handles both formats. This is a fixed-source alternative to the random
// pipeline, not part of it.
func FetchQuoteOfTheDay(feedURL string) (*QuoteResult, error) {
	fp := gofeed.NewParser()
	feed, err := fp.ParseURL(feedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	if len(feed.Items) == 0 {
		return nil, fmt.Errorf("feed has no items")
	}

	return FeedItemToQuote(feed.Items[0], feed.Title)
}

// FeedItemToQuote converts one feed item to a QuoteResult. Quote feeds put
// the quotation text in the item description (RSS) or content (Atom), often
// as HTML; both get flattened to plain text.
func FeedItemToQuote(item *gofeed.Item, feedTitle string) (*QuoteResult, error) {
	title := item.Title
	if title == "" {
		title = feedTitle
	}

	text := item.Description
	if text == "" {
		text = item.Content
	}

	quote, err := flattenHTML(text)
	if err != nil {
		return nil, err
	}
	if quote == "" {
		return nil, fmt.Errorf("feed item has no text content")
	}

	return &QuoteResult{Title: title, Quote: quote}, nil
}

// flattenHTML strips markup from a fragment and collapses whitespace.
func flattenHTML(s string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	return strings.Join(strings.Fields(doc.Text()), " "), nil
}
