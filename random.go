package quotefed

import (
	"context"
	"net/url"
)

// PageRef identifies one wiki page by its numeric page id.
type PageRef struct {
	ID int `json:"id"`
}

// randomResponse mirrors the list=random query response.
type randomResponse struct {
	Query struct {
		Random []struct {
			ID int `json:"id"`
		} `json:"random"`
	} `json:"query"`
}

// RandomPage asks the wiki for one random article in the main content
// namespace. Talk pages, categories, and other namespaces are excluded.
// Returns ErrNoPageID when the response carries no page id.
func (c *Client) RandomPage(ctx context.Context) (PageRef, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "random")
	params.Set("rnnamespace", "0")
	params.Set("rnlimit", "1")

	var resp randomResponse
	if err := c.get(ctx, "random page", params, &resp); err != nil {
		return PageRef{}, err
	}

	if len(resp.Query.Random) == 0 {
		return PageRef{}, ErrNoPageID
	}

	return PageRef{ID: resp.Query.Random[0].ID}, nil
}
