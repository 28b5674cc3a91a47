package quotefed

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"
)

// DefaultAttemptLimit is the number of full pipeline attempts made before
// giving up on finding a valid quote.
const DefaultAttemptLimit = 10

// QuoteResult is the final accepted output: one validated quote and the
// canonical title of the page it came from.
type QuoteResult struct {
	Title string `json:"title"`
	Quote string `json:"quote"`
}

// FetcherConfig holds configuration for the quote fetcher.
type FetcherConfig struct {
	// Number of full pipeline attempts before giving up
	AttemptLimit int
}

// DefaultFetcherConfig returns the default fetcher configuration.
func DefaultFetcherConfig() *FetcherConfig {
	return &FetcherConfig{
		AttemptLimit: DefaultAttemptLimit,
	}
}

// QuoteFetcher drives the full pipeline: random page, section outline,
// section render, candidate choice, validation. Any stage failure restarts
// the whole chain until the attempt budget runs out. Concurrent
// GetRandomQuote calls are independent except for the shared Config.
type QuoteFetcher struct {
	client *Client
	config *Config

	attemptLimit int

	// rand.Rand is not safe for concurrent use
	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewQuoteFetcher creates a fetcher over the given client and validation
// config. A nil config gets the defaults; so does a nil fetcher config.
func NewQuoteFetcher(client *Client, config *Config, fetcherConfig *FetcherConfig) *QuoteFetcher {
	if config == nil {
		config = NewConfig()
	}
	if fetcherConfig == nil {
		fetcherConfig = DefaultFetcherConfig()
	}

	return &QuoteFetcher{
		client:       client,
		config:       config,
		attemptLimit: fetcherConfig.AttemptLimit,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// GetRandomQuote runs the pipeline until one candidate passes validation or
// the attempt budget is exhausted. The only error it returns (beyond a
// cancelled context) is *RetryExhaustedError; per-attempt failures are
// logged and retried. No partial results are ever returned.
func (f *QuoteFetcher) GetRandomQuote(ctx context.Context) (*QuoteResult, error) {
	var lastReason error

	for attempt := 1; attempt <= f.attemptLimit; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := f.attempt(ctx)
		if err == nil {
			return result, nil
		}

		lastReason = err
		log.Printf("INFO: Quote attempt %d/%d failed: %v", attempt, f.attemptLimit, err)
	}

	return nil, &RetryExhaustedError{Attempts: f.attemptLimit, LastReason: lastReason}
}

// attempt runs one full pass of the pipeline. The three remote calls are
// strictly sequential. A rejected candidate fails the attempt outright --
// no resampling within the same batch; the next attempt starts over from
// page selection.
func (f *QuoteFetcher) attempt(ctx context.Context) (*QuoteResult, error) {
	page, err := f.client.RandomPage(ctx)
	if err != nil {
		return nil, err
	}

	outline, err := f.client.Sections(ctx, page.ID)
	if err != nil {
		return nil, err
	}

	sectionIndex := outline.SectionIndexes[f.intn(len(outline.SectionIndexes))]

	batch, err := f.client.SectionQuotes(ctx, page.ID, sectionIndex)
	if err != nil {
		return nil, err
	}
	if len(batch.Candidates) == 0 {
		return nil, ErrNoCandidates
	}

	candidate := batch.Candidates[f.intn(len(batch.Candidates))]
	if err := f.config.CheckQuote(candidate); err != nil {
		return nil, err
	}

	return &QuoteResult{Title: batch.Title, Quote: candidate}, nil
}

func (f *QuoteFetcher) intn(n int) int {
	if n <= 1 {
		return 0
	}
	f.rngMu.Lock()
	defer f.rngMu.Unlock()
	return f.rng.Intn(n)
}
