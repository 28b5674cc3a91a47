package quotefed

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWiki is a fake wiki API backing the fetcher tests. Each call kind can
// be overridden; the defaults serve page 42 with one quote subsection.
type fakeWiki struct {
	randomCalls atomic.Int64

	randomBody   string
	sectionsBody string
	renderBody   string
}

func newFakeWiki() *fakeWiki {
	return &fakeWiki{
		randomBody: `{"query": {"random": [{"id": 42}]}}`,
		sectionsBody: `{
			"parse": {
				"title": "Hamlet",
				"sections": [
					{"index": "1", "number": "1"},
					{"index": "2", "number": "1.1"}
				]
			}
		}`,
		renderBody: `{
			"parse": {
				"title": "Hamlet",
				"text": {"*": "<ul><li>To be or not to be, that is the question.</li><li>1997</li></ul>"}
			}
		}`,
	}
}

func (fw *fakeWiki) server() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		switch {
		case query.Get("list") == "random":
			fw.randomCalls.Add(1)
			fmt.Fprint(w, fw.randomBody)
		case query.Get("prop") == "sections":
			fmt.Fprint(w, fw.sectionsBody)
		default:
			fmt.Fprint(w, fw.renderBody)
		}
	}))
}

// newTestFetcher builds a fetcher with a deterministic random source.
func newTestFetcher(serverURL string, config *Config, attemptLimit int) *QuoteFetcher {
	fetcher := NewQuoteFetcher(NewClient(serverURL), config, &FetcherConfig{
		AttemptLimit: attemptLimit,
	})
	fetcher.rng = rand.New(rand.NewSource(1))
	return fetcher
}

// TestGetRandomQuote verifies the full pipeline end to end: the numeric
// candidate is rejected whenever it is drawn, the prose candidate is
// accepted, and the canonical title rides along.
func TestGetRandomQuote(t *testing.T) {
	fw := newFakeWiki()
	server := fw.server()
	defer server.Close()

	// The candidate pick is uniform over two entries; a big budget makes the
	// accepted outcome certain for all practical purposes.
	fetcher := newTestFetcher(server.URL, NewConfig(), 64)

	result, err := fetcher.GetRandomQuote(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Hamlet", result.Title)
	assert.Equal(t, "To be or not to be, that is the question.", result.Quote)
	assert.GreaterOrEqual(t, fw.randomCalls.Load(), int64(1))
}

// TestGetRandomQuote_AcceptedQuoteMeetsThresholds verifies the acceptance
// invariant against the config in effect.
func TestGetRandomQuote_AcceptedQuoteMeetsThresholds(t *testing.T) {
	fw := newFakeWiki()
	server := fw.server()
	defer server.Close()

	config := NewConfig()
	fetcher := newTestFetcher(server.URL, config, 64)

	result, err := fetcher.GetRandomQuote(context.Background())
	require.NoError(t, err)
	assert.True(t, config.Validate(result.Quote))
}

// TestGetRandomQuote_ExhaustsAttempts verifies the fetcher makes exactly
// the budgeted number of attempts when every attempt fails at the section
// stage, and surfaces only RetryExhaustedError.
func TestGetRandomQuote_ExhaustsAttempts(t *testing.T) {
	fw := newFakeWiki()
	fw.sectionsBody = `{}` // no parse object: every attempt dies here
	server := fw.server()
	defer server.Close()

	fetcher := newTestFetcher(server.URL, NewConfig(), 7)

	_, err := fetcher.GetRandomQuote(context.Background())

	var exhausted *RetryExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 7, exhausted.Attempts)
	assert.Equal(t, int64(7), fw.randomCalls.Load())

	// The last failure reason rides along for diagnostics
	var remoteErr *RemoteError
	assert.ErrorAs(t, exhausted.LastReason, &remoteErr)
}

// TestGetRandomQuote_EmptyBatchRetried verifies a section with no
// candidates fails the attempt rather than the call.
func TestGetRandomQuote_EmptyBatchRetried(t *testing.T) {
	fw := newFakeWiki()
	fw.renderBody = `{"parse": {"title": "Hamlet", "text": {"*": "<p>nothing here</p>"}}}`
	server := fw.server()
	defer server.Close()

	fetcher := newTestFetcher(server.URL, NewConfig(), 3)

	_, err := fetcher.GetRandomQuote(context.Background())
	assert.ErrorIs(t, err, ErrNoCandidates)

	var exhausted *RetryExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, int64(3), fw.randomCalls.Load())
}

// TestGetRandomQuote_InvalidSectionRetried verifies a missing section fails
// the attempt and gets retried.
func TestGetRandomQuote_InvalidSectionRetried(t *testing.T) {
	fw := newFakeWiki()
	fw.renderBody = `{}`
	server := fw.server()
	defer server.Close()

	fetcher := newTestFetcher(server.URL, NewConfig(), 2)

	_, err := fetcher.GetRandomQuote(context.Background())
	assert.ErrorIs(t, err, ErrInvalidSection)
	assert.Equal(t, int64(2), fw.randomCalls.Load())
}

// TestGetRandomQuote_AllRejected verifies validation failures exhaust the
// budget when no candidate can pass.
func TestGetRandomQuote_AllRejected(t *testing.T) {
	fw := newFakeWiki()
	fw.renderBody = `{"parse": {"title": "Hamlet", "text": {"*": "<ul><li>1997</li></ul>"}}}`
	server := fw.server()
	defer server.Close()

	fetcher := newTestFetcher(server.URL, NewConfig(), 4)

	_, err := fetcher.GetRandomQuote(context.Background())
	assert.ErrorIs(t, err, ErrRejected)
	assert.Equal(t, int64(4), fw.randomCalls.Load())
}

// TestGetRandomQuote_ConfigChangeMidRun verifies a setter call between
// attempts affects subsequent validations.
func TestGetRandomQuote_ConfigChangeMidRun(t *testing.T) {
	fw := newFakeWiki()
	fw.renderBody = `{"parse": {"title": "Hamlet", "text": {"*": "<ul><li>Brevity is the soul of wit.</li></ul>"}}}`
	server := fw.server()
	defer server.Close()

	config := NewConfig()
	config.SetMinLength(100) // rejects the only candidate

	fetcher := newTestFetcher(server.URL, config, 3)

	_, err := fetcher.GetRandomQuote(context.Background())
	assert.ErrorIs(t, err, ErrRejected)

	config.SetMinLength(10)
	result, err := fetcher.GetRandomQuote(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Brevity is the soul of wit.", result.Quote)
}

// TestGetRandomQuote_ContextCancelled verifies a cancelled context stops
// the attempt loop.
func TestGetRandomQuote_ContextCancelled(t *testing.T) {
	fw := newFakeWiki()
	server := fw.server()
	defer server.Close()

	fetcher := newTestFetcher(server.URL, NewConfig(), 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fetcher.GetRandomQuote(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
