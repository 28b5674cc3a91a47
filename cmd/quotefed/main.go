package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pevans/quotefed"
)

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "random":
		handleRandom(os.Args[2:])
	case "history":
		handleHistory(os.Args[2:])
	case "qotd":
		handleQOTD(os.Args[2:])
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("quotefed - Random wiki quote fetcher")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  quotefed <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  random     Fetch one random validated quote")
	fmt.Println("  history    Show previously fetched quotes")
	fmt.Println("  qotd       Fetch the quote of the day from an RSS/Atom feed")
	fmt.Println("  help       Show this help message")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  QUOTEFED_WIKI_URL     Wiki API endpoint (default: " + quotefed.DefaultBaseURL + ")")
	fmt.Println("  QUOTEFED_HISTORY_DSN  Path to history database (default: history.db)")
	fmt.Println("  QUOTEFED_QOTD_FEED    Default quote-of-the-day feed URL")
}

// loadConfig builds the validation config from defaults, the optional
// ~/.quotefed/config.yaml, and any flag overrides.
func loadConfig(minLength, maxLength int, numericLimit float64) (*quotefed.Config, *quotefed.FileConfig) {
	config := quotefed.NewConfig()

	fileConfig, err := quotefed.LoadConfigFile()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: ignoring config file: %v\n", err)
		fileConfig = nil
	}
	config.ApplyFile(fileConfig)

	if minLength > 0 {
		config.SetMinLength(minLength)
	}
	if maxLength > 0 {
		config.SetMaxLength(maxLength)
	}
	if numericLimit >= 0 {
		config.SetNumericLimit(numericLimit)
	}

	return config, fileConfig
}

func handleRandom(args []string) {
	fs := flag.NewFlagSet("random", flag.ExitOnError)
	wikiURL := fs.String("wiki-url", getEnv("QUOTEFED_WIKI_URL", ""), "Wiki API endpoint")
	attempts := fs.Int("attempts", quotefed.DefaultAttemptLimit, "Attempt budget for the pipeline")
	minLength := fs.Int("min-length", 0, "Minimum quote length override")
	maxLength := fs.Int("max-length", 0, "Maximum quote length override")
	numericLimit := fs.Float64("numeric-limit", -1, "Maximum digit ratio override (0..1)")
	noSave := fs.Bool("no-save", false, "Do not record the quote in history")
	fs.Parse(args)

	config, fileConfig := loadConfig(*minLength, *maxLength, *numericLimit)

	baseURL := *wikiURL
	if baseURL == "" && fileConfig != nil {
		baseURL = fileConfig.Wiki.BaseURL
	}

	client := quotefed.NewClient(baseURL)
	fetcher := quotefed.NewQuoteFetcher(client, config, &quotefed.FetcherConfig{
		AttemptLimit: *attempts,
	})

	result, err := fetcher.GetRandomQuote(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%q\n", result.Quote)
	fmt.Printf("  -- %s\n", result.Title)

	if !*noSave {
		recordQuote(result, baseURL)
	}
}

// recordQuote stores an accepted quote in the history database. Failures
// are warnings; the quote was already printed.
func recordQuote(result *quotefed.QuoteResult, source string) {
	if source == "" {
		source = quotefed.DefaultBaseURL
	}

	store, err := quotefed.NewHistoryStore(getEnv("QUOTEFED_HISTORY_DSN", "history.db"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to open history store: %v\n", err)
		return
	}
	defer store.Close()

	if _, err := store.Add(result, source); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to record quote: %v\n", err)
	}
}

func handleHistory(args []string) {
	if len(args) < 1 || args[0] != "list" {
		fmt.Fprintln(os.Stderr, "Usage: quotefed history list [--limit N]")
		os.Exit(1)
	}

	fs := flag.NewFlagSet("history list", flag.ExitOnError)
	limit := fs.Int("limit", 20, "Maximum number of quotes to show")
	fs.Parse(args[1:])

	store, err := quotefed.NewHistoryStore(getEnv("QUOTEFED_HISTORY_DSN", "history.db"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open history store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	items, err := store.List(*limit, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to list history: %v\n", err)
		os.Exit(1)
	}

	if len(items) == 0 {
		fmt.Println("No quotes recorded yet.")
		return
	}

	for _, item := range items {
		quote := item.Quote
		if len(quote) > 70 {
			quote = quote[:67] + "..."
		}
		fmt.Printf("%s  %-30s  %s\n", item.FetchedAt.Format("2006-01-02 15:04"), item.Title, quote)
	}
}

func handleQOTD(args []string) {
	fs := flag.NewFlagSet("qotd", flag.ExitOnError)
	feedURL := fs.String("feed", getEnv("QUOTEFED_QOTD_FEED", ""), "Quote-of-the-day feed URL")
	fs.Parse(args)

	if *feedURL == "" {
		fmt.Fprintln(os.Stderr, "Error: --feed or QUOTEFED_QOTD_FEED is required")
		os.Exit(1)
	}

	result, err := quotefed.FetchQuoteOfTheDay(*feedURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%q\n", result.Quote)
	fmt.Printf("  -- %s\n", result.Title)
}
