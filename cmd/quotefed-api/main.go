package main

import (
	"flag"
	"log"
	"net/http"
	"os"

	"github.com/pevans/quotefed"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	addr := flag.String("addr", "localhost:8080", "Address to listen on")
	wikiURL := flag.String("wiki-url", getEnv("QUOTEFED_WIKI_URL", ""), "Wiki API endpoint")
	historyDSN := flag.String("history-dsn", getEnv("QUOTEFED_HISTORY_DSN", "history.db"), "Path to history database")
	flag.Parse()

	config := quotefed.NewConfig()
	fileConfig, err := quotefed.LoadConfigFile()
	if err != nil {
		log.Printf("WARN: Ignoring config file: %v", err)
	}
	config.ApplyFile(fileConfig)

	baseURL := *wikiURL
	if baseURL == "" && fileConfig != nil {
		baseURL = fileConfig.Wiki.BaseURL
	}

	client := quotefed.NewClient(baseURL)
	fetcher := quotefed.NewQuoteFetcher(client, config, nil)

	history, err := quotefed.NewHistoryStore(*historyDSN)
	if err != nil {
		log.Fatalf("Failed to open history store: %v", err)
	}
	defer history.Close()

	server := quotefed.NewAPIServer(fetcher, history, config)

	mux := http.NewServeMux()
	server.RegisterRoutes(mux)
	handler := quotefed.CORSMiddleware(mux)

	log.Printf("Starting quote API server on http://%s/api/v1/quotes/random", *addr)

	if err := http.ListenAndServe(*addr, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
