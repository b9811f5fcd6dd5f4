package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/pevans/redlistener/config"
	"github.com/pevans/redlistener/scraper"
	"github.com/pevans/redlistener/server"
	"github.com/pevans/redlistener/store"
	"github.com/pevans/redlistener/summarize"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()

	// A missing .env file is fine; environment variables may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("ERROR: failed to load config: %v", err)
		os.Exit(1)
	}

	st, err := store.New(cfg.Database.Path)
	if err != nil {
		log.Printf("ERROR: failed to open database %s: %v", cfg.Database.Path, err)
		os.Exit(1)
	}
	defer st.Close()

	var sum server.Summarizer
	if s, err := summarize.New(context.Background(), os.Getenv("GEMINI_API_KEY"), cfg.Gemini.Model); err != nil {
		log.Printf("WARN: summarization disabled: %v", err)
	} else {
		sum = s
	}

	srv := server.New(st, sum, scraper.Config{
		MinDelay:       cfg.MinDelay(),
		MaxDelay:       cfg.MaxDelay(),
		RequestTimeout: cfg.RequestTimeout(),
		UserAgent:      cfg.Scraper.UserAgent,
	})

	log.Printf("INFO: listening on %s (database %s)", cfg.Listen, cfg.Database.Path)
	if err := http.ListenAndServe(cfg.Listen, srv.Router()); err != nil {
		log.Printf("ERROR: server stopped: %v", err)
		os.Exit(1)
	}
}
