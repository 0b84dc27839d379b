package main

import (
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// titleEntry mirrors the OMDb fields the application reads. Missing values
// are served as "N/A", like the real API does.
type titleEntry struct {
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Director   string `json:"Director"`
	Poster     string `json:"Poster"`
	ImdbRating string `json:"imdbRating"`
}

type notFound struct {
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

func main() {
	var (
		port   = flag.String("port", "9099", "port to listen on")
		data   = flag.String("data", "mock-omdb.json", "path to mock data file")
		apiKey = flag.String("apikey", "", "reject requests whose apikey differs (empty accepts any)")
		logReq = flag.Bool("log", false, "enable request logging")
	)
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, nil)).With("service", "omdb-mock")

	file, err := os.ReadFile(*data)
	if err != nil {
		log.Error("read mock data", "err", err)
		os.Exit(1)
	}

	var entries map[string]titleEntry
	if err := json.Unmarshal(file, &entries); err != nil {
		log.Error("parse mock data", "err", err)
		os.Exit(1)
	}
	// Lookups are case-insensitive, as on OMDb.
	byTitle := make(map[string]titleEntry, len(entries))
	for title, entry := range entries {
		if entry.Title == "" {
			entry.Title = title
		}
		byTitle[strings.ToLower(title)] = withNA(entry)
	}

	r := chi.NewRouter()
	if *logReq {
		r.Use(middleware.Logger)
	}
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		if *apiKey != "" && q.Get("apikey") != *apiKey {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(notFound{Response: "False", Error: "Invalid API key!"})
			return
		}
		entry, ok := byTitle[strings.ToLower(strings.TrimSpace(q.Get("t")))]
		if !ok {
			_ = json.NewEncoder(w).Encode(notFound{Response: "False", Error: "Movie not found!"})
			return
		}
		payload := struct {
			titleEntry
			Response string `json:"Response"`
		}{entry, "True"}
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			log.Error("encode response", "err", err)
		}
	})

	addr := ":" + *port
	log.Info("mock omdb listening", "addr", addr, "titles", len(byTitle))
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Error("server error", "err", err)
		os.Exit(1)
	}
}

func withNA(e titleEntry) titleEntry {
	for _, field := range []*string{&e.Year, &e.Director, &e.Poster, &e.ImdbRating} {
		if *field == "" {
			*field = "N/A"
		}
	}
	return e
}
