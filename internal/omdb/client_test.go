package omdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Clark-Hu/movieweb/internal/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewHTTPClient(srv.URL+"/", "test-key", 2*time.Second, logger.Discard())
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	return client
}

func TestHTTPClientLookupFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("apikey"); got != "test-key" {
			t.Errorf("apikey = %q, want test-key", got)
		}
		if got := r.URL.Query().Get("t"); got != "The Matrix" {
			t.Errorf("t = %q, want The Matrix", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Title":"The Matrix","Year":"1999","Director":"Lana Wachowski, Lilly Wachowski","Poster":"https://img.example.com/matrix.jpg","imdbRating":"8.7","Response":"True"}`))
	})

	meta, err := client.Lookup(context.Background(), "The Matrix")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !meta.Found {
		t.Fatalf("expected Found")
	}
	if meta.Year != "1999" || meta.Rating != "8.7" || meta.Poster != "https://img.example.com/matrix.jpg" {
		t.Fatalf("unexpected metadata: %+v", meta)
	}
	if !strings.Contains(meta.Director, "Wachowski") {
		t.Fatalf("director = %q", meta.Director)
	}
}

func TestHTTPClientLookupNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Response":"False","Error":"Movie not found!"}`))
	})

	meta, err := client.Lookup(context.Background(), "Nope")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if meta.Found || meta.Director != "" || meta.Year != "" {
		t.Fatalf("expected empty metadata, got %+v", meta)
	}
}

func TestHTTPClientLookupNotAvailableFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Title":"Obscure","Year":"N/A","Director":"N/A","Poster":"N/A","imdbRating":"N/A","Response":"True"}`))
	})

	meta, err := client.Lookup(context.Background(), "Obscure")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if meta.Director != "" || meta.Year != "" || meta.Rating != "" || meta.Poster != "" {
		t.Fatalf("N/A values should be treated as absent: %+v", meta)
	}
}

func TestHTTPClientLookupUpstreamStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	_, err := client.Lookup(context.Background(), "Inception")
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Fatalf("error = %v, want upstream 502", err)
	}
	if errors.Is(err, ErrNetwork) {
		t.Fatalf("status errors must not be classified as network errors")
	}
}

func TestHTTPClientLookupMalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	})

	if _, err := client.Lookup(context.Background(), "Inception"); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestHTTPClientLookupNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	client, err := NewHTTPClient(addr, "secret-key", time.Second, logger.Discard())
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	_, err = client.Lookup(context.Background(), "Inception")
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("error = %v, want ErrNetwork", err)
	}
	if strings.Contains(err.Error(), "secret-key") {
		t.Fatalf("api key leaked into error: %v", err)
	}
}

func TestNewHTTPClientRejectsRelativeURL(t *testing.T) {
	if _, err := NewHTTPClient("omdbapi.com", "k", time.Second, nil); err == nil {
		t.Fatalf("expected error for relative url")
	}
}

func TestDisabledClient(t *testing.T) {
	meta, err := DisabledClient{}.Lookup(context.Background(), "Inception")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if meta.Found {
		t.Fatalf("disabled client must not report a match")
	}
}
