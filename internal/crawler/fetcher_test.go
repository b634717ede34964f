package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchSuccess(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "seoscan-test/1.0" {
			t.Errorf("User-Agent = %q, expected injected agent", ua)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<html><body>ok</body></html>")
	}))
	defer server.Close()

	fetcher := NewFetcher(NewHTTPClient("seoscan-test/1.0", 5*time.Second), nil)
	page := fetcher.Fetch(context.Background(), server.URL+"/")
	if page == nil {
		t.Fatal("Fetch() = nil, expected page")
	}
	if page.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, expected 200", page.StatusCode)
	}
	if page.URL != server.URL+"/" {
		t.Errorf("URL = %q, expected requested URL", page.URL)
	}
	if !page.IsHTML() {
		t.Error("IsHTML() = false, expected true")
	}
	if page.HTML != "<html><body>ok</body></html>" {
		t.Errorf("HTML = %q", page.HTML)
	}
}

func TestFetchKeepsHTTPErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := NewFetcher(NewHTTPClient("seoscan-test/1.0", 5*time.Second), nil)
	page := fetcher.Fetch(context.Background(), server.URL+"/missing")
	if page == nil {
		t.Fatal("Fetch() = nil for 404, expected page with status")
	}
	if page.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, expected 404", page.StatusCode)
	}
}

func TestFetchTransportFailure(t *testing.T) {
	t.Parallel()

	fetcher := NewFetcher(NewHTTPClient("seoscan-test/1.0", 200*time.Millisecond), nil)
	// TEST-NET-1 address: connection will not succeed.
	if page := fetcher.Fetch(context.Background(), "http://192.0.2.1:9/"); page != nil {
		t.Errorf("Fetch() = %+v, expected nil on transport failure", page)
	}
}

func TestFetchFollowsRedirects(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/final", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/final", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "landed")
	})

	fetcher := NewFetcher(NewHTTPClient("seoscan-test/1.0", 5*time.Second), nil)
	page := fetcher.Fetch(context.Background(), server.URL+"/start")
	if page == nil {
		t.Fatal("Fetch() = nil, expected page")
	}
	if page.StatusCode != http.StatusOK || page.HTML != "landed" {
		t.Errorf("page = %d %q, expected redirect to be followed", page.StatusCode, page.HTML)
	}
}

func TestFetchRedirectLoopStops(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/loop", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/loop", http.StatusFound)
	})

	fetcher := NewFetcher(NewHTTPClient("seoscan-test/1.0", 5*time.Second), nil)
	page := fetcher.Fetch(context.Background(), server.URL+"/loop")
	if page == nil {
		t.Fatal("Fetch() = nil, expected the last redirect response")
	}
	if page.StatusCode != http.StatusFound {
		t.Errorf("StatusCode = %d, expected 302 after redirect cap", page.StatusCode)
	}
}
