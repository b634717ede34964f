package checks

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func newBrokenLinkServer(t *testing.T, requests *atomic.Int64) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		http.NotFound(w, r)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestBrokenLinkChecker(t *testing.T) {
	t.Parallel()

	var requests atomic.Int64
	server := newBrokenLinkServer(t, &requests)
	pageURL := server.URL + "/"

	checker := NewBrokenLinkChecker(server.Client())
	issues := checker.Check(context.Background(), pageURL,
		[]string{server.URL + "/ok", server.URL + "/gone"})

	if len(issues) != 1 {
		t.Fatalf("len(issues) = %d, expected 1: %v", len(issues), issues)
	}
	issue := issues[0]
	if issue.Type != "broken_link" {
		t.Errorf("Type = %q, expected broken_link", issue.Type)
	}
	if issue.URL != pageURL {
		t.Errorf("URL = %q, expected the referring page %q", issue.URL, pageURL)
	}
	if issue.Detail != server.URL+"/gone" {
		t.Errorf("Detail = %q, expected the broken target", issue.Detail)
	}
}

func TestBrokenLinkCheckerProbesEachLinkOnce(t *testing.T) {
	t.Parallel()

	var requests atomic.Int64
	server := newBrokenLinkServer(t, &requests)

	checker := NewBrokenLinkChecker(server.Client())
	links := []string{server.URL + "/gone"}

	first := checker.Check(context.Background(), server.URL+"/a", links)
	second := checker.Check(context.Background(), server.URL+"/b", links)

	if len(first) != 1 {
		t.Fatalf("first Check() found %d issues, expected 1", len(first))
	}
	if len(second) != 0 {
		t.Errorf("second Check() found %d issues, expected the link to be skipped", len(second))
	}
	if got := requests.Load(); got != 1 {
		t.Errorf("server saw %d probes, expected 1", got)
	}
}

func TestBrokenLinkCheckerSamplesLinks(t *testing.T) {
	t.Parallel()

	var requests atomic.Int64
	server := newBrokenLinkServer(t, &requests)

	links := make([]string, 0, brokenLinkSampleSize+5)
	for i := 0; i < brokenLinkSampleSize+5; i++ {
		links = append(links, fmt.Sprintf("%s/ok?page=%d", server.URL, i))
	}

	checker := NewBrokenLinkChecker(server.Client())
	checker.Check(context.Background(), server.URL+"/", links)

	if got := requests.Load(); got != brokenLinkSampleSize {
		t.Errorf("server saw %d probes, expected the sample cap %d", got, brokenLinkSampleSize)
	}
}

func TestBrokenLinkCheckerUnreachableTarget(t *testing.T) {
	t.Parallel()

	var requests atomic.Int64
	server := newBrokenLinkServer(t, &requests)
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL + "/anything"
	dead.Close()

	checker := NewBrokenLinkChecker(server.Client())
	issues := checker.Check(context.Background(), server.URL+"/", []string{deadURL})

	if len(issues) != 1 || issues[0].Type != "broken_link" {
		t.Fatalf("issues = %v, expected one broken_link for an unreachable target", issues)
	}
}
