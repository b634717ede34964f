package ai

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nao1215/seoscan/internal/model"
)

// newChatServer returns a fake chat completions endpoint whose reply
// content is chosen by respond, keyed on the request's system prompt.
func newChatServer(t *testing.T, respond func(system, user string) (string, int)) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("failed to read request body: %v", err)
		}
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
			ResponseFormat struct {
				Type string `json:"type"`
			} `json:"response_format"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("request body is not JSON: %v", err)
		}
		if req.ResponseFormat.Type != "json_object" {
			t.Errorf("response_format = %q", req.ResponseFormat.Type)
		}
		if len(req.Messages) != 2 {
			t.Fatalf("len(messages) = %d", len(req.Messages))
		}

		content, status := respond(req.Messages[0].Content, req.Messages[1].Content)
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
			return
		}
		reply := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}
		if err := json.NewEncoder(w).Encode(reply); err != nil {
			t.Errorf("failed to encode reply: %v", err)
		}
	}))
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()

	client, err := NewClient(Options{APIKey: "test-key", BaseURL: baseURL})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client
}

func sampleAuditResult() *model.AuditResult {
	result := model.NewAuditResult("https://example.com/")
	result.PagesScanned = 3
	result.AddIssue(model.NewIssueDetail("https://example.com/", "no_https", model.SeverityHigh, ""))
	result.AddIssue(model.NewIssueDetail("https://example.com/a", "thin_content", model.SeverityMedium, "120 words"))
	result.AddIssue(model.NewIssueDetail("https://example.com/b", "no_compression", model.SeverityMedium, ""))
	return result
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	t.Run("requires API key", func(t *testing.T) {
		t.Parallel()

		if _, err := NewClient(Options{}); err != ErrNoAPIKey {
			t.Errorf("NewClient() error = %v, expected ErrNoAPIKey", err)
		}
		if _, err := NewClient(Options{APIKey: "   "}); err != ErrNoAPIKey {
			t.Errorf("NewClient() error = %v, expected ErrNoAPIKey", err)
		}
	})

	t.Run("applies defaults", func(t *testing.T) {
		t.Parallel()

		client, err := NewClient(Options{APIKey: "test-key"})
		if err != nil {
			t.Fatalf("NewClient() error = %v", err)
		}
		if client.Model() != defaultModel {
			t.Errorf("Model() = %q", client.Model())
		}
		if client.baseURL != defaultBaseURL {
			t.Errorf("baseURL = %q", client.baseURL)
		}
	})
}

func TestClientChatJSON(t *testing.T) {
	t.Parallel()

	t.Run("returns model JSON", func(t *testing.T) {
		t.Parallel()

		server := newChatServer(t, func(_, _ string) (string, int) {
			return `{"answer": 42}`, http.StatusOK
		})
		defer server.Close()

		raw, err := newTestClient(t, server.URL).ChatJSON(context.Background(), "system", "user")
		if err != nil {
			t.Fatalf("ChatJSON() error = %v", err)
		}
		if string(raw) != `{"answer": 42}` {
			t.Errorf("ChatJSON() = %s", raw)
		}
	})

	t.Run("surfaces API errors", func(t *testing.T) {
		t.Parallel()

		server := newChatServer(t, func(_, _ string) (string, int) {
			return "", http.StatusInternalServerError
		})
		defer server.Close()

		_, err := newTestClient(t, server.URL).ChatJSON(context.Background(), "system", "user")
		if err == nil || !strings.Contains(err.Error(), "boom") {
			t.Errorf("ChatJSON() error = %v, expected API error", err)
		}
	})

	t.Run("rejects non-JSON content", func(t *testing.T) {
		t.Parallel()

		server := newChatServer(t, func(_, _ string) (string, int) {
			return "plain text, not JSON", http.StatusOK
		})
		defer server.Close()

		_, err := newTestClient(t, server.URL).ChatJSON(context.Background(), "system", "user")
		if err == nil || !strings.Contains(err.Error(), "valid JSON") {
			t.Errorf("ChatJSON() error = %v, expected JSON validation error", err)
		}
	})

	t.Run("rejects empty content", func(t *testing.T) {
		t.Parallel()

		server := newChatServer(t, func(_, _ string) (string, int) {
			return "", http.StatusOK
		})
		defer server.Close()

		_, err := newTestClient(t, server.URL).ChatJSON(context.Background(), "system", "user")
		if err != ErrEmptyResponse {
			t.Errorf("ChatJSON() error = %v, expected ErrEmptyResponse", err)
		}
	})
}

func TestSummarizerSummarize(t *testing.T) {
	t.Parallel()

	server := newChatServer(t, func(_, user string) (string, int) {
		if !strings.Contains(user, `"no_https"`) {
			t.Errorf("prompt missing compacted issues:\n%s", user)
		}
		return `{
			"site": "https://example.com/",
			"summary": "The site has security and content problems.",
			"top_issues": [{"type": "no_https", "why_it_matters": "trust", "evidence": "homepage"}],
			"recommended_actions": [{"action": "Enable HTTPS", "impact": "high", "effort": "low"}],
			"quick_wins": ["Enable gzip"],
			"risk_items": []
		}`, http.StatusOK
	})
	defer server.Close()

	summary, err := NewSummarizer(newTestClient(t, server.URL)).Summarize(context.Background(), sampleAuditResult())
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if summary.Site != "https://example.com/" {
		t.Errorf("Site = %q", summary.Site)
	}
	if len(summary.TopIssues) != 1 || summary.TopIssues[0].Type != "no_https" {
		t.Errorf("TopIssues = %+v", summary.TopIssues)
	}
	if len(summary.RecommendedActions) != 1 || summary.RecommendedActions[0].Impact != "high" {
		t.Errorf("RecommendedActions = %+v", summary.RecommendedActions)
	}
	if summary.Model != defaultModel {
		t.Errorf("Model = %q", summary.Model)
	}
}

func TestCompactIssueList(t *testing.T) {
	t.Parallel()

	var issues []model.Issue
	for i := 0; i < 8; i++ {
		issues = append(issues, model.NewIssue("https://example.com/p", "thin_content", model.SeverityMedium))
	}
	issues = append(issues, model.NewIssue("https://example.com/", "no_https", model.SeverityHigh))

	compact := compactIssueList(issues)
	if compact.Total != 9 {
		t.Errorf("Total = %d", compact.Total)
	}
	if compact.ByTypeCounts["thin_content"] != 8 {
		t.Errorf("thin_content count = %d", compact.ByTypeCounts["thin_content"])
	}
	if len(compact.ByTypeSamples["thin_content"]) != sampleURLsPerType {
		t.Errorf("thin_content samples = %d", len(compact.ByTypeSamples["thin_content"]))
	}
}

func TestAnalyzeWithSpecialists(t *testing.T) {
	t.Parallel()

	t.Run("collects insights in roster order", func(t *testing.T) {
		t.Parallel()

		server := newChatServer(t, func(_, _ string) (string, int) {
			return `{"findings": ["f"], "recommendations": ["r"]}`, http.StatusOK
		})
		defer server.Close()

		logger := slog.New(slog.DiscardHandler)
		insights := AnalyzeWithSpecialists(context.Background(), newTestClient(t, server.URL), sampleAuditResult(), logger)

		// no_https -> technical, thin_content -> content,
		// no_compression -> performance: all three specialists run.
		if len(insights) != 3 {
			t.Fatalf("len(insights) = %d", len(insights))
		}
		if insights[0].Specialist != "technical_seo" ||
			insights[1].Specialist != "content_quality" ||
			insights[2].Specialist != "performance" {
			t.Errorf("roster order broken: %+v", insights)
		}
		if insights[0].IssueCount != 1 {
			t.Errorf("technical IssueCount = %d", insights[0].IssueCount)
		}
	})

	t.Run("tolerates a failed specialist", func(t *testing.T) {
		t.Parallel()

		server := newChatServer(t, func(system, _ string) (string, int) {
			if strings.Contains(system, "performance specialist") {
				return "", http.StatusInternalServerError
			}
			return `{"findings": ["f"], "recommendations": ["r"]}`, http.StatusOK
		})
		defer server.Close()

		logger := slog.New(slog.DiscardHandler)
		insights := AnalyzeWithSpecialists(context.Background(), newTestClient(t, server.URL), sampleAuditResult(), logger)

		if len(insights) != 2 {
			t.Fatalf("len(insights) = %d", len(insights))
		}
		for _, insight := range insights {
			if insight.Specialist == "performance" {
				t.Error("failed specialist should be skipped")
			}
		}
	})

	t.Run("skips specialists with no issues", func(t *testing.T) {
		t.Parallel()

		server := newChatServer(t, func(_, _ string) (string, int) {
			return `{"findings": ["f"], "recommendations": ["r"]}`, http.StatusOK
		})
		defer server.Close()

		result := model.NewAuditResult("https://example.com/")
		result.PagesScanned = 1
		result.AddIssue(model.NewIssue("https://example.com/", "no_https", model.SeverityHigh))

		logger := slog.New(slog.DiscardHandler)
		insights := AnalyzeWithSpecialists(context.Background(), newTestClient(t, server.URL), result, logger)

		if len(insights) != 1 || insights[0].Specialist != "technical_seo" {
			t.Errorf("insights = %+v", insights)
		}
	})
}
