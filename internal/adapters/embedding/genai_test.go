package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// geminiServer answers batchEmbedContents with one vector per request,
// whose single value is the request's position.
func geminiServer(t *testing.T, extra int) (*httptest.Server, *[]string) {
	t.Helper()
	var texts []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "models/test-embed:batchEmbedContents") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		var body struct {
			Requests []struct {
				Content struct {
					Parts []struct {
						Text string `json:"text"`
					} `json:"parts"`
				} `json:"content"`
			} `json:"requests"`
		}
		json.NewDecoder(r.Body).Decode(&body)

		embeddings := []map[string]any{}
		for i, req := range body.Requests {
			for _, p := range req.Content.Parts {
				texts = append(texts, p.Text)
			}
			embeddings = append(embeddings, map[string]any{"values": []float32{float32(i), 1}})
		}
		for i := 0; i < extra; i++ {
			embeddings = append(embeddings, map[string]any{"values": []float32{9}})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"embeddings": embeddings})
	}))
	t.Cleanup(server.Close)
	return server, &texts
}

func newTestGenAI(t *testing.T, url string) *GenAIAdapter {
	t.Helper()
	adapter, err := newGenAIAdapter(context.Background(), &genai.ClientConfig{
		APIKey:      "test-key",
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: url},
	}, "test-embed", zerolog.Nop())
	if err != nil {
		t.Fatalf("create adapter: %v", err)
	}
	return adapter
}

func TestGenAIAdapter_EmbedBatch(t *testing.T) {
	server, texts := geminiServer(t, 0)
	adapter := newTestGenAI(t, server.URL)

	embs, err := adapter.EmbedBatch(context.Background(), []string{"flask", "react"})
	if err != nil {
		t.Fatalf("embed batch failed: %v", err)
	}
	if len(embs) != 2 || embs[0][0] != 0 || embs[1][0] != 1 {
		t.Errorf("unexpected embeddings: %v", embs)
	}
	if strings.Join(*texts, ",") != "flask,react" {
		t.Errorf("unexpected texts sent: %v", *texts)
	}
}

func TestGenAIAdapter_Embed(t *testing.T) {
	server, _ := geminiServer(t, 0)
	adapter := newTestGenAI(t, server.URL)

	emb, err := adapter.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	if len(emb) != 2 {
		t.Errorf("expected 2 dims, got %d", len(emb))
	}
}

func TestGenAIAdapter_CountMismatch(t *testing.T) {
	server, _ := geminiServer(t, 1)
	adapter := newTestGenAI(t, server.URL)

	if _, err := adapter.EmbedBatch(context.Background(), []string{"a"}); err == nil {
		t.Error("expected error when the API returns more embeddings than texts")
	}
}

func TestGenAIAdapter_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"message":"bad model","status":"INVALID_ARGUMENT"}}`))
	}))
	defer server.Close()
	adapter := newTestGenAI(t, server.URL)

	if _, err := adapter.Embed(context.Background(), "x"); err == nil {
		t.Error("expected error on 400")
	}
}

func TestGenAIAdapter_EmptyInput(t *testing.T) {
	adapter := newTestGenAI(t, "http://127.0.0.1:0")
	embs, err := adapter.EmbedBatch(context.Background(), nil)
	if err != nil || embs != nil {
		t.Errorf("expected no call and no result, got %v, %v", embs, err)
	}
}

func TestNewGenAIAdapter_RequiresKey(t *testing.T) {
	if _, err := NewGenAIAdapter(context.Background(), "", "", zerolog.Nop()); err == nil {
		t.Error("expected error without API key")
	}
}
