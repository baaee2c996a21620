package groq

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Prishashn/Hrextractor/internal/llm"
)

func chatCompletion(content string) string {
	resp := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

// newTestClient points a client at a fake chat/completions endpoint and
// records the request body it receives.
func newTestClient(t *testing.T, status int, respBody string) (*Client, *map[string]any) {
	t.Helper()
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization header = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		w.WriteHeader(status)
		w.Write([]byte(respBody))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL, Model: "test-model"}, nil)
	return c, &captured
}

func TestExtractFieldsParsesModelOutput(t *testing.T) {
	content := `{
		"name": "Jane Doe", "profession": "Data Engineer",
		"current_company": "Acme Corp", "current_location": "Berlin",
		"email": "N/A", "phone": "N/A"
	}`
	c, captured := newTestClient(t, http.StatusOK, chatCompletion(content))

	fields, _, err := c.ExtractFields(t.Context(), llm.ExtractRequest{Text: "some ocr text"})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	if fields.Name != "Jane Doe" || fields.Profession != "Data Engineer" {
		t.Fatalf("fields = %+v", fields)
	}
	if fields.Email != "" || fields.Phone != "" {
		t.Fatalf("sentinel not folded to missing: %+v", fields)
	}

	req := *captured
	if req["model"] != "test-model" {
		t.Fatalf("model = %v", req["model"])
	}
	if temp, ok := req["temperature"].(float64); !ok || temp != 0 {
		t.Fatalf("temperature = %v, want 0", req["temperature"])
	}
	msgs, _ := req["messages"].([]any)
	if len(msgs) != 3 {
		t.Fatalf("messages = %d, want 3", len(msgs))
	}
}

func TestExtractFieldsNormalizesSynonyms(t *testing.T) {
	content := `{"full_name": "Jane Doe", "company": "Acme Corp"}`
	c, _ := newTestClient(t, http.StatusOK, chatCompletion(content))

	fields, _, err := c.ExtractFields(t.Context(), llm.ExtractRequest{Text: "text"})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if fields.Name != "Jane Doe" || fields.CurrentCompany != "Acme Corp" {
		t.Fatalf("fields = %+v", fields)
	}
	if fields.Email != "" {
		t.Fatalf("absent field not folded: %q", fields.Email)
	}
}

func TestExtractFieldsUnparseableContent(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"prose instead of json", chatCompletion("Sure! The name is Jane Doe.")},
		{"no choices", `{"choices": []}`},
		{"array content", chatCompletion(`["jane"]`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, http.StatusOK, tt.body)
			_, _, err := c.ExtractFields(t.Context(), llm.ExtractRequest{Text: "text"})
			if !errors.Is(err, llm.ErrUnparseable) {
				t.Fatalf("err = %v, want unparseable", err)
			}
		})
	}
}

func TestExtractFieldsHTTPErrorIsNotUnparseable(t *testing.T) {
	c, _ := newTestClient(t, http.StatusTooManyRequests, `{"error": {"message": "rate limited"}}`)

	_, _, err := c.ExtractFields(t.Context(), llm.ExtractRequest{Text: "text"})
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, llm.ErrUnparseable) {
		t.Fatal("transport failure misclassified as unparseable")
	}
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(Config{APIKey: "k"}, nil)
	if c.cfg.BaseURL != "https://api.groq.com/openai/v1" {
		t.Fatalf("base url = %q", c.cfg.BaseURL)
	}
	if c.cfg.Model != "llama-3.1-8b-instant" {
		t.Fatalf("model = %q", c.cfg.Model)
	}
	if c.cfg.Temperature != 0 {
		t.Fatalf("temperature = %v", c.cfg.Temperature)
	}
}
