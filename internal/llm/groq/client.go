package groq

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Prishashn/Hrextractor/internal/entity"
	"github.com/Prishashn/Hrextractor/internal/llm"
)

// ExtractFields implements llm.FieldExtractor using text-only chat/completions.
// Temperature stays at 0 so identical text yields identical extraction for a
// fixed backend. Transport failures propagate; any response that cannot be
// parsed as the schema comes back as *llm.UnparseableError.
func (c *Client) ExtractFields(ctx context.Context, req llm.ExtractRequest) (entity.ProfileFields, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"text_len", len(req.Text),
	)

	schema := llm.BuildProfileJSONSchema()
	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": llm.BuildSystemPrompt()},
			{"role": "user", "content": llm.BuildUserPrompt(req.Text)},
			{"role": "system", "content": "JSON Schema:\n" + mustJSON(schema)},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
	raw, _, httpErr := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if httpErr != nil {
		c.logger.Error("llm.extract.http_error",
			"req_id", rid, "error", httpErr,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return entity.ProfileFields{}, raw, httpErr
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("llm.extract.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return entity.ProfileFields{}, raw, &llm.UnparseableError{Raw: raw, Cause: err}
	}
	if len(cc.Choices) == 0 {
		c.logger.Error("llm.extract.no_choices",
			"req_id", rid, "raw", string(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return entity.ProfileFields{}, raw, &llm.UnparseableError{Raw: raw, Cause: fmt.Errorf("no choices in response")}
	}
	content := []byte(strings.TrimSpace(cc.Choices[0].Message.Content))

	cleaned, dropped, err := llm.NormalizeProfileJSON(content, c.logger)
	if err != nil {
		c.logger.Error("llm.extract.sanitize_failed",
			"req_id", rid, "error", err, "content", string(content),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return entity.ProfileFields{}, content, &llm.UnparseableError{Raw: content, Cause: err}
	}
	if len(dropped) > 0 {
		c.logger.Warn("llm.extract.sanitize_applied", "req_id", rid, "dropped", dropped)
	}

	if err := llm.ValidateJSONAgainstSchema(llm.BuildProfileJSONSchema(), cleaned); err != nil {
		c.logger.Error("llm.extract.schema_validation_failed",
			"req_id", rid, "error", err, "content", string(cleaned),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return entity.ProfileFields{}, content, &llm.UnparseableError{Raw: content, Cause: err}
	}

	var out entity.ProfileFields
	if err := json.Unmarshal(cleaned, &out); err != nil {
		c.logger.Error("llm.extract.unmarshal_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return entity.ProfileFields{}, content, &llm.UnparseableError{Raw: content, Cause: err}
	}
	out = llm.FoldSentinel(out)

	c.logger.Info("llm.extract.ok",
		"req_id", rid,
		"name", out.Name,
		"profession", out.Profession,
		"company", out.CurrentCompany,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, cleaned, nil
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
