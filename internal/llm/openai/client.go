package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/autoesg/analyzer/internal/common"
	"github.com/autoesg/analyzer/internal/llm"
)

// Generate implements llm.Generator using text-only chat/completions.
func (c *Client) Generate(ctx context.Context, req llm.GenerateRequest) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.generate.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"instruction_len", len(req.Instruction),
		"input_len", len(req.Input),
		"force_json", req.ForceJSON,
	)

	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"messages": []map[string]any{
			{"role": "system", "content": req.Instruction},
			{"role": "user", "content": req.Input},
		},
	}
	if req.ForceJSON {
		body["response_format"] = map[string]any{"type": "json_object"}
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, httpErr := llm.PostJSON(ctx, c.httpClient, endpoint, body, c.headers(), c.log)
	if httpErr != nil {
		c.log.Error("llm.generate.http_error",
			"req_id", rid, "error", httpErr,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", httpErr
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error("llm.generate.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("decode completion response: %w", common.ErrService)
	}
	if len(cc.Choices) == 0 {
		c.log.Error("llm.generate.no_choices",
			"req_id", rid,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("no choices in completion response: %w", common.ErrService)
	}
	content := strings.TrimSpace(cc.Choices[0].Message.Content)

	c.log.Info("llm.generate.ok",
		"req_id", rid,
		"content_len", len(content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}

// Embed implements llm.Embedder via the embeddings endpoint.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.embed.start",
		"req_id", rid,
		"model", c.cfg.EmbeddingModel,
		"texts", len(texts),
	)

	body := map[string]any{
		"model": c.cfg.EmbeddingModel,
		"input": texts,
	}
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/embeddings"
	raw, httpErr := llm.PostJSON(ctx, c.httpClient, endpoint, body, c.headers(), c.log)
	if httpErr != nil {
		c.log.Error("llm.embed.http_error",
			"req_id", rid, "error", httpErr,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, httpErr
	}

	var er struct {
		Data []struct {
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &er); err != nil {
		return nil, fmt.Errorf("decode embeddings response: %w", common.ErrService)
	}
	if len(er.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings count %d does not match inputs %d: %w",
			len(er.Data), len(texts), common.ErrService)
	}

	// The API is documented to preserve order, but index is authoritative.
	out := make([][]float32, len(texts))
	for _, d := range er.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, fmt.Errorf("embedding index %d out of range: %w", d.Index, common.ErrService)
		}
		out[d.Index] = d.Embedding
	}

	c.log.Info("llm.embed.ok",
		"req_id", rid,
		"vectors", len(out),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

func (c *Client) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
}
