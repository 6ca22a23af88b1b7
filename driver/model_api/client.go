// Package model_api provides HTTP clients for the embedding and
// sentiment model servers.
package model_api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const maxRetryElapsed = 90 * time.Second

// EmbeddingClient calls the embedding server's POST /embed endpoint.
type EmbeddingClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewEmbeddingClient(baseURL string, timeout time.Duration) *EmbeddingClient {
	return &EmbeddingClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type embedRequest struct {
	Texts []string `json:"texts"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// EmbedTexts returns one vector per input text, in order. Transient
// failures are retried with exponential backoff.
func (c *EmbeddingClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(embedRequest{Texts: texts})
	if err != nil {
		return nil, err
	}

	operation := func() ([][]float32, error) {
		var resp embedResponse
		if err := c.post(ctx, c.baseURL+"/embed", body, &resp); err != nil {
			return nil, err
		}
		return resp.Embeddings, nil
	}

	embeddings, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(maxRetryElapsed),
	)
	if err != nil {
		return nil, err
	}
	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d texts, got %d vectors", len(texts), len(embeddings))
	}
	return embeddings, nil
}

func (c *EmbeddingClient) post(ctx context.Context, url string, body []byte, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("model server returned %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return backoff.Permanent(fmt.Errorf("model server returned %d: %s", resp.StatusCode, data))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// SentimentClient calls the sentiment server's POST /classify endpoint.
type SentimentClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewSentimentClient(baseURL string, timeout time.Duration) *SentimentClient {
	return &SentimentClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type classifyRequest struct {
	Text string `json:"text"`
}

type classifyResponse struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classify returns the model's raw label (POS, NEG, NEU) and confidence.
func (c *SentimentClient) Classify(ctx context.Context, text string) (string, float64, error) {
	body, err := json.Marshal(classifyRequest{Text: text})
	if err != nil {
		return "", 0, err
	}

	operation := func() (classifyResponse, error) {
		var resp classifyResponse
		if err := c.post(ctx, c.baseURL+"/classify", body, &resp); err != nil {
			return classifyResponse{}, err
		}
		return resp, nil
	}

	resp, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(maxRetryElapsed),
	)
	if err != nil {
		return "", 0, err
	}
	return resp.Label, resp.Score, nil
}

func (c *SentimentClient) post(ctx context.Context, url string, body []byte, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("model server returned %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return backoff.Permanent(fmt.Errorf("model server returned %d: %s", resp.StatusCode, data))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
