package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/oslek-labs/lookout/internal/httpclient"
	"github.com/oslek-labs/lookout/internal/metrics"
)

// ProviderError is a non-success response from the completion provider.
// It aborts the turn loop; there is no recovery path past it.
type ProviderError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error: %s - %s", e.Status, e.Body)
}

// Client is a streaming client for an OpenAI-compatible completions API.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey, model string) *Client {
	baseURL = strings.TrimSuffix(baseURL, "/")
	baseURL = strings.TrimSuffix(baseURL, "/v1")

	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		// No overall timeout: the stream terminates via its own sentinel,
		// and a client timeout would sever long completions mid-answer.
		httpClient: httpclient.NewStreaming(),
	}
}

func (c *Client) Model() string {
	return c.model
}

// StreamChat issues a streaming completion request and returns a channel of
// decoded events. The channel is closed when the provider signals completion
// or the context is cancelled; a mid-stream failure is delivered as a final
// event carrying Err. A non-success HTTP response is returned synchronously
// as a *ProviderError.
func (c *Client) StreamChat(ctx context.Context, req ChatRequest) (<-chan StreamEvent, error) {
	req.Stream = true
	if req.Model == "" {
		req.Model = c.model
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(req.Model, "error").Inc()
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		metrics.LLMRequestsTotal.WithLabelValues(req.Model, "error").Inc()
		return nil, &ProviderError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(respBody)),
		}
	}

	events := make(chan StreamEvent, 10)

	go func() {
		defer close(events)
		defer resp.Body.Close()
		defer func() {
			metrics.LLMRequestDuration.WithLabelValues(req.Model).Observe(time.Since(start).Seconds())
		}()

		scanner := newEventScanner(resp.Body)
		for {
			select {
			case <-ctx.Done():
				events <- StreamEvent{Err: ctx.Err()}
				return
			default:
			}

			delta, err := scanner.next()
			if err != nil {
				if errors.Is(err, errStreamDone) {
					metrics.LLMRequestsTotal.WithLabelValues(req.Model, "ok").Inc()
					return
				}
				metrics.LLMRequestsTotal.WithLabelValues(req.Model, "error").Inc()
				events <- StreamEvent{Err: err}
				return
			}

			choice := delta.Choices[0]
			ev := StreamEvent{
				Content:      choice.Delta.Content,
				Reasoning:    delta.reasoning(),
				ToolCalls:    choice.Delta.ToolCalls,
				FinishReason: choice.FinishReason,
			}
			if ev.Content == "" && ev.Reasoning == "" && len(ev.ToolCalls) == 0 && ev.FinishReason == "" {
				continue
			}

			select {
			case events <- ev:
			case <-ctx.Done():
				events <- StreamEvent{Err: ctx.Err()}
				return
			}
		}
	}()

	return events, nil
}
