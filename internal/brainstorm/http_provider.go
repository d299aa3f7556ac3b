package brainstorm

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
	"unicode/utf8"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
)

// Defaults for HTTPProvider.
const (
	DefaultTimeout = 30 * time.Second
	DefaultRetries = 1
	DefaultModel   = "gpt-4o-mini"
)

// HTTPConfig configures an HTTPProvider.
type HTTPConfig struct {
	Endpoint   string        // full chat-completions URL
	APIKey     string        // sent as a bearer token
	Model      string        // defaults to DefaultModel
	Timeout    time.Duration // per attempt, defaults to DefaultTimeout
	Retries    int           // extra attempts after the first, for transport errors and 5xx
	RetryDelay time.Duration // initial backoff interval, defaults to 500ms
	Client     *http.Client
}

// HTTPProvider asks an OpenAI-compatible chat-completion endpoint for ideas
// in JSON mode.
type HTTPProvider struct {
	cfg HTTPConfig
}

// NewHTTPProvider returns a provider for cfg, filling in defaults.
func NewHTTPProvider(cfg HTTPConfig) *HTTPProvider {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 500 * time.Millisecond
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{}
	}
	return &HTTPProvider{cfg: cfg}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// modelIdeas is the JSON object the model is asked to produce.
type modelIdeas struct {
	Themes          []Idea     `json:"themes"`
	Activities      []Idea     `json:"activities"`
	MenuSuggestions []MenuItem `json:"menuSuggestions"`
}

// statusError is a non-2xx reply from the endpoint.
type statusError struct {
	Code int
	Body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("brainstorm: endpoint returned %d: %s", e.Code, e.Body)
}

// Brainstorm renders the prompt and calls the endpoint. Transport errors
// and 5xx replies are retried up to cfg.Retries times; anything else fails
// immediately. All failures wrap ErrUnavailable.
func (p *HTTPProvider) Brainstorm(ctx context.Context, in Input) (Ideas, error) {
	prompt, err := renderPrompt(in.Normalize())
	if err != nil {
		return Ideas{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	req := chatRequest{
		Model: p.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
	}
	req.ResponseFormat.Type = "json_object"
	body, err := json.Marshal(req)
	if err != nil {
		return Ideas{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	attempt := 0
	op := func() (Ideas, error) {
		attempt++
		ideas, err := p.call(ctx, body)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Msg("brainstorm request failed")
		}
		return ideas, err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.cfg.RetryDelay

	ideas, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(uint(p.cfg.Retries+1)),
	)
	if err != nil {
		return Ideas{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return ideas, nil
}

// call performs one attempt bounded by the per-attempt timeout.
func (p *HTTPProvider) call(ctx context.Context, body []byte) (Ideas, error) {
	actx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	hreq, err := http.NewRequestWithContext(actx, http.MethodPost, p.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return Ideas{}, backoff.Permanent(err)
	}
	hreq.Header.Set("Content-Type", "application/json")
	if p.cfg.APIKey != "" {
		hreq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	}

	resp, err := p.cfg.Client.Do(hreq)
	if err != nil {
		if ctx.Err() != nil {
			return Ideas{}, backoff.Permanent(ctx.Err())
		}
		return Ideas{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Ideas{}, err
	}
	if resp.StatusCode >= 300 {
		serr := &statusError{Code: resp.StatusCode, Body: truncate(strings.TrimSpace(string(raw)), 200)}
		if resp.StatusCode >= 500 {
			return Ideas{}, serr
		}
		return Ideas{}, backoff.Permanent(serr)
	}

	ideas, err := decodeIdeas(raw)
	if err != nil {
		return Ideas{}, backoff.Permanent(err)
	}
	return ideas, nil
}

func decodeIdeas(raw []byte) (Ideas, error) {
	var cr chatResponse
	if err := json.Unmarshal(raw, &cr); err != nil {
		return Ideas{}, fmt.Errorf("decode completion: %w", err)
	}
	if len(cr.Choices) == 0 {
		return Ideas{}, errors.New("completion has no choices")
	}
	var mi modelIdeas
	if err := json.Unmarshal([]byte(cr.Choices[0].Message.Content), &mi); err != nil {
		return Ideas{}, fmt.Errorf("decode ideas: %w", err)
	}
	ideas := Ideas{
		Themes:          nonNil(mi.Themes),
		Activities:      nonNil(mi.Activities),
		MenuSuggestions: nonNil(mi.MenuSuggestions),
	}
	if ideas.Empty() {
		return Ideas{}, errors.New("completion contained no ideas")
	}
	return ideas, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// truncate keeps at most n runes of s.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "…"
}
