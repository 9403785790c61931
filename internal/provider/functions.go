package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/briangreenhill/matchday/internal/requests"
)

// FunctionsClient calls the hosted proxy functions that hold the API key
type FunctionsClient struct {
	base
	anonKey string
}

var _ requests.RemoteCaller = (*FunctionsClient)(nil)

// NewFunctions creates a proxy client for the functions deployed under
// functionsURL
func NewFunctions(functionsURL, anonKey string, opts ...Option) (*FunctionsClient, error) {
	if functionsURL == "" {
		return nil, errors.New("functions url required")
	}
	u, err := url.Parse(functionsURL)
	if err != nil {
		return nil, fmt.Errorf("parse functions url: %w", err)
	}
	c := &FunctionsClient{
		base: base{
			http:    &http.Client{Timeout: 20 * time.Second},
			baseURL: u,
			log:     zerolog.Nop(),
		},
		anonKey: anonKey,
	}
	for _, o := range opts {
		o(&c.base)
	}
	c.log = c.log.With().Str("component", "functions").Logger()
	return c, nil
}

// Call invokes function with params as its JSON body
func (c *FunctionsClient) Call(ctx context.Context, function string, params map[string]string) (requests.Envelope, error) {
	if params == nil {
		params = map[string]string{}
	}
	payload, err := json.Marshal(params)
	if err != nil {
		return requests.Envelope{}, err
	}

	u := *c.baseURL
	u.Path = path.Join(u.Path, function)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))
	if err != nil {
		return requests.Envelope{}, err
	}
	id := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", id)
	if c.anonKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.anonKey)
		req.Header.Set("apikey", c.anonKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return requests.Envelope{}, fmt.Errorf("invoke %s: %w", function, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return requests.Envelope{}, fmt.Errorf("read %s: %w", function, err)
	}

	c.log.Debug().
		Str("function", function).
		Str("request_id", id).
		Int("status", resp.StatusCode).
		Msg("Function responded")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := gjson.GetBytes(body, "error").String()
		if msg == "" {
			msg = fmt.Sprintf("API call failed: %d", resp.StatusCode)
		}
		return requests.Envelope{Error: msg}, nil
	}
	return requests.Envelope{Data: body}, nil
}
