// Package requests collapses identical concurrent outbound calls into one
// and classifies their outcome.
package requests

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/singleflight"
)

// Envelope is what a remote function returns once the transport-level call
// completed. Error is set when the remote side reported a failure.
type Envelope struct {
	Data  json.RawMessage
	Error string
}

// RemoteCaller performs one remote function call. A non-nil error means the
// call itself could not complete.
type RemoteCaller interface {
	Call(ctx context.Context, function string, params map[string]string) (Envelope, error)
}

// Perform is the work behind a dispatched key
type Perform func(ctx context.Context) (any, error)

// Coordinator guarantees at most one pending call per request key
type Coordinator struct {
	caller RemoteCaller
	log    zerolog.Logger

	group singleflight.Group

	mu      sync.Mutex
	pending map[string]struct{}
}

// NewCoordinator creates a coordinator issuing calls through caller
func NewCoordinator(caller RemoteCaller, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		caller:  caller,
		log:     log.With().Str("component", "requests").Logger(),
		pending: make(map[string]struct{}),
	}
}

// RequestKey builds "<function>:<k=v&...>" with params sorted by name and
// query-escaped, so a value holding '&' or '=' cannot pose as another param.
// Empty values are skipped so an unset filter and a missing one match.
func RequestKey(function string, params map[string]string) string {
	q := url.Values{}
	for k, v := range params {
		if v == "" {
			continue
		}
		q.Set(k, v)
	}
	return function + ":" + q.Encode()
}

// Dispatch runs perform for key unless a call for key is already pending, in
// which case it waits for that call. Every waiter sees the same value and
// error. The pending slot is released before waiters are woken.
//
// The shared call is detached from ctx cancellation; a caller whose ctx
// ends stops waiting and gets ctx.Err() while the call goes on for others.
func (c *Coordinator) Dispatch(ctx context.Context, key string, perform Perform) (any, error) {
	select {
	case res := <-c.start(ctx, key, perform):
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Coordinator) start(ctx context.Context, key string, perform Perform) <-chan singleflight.Result {
	if c.isPending(key) {
		c.log.Debug().Str("request_key", key).Msg("Request already in progress, joining")
	}
	shared := context.WithoutCancel(ctx)
	return c.group.DoChan(key, func() (v any, err error) {
		c.setPending(key, true)
		defer c.setPending(key, false)
		defer func() {
			if r := recover(); r != nil {
				v, err = nil, fmt.Errorf("request %s panicked: %v", key, r)
			}
		}()
		return perform(shared)
	})
}

// InFlight returns the number of keys with a call currently running
func (c *Coordinator) InFlight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func (c *Coordinator) isPending(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pending[key]
	return ok
}

func (c *Coordinator) setPending(key string, on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if on {
		c.pending[key] = struct{}{}
	} else {
		delete(c.pending, key)
	}
}

// Call invokes a remote function through the coordinator and returns its
// data body. Failures are returned as *Error.
func (c *Coordinator) Call(ctx context.Context, function string, params map[string]string) (json.RawMessage, error) {
	key := RequestKey(function, params)
	v, err := c.Dispatch(ctx, key, func(ctx context.Context) (any, error) {
		return c.perform(ctx, function, params)
	})
	if err != nil {
		return nil, err
	}
	return v.(json.RawMessage), nil
}

func (c *Coordinator) perform(ctx context.Context, function string, params map[string]string) (json.RawMessage, error) {
	log := c.log.With().Str("function", function).Logger()
	log.Debug().Interface("params", params).Msg("Calling remote function")

	env, err := c.caller.Call(ctx, function, params)
	if err != nil {
		log.Error().Err(err).Msg("Remote call failed")
		return nil, &Error{Kind: KindTransport, Function: function, Message: MsgUnreachable, Err: err}
	}
	if env.Error != "" {
		log.Error().Str("remote_error", env.Error).Msg("Remote function returned error")
		return nil, serviceError(function, env.Error)
	}

	if !gjson.ValidBytes(env.Data) {
		log.Error().Int("bytes", len(env.Data)).Msg("Remote function returned malformed body")
		return nil, &Error{Kind: KindMalformed, Function: function, Message: MsgInvalidData}
	}
	body := gjson.ParseBytes(env.Data)
	if !body.IsObject() {
		log.Error().Str("type", body.Type.String()).Msg("Remote function returned non-object body")
		return nil, &Error{Kind: KindMalformed, Function: function, Message: MsgInvalidData}
	}

	// edge functions report failures inside an otherwise successful body
	if e := body.Get("error"); e.Exists() && e.Type != gjson.Null && e.Type != gjson.False {
		log.Error().Str("remote_error", e.String()).Msg("Remote function returned embedded error")
		return nil, serviceError(function, e.String())
	}

	if results := body.Get("results"); results.Exists() && results.Int() == 0 {
		if msg := firstProviderError(body.Get("errors")); msg != "" {
			log.Error().Str("provider_error", msg).Msg("Provider rejected request")
			return nil, serviceError(function, msg)
		}
		log.Warn().Interface("params", params).Msg("Remote function returned 0 results, league/season may be invalid or rate limited")
	}

	return env.Data, nil
}

// firstProviderError extracts a message from the provider's errors field,
// which is an empty array on success and an object keyed by field on
// failure
func firstProviderError(errs gjson.Result) string {
	if !errs.IsObject() {
		return ""
	}
	keys := make([]string, 0)
	errs.ForEach(func(k, _ gjson.Result) bool {
		keys = append(keys, k.String())
		return true
	})
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)
	return errs.Get(gjson.Escape(keys[0])).String()
}
