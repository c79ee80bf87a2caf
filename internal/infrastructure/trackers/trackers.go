// Package trackers contains the HTTP adapters for the external work item
// trackers. Each adapter implements the tracker.Provider port and talks to
// one vendor API; the registry hands out adapters by provider code.
package trackers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/hearback/backend/internal/domain/tracker"
)

// maxResponseSize caps how much of a provider response we read into memory
const maxResponseSize = 1 << 20

// defaultTimeout bounds every outbound provider call
const defaultTimeout = 15 * time.Second

// NewHTTPClient returns the http client shared by all tracker adapters.
// The timeout is clamped so a misconfigured value cannot hang a sync.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout < 10*time.Second || timeout > 30*time.Second {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// Registry maps provider codes to their adapters
type Registry struct {
	providers map[tracker.Code]tracker.Provider
}

// NewRegistry builds a registry over the given adapters.
// Registering two adapters with the same code is a programming error.
func NewRegistry(providers ...tracker.Provider) *Registry {
	r := &Registry{providers: make(map[tracker.Code]tracker.Provider, len(providers))}
	for _, p := range providers {
		if _, exists := r.providers[p.Code()]; exists {
			panic("trackers: duplicate provider registered: " + p.Code().String())
		}
		r.providers[p.Code()] = p
	}
	return r
}

// NewDefaultRegistry wires up all supported tracker adapters
func NewDefaultRegistry(client *http.Client) *Registry {
	return NewRegistry(
		NewGitHubProvider(client),
		NewClickUpProvider(client),
		NewNotionProvider(client),
		NewMondayProvider(client),
		NewLinearProvider(client),
		NewTrelloProvider(client),
	)
}

// Get returns the adapter for the given provider code
func (r *Registry) Get(code tracker.Code) (tracker.Provider, error) {
	p, ok := r.providers[code]
	if !ok {
		return nil, tracker.ErrUnknownProvider
	}
	return p, nil
}

// All returns every registered adapter
func (r *Registry) All() []tracker.Provider {
	out := make([]tracker.Provider, 0, len(r.providers))
	for _, code := range tracker.Codes() {
		if p, ok := r.providers[code]; ok {
			out = append(out, p)
		}
	}
	return out
}

var _ tracker.Registry = (*Registry)(nil)

// apiErrorMessage pulls a human readable message out of a provider error
// body. Vendors disagree on the field name, so a few are probed before
// falling back to the raw body.
func apiErrorMessage(body []byte) string {
	var parsed struct {
		Message    string `json:"message"`
		Error      string `json:"error"`
		Err        string `json:"err"`
		ErrorMsg   string `json:"error_message"`
		StatusText string `json:"status"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		for _, msg := range []string{parsed.Message, parsed.Error, parsed.Err, parsed.ErrorMsg} {
			if msg != "" {
				return msg
			}
		}
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return string(body)
}

func splitLines(body string) []string {
	return strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n")
}
