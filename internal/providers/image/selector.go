package image

import (
	"context"
	"fmt"
	"strings"

	"liminal-reels/internal/domain"
)

// Selector routes each acquisition to the mock or the live provider. The
// mock flag is evaluated on every call rather than cached at construction,
// so a misconfigured live credential only surfaces on actual invocation.
type Selector struct {
	mock     Provider
	live     Provider
	mockMode func() bool
	liveKey  string
}

// NewSelector wires a mock and a live provider behind one Provider. liveKey
// is the process-wide credential; Request.APIKey can still override it per
// call.
func NewSelector(mock, live Provider, mockMode func() bool, liveKey string) *Selector {
	return &Selector{mock: mock, live: live, mockMode: mockMode, liveKey: strings.TrimSpace(liveKey)}
}

// Acquire selects the provider for this call. With mock mode off and no
// credential in either the process configuration or the request, it raises a
// configuration error without attempting any network call.
func (s *Selector) Acquire(ctx context.Context, req Request) (string, error) {
	if s.mockMode() {
		return s.mock.Acquire(ctx, req)
	}
	if strings.TrimSpace(req.APIKey) == "" && s.liveKey == "" {
		return "", fmt.Errorf("%w: missing OPENAI_API_KEY and mock mode is off", domain.ErrConfiguration)
	}
	return s.live.Acquire(ctx, req)
}

var _ Provider = (*Selector)(nil)
