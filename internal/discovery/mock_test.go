package discovery

import (
	"context"

	"github.com/ccs-group/leadgen-cli/internal/model"
)

// mockProvider is a hand-written Provider for failover tests.
type mockProvider struct {
	mode     model.DiscoveryMode
	out      *RawOutput
	err      error
	calls    int
	lastReq  Request
	generate func(ctx context.Context, req Request) (*RawOutput, error)
}

func (m *mockProvider) Mode() model.DiscoveryMode { return m.mode }

func (m *mockProvider) Generate(ctx context.Context, req Request) (*RawOutput, error) {
	m.calls++
	m.lastReq = req
	if m.generate != nil {
		return m.generate(ctx, req)
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.out, nil
}
