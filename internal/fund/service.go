package fund

import (
	"context"
)

// Service builds and analyses funds against a fixed set of collaborators
type Service struct {
	deps Deps
}

// NewService creates a service sharing deps across funds
func NewService(deps Deps) *Service {
	return &Service{deps: deps}
}

// Analyze loads the fund described by spec and runs the full analysis
func (s *Service) Analyze(ctx context.Context, spec Spec) (*Analysis, error) {
	rec, err := NewRecord(ctx, spec, s.deps)
	if err != nil {
		return nil, err
	}
	return rec.Analyze()
}
