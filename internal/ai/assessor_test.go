package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xela07ax/shariaai-compliance-prototype/internal/domain"
	"go.uber.org/zap"
)

type stubCaller struct {
	res Analysis
	err error
}

func (s *stubCaller) Assess(ctx context.Context, asset *domain.Asset) (Analysis, error) {
	return s.res, s.err
}

func TestAnalyzePassesThroughSuccess(t *testing.T) {
	want := Analysis{Score: 0.8, Reasons: []string{"looks fine"}}
	a := NewAssessor(&stubCaller{res: want}, nil, zap.NewNop())

	got := a.Analyze(context.Background(), testAsset())
	assert.Equal(t, want, got)
}

func TestAnalyzeErrorProducesNeutralFallback(t *testing.T) {
	a := NewAssessor(&stubCaller{err: errors.New("provider down")}, nil, zap.NewNop())

	got := a.Analyze(context.Background(), testAsset())

	// Ошибка провайдера никогда не роняет пайплайн
	assert.InDelta(t, 0.5, got.Score, 1e-9)
	assert.Equal(t, []string{FallbackReason}, got.Reasons)
}
