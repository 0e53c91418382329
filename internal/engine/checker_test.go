package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xela07ax/shariaai-compliance-prototype/internal/ai"
	"github.com/xela07ax/shariaai-compliance-prototype/internal/audit"
	"github.com/xela07ax/shariaai-compliance-prototype/internal/domain"
	"github.com/xela07ax/shariaai-compliance-prototype/internal/scoring"
	"go.uber.org/zap"
)

// --- Фейки зависимостей пайплайна ---

type fakeAssets struct {
	asset *domain.Asset
	err   error
}

func (f *fakeAssets) GetAssetByID(ctx context.Context, id string) (*domain.Asset, error) {
	return f.asset, f.err
}

type fakeRules struct {
	rules []domain.ComplianceRule
	err   error
}

func (f *fakeRules) ActiveRules(ctx context.Context) ([]domain.ComplianceRule, error) {
	return f.rules, f.err
}

type fakeVerdicts struct {
	saved *domain.ComplianceVerdict
	err   error
}

func (f *fakeVerdicts) UpsertVerdict(ctx context.Context, v *domain.ComplianceVerdict) error {
	f.saved = v
	return f.err
}

type fakeAnalyzer struct {
	res ai.Analysis
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, asset *domain.Asset) ai.Analysis {
	return f.res
}

type memJournal struct {
	entries []audit.Entry
}

func (m *memJournal) Log(e audit.Entry) {
	m.entries = append(m.entries, e)
}

func cleanAsset() *domain.Asset {
	return &domain.Asset{
		ID:          "11111111-1111-1111-1111-111111111111",
		Symbol:      "CLN",
		Name:        "CleanCoin",
		AssetType:   domain.AssetCrypto,
		Description: "A payment network",
	}
}

func activeRules() []domain.ComplianceRule {
	return []domain.ComplianceRule{
		{ID: "r1", Name: "Riba Prohibition", Category: "riba_prohibition", IsActive: true},
		{ID: "r2", Name: "Gharar Prohibition", Category: "gharar_prohibition", IsActive: true},
		{ID: "r3", Name: "Haram Sector Screening", Category: "haram_sectors", IsActive: true},
	}
}

func newTestChecker(assets *fakeAssets, rules *fakeRules, verdicts *fakeVerdicts, analyzer *fakeAnalyzer, journal *memJournal) *Checker {
	logger := zap.NewNop()
	return NewChecker(
		assets,
		rules,
		verdicts,
		scoring.NewEvaluator(logger),
		analyzer,
		journal,
		NewMetrics(nil),
		logger,
	)
}

func TestRunHappyPath(t *testing.T) {
	verdicts := &fakeVerdicts{}
	journal := &memJournal{}
	c := newTestChecker(
		&fakeAssets{asset: cleanAsset()},
		&fakeRules{rules: activeRules()},
		verdicts,
		&fakeAnalyzer{res: ai.Analysis{Score: 0.9, Reasons: []string{"model: looks compliant"}}},
		journal,
	)

	res, err := c.Run(context.Background(), cleanAsset().ID, "")
	require.NoError(t, err)

	// auto=1.0, ai=0.9 -> 0.6 + 0.36 = 0.96 -> halal
	assert.InDelta(t, 0.96, res.Score, 1e-9)
	assert.Equal(t, domain.StatusHalal, res.Status)
	assert.Equal(t, "CLN", res.Symbol)

	// Причины: сперва правила, затем AI
	require.Len(t, res.Reasons, 4)
	assert.Equal(t, "model: looks compliant", res.Reasons[3])

	// Вердикт сохранен с системной идентичностью
	require.NotNil(t, verdicts.saved)
	assert.Equal(t, "automated", verdicts.saved.CheckedBy)
	assert.True(t, verdicts.saved.AutomatedCheck)

	// Аудит зафиксирован от имени system
	require.Len(t, journal.entries, 1)
	assert.Equal(t, "system", journal.entries[0].Actor)
	assert.Equal(t, audit.ActionComplianceCheck, journal.entries[0].Action)
}

func TestRunUserInitiatedCheck(t *testing.T) {
	verdicts := &fakeVerdicts{}
	journal := &memJournal{}
	c := newTestChecker(
		&fakeAssets{asset: cleanAsset()},
		&fakeRules{rules: activeRules()},
		verdicts,
		&fakeAnalyzer{res: ai.Analysis{Score: 0.5, Reasons: []string{}}},
		journal,
	)

	_, err := c.Run(context.Background(), cleanAsset().ID, "user-42")
	require.NoError(t, err)

	assert.Equal(t, "user-42", verdicts.saved.CheckedBy)
	assert.Equal(t, "user-42", journal.entries[0].Actor)
}

func TestRunAssetMissingReturnsNotFound(t *testing.T) {
	c := newTestChecker(
		&fakeAssets{asset: nil},
		&fakeRules{rules: activeRules()},
		&fakeVerdicts{},
		&fakeAnalyzer{},
		&memJournal{},
	)

	_, err := c.Run(context.Background(), "missing-id", "")
	assert.ErrorIs(t, err, domain.ErrAssetNotFound)
}

func TestRunAssetLookupErrorIsFatal(t *testing.T) {
	c := newTestChecker(
		&fakeAssets{err: errors.New("db down")},
		&fakeRules{rules: activeRules()},
		&fakeVerdicts{},
		&fakeAnalyzer{},
		&memJournal{},
	)

	_, err := c.Run(context.Background(), "any", "")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrAssetNotFound)
}

func TestRunRulesFetchErrorIsFatal(t *testing.T) {
	c := newTestChecker(
		&fakeAssets{asset: cleanAsset()},
		&fakeRules{err: errors.New("cache refresh failed")},
		&fakeVerdicts{},
		&fakeAnalyzer{},
		&memJournal{},
	)

	_, err := c.Run(context.Background(), cleanAsset().ID, "")
	assert.Error(t, err)
}

func TestRunUpsertFailureIsFatal(t *testing.T) {
	journal := &memJournal{}
	c := newTestChecker(
		&fakeAssets{asset: cleanAsset()},
		&fakeRules{rules: activeRules()},
		&fakeVerdicts{err: errors.New("constraint violation")},
		&fakeAnalyzer{res: ai.Analysis{Score: 0.5}},
		journal,
	)

	_, err := c.Run(context.Background(), cleanAsset().ID, "")
	require.Error(t, err)
	// При несохраненном вердикте аудит не пишем
	assert.Empty(t, journal.entries)
}

func TestRunAIFallbackStillProducesVerdict(t *testing.T) {
	verdicts := &fakeVerdicts{}
	c := newTestChecker(
		&fakeAssets{asset: cleanAsset()},
		&fakeRules{rules: activeRules()},
		verdicts,
		&fakeAnalyzer{res: ai.Fallback()},
		&memJournal{},
	)

	res, err := c.Run(context.Background(), cleanAsset().ID, "")
	require.NoError(t, err)

	// auto=1.0, ai=0.5 -> 0.6 + 0.2 = 0.8 -> halal (граница включительная)
	assert.InDelta(t, 0.8, res.Score, 1e-9)
	assert.Equal(t, domain.StatusHalal, res.Status)
	assert.Contains(t, res.Reasons, ai.FallbackReason)
}

func TestRunHaramAssetClassified(t *testing.T) {
	verdicts := &fakeVerdicts{}
	c := newTestChecker(
		&fakeAssets{asset: &domain.Asset{
			ID:          "a2",
			Symbol:      "GMB",
			Name:        "RandomCasino",
			AssetType:   domain.AssetCrypto,
			Description: "Decentralized gambling with staking rewards",
		}},
		&fakeRules{rules: activeRules()},
		verdicts,
		&fakeAnalyzer{res: ai.Analysis{Score: 0.0, Reasons: []string{"model: gambling platform"}}},
		&memJournal{},
	)

	res, err := c.Run(context.Background(), "a2", "")
	require.NoError(t, err)

	// Все три правила отрицательные: auto=0, ai=0 -> 0 -> haram
	assert.InDelta(t, 0.0, res.Score, 1e-9)
	assert.Equal(t, domain.StatusHaram, res.Status)
}
