package scorer

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/ninja0404/dex-reputation/internal/model"
)

func newTestAggregator() *Aggregator {
	return NewAggregator(DefaultLPWeights(), DefaultSwapWeights(), DefaultCategoryWeights(), nil)
}

func fullThresholds() *model.ThresholdSet {
	return thresholdsFor(
		model.FeatureTotalDepositUSD,
		model.FeatureAvgHoldTimeDays,
		model.FeatureWithdrawRatio,
		model.FeatureTotalSwapVolume,
		model.FeatureNumSwaps,
		model.FeatureUniquePools,
	)
}

func TestScoreCategoryBothSides(t *testing.T) {
	agg := newTestAggregator()

	fv := &model.FeatureVector{
		TotalDepositUSD: decimal.NewFromInt(100), // LP全顶格
		NumDeposits:     1,
		AvgHoldTimeDays: holdDays(100),
		WithdrawRatio:   decimal.Zero,
		TotalSwapVolume: decimal.NewFromInt(100), // swap全顶格
		NumSwaps:        100,
		UniquePools:     100,
	}

	got, err := agg.ScoreCategory(fv, fullThresholds())
	if err != nil {
		t.Fatalf("打分失败: %v", err)
	}
	// 两侧都是1000 → 0.6×1000 + 0.4×1000 = 1000
	if !got.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("类别分数 = %s, 期望1000", got)
	}
}

func TestScoreCategoryLPOnly(t *testing.T) {
	agg := newTestAggregator()

	// 只有LP活动，swap不适用 → 直接采用LP子分数，不乘0.6
	fv := &model.FeatureVector{
		TotalDepositUSD: decimal.NewFromInt(50),
		NumDeposits:     1,
		WithdrawRatio:   decimal.Zero,
	}

	got, err := agg.ScoreCategory(fv, fullThresholds())
	if err != nil {
		t.Fatalf("打分失败: %v", err)
	}

	// LP: hold_time未定义 → (0.40×50 + 0.25×100)/0.65 ×10
	want := decimal.NewFromInt(45).Div(decimal.NewFromFloat(0.65)).Mul(decimal.NewFromInt(10))
	if !got.Equal(want) {
		t.Errorf("单侧分数 = %s, 期望 %s", got, want)
	}
}

func TestScoreCategoryNoActivity(t *testing.T) {
	agg := newTestAggregator()

	_, err := agg.ScoreCategory(&model.FeatureVector{}, fullThresholds())
	if !errors.Is(err, ErrInsufficientData) {
		t.Errorf("无活动期望ErrInsufficientData, 实际 %v", err)
	}
}

func TestScoreCategoryThresholdUnavailable(t *testing.T) {
	agg := newTestAggregator()

	fv := &model.FeatureVector{NumSwaps: 3}
	_, err := agg.ScoreCategory(fv, nil)
	if !errors.Is(err, ErrThresholdUnavailable) {
		t.Errorf("期望ErrThresholdUnavailable, 实际 %v", err)
	}
}

func TestFinalScoreWeightedByTransactionCount(t *testing.T) {
	agg := newTestAggregator()

	scores := []CategoryScore{
		{Category: "dexes", Score: decimal.NewFromInt(800), TransactionCount: 30},
		{Category: "lending", Score: decimal.NewFromInt(200), TransactionCount: 10},
	}

	got := agg.FinalScore(scores)
	// (800×30 + 200×10) / 40 = 650
	if !got.Equal(decimal.NewFromInt(650)) {
		t.Errorf("最终分数 = %s, 期望650", got)
	}
}

func TestFinalScoreClampedToRange(t *testing.T) {
	agg := newTestAggregator()

	over := agg.FinalScore([]CategoryScore{
		{Score: decimal.NewFromInt(1200), TransactionCount: 1},
	})
	if !over.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("超出上界未被截断: %s", over)
	}

	under := agg.FinalScore([]CategoryScore{
		{Score: decimal.NewFromInt(-5), TransactionCount: 1},
	})
	if !under.IsZero() {
		t.Errorf("低于下界未被截断: %s", under)
	}
}

func TestFinalScoreEmptyInput(t *testing.T) {
	agg := newTestAggregator()

	if got := agg.FinalScore(nil); !got.IsZero() {
		t.Errorf("空输入期望0, 实际 %s", got)
	}
	if got := agg.FinalScore([]CategoryScore{{Score: decimal.NewFromInt(500)}}); !got.IsZero() {
		t.Errorf("交易数为0期望0, 实际 %s", got)
	}
}

func TestScoreCategoryIdempotent(t *testing.T) {
	agg := newTestAggregator()

	fv := &model.FeatureVector{
		TotalDepositUSD: decimal.NewFromInt(37),
		NumDeposits:     2,
		AvgHoldTimeDays: holdDays(12),
		WithdrawRatio:   decimal.NewFromFloat(0.4),
		TotalSwapVolume: decimal.NewFromInt(444),
		NumSwaps:        7,
		UniquePools:     2,
	}
	ts := fullThresholds()

	first, err := agg.ScoreCategory(fv, ts)
	if err != nil {
		t.Fatalf("打分失败: %v", err)
	}
	second, err := agg.ScoreCategory(fv, ts)
	if err != nil {
		t.Fatalf("打分失败: %v", err)
	}
	if !first.Equal(second) {
		t.Errorf("同样输入两次打分不一致: %s vs %s", first, second)
	}
}
