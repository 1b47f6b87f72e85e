package scorer

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/ninja0404/dex-reputation/internal/model"
)

// evenCutpoints 构造0-100均匀分布的切点：名次与数值一一对应，便于推算期望分数
func evenCutpoints() []model.Cutpoint {
	return []model.Cutpoint{
		cp(0, 0),
		cp(100, 100),
	}
}

func thresholdsFor(features ...string) *model.ThresholdSet {
	ts := &model.ThresholdSet{
		Protocol: "default",
		Category: "dexes",
		Features: make(map[string][]model.Cutpoint),
	}
	for _, f := range features {
		ts.Features[f] = evenCutpoints()
	}
	return ts
}

func holdDays(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

func TestLPScoreAllFeaturesDefined(t *testing.T) {
	ts := thresholdsFor(
		model.FeatureTotalDepositUSD,
		model.FeatureAvgHoldTimeDays,
		model.FeatureWithdrawRatio,
	)

	fv := &model.FeatureVector{
		TotalDepositUSD: decimal.NewFromInt(50), // 名次50
		NumDeposits:     1,
		AvgHoldTimeDays: holdDays(80),                 // 名次80
		WithdrawRatio:   decimal.NewFromFloat(20), // 名次20，取反80
	}

	calc := NewLPCalculator(DefaultLPWeights())
	got, err := calc.Score(fv, ts)
	if err != nil {
		t.Fatalf("打分失败: %v", err)
	}

	// 0.40×50 + 0.35×80 + 0.25×80 = 68 → ×10 = 680
	want := decimal.NewFromInt(680)
	if !got.Equal(want) {
		t.Errorf("LP分数 = %s, 期望 %s", got, want)
	}
}

func TestLPScoreWeightRedistribution(t *testing.T) {
	ts := thresholdsFor(
		model.FeatureTotalDepositUSD,
		model.FeatureAvgHoldTimeDays,
		model.FeatureWithdrawRatio,
	)

	// avg_hold_time_days未定义 → 权重摊到其余两项
	fv := &model.FeatureVector{
		TotalDepositUSD: decimal.NewFromInt(50),
		NumDeposits:     1,
		AvgHoldTimeDays: nil,
		WithdrawRatio:   decimal.Zero, // 名次0，取反100
	}

	calc := NewLPCalculator(DefaultLPWeights())
	got, err := calc.Score(fv, ts)
	if err != nil {
		t.Fatalf("打分失败: %v", err)
	}

	// (0.40×50 + 0.25×100) / (0.40+0.25) × 10 ≈ 692.3
	want := decimal.NewFromInt(45).Div(decimal.NewFromFloat(0.65)).Mul(decimal.NewFromInt(10))
	if !got.Equal(want) {
		t.Errorf("权重重分配后分数 = %s, 期望 %s", got, want)
	}
}

func TestScoreMissingThresholdSet(t *testing.T) {
	fv := &model.FeatureVector{NumSwaps: 5}
	calc := NewSwapCalculator(DefaultSwapWeights())

	if _, err := calc.Score(fv, nil); !errors.Is(err, ErrThresholdUnavailable) {
		t.Errorf("nil阈值集期望ErrThresholdUnavailable, 实际 %v", err)
	}

	empty := &model.ThresholdSet{Features: map[string][]model.Cutpoint{}}
	if _, err := calc.Score(fv, empty); !errors.Is(err, ErrThresholdUnavailable) {
		t.Errorf("空阈值集期望ErrThresholdUnavailable, 实际 %v", err)
	}
}

func TestSwapScoreRange(t *testing.T) {
	ts := thresholdsFor(
		model.FeatureTotalSwapVolume,
		model.FeatureNumSwaps,
		model.FeatureUniquePools,
	)

	calc := NewSwapCalculator(DefaultSwapWeights())

	// 全部顶格 → 1000
	top := &model.FeatureVector{
		TotalSwapVolume: decimal.NewFromInt(1_000_000),
		NumSwaps:        500,
		UniquePools:     200,
	}
	got, err := calc.Score(top, ts)
	if err != nil {
		t.Fatalf("打分失败: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("顶格分数 = %s, 期望1000", got)
	}

	// 接近垫底：0.45×0 + 0.30×1 + 0.25×0 = 0.3 → ×10 = 3
	bottom := &model.FeatureVector{NumSwaps: 1}
	got, err = calc.Score(bottom, ts)
	if err != nil {
		t.Fatalf("打分失败: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(3)) {
		t.Errorf("垫底分数 = %s, 期望3", got)
	}
}
