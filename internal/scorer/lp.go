package scorer

import (
	"github.com/shopspring/decimal"

	"github.com/ninja0404/dex-reputation/internal/model"
)

// LPWeights LP子分数各特征权重，三项之和应为1
type LPWeights struct {
	DepositUSD    float64 `yaml:"deposit_usd" json:"deposit_usd"`
	HoldTimeDays  float64 `yaml:"hold_time_days" json:"hold_time_days"`
	WithdrawRatio float64 `yaml:"withdraw_ratio" json:"withdraw_ratio"`
}

// DefaultLPWeights 默认LP权重
func DefaultLPWeights() LPWeights {
	return LPWeights{
		DepositUSD:    0.40,
		HoldTimeDays:  0.35,
		WithdrawRatio: 0.25,
	}
}

// lpCalculator 流动性提供行为子分数
// 奖励更大的存入规模和更长的持有时间，惩罚存后速提行为
type lpCalculator struct {
	features []weightedFeature
}

// NewLPCalculator 创建LP子分数计算器
func NewLPCalculator(w LPWeights) Calculator {
	return &lpCalculator{
		features: []weightedFeature{
			{name: model.FeatureTotalDepositUSD, weight: decimal.NewFromFloat(w.DepositUSD)},
			{name: model.FeatureAvgHoldTimeDays, weight: decimal.NewFromFloat(w.HoldTimeDays)},
			{name: model.FeatureWithdrawRatio, weight: decimal.NewFromFloat(w.WithdrawRatio), inverted: true},
		},
	}
}

func (c *lpCalculator) Name() string {
	return "lp"
}

func (c *lpCalculator) Applicable(fv *model.FeatureVector) bool {
	return fv.NumDeposits > 0 || fv.NumWithdraws > 0
}

func (c *lpCalculator) Score(fv *model.FeatureVector, thresholds *model.ThresholdSet) (decimal.Decimal, error) {
	return weightedRankScore(fv, thresholds, c.features)
}
