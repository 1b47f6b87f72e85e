package scorer

import (
	"github.com/shopspring/decimal"

	"github.com/ninja0404/dex-reputation/internal/model"
)

// SwapWeights swap子分数各特征权重，三项之和应为1
type SwapWeights struct {
	Volume      float64 `yaml:"volume" json:"volume"`
	NumSwaps    float64 `yaml:"num_swaps" json:"num_swaps"`
	UniquePools float64 `yaml:"unique_pools" json:"unique_pools"`
}

// DefaultSwapWeights 默认swap权重
func DefaultSwapWeights() SwapWeights {
	return SwapWeights{
		Volume:      0.45,
		NumSwaps:    0.30,
		UniquePools: 0.25,
	}
}

// swapCalculator 交易行为子分数
// 奖励更大的交易量、更高的交易频次和更分散的池子覆盖
type swapCalculator struct {
	features []weightedFeature
}

// NewSwapCalculator 创建swap子分数计算器
func NewSwapCalculator(w SwapWeights) Calculator {
	return &swapCalculator{
		features: []weightedFeature{
			{name: model.FeatureTotalSwapVolume, weight: decimal.NewFromFloat(w.Volume)},
			{name: model.FeatureNumSwaps, weight: decimal.NewFromFloat(w.NumSwaps)},
			{name: model.FeatureUniquePools, weight: decimal.NewFromFloat(w.UniquePools)},
		},
	}
}

func (c *swapCalculator) Name() string {
	return "swap"
}

func (c *swapCalculator) Applicable(fv *model.FeatureVector) bool {
	return fv.NumSwaps > 0
}

func (c *swapCalculator) Score(fv *model.FeatureVector, thresholds *model.ThresholdSet) (decimal.Decimal, error) {
	return weightedRankScore(fv, thresholds, c.features)
}
