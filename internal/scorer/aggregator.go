package scorer

import (
	"github.com/shopspring/decimal"

	"github.com/ninja0404/dex-reputation/internal/model"
)

var maxScore = decimal.NewFromInt(1000)

// CategoryWeights LP与swap子分数合成类别分数时的权重
type CategoryWeights struct {
	LP   float64 `yaml:"lp" json:"lp"`
	Swap float64 `yaml:"swap" json:"swap"`
}

// DefaultCategoryWeights 默认类别合成权重
func DefaultCategoryWeights() CategoryWeights {
	return CategoryWeights{
		LP:   0.60,
		Swap: 0.40,
	}
}

// CategoryScore 一个类别的打分结果，交易数用于最终分数的加权
type CategoryScore struct {
	Category         string
	Score            decimal.Decimal
	TransactionCount int
}

// Aggregator 把特征向量合成为类别分数和钱包最终分数
type Aggregator struct {
	lp         Calculator
	swap       Calculator
	lpWeight   decimal.Decimal
	swapWeight decimal.Decimal
	tagger     *Tagger
}

// NewAggregator 创建分数聚合器
func NewAggregator(lpWeights LPWeights, swapWeights SwapWeights, catWeights CategoryWeights, rules []TagRule) *Aggregator {
	return &Aggregator{
		lp:         NewLPCalculator(lpWeights),
		swap:       NewSwapCalculator(swapWeights),
		lpWeight:   decimal.NewFromFloat(catWeights.LP),
		swapWeight: decimal.NewFromFloat(catWeights.Swap),
		tagger:     NewTagger(rules),
	}
}

// ScoreCategory 计算单个类别的分数
// 两个子分数都可计算时按权重合成；只有一侧活动时直接采用该侧子分数；
// 两侧都不适用返回ErrInsufficientData
func (a *Aggregator) ScoreCategory(fv *model.FeatureVector, thresholds *model.ThresholdSet) (decimal.Decimal, error) {
	lpOK := a.lp.Applicable(fv)
	swapOK := a.swap.Applicable(fv)
	if !lpOK && !swapOK {
		return decimal.Zero, ErrInsufficientData
	}

	var lpScore, swapScore decimal.Decimal
	var err error

	if lpOK {
		if lpScore, err = a.lp.Score(fv, thresholds); err != nil {
			return decimal.Zero, err
		}
	}
	if swapOK {
		if swapScore, err = a.swap.Score(fv, thresholds); err != nil {
			return decimal.Zero, err
		}
	}

	switch {
	case lpOK && swapOK:
		return clampScore(lpScore.Mul(a.lpWeight).Add(swapScore.Mul(a.swapWeight))), nil
	case lpOK:
		return clampScore(lpScore), nil
	default:
		return clampScore(swapScore), nil
	}
}

// FinalScore 按各类别交易数加权平均得到钱包最终分数
// 类别间交易规模差异大时，活跃类别对最终分数的影响更大
func (a *Aggregator) FinalScore(scores []CategoryScore) decimal.Decimal {
	if len(scores) == 0 {
		return decimal.Zero
	}

	weightedSum := decimal.Zero
	totalCount := decimal.Zero
	for _, cs := range scores {
		count := decimal.NewFromInt(int64(cs.TransactionCount))
		weightedSum = weightedSum.Add(cs.Score.Mul(count))
		totalCount = totalCount.Add(count)
	}
	if totalCount.IsZero() {
		return decimal.Zero
	}
	return clampScore(weightedSum.Div(totalCount))
}

// Tags 基于特征向量评估行为标签
func (a *Aggregator) Tags(fv *model.FeatureVector) []string {
	return a.tagger.Evaluate(fv)
}

func clampScore(s decimal.Decimal) decimal.Decimal {
	if s.IsNegative() {
		return decimal.Zero
	}
	if s.GreaterThan(maxScore) {
		return maxScore
	}
	return s
}
