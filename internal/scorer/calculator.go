package scorer

import (
	"github.com/shopspring/decimal"

	"github.com/ninja0404/dex-reputation/internal/model"
)

// 子分数量纲：加权百分位名次(0-100)放大10倍到0-1000
var scoreScale = decimal.NewFromInt(10)

// Calculator 子分数计算器接口
// 封闭的策略变体集合：LP行为和swap行为各一个实现，新类别通过新增变体扩展
type Calculator interface {
	// Name 计算器名称
	Name() string

	// Applicable 特征向量是否包含该计算器可评分的活动
	Applicable(fv *model.FeatureVector) bool

	// Score 将特征向量映射为[0,1000]的子分数
	Score(fv *model.FeatureVector, thresholds *model.ThresholdSet) (decimal.Decimal, error)
}

// weightedFeature 参与加权的单个特征
type weightedFeature struct {
	name     string
	weight   decimal.Decimal
	inverted bool // 数值越大名次越差
}

// weightedRankScore 通用的"百分位名次加权"打分
// 未定义的特征不计0分，而是把它的权重按比例摊到其余已定义特征上，
// 避免把没有已平仓头寸的钱包当作持有时间为零来惩罚
func weightedRankScore(fv *model.FeatureVector, thresholds *model.ThresholdSet, features []weightedFeature) (decimal.Decimal, error) {
	if thresholds == nil || len(thresholds.Features) == 0 {
		return decimal.Zero, ErrThresholdUnavailable
	}

	weightedSum := decimal.Zero
	definedWeight := decimal.Zero

	for _, wf := range features {
		value, defined := fv.Get(wf.name)
		if !defined {
			continue
		}
		cutpoints := thresholds.Cutpoints(wf.name)
		if len(cutpoints) == 0 {
			// 单个特征缺少切点时按未定义处理，整组缺失才算阈值不可用
			continue
		}

		rank := PercentileRank(value, cutpoints)
		if wf.inverted {
			rank = InvertRank(rank)
		}
		weightedSum = weightedSum.Add(rank.Mul(wf.weight))
		definedWeight = definedWeight.Add(wf.weight)
	}

	if definedWeight.IsZero() {
		return decimal.Zero, ErrThresholdUnavailable
	}

	// 权重重分配：除以已定义权重之和等价于按比例摊分
	return weightedSum.Div(definedWeight).Mul(scoreScale), nil
}
