package scorer

import (
	"github.com/shopspring/decimal"

	"github.com/ninja0404/dex-reputation/internal/model"
)

var (
	rankFloor   = decimal.Zero
	rankCeiling = decimal.NewFromInt(100)
)

// PercentileRank 将原始特征值映射为0-100的百分位名次
// 低于最低切点记0，高于最高切点记100，否则在相邻两个切点之间线性插值
func PercentileRank(value decimal.Decimal, cutpoints []model.Cutpoint) decimal.Decimal {
	if len(cutpoints) == 0 {
		return rankFloor
	}

	if value.LessThan(cutpoints[0].Value) {
		return rankFloor
	}
	last := cutpoints[len(cutpoints)-1]
	if value.GreaterThanOrEqual(last.Value) {
		return rankCeiling
	}

	for i := 0; i < len(cutpoints)-1; i++ {
		lo, hi := cutpoints[i], cutpoints[i+1]
		if value.GreaterThanOrEqual(hi.Value) {
			continue
		}

		loRank := decimal.NewFromInt32(lo.Percentile)
		hiRank := decimal.NewFromInt32(hi.Percentile)
		span := hi.Value.Sub(lo.Value)
		if span.IsZero() {
			// 相邻切点值相同，取上界名次避免除零
			return hiRank
		}

		fraction := value.Sub(lo.Value).Div(span)
		return loRank.Add(hiRank.Sub(loRank).Mul(fraction))
	}

	return rankCeiling
}

// InvertRank 名次取反，用于数值越大越差的特征（如withdraw_ratio）
func InvertRank(rank decimal.Decimal) decimal.Decimal {
	return rankCeiling.Sub(rank)
}
