package scorer

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ninja0404/dex-reputation/internal/model"
)

func cp(percentile int32, value float64) model.Cutpoint {
	return model.Cutpoint{Percentile: percentile, Value: decimal.NewFromFloat(value)}
}

func TestPercentileRank(t *testing.T) {
	cutpoints := []model.Cutpoint{
		cp(10, 100),
		cp(50, 1000),
		cp(90, 10000),
	}

	tests := []struct {
		name  string
		value float64
		want  string
	}{
		{"低于最低切点", 50, "0"},
		{"等于最低切点", 100, "10"},
		{"中段线性插值", 550, "30"}, // (550-100)/(1000-100)=0.5 → 10+0.5×40
		{"等于中间切点", 1000, "50"},
		{"上段线性插值", 5500, "70"},
		{"等于最高切点", 10000, "100"},
		{"高于最高切点", 99999, "100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PercentileRank(decimal.NewFromFloat(tt.value), cutpoints)
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("PercentileRank(%v) = %s, 期望 %s", tt.value, got, tt.want)
			}
		})
	}
}

func TestPercentileRankEqualCutpoints(t *testing.T) {
	// 相邻切点值相同（数据分布高度集中），取上界名次而不是除零
	cutpoints := []model.Cutpoint{
		cp(10, 0),
		cp(50, 0),
		cp(90, 100),
	}

	got := PercentileRank(decimal.Zero, cutpoints)
	if !got.Equal(decimal.NewFromInt(50)) {
		t.Errorf("零跨度区间名次 = %s, 期望50", got)
	}
}

func TestPercentileRankEmptyCutpoints(t *testing.T) {
	got := PercentileRank(decimal.NewFromInt(42), nil)
	if !got.IsZero() {
		t.Errorf("空切点序列应返回0, 实际 %s", got)
	}
}

func TestInvertRank(t *testing.T) {
	got := InvertRank(decimal.NewFromInt(30))
	if !got.Equal(decimal.NewFromInt(70)) {
		t.Errorf("InvertRank(30) = %s, 期望70", got)
	}
}
