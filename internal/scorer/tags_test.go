package scorer

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ninja0404/dex-reputation/internal/model"
)

func TestDefaultTagLadder(t *testing.T) {
	tagger := NewTagger(nil)

	tests := []struct {
		name string
		fv   *model.FeatureVector
		want []string
	}{
		{
			name: "巨鲸LP加长期持有",
			fv: &model.FeatureVector{
				TotalDepositUSD: decimal.NewFromInt(250_000),
				AvgHoldTimeDays: holdDays(120),
			},
			want: []string{"Whale LP", "Long-term Holder"},
		},
		{
			name: "中型LP加短期持有",
			fv: &model.FeatureVector{
				TotalDepositUSD: decimal.NewFromInt(5_000),
				AvgHoldTimeDays: holdDays(7),
			},
			want: []string{"Medium LP", "Short-term Holder"},
		},
		{
			name: "档位边界取下档",
			fv: &model.FeatureVector{
				// 恰好10000不超过下界，落在Medium档
				TotalDepositUSD: decimal.NewFromInt(10_000),
			},
			want: []string{"Medium LP"},
		},
		{
			name: "高频分散交易者",
			fv: &model.FeatureVector{
				TotalSwapVolume: decimal.NewFromInt(600_000),
				NumSwaps:        150,
				TokenDiversity:  decimal.NewFromInt(120),
				UniquePools:     5,
			},
			want: []string{"Whale Trader", "High Frequency Trader", "Diversified Trader", "Multi-Pool LP"},
		},
		{
			name: "持有期限未定义时跳过持有标签",
			fv: &model.FeatureVector{
				TotalDepositUSD: decimal.NewFromInt(500),
				AvgHoldTimeDays: nil,
			},
			want: []string{"Small LP"},
		},
		{
			name: "零活动无标签",
			fv:   &model.FeatureVector{},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tagger.Evaluate(tt.fv)
			if len(got) != len(tt.want) {
				t.Fatalf("标签 = %v, 期望 %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("标签 = %v, 期望 %v", got, tt.want)
				}
			}
		})
	}
}

func TestCustomTagRules(t *testing.T) {
	rules := []TagRule{
		{Tag: "Test Whale", Feature: model.FeatureTotalSwapVolume, Min: f(1000)},
	}
	tagger := NewTagger(rules)

	got := tagger.Evaluate(&model.FeatureVector{TotalSwapVolume: decimal.NewFromInt(2000)})
	if len(got) != 1 || got[0] != "Test Whale" {
		t.Errorf("自定义规则未生效: %v", got)
	}
}
