package scorer

import (
	"github.com/shopspring/decimal"

	"github.com/ninja0404/dex-reputation/internal/model"
)

// TagRule 单条标签规则：特征值落在(Min, Max]区间时命中
// Min为nil表示无下界，Max为nil表示无上界；规则表是配置而非写死的算术
type TagRule struct {
	Tag     string   `yaml:"tag" json:"tag"`
	Feature string   `yaml:"feature" json:"feature"`
	Min     *float64 `yaml:"min" json:"min"`
	Max     *float64 `yaml:"max" json:"max"`
}

// DefaultTagRules 默认标签规则表
// 分档沿用线上模型的阈值：LP规模、持有期限、交易量、频次、分散度
func DefaultTagRules() []TagRule {
	return []TagRule{
		{Tag: "Whale LP", Feature: model.FeatureTotalDepositUSD, Min: f(100000)},
		{Tag: "Large LP", Feature: model.FeatureTotalDepositUSD, Min: f(10000), Max: f(100000)},
		{Tag: "Medium LP", Feature: model.FeatureTotalDepositUSD, Min: f(1000), Max: f(10000)},
		{Tag: "Small LP", Feature: model.FeatureTotalDepositUSD, Min: f(0), Max: f(1000)},

		{Tag: "Long-term Holder", Feature: model.FeatureAvgHoldTimeDays, Min: f(90)},
		{Tag: "Medium-term Holder", Feature: model.FeatureAvgHoldTimeDays, Min: f(30), Max: f(90)},
		{Tag: "Short-term Holder", Feature: model.FeatureAvgHoldTimeDays, Min: f(0), Max: f(30)},

		{Tag: "Whale Trader", Feature: model.FeatureTotalSwapVolume, Min: f(500000)},
		{Tag: "Large Trader", Feature: model.FeatureTotalSwapVolume, Min: f(50000), Max: f(500000)},
		{Tag: "Active Trader", Feature: model.FeatureTotalSwapVolume, Min: f(5000), Max: f(50000)},
		{Tag: "Casual Trader", Feature: model.FeatureTotalSwapVolume, Min: f(0), Max: f(5000)},

		{Tag: "High Frequency Trader", Feature: model.FeatureNumSwaps, Min: f(100)},
		{Tag: "Regular Trader", Feature: model.FeatureNumSwaps, Min: f(20), Max: f(100)},

		{Tag: "Diversified Trader", Feature: model.FeatureTokenDiversity, Min: f(100)},
		{Tag: "Multi-Pool LP", Feature: model.FeatureUniquePools, Min: f(3)},
	}
}

// Tagger 按规则表为特征向量分配行为标签
type Tagger struct {
	rules []TagRule
}

// NewTagger 创建标签器，rules为空时使用默认规则表
func NewTagger(rules []TagRule) *Tagger {
	if len(rules) == 0 {
		rules = DefaultTagRules()
	}
	return &Tagger{rules: rules}
}

// Evaluate 返回命中的标签，按规则表顺序，允许多个标签同时命中
// 未定义的特征（如无平仓记录的avg_hold_time_days）跳过相关规则
func (t *Tagger) Evaluate(fv *model.FeatureVector) []string {
	var tags []string
	for _, rule := range t.rules {
		value, defined := fv.Get(rule.Feature)
		if !defined {
			continue
		}
		if rule.Min != nil && !value.GreaterThan(decimal.NewFromFloat(*rule.Min)) {
			continue
		}
		if rule.Max != nil && value.GreaterThan(decimal.NewFromFloat(*rule.Max)) {
			continue
		}
		tags = append(tags, rule.Tag)
	}
	return tags
}

func f(v float64) *float64 {
	return &v
}
