package model

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Cutpoint 单个百分位切点
type Cutpoint struct {
	Percentile int32
	Value      decimal.Decimal
}

// ThresholdSet 一个协议+类别下各特征的百分位切点序列
// 由配置存储提供，评分路径只读
type ThresholdSet struct {
	Protocol string
	Category string
	Features map[string][]Cutpoint
}

// Key 协议+类别的缓存键
func (t *ThresholdSet) Key() string {
	return ThresholdKey(t.Protocol, t.Category)
}

// Cutpoints 返回指定特征的切点序列，不存在时返回nil
func (t *ThresholdSet) Cutpoints(feature string) []Cutpoint {
	if t == nil {
		return nil
	}
	return t.Features[feature]
}

// SortCutpoints 按百分位升序整理所有切点，加载后调用一次
func (t *ThresholdSet) SortCutpoints() {
	for _, cps := range t.Features {
		sort.Slice(cps, func(i, j int) bool {
			return cps[i].Percentile < cps[j].Percentile
		})
	}
}

// ThresholdKey 构造协议+类别键
func ThresholdKey(protocol, category string) string {
	return protocol + "/" + category
}
