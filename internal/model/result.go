package model

import (
	"encoding/json"
)

// CategoryResult 单个类别的评分结果，成功携带Score+Features，失败携带Error
// 输入批次中出现的每个类别在输出里恰好出现一次
type CategoryResult struct {
	Category         string         `json:"category"`
	Score            json.Number    `json:"score,omitempty"`
	Error            string         `json:"error,omitempty"`
	TransactionCount int            `json:"transaction_count"`
	Features         *FeatureVector `json:"features,omitempty"`
}

// Succeeded 该类别是否评分成功
func (c *CategoryResult) Succeeded() bool {
	return c.Error == ""
}

// ScoreResult 一个钱包的最终输出记录
// ZScore以十进制字符串承载完整精度；Timestamp为批次内最早交易时间，而非挂钟时间
type ScoreResult struct {
	WalletAddress    string            `json:"wallet_address"`
	ZScore           string            `json:"zscore,omitempty"`
	Error            string            `json:"error,omitempty"`
	Timestamp        int64             `json:"timestamp"`
	ProcessingTimeMs int64             `json:"processing_time_ms"`
	UserTags         []string          `json:"user_tags,omitempty"`
	Categories       []*CategoryResult `json:"categories"`
}

// Succeeded 钱包级评分是否成功
func (r *ScoreResult) Succeeded() bool {
	return r.Error == ""
}
