package scorer

import "github.com/pkg/errors"

var (
	// ErrThresholdUnavailable 协议/类别没有任何百分位切点数据
	ErrThresholdUnavailable = errors.New("threshold set unavailable for protocol/category")

	// ErrInsufficientData 类别规范化后没有任何可评分的交易
	ErrInsufficientData = errors.New("insufficient data: no scorable transactions in category")
)
