package threshold

import (
	"github.com/pkg/errors"

	"github.com/ninja0404/dex-reputation/internal/model"
)

// ErrNotFound 指定协议+类别没有切点数据
var ErrNotFound = errors.New("threshold set not found")

// DefaultProtocol 协议专属切点缺失时的回退键
const DefaultProtocol = "default"

// Provider 评分路径的阈值访问接口
// 实现必须对并发读安全，Get在任何情况下不应阻塞评分
type Provider interface {
	// GetThresholds 获取指定协议+类别的切点集合，不存在时返回ErrNotFound
	GetThresholds(protocol, category string) (*model.ThresholdSet, error)

	// Ready 至少成功加载过一次切点数据
	Ready() bool
}
