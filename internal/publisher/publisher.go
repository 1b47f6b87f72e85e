package publisher

import (
	"context"
	"encoding/json"

	"github.com/ninja0404/dex-reputation/internal/model"
	"github.com/ninja0404/dex-reputation/pkg/logger"
)

// PublisherConfig 发布器配置接口
type PublisherConfig interface {
	GetScoresTopic() string
}

// Publisher 评分结果发布器接口
type Publisher interface {
	// Publish 发布评分结果
	Publish(result *model.ScoreResult) error

	// GetType 获取发布器类型
	GetType() string

	// Close 关闭发布器
	Close() error
}

// Manager 评分结果发布管理器
// 失败结果和成功结果走同一条出站路径，下游按error字段区分
type Manager struct {
	publishers []Publisher
	ctx        context.Context
	cancel     context.CancelFunc
	config     PublisherConfig
}

// NewManager 创建发布管理器
func NewManager(config PublisherConfig) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		publishers: make([]Publisher, 0),
		ctx:        ctx,
		cancel:     cancel,
		config:     config,
	}
}

// registerDefaultPublishers 注册默认发布器
func (m *Manager) registerDefaultPublishers() {
	if m.config != nil && m.config.GetScoresTopic() != "" {
		m.AddPublisher(NewKafkaPublisher(m.config.GetScoresTopic()))
	} else {
		logger.Warn("⚠️ 缺少评分结果topic配置，仅输出到日志")
	}

	// 注册日志发布器
	m.AddPublisher(&LogPublisher{})
}

// AddPublisher 添加发布器
func (m *Manager) AddPublisher(publisher Publisher) {
	m.publishers = append(m.publishers, publisher)
}

// PublishResult 发布评分结果到所有发布器
func (m *Manager) PublishResult(result *model.ScoreResult) {
	for _, publisher := range m.publishers {
		if err := publisher.Publish(result); err != nil {
			logger.Error("发布评分结果失败",
				logger.String("publisher", publisher.GetType()),
				logger.String("wallet", result.WalletAddress),
				logger.FieldErr(err))
		}
	}
}

// Start 启动发布管理器
func (m *Manager) Start() error {
	// 注册默认发布器
	m.registerDefaultPublishers()

	for _, publisher := range m.publishers {
		logger.Info("✅ 已加载评分结果发布器", logger.String("type", publisher.GetType()))
	}

	logger.Info("📡 评分结果发布管理器已启动")
	return nil
}

// Stop 停止发布管理器
func (m *Manager) Stop() error {
	m.cancel()

	// 关闭所有发布器
	for _, publisher := range m.publishers {
		if err := publisher.Close(); err != nil {
			logger.Error("关闭发布器失败",
				logger.String("type", publisher.GetType()),
				logger.FieldErr(err))
		}
	}

	logger.Info("评分结果发布管理器已停止")
	return nil
}

// LogPublisher 日志发布器 - 将评分结果输出到日志
type LogPublisher struct{}

func (p *LogPublisher) GetType() string {
	return "log"
}

func (p *LogPublisher) Publish(result *model.ScoreResult) error {
	if result.Succeeded() {
		logger.Info("🏆 钱包评分完成",
			logger.String("wallet", result.WalletAddress),
			logger.String("zscore", result.ZScore),
			logger.Any("user_tags", result.UserTags),
			logger.Int("category_count", len(result.Categories)),
			logger.Int64("processing_time_ms", result.ProcessingTimeMs))
	} else {
		logger.Warn("⚠️ 钱包评分失败",
			logger.String("wallet", result.WalletAddress),
			logger.String("error", result.Error),
			logger.Int64("processing_time_ms", result.ProcessingTimeMs))
	}
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}

// ConsolePublisher 控制台发布器 - 格式化输出完整结果
type ConsolePublisher struct{}

func (p *ConsolePublisher) GetType() string {
	return "console"
}

func (p *ConsolePublisher) Publish(result *model.ScoreResult) error {
	resultJSON, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}

	logger.Info("🏆 钱包评分详情", logger.String("result", string(resultJSON)))
	return nil
}

func (p *ConsolePublisher) Close() error {
	return nil
}
