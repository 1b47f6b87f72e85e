package config

import (
	"time"

	"github.com/ninja0404/dex-reputation/internal/scorer"
	"github.com/ninja0404/dex-reputation/pkg/config"
	"github.com/ninja0404/dex-reputation/pkg/config/source"
	"github.com/ninja0404/dex-reputation/pkg/config/source/file"
	"github.com/ninja0404/dex-reputation/pkg/database/polardbx"
	"github.com/ninja0404/dex-reputation/pkg/logger"
	"github.com/ninja0404/dex-reputation/pkg/mq/kafka"
)

// AppConfig 应用配置结构
type AppConfig struct {
	Logger    LoggerConfig         `yaml:"logger" json:"logger"`
	Kafka     KafkaConfig          `yaml:"kafka" json:"kafka"`
	Scoring   ScoringConfig        `yaml:"scoring" json:"scoring"`
	Threshold ThresholdConfig      `yaml:"threshold" json:"threshold"`
	Health    HealthConfig         `yaml:"health" json:"health"`
	PolarX    polardbx.MysqlConfig `yaml:"polarx" json:"polarx"`
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Output     string `yaml:"output" json:"output"`
	Debug      bool   `yaml:"debug" json:"debug"`
	Level      string `yaml:"level" json:"level"`
	AddCaller  bool   `yaml:"add_caller" json:"add_caller"`
	CallerSkip int    `yaml:"caller_skip" json:"caller_skip"`
}

// KafkaConfig Kafka传输配置
type KafkaConfig struct {
	Brokers     []string                  `yaml:"brokers" json:"brokers"`
	BatchTopic  string                    `yaml:"batch_topic" json:"batch_topic"`
	ScoresTopic string                    `yaml:"scores_topic" json:"scores_topic"`
	Consumer    kafka.KafkaConsumerConfig `yaml:"consumer" json:"consumer"`
	Producer    kafka.KafkaProducerConfig `yaml:"producer" json:"producer"`
}

// GetScoresTopic 获取评分结果topic
func (k KafkaConfig) GetScoresTopic() string {
	return k.ScoresTopic
}

// ScoringConfig 评分配置
type ScoringConfig struct {
	WorkerCount     int                    `yaml:"worker_count" json:"worker_count"`
	WalletTimeoutMs int                    `yaml:"wallet_timeout_ms" json:"wallet_timeout_ms"`
	LPWeights       scorer.LPWeights       `yaml:"lp_weights" json:"lp_weights"`
	SwapWeights     scorer.SwapWeights     `yaml:"swap_weights" json:"swap_weights"`
	CategoryWeights scorer.CategoryWeights `yaml:"category_weights" json:"category_weights"`
	Tags            []scorer.TagRule       `yaml:"tags" json:"tags"`
	StableSymbols   []string               `yaml:"stable_symbols" json:"stable_symbols"`
}

// EffectiveLPWeights 返回LP权重，配置缺省时使用默认值
func (s ScoringConfig) EffectiveLPWeights() scorer.LPWeights {
	if s.LPWeights == (scorer.LPWeights{}) {
		return scorer.DefaultLPWeights()
	}
	return s.LPWeights
}

// EffectiveSwapWeights 返回swap权重，配置缺省时使用默认值
func (s ScoringConfig) EffectiveSwapWeights() scorer.SwapWeights {
	if s.SwapWeights == (scorer.SwapWeights{}) {
		return scorer.DefaultSwapWeights()
	}
	return s.SwapWeights
}

// EffectiveCategoryWeights 返回类别合成权重，配置缺省时使用默认值
func (s ScoringConfig) EffectiveCategoryWeights() scorer.CategoryWeights {
	if s.CategoryWeights == (scorer.CategoryWeights{}) {
		return scorer.DefaultCategoryWeights()
	}
	return s.CategoryWeights
}

// WalletTimeout 单钱包评分超时
func (s ScoringConfig) WalletTimeout() time.Duration {
	if s.WalletTimeoutMs <= 0 {
		return 2 * time.Second
	}
	return time.Duration(s.WalletTimeoutMs) * time.Millisecond
}

// ThresholdConfig 阈值缓存配置
type ThresholdConfig struct {
	RefreshIntervalSeconds int `yaml:"refresh_interval_seconds" json:"refresh_interval_seconds"`
}

// RefreshInterval 阈值缓存刷新周期
func (t ThresholdConfig) RefreshInterval() time.Duration {
	if t.RefreshIntervalSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(t.RefreshIntervalSeconds) * time.Second
}

// HealthConfig 健康检查服务配置
type HealthConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

// Manager 配置管理器
type Manager struct {
	config *AppConfig
}

// NewManager 创建配置管理器
func NewManager() *Manager {
	return &Manager{}
}

// Load 加载配置文件
func (m *Manager) Load(configPath string) error {
	// 使用默认config，它已经支持yaml格式了
	err := config.Load(file.NewSource(
		file.WithPath(configPath),
		source.WithFormat("yaml"),
	))
	if err != nil {
		return err
	}

	// 解析配置
	var appConfig AppConfig
	err = config.Scan(&appConfig)
	if err != nil {
		return err
	}

	m.config = &appConfig
	return nil
}

// GetAppConfig 获取应用配置
func (m *Manager) GetAppConfig() *AppConfig {
	return m.config
}

// GetLoggerConfig 获取日志配置
func (m *Manager) GetLoggerConfig() LoggerConfig {
	return m.config.Logger
}

// GetKafkaConfig 获取Kafka配置
func (m *Manager) GetKafkaConfig() KafkaConfig {
	return m.config.Kafka
}

// GetScoringConfig 获取评分配置
func (m *Manager) GetScoringConfig() ScoringConfig {
	return m.config.Scoring
}

// GetThresholdConfig 获取阈值缓存配置
func (m *Manager) GetThresholdConfig() ThresholdConfig {
	return m.config.Threshold
}

// GetHealthConfig 获取健康检查配置
func (m *Manager) GetHealthConfig() HealthConfig {
	return m.config.Health
}

// GetDatabaseConfig 获取数据库配置
func (m *Manager) GetDatabaseConfig() polardbx.MysqlConfig {
	return m.config.PolarX
}

// InitLogger 初始化日志系统
func (m *Manager) InitLogger() error {
	loggerConfig := logger.FromConfig("logger")
	loggerInstance := loggerConfig.Build()
	logger.SetDefault(loggerInstance)
	logger.SetDefaultL1(loggerInstance)
	return nil
}
