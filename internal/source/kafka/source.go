package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ninja0404/dex-reputation/internal/model"
	"github.com/ninja0404/dex-reputation/pkg/logger"
	"github.com/ninja0404/dex-reputation/pkg/mq/kafka"
)

// Source Kafka数据源实现
type Source struct {
	batchChan    chan *model.WalletBatch
	errChan      chan error
	ctx          context.Context
	cancel       context.CancelFunc
	config       SourceConfig
	consumerName string
}

// SourceConfig Kafka数据源配置
type SourceConfig struct {
	Topic       string
	Brokers     []string
	KafkaConfig kafka.KafkaConsumerConfig // 直接使用完整配置
}

// NewSource 创建Kafka数据源
func NewSource(config SourceConfig) *Source {
	ctx, cancel := context.WithCancel(context.Background())

	return &Source{
		batchChan:    make(chan *model.WalletBatch, 1000),
		errChan:      make(chan error, 100),
		ctx:          ctx,
		cancel:       cancel,
		config:       config,
		consumerName: fmt.Sprintf("dex-reputation-%s", config.KafkaConfig.GroupId),
	}
}

// Start 启动Kafka数据源
func (s *Source) Start(ctx context.Context) error {
	// 使用完整的Kafka配置，只覆盖Topic
	kafkaConfig := s.config.KafkaConfig
	kafkaConfig.Topics = []string{s.config.Topic}

	// 设置命名的Kafka消费者
	if err := kafka.SetupNamedKafkaConsumer(s.consumerName, s.config.Brokers, kafkaConfig); err != nil {
		return fmt.Errorf("设置Kafka消费者失败: %w", err)
	}

	// 注册消息处理器
	if err := kafka.RegisterTopicHandlerForConsumer(s.consumerName, s.config.Topic, s.handleMessage); err != nil {
		return fmt.Errorf("注册消息处理器失败: %w", err)
	}

	// 启动消费者
	if err := kafka.StartNamedConsumer(s.consumerName); err != nil {
		return fmt.Errorf("启动Kafka消费者失败: %w", err)
	}

	logger.Info("✅ Kafka数据源已启动",
		logger.String("topic", s.config.Topic),
		logger.String("group_id", s.config.KafkaConfig.GroupId),
		logger.String("consumer_name", s.consumerName))

	return nil
}

// Stop 停止Kafka数据源
func (s *Source) Stop() error {
	logger.Info("🛑 停止Kafka数据源")
	s.cancel()

	// 关闭命名的Kafka消费者
	if err := kafka.CloseNamedConsumer(s.consumerName); err != nil {
		logger.Error("关闭Kafka消费者失败", logger.FieldErr(err))
	}

	close(s.batchChan)
	close(s.errChan)

	return nil
}

// Subscribe 获取钱包批次数据通道
func (s *Source) Subscribe() <-chan *model.WalletBatch {
	return s.batchChan
}

// Errors 获取错误通道
func (s *Source) Errors() <-chan error {
	return s.errChan
}

// handleMessage 处理Kafka消息 - 使用MessageHandler签名
// 消息体解析失败时返回错误但不中断消费，坏消息跳过继续处理后续
func (s *Source) handleMessage(data []byte) error {
	select {
	case <-s.ctx.Done():
		return fmt.Errorf("上下文已取消")
	default:
	}

	var batch model.WalletBatch
	if err := json.Unmarshal(data, &batch); err != nil {
		err = fmt.Errorf("解析钱包批次消息失败: %w", err)
		select {
		case s.errChan <- err:
		case <-s.ctx.Done():
		}
		return err
	}

	if batch.WalletAddress == "" {
		err := fmt.Errorf("批次缺少wallet_address字段")
		select {
		case s.errChan <- err:
		case <-s.ctx.Done():
		}
		return err
	}

	select {
	case s.batchChan <- &batch:
		logger.Debug("📨 接收钱包批次",
			logger.String("wallet", batch.WalletAddress),
			logger.Int("category_count", len(batch.Data)),
			logger.Int("tx_count", batch.TransactionCount()))
	case <-s.ctx.Done():
		return fmt.Errorf("上下文已取消")
	}

	return nil
}

// String 数据源名称
func (s *Source) String() string {
	return fmt.Sprintf("kafka(%s)", s.config.Topic)
}

// GetStats 获取数据源统计信息
func (s *Source) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"topic":              s.config.Topic,
		"group_id":           s.config.KafkaConfig.GroupId,
		"consumer_name":      s.consumerName,
		"batch_channel_size": len(s.batchChan),
		"err_channel_size":   len(s.errChan),
	}
}
