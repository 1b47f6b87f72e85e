package publisher

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/ninja0404/dex-reputation/internal/model"
	"github.com/ninja0404/dex-reputation/pkg/mq/kafka"
)

// KafkaPublisher Kafka发布器
// 以钱包地址为消息key，保证同一钱包的结果落在同一分区保序
type KafkaPublisher struct {
	topic string
}

// NewKafkaPublisher 创建Kafka发布器
func NewKafkaPublisher(topic string) *KafkaPublisher {
	return &KafkaPublisher{
		topic: topic,
	}
}

func (p *KafkaPublisher) GetType() string {
	return "kafka"
}

func (p *KafkaPublisher) Publish(result *model.ScoreResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return errors.Wrap(err, "序列化评分结果失败")
	}

	if err := kafka.SendMessageWithKey(p.topic, result.WalletAddress, payload); err != nil {
		return errors.Wrapf(err, "发送评分结果到topic %s失败", p.topic)
	}

	return nil
}

func (p *KafkaPublisher) Close() error {
	return nil
}
