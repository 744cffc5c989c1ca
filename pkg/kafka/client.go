// Package kafka 提供了与 Kafka 消息队列交互的功能。
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/segmentio/kafka-go"

	"doc-annotator-go/internal/config"
	"doc-annotator-go/pkg/log"
	"doc-annotator-go/pkg/tasks"
)

// TaskProcessor 定义了处理抽取任务的接口，使消费者与具体的处理流程解耦。
type TaskProcessor interface {
	Process(ctx context.Context, task tasks.ExtractionTask) error
}

// AttemptCounter 记录任务的失败次数。
type AttemptCounter interface {
	Incr(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}

// Producer 发送抽取任务到 Kafka。
type Producer struct {
	writer *kafka.Writer
}

// NewProducer 初始化 Kafka 生产者。
func NewProducer(cfg config.KafkaConfig) *Producer {
	w := &kafka.Writer{
		Addr:     kafka.TCP(cfg.BrokerList()...),
		Topic:    cfg.Topic,
		Balancer: &kafka.Hash{},
	}
	log.Info("Kafka 生产者初始化成功")
	return &Producer{writer: w}
}

// ProduceExtractionTask 发送一个抽取任务，以文档 ID 作为消息 key 保证同一文档的任务有序。
func (p *Producer) ProduceExtractionTask(ctx context.Context, task tasks.ExtractionTask) error {
	taskBytes, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(fmtKey(task.DocumentID)),
		Value: taskBytes,
	})
}

func fmtKey(documentID uint) string {
	return "doc-" + strconv.FormatUint(uint64(documentID), 10)
}

// Close 关闭生产者。
func (p *Producer) Close() error {
	return p.writer.Close()
}

// Consumer 消费抽取任务。kafka-go 的 FetchMessage 不会重新投递未提交的消息，
// 因此失败的任务在 handle 内按退避间隔原地重试，达到最大次数后提交 offset 放弃。
type Consumer struct {
	reader      *kafka.Reader
	processor   TaskProcessor
	counter     AttemptCounter
	maxAttempts int64
	backoff     time.Duration
}

// NewConsumer 创建一个新的消费者。
func NewConsumer(cfg config.KafkaConfig, processor TaskProcessor, counter AttemptCounter) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.BrokerList(),
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	maxAttempts := int64(cfg.MaxAttempts)
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = time.Second
	}
	return &Consumer{reader: r, processor: processor, counter: counter, maxAttempts: maxAttempts, backoff: backoff}
}

// Run 阻塞消费直到 ctx 取消或读取失败。
func (c *Consumer) Run(ctx context.Context) {
	log.Infof("Kafka 消费者已启动，正在监听主题 '%s'", c.reader.Config().Topic)
	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Error("从 Kafka 读取消息失败", err)
			}
			break
		}
		log.Infof("收到 Kafka 消息: offset %d", m.Offset)

		if !c.handle(ctx, m.Value) {
			// 只有 ctx 取消时才会不提交；此时退出，避免后续消息的提交越过这一条
			break
		}
		if err := c.reader.CommitMessages(context.Background(), m); err != nil {
			log.Errorf("提交 Kafka 消息 offset 失败: %v", err)
		}
	}

	if err := c.reader.Close(); err != nil {
		log.Errorf("关闭 Kafka 消费者失败: %v", err)
	}
}

// handle 处理一条消息并返回是否应提交 offset。
// 处理失败时原地重试，失败次数同时记在 Redis 中，进程重启后重新投递的消息会接着计数。
func (c *Consumer) handle(ctx context.Context, value []byte) bool {
	var task tasks.ExtractionTask
	if err := json.Unmarshal(value, &task); err != nil {
		// 消息格式错误，直接提交，避免阻塞队列
		log.Errorf("无法解析 Kafka 消息: %v, value: %s", err, string(value))
		return true
	}

	log.Infof("开始处理抽取任务: requestId=%s, documentId=%d", task.RequestID, task.DocumentID)
	var local int64
	for {
		err := c.processor.Process(ctx, task)
		if err == nil {
			log.Infof("抽取任务处理成功: requestId=%s", task.RequestID)
			_ = c.counter.Reset(ctx, task.AttemptsKey())
			return true
		}

		local++
		attempts := local
		if n, incErr := c.counter.Incr(ctx, task.AttemptsKey()); incErr == nil {
			attempts = max(attempts, n)
		} else {
			log.Warnw("记录任务失败次数失败, 使用本地计数", "requestId", task.RequestID, "error", incErr)
		}
		log.Errorf("处理抽取任务失败(第 %d 次): requestId=%s, Error: %v", attempts, task.RequestID, err)
		if attempts >= c.maxAttempts {
			log.Errorf("抽取任务多次失败(>=%d)，提交 offset 终止重试: requestId=%s", c.maxAttempts, task.RequestID)
			_ = c.counter.Reset(ctx, task.AttemptsKey())
			return true
		}

		wait := c.backoff << (attempts - 1)
		select {
		case <-ctx.Done():
			return false
		case <-time.After(wait):
		}
	}
}

// RedisAttemptCounter 使用 Redis INCR 记录失败次数，计数保留 24 小时。
type RedisAttemptCounter struct {
	rdb *redis.Client
}

// NewRedisAttemptCounter 创建一个新的 RedisAttemptCounter。
func NewRedisAttemptCounter(rdb *redis.Client) *RedisAttemptCounter {
	return &RedisAttemptCounter{rdb: rdb}
}

func (r *RedisAttemptCounter) Incr(ctx context.Context, key string) (int64, error) {
	n, err := r.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	_ = r.rdb.Expire(ctx, key, 24*time.Hour).Err()
	return n, nil
}

func (r *RedisAttemptCounter) Reset(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, key).Err()
}
