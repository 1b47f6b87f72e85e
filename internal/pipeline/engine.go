package pipeline

import (
	"context"
	"fmt"
	"hash/crc32"

	"github.com/ninja0404/dex-reputation/internal/model"
	"github.com/ninja0404/dex-reputation/pkg/logger"
	"github.com/ninja0404/dex-reputation/pkg/utils"
)

// DefaultWorkerCount 默认评分worker数量
const DefaultWorkerCount = 8

// Worker 评分工作协程，同一钱包的批次始终落在同一个worker保序
type Worker struct {
	ID           int
	BatchChan    chan *model.WalletBatch
	orchestrator *Orchestrator
	resultChan   chan *model.ScoreResult
	ctx          context.Context
}

// NewWorker 创建评分工作协程
func NewWorker(id int, ctx context.Context, orchestrator *Orchestrator, resultChan chan *model.ScoreResult) *Worker {
	return &Worker{
		ID:           id,
		BatchChan:    make(chan *model.WalletBatch, 100),
		orchestrator: orchestrator,
		resultChan:   resultChan,
		ctx:          ctx,
	}
}

// Start 启动工作协程
func (w *Worker) Start() {
	go func() {
		for {
			select {
			case <-w.ctx.Done():
				return
			case batch := <-w.BatchChan:
				w.processBatch(batch)
			}
		}
	}()
}

// processBatch 处理单个钱包批次
// 评分路径的panic在这里兜底，转成wallet级失败记录而不是杀掉worker
func (w *Worker) processBatch(batch *model.WalletBatch) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("💥 钱包评分发生panic",
				logger.Int("worker_id", w.ID),
				logger.String("wallet", batch.WalletAddress),
				logger.Any("panic", r),
				logger.FieldStack(utils.GetStack()))

			failure := &model.ScoreResult{
				WalletAddress: batch.WalletAddress,
				Error:         fmt.Sprintf("internal error: %v", r),
				Timestamp:     batch.EarliestTimestamp(),
				Categories:    []*model.CategoryResult{},
			}
			select {
			case w.resultChan <- failure:
			case <-w.ctx.Done():
			}
		}
	}()

	result := w.orchestrator.ScoreWallet(w.ctx, batch)

	select {
	case w.resultChan <- result:
		logger.Debug("📊 钱包批次处理完成",
			logger.Int("worker_id", w.ID),
			logger.String("wallet", batch.WalletAddress),
			logger.Int("tx_count", batch.TransactionCount()),
			logger.Int64("processing_time_ms", result.ProcessingTimeMs))
	case <-w.ctx.Done():
	}
}

// Engine 评分引擎，持有worker池并按钱包地址hash分发批次
type Engine struct {
	workers      []*Worker
	orchestrator *Orchestrator
	resultChan   chan *model.ScoreResult
	ctx          context.Context
	cancel       context.CancelFunc
}

// NewEngine 创建评分引擎
func NewEngine(orchestrator *Orchestrator, workerCount int) *Engine {
	if workerCount <= 0 {
		workerCount = DefaultWorkerCount
	}

	ctx, cancel := context.WithCancel(context.Background())
	engine := &Engine{
		workers:      make([]*Worker, workerCount),
		orchestrator: orchestrator,
		resultChan:   make(chan *model.ScoreResult, 1000),
		ctx:          ctx,
		cancel:       cancel,
	}

	// 创建工作协程
	for i := 0; i < workerCount; i++ {
		engine.workers[i] = NewWorker(i, ctx, orchestrator, engine.resultChan)
	}

	return engine
}

// Start 启动评分引擎
func (e *Engine) Start() error {
	for _, worker := range e.workers {
		worker.Start()
	}

	logger.Info("🎯 评分引擎已启动",
		logger.Int("worker_count", len(e.workers)))
	return nil
}

// ProcessBatch 分发钱包批次到对应worker
func (e *Engine) ProcessBatch(batch *model.WalletBatch) {
	if batch == nil || batch.WalletAddress == "" {
		return
	}

	// 根据钱包地址hash分配到对应的worker
	hash := crc32.ChecksumIEEE([]byte(batch.WalletAddress))
	workerIndex := int(hash) % len(e.workers)

	select {
	case e.workers[workerIndex].BatchChan <- batch:
	case <-e.ctx.Done():
	default:
		// 如果通道满了，丢弃消息并记录警告
		logger.Warn("⚠️ Worker通道已满，丢弃钱包批次",
			logger.Int("worker_id", workerIndex),
			logger.String("wallet", batch.WalletAddress))
	}
}

// Results 获取评分结果通道
func (e *Engine) Results() <-chan *model.ScoreResult {
	return e.resultChan
}

// Stop 停止评分引擎
func (e *Engine) Stop() {
	logger.Info("🛑 停止评分引擎")
	e.cancel()
	close(e.resultChan)
}

// GetWorkerStats 获取worker积压情况
func (e *Engine) GetWorkerStats() map[int]int {
	stats := make(map[int]int)
	for i, worker := range e.workers {
		stats[i] = len(worker.BatchChan)
	}
	return stats
}
