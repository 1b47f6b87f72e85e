package pipeline

import (
	"context"

	"github.com/ninja0404/dex-reputation/internal/model"
	"github.com/ninja0404/dex-reputation/internal/publisher"
	"github.com/ninja0404/dex-reputation/internal/source"
	"github.com/ninja0404/dex-reputation/internal/threshold"
	"github.com/ninja0404/dex-reputation/pkg/logger"
)

// Pipeline 评分处理管道：数据源 → 评分引擎 → 结果发布
type Pipeline struct {
	sourceManager    *source.Manager
	engine           *Engine
	publisherManager *publisher.Manager
	thresholds       threshold.Provider
	stats            *Stats
	ctx              context.Context
	cancel           context.CancelFunc
}

// NewPipeline 创建评分处理管道
func NewPipeline(engine *Engine, thresholds threshold.Provider) *Pipeline {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pipeline{
		sourceManager: source.NewManager(),
		engine:        engine,
		thresholds:    thresholds,
		// publisherManager 延迟创建，等待配置设置
		stats:  &Stats{},
		ctx:    ctx,
		cancel: cancel,
	}
	engine.orchestrator.AttachStats(p.stats)
	return p
}

// SetPublisherConfig 设置发布器配置并创建发布管理器
func (p *Pipeline) SetPublisherConfig(config publisher.PublisherConfig) {
	p.publisherManager = publisher.NewManager(config)
}

// GetSourceManager 获取数据源管理器
func (p *Pipeline) GetSourceManager() *source.Manager {
	return p.sourceManager
}

// GetPublisherManager 获取发布管理器
func (p *Pipeline) GetPublisherManager() *publisher.Manager {
	return p.publisherManager
}

// IsReady 管道是否就绪：阈值缓存已加载
// 健康接口依据此状态上报
func (p *Pipeline) IsReady() bool {
	return p.thresholds != nil && p.thresholds.Ready()
}

// GetStats 获取管道统计快照
func (p *Pipeline) GetStats() StatsSnapshot {
	return p.stats.Snapshot()
}

// Start 启动评分处理管道
func (p *Pipeline) Start() error {
	logger.Info("启动评分处理管道")

	// 启动评分引擎
	if err := p.engine.Start(); err != nil {
		return err
	}

	// 启动发布管理器
	if err := p.publisherManager.Start(); err != nil {
		return err
	}

	// 启动数据源管理器
	if err := p.sourceManager.Start(); err != nil {
		return err
	}

	// 启动数据处理协程
	go p.processBatches()
	go p.processResults()
	go p.processErrors()

	logger.Info("评分处理管道已启动")
	return nil
}

// Stop 停止评分处理管道
func (p *Pipeline) Stop() error {
	logger.Info("停止评分处理管道")

	// 取消上下文
	p.cancel()

	// 停止各个组件
	if err := p.sourceManager.Stop(); err != nil {
		logger.Error("停止数据源管理器失败", logger.FieldErr(err))
	}

	p.engine.Stop()

	if err := p.publisherManager.Stop(); err != nil {
		logger.Error("停止发布管理器失败", logger.FieldErr(err))
	}

	logger.Info("评分处理管道已停止")
	return nil
}

// processBatches 消费入站钱包批次并分发给评分引擎
func (p *Pipeline) processBatches() {
	batchChan := p.sourceManager.Batches()

	for {
		select {
		case <-p.ctx.Done():
			return
		case batch, ok := <-batchChan:
			if !ok {
				return
			}

			p.stats.RecordBatch()
			p.engine.ProcessBatch(batch)
		}
	}
}

// processResults 消费评分结果并发布
func (p *Pipeline) processResults() {
	resultChan := p.engine.Results()

	for {
		select {
		case <-p.ctx.Done():
			return
		case result, ok := <-resultChan:
			if !ok {
				return
			}

			p.handleResult(result)
		}
	}
}

// processErrors 处理数据源错误
func (p *Pipeline) processErrors() {
	errorChan := p.sourceManager.Errors()

	for {
		select {
		case <-p.ctx.Done():
			return
		case err, ok := <-errorChan:
			if !ok {
				return
			}

			// 记录错误
			logger.Error("数据源错误", logger.FieldErr(err))
		}
	}
}

// handleResult 记录统计并发布单个评分结果
func (p *Pipeline) handleResult(result *model.ScoreResult) {
	p.stats.RecordResult(result.Succeeded(), result.ProcessingTimeMs)
	p.publisherManager.PublishResult(result)
}
