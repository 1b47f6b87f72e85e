package source

import (
	"context"

	"github.com/ninja0404/dex-reputation/internal/model"
)

// BatchSource 钱包交易批次数据源接口
type BatchSource interface {
	// Start 启动数据源
	Start(ctx context.Context) error

	// Stop 停止数据源
	Stop() error

	// Subscribe 订阅钱包批次数据流
	Subscribe() <-chan *model.WalletBatch

	// Errors 错误通道
	Errors() <-chan error

	// String 数据源名称
	String() string
}

// Manager 数据源管理器
type Manager struct {
	sources   []BatchSource
	batchChan chan *model.WalletBatch
	errorChan chan error
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewManager 创建数据源管理器
func NewManager() *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		sources:   make([]BatchSource, 0),
		batchChan: make(chan *model.WalletBatch, 10_000), // 缓冲通道
		errorChan: make(chan error, 100),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// AddSource 添加数据源
func (m *Manager) AddSource(source BatchSource) {
	m.sources = append(m.sources, source)
}

// Start 启动所有数据源
func (m *Manager) Start() error {
	for _, source := range m.sources {
		if err := source.Start(m.ctx); err != nil {
			return err
		}

		// 启动协程监听每个数据源
		go m.listenSource(source)
	}

	return nil
}

// Stop 停止所有数据源
func (m *Manager) Stop() error {
	// 取消上下文
	m.cancel()

	// 停止所有数据源
	for _, source := range m.sources {
		if err := source.Stop(); err != nil {
			return err
		}
	}

	// 关闭通道
	close(m.batchChan)
	close(m.errorChan)

	return nil
}

// Batches 获取钱包批次数据流
func (m *Manager) Batches() <-chan *model.WalletBatch {
	return m.batchChan
}

// Errors 获取错误流
func (m *Manager) Errors() <-chan error {
	return m.errorChan
}

// listenSource 监听单个数据源
func (m *Manager) listenSource(source BatchSource) {
	batchChan := source.Subscribe()
	errChan := source.Errors()

	for {
		select {
		case <-m.ctx.Done():
			return
		case batch, ok := <-batchChan:
			if !ok {
				return
			}
			select {
			case m.batchChan <- batch:
			case <-m.ctx.Done():
				return
			}
		case err, ok := <-errChan:
			if !ok {
				return
			}
			select {
			case m.errorChan <- err:
			case <-m.ctx.Done():
				return
			}
		}
	}
}
