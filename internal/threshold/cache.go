package threshold

import (
	"sync/atomic"
	"time"

	"github.com/ninja0404/dex-reputation/internal/model"
	"github.com/ninja0404/dex-reputation/internal/repo"
	"github.com/ninja0404/dex-reputation/pkg/logger"
)

// snapshot 一次完整加载的切点全集，整体替换不做原地修改
type snapshot struct {
	version int64
	sets    map[string]*model.ThresholdSet
}

// Cache 阈值缓存
// 后台定时从存储全量刷新，评分路径通过原子指针读取当前快照，
// 刷新失败保留上一版快照继续服务
type Cache struct {
	repo     repo.ThresholdRepo
	interval time.Duration

	current atomic.Pointer[snapshot]
	version atomic.Int64

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewCache 创建阈值缓存，interval为后台刷新周期
func NewCache(thresholdRepo repo.ThresholdRepo, interval time.Duration) *Cache {
	return &Cache{
		repo:     thresholdRepo,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start 执行首次加载并启动后台刷新
// 首次加载失败直接返回错误，由调用方决定是否带空缓存继续启动
func (c *Cache) Start() error {
	if err := c.Refresh(); err != nil {
		return err
	}

	go c.refreshLoop()

	logger.Info("📊 阈值缓存已启动",
		logger.Int64("version", c.version.Load()),
		logger.Int("set_count", len(c.current.Load().sets)),
		logger.String("refresh_interval", c.interval.String()))
	return nil
}

// Stop 停止后台刷新
func (c *Cache) Stop() {
	close(c.stopCh)
	<-c.doneCh
	logger.Info("阈值缓存已停止")
}

// Refresh 全量重新加载切点并原子替换快照
func (c *Cache) Refresh() error {
	sets, err := c.repo.LoadAll()
	if err != nil {
		return err
	}

	snap := &snapshot{
		version: c.version.Add(1),
		sets:    sets,
	}
	c.current.Store(snap)
	return nil
}

// GetThresholds 获取指定协议+类别的切点集合
// 协议专属切点不存在时回退到该类别的default切点
func (c *Cache) GetThresholds(protocol, category string) (*model.ThresholdSet, error) {
	snap := c.current.Load()
	if snap == nil {
		return nil, ErrNotFound
	}

	if set, ok := snap.sets[model.ThresholdKey(protocol, category)]; ok {
		return set, nil
	}
	if set, ok := snap.sets[model.ThresholdKey(DefaultProtocol, category)]; ok {
		return set, nil
	}
	return nil, ErrNotFound
}

// Ready 至少成功加载过一次切点数据
func (c *Cache) Ready() bool {
	return c.current.Load() != nil
}

// Version 当前快照版本号，每次成功刷新递增
func (c *Cache) Version() int64 {
	snap := c.current.Load()
	if snap == nil {
		return 0
	}
	return snap.version
}

func (c *Cache) refreshLoop() {
	defer close(c.doneCh)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Refresh(); err != nil {
				// 保留上一版快照继续服务
				logger.Error("刷新阈值缓存失败", logger.FieldErr(err))
				continue
			}
			logger.Debug("阈值缓存已刷新",
				logger.Int64("version", c.version.Load()),
				logger.Int("set_count", len(c.current.Load().sets)))
		case <-c.stopCh:
			return
		}
	}
}
