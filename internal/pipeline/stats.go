package pipeline

import "sync/atomic"

// Stats 管道运行计数器，全部原子操作，评分路径零锁
type Stats struct {
	batchesReceived  atomic.Int64
	walletsSucceeded atomic.Int64
	walletsFailed    atomic.Int64
	validationErrors atomic.Int64
	totalLatencyMs   atomic.Int64
}

// StatsSnapshot 统计信息快照，健康接口按此形态输出
type StatsSnapshot struct {
	BatchesReceived  int64   `json:"batches_received"`
	WalletsSucceeded int64   `json:"wallets_succeeded"`
	WalletsFailed    int64   `json:"wallets_failed"`
	ValidationErrors int64   `json:"validation_errors"`
	AvgLatencyMs     float64 `json:"avg_latency_ms"`
}

// RecordBatch 记录一个入站批次
func (s *Stats) RecordBatch() {
	s.batchesReceived.Add(1)
}

// RecordResult 记录一次钱包评分结果
func (s *Stats) RecordResult(succeeded bool, latencyMs int64) {
	if succeeded {
		s.walletsSucceeded.Add(1)
	} else {
		s.walletsFailed.Add(1)
	}
	s.totalLatencyMs.Add(latencyMs)
}

// RecordValidationErrors 累计被剔除的非法交易数
func (s *Stats) RecordValidationErrors(n int) {
	if n > 0 {
		s.validationErrors.Add(int64(n))
	}
}

// Snapshot 返回当前计数器快照
func (s *Stats) Snapshot() StatsSnapshot {
	succeeded := s.walletsSucceeded.Load()
	failed := s.walletsFailed.Load()

	snap := StatsSnapshot{
		BatchesReceived:  s.batchesReceived.Load(),
		WalletsSucceeded: succeeded,
		WalletsFailed:    failed,
		ValidationErrors: s.validationErrors.Load(),
	}
	if total := succeeded + failed; total > 0 {
		snap.AvgLatencyMs = float64(s.totalLatencyMs.Load()) / float64(total)
	}
	return snap
}
