package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ninja0404/dex-reputation/internal/feature"
	"github.com/ninja0404/dex-reputation/internal/model"
	"github.com/ninja0404/dex-reputation/internal/normalizer"
	"github.com/ninja0404/dex-reputation/internal/scorer"
	"github.com/ninja0404/dex-reputation/internal/threshold"
	"github.com/ninja0404/dex-reputation/pkg/logger"
	"github.com/ninja0404/dex-reputation/pkg/utils"
)

// runStage 单个钱包评分运行的阶段，只向前推进
type runStage int

const (
	stageReceived runStage = iota
	stageNormalized
	stageFeaturesExtracted
	stageScored
)

func (s runStage) String() string {
	switch s {
	case stageReceived:
		return "received"
	case stageNormalized:
		return "normalized"
	case stageFeaturesExtracted:
		return "features_extracted"
	case stageScored:
		return "scored"
	}
	return "unknown"
}

// categoryOutcome 单类别评分的内部产物，成功时携带decimal分数参与最终加权
type categoryOutcome struct {
	result *model.CategoryResult
	score  decimal.Decimal
	fv     *model.FeatureVector
}

// Orchestrator 单钱包评分编排器
// 每次运行独占自己的派生数据，评分路径无共享可变状态
type Orchestrator struct {
	extractor  *feature.Extractor
	aggregator *scorer.Aggregator
	thresholds threshold.Provider
	timeout    time.Duration
	stats      *Stats
}

// AttachStats 挂接统计计数器，管道启动前调用一次
func (o *Orchestrator) AttachStats(stats *Stats) {
	o.stats = stats
}

// NewOrchestrator 创建评分编排器
func NewOrchestrator(extractor *feature.Extractor, aggregator *scorer.Aggregator, provider threshold.Provider, timeout time.Duration) *Orchestrator {
	return &Orchestrator{
		extractor:  extractor,
		aggregator: aggregator,
		thresholds: provider,
		timeout:    timeout,
	}
}

// ScoreWallet 对一个钱包批次执行完整评分
// 任何失败路径都产出结构完整的失败记录，绝不panic逃逸；
// 超时由context强制执行，超时的钱包产出wallet级失败记录
func (o *Orchestrator) ScoreWallet(ctx context.Context, batch *model.WalletBatch) *model.ScoreResult {
	start := time.Now()
	runID := utils.GenerateRunID()

	runCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	done := make(chan *model.ScoreResult, 1)
	go func() {
		done <- o.run(runCtx, batch)
	}()

	select {
	case result := <-done:
		result.ProcessingTimeMs = time.Since(start).Milliseconds()
		return result
	case <-runCtx.Done():
		logger.Warn("⏱️ 钱包评分超时",
			logger.String("run_id", runID),
			logger.String("wallet", batch.WalletAddress),
			logger.String("timeout", o.timeout.String()))
		return &model.ScoreResult{
			WalletAddress:    batch.WalletAddress,
			Error:            "processing timeout",
			Timestamp:        batch.EarliestTimestamp(),
			ProcessingTimeMs: time.Since(start).Milliseconds(),
			Categories:       []*model.CategoryResult{},
		}
	}
}

// run 执行 received → normalized → features_extracted → scored 的阶段推进
func (o *Orchestrator) run(ctx context.Context, batch *model.WalletBatch) *model.ScoreResult {
	stage := stageReceived

	result := &model.ScoreResult{
		WalletAddress: batch.WalletAddress,
		Timestamp:     batch.EarliestTimestamp(),
		Categories:    []*model.CategoryResult{},
	}

	norm := normalizer.Normalize(batch)
	stage = stageNormalized

	for _, verr := range norm.Errors {
		logger.Debug("剔除非法交易",
			logger.String("wallet", batch.WalletAddress),
			logger.String("document_id", verr.DocumentID),
			logger.String("reason", verr.Reason))
	}
	if o.stats != nil {
		o.stats.RecordValidationErrors(len(norm.Errors))
	}

	if len(norm.Sets) == 0 {
		result.Error = "no transaction data"
		return result
	}

	// 类别并行评分，每个类别的结果写入自己的槽位，类别失败不影响兄弟类别
	outcomes := make([]*categoryOutcome, len(norm.Sets))
	g, gctx := errgroup.WithContext(ctx)

	for i, rs := range norm.Sets {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			outcomes[i] = o.scoreCategory(rs)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		result.Error = "processing timeout"
		return result
	}
	stage = stageFeaturesExtracted

	// 最终分数：按交易数加权的类别分数均值；全类别失败则为wallet级失败
	var scored []scorer.CategoryScore
	var tags []string
	var catErrs *multierror.Error

	for _, out := range outcomes {
		result.Categories = append(result.Categories, out.result)

		if !out.result.Succeeded() {
			catErrs = multierror.Append(catErrs, fmt.Errorf("category %s: %s", out.result.Category, out.result.Error))
			continue
		}

		scored = append(scored, scorer.CategoryScore{
			Category:         out.result.Category,
			Score:            out.score,
			TransactionCount: out.result.TransactionCount,
		})
		tags = mergeTags(tags, o.aggregator.Tags(out.fv))
	}

	if len(scored) == 0 {
		result.Error = walletFailureReason(catErrs)
		return result
	}
	stage = stageScored

	final := o.aggregator.FinalScore(scored)
	result.ZScore = final.StringFixed(18)
	result.UserTags = tags

	logger.Debug("钱包评分完成",
		logger.String("wallet", batch.WalletAddress),
		logger.String("stage", stage.String()),
		logger.String("zscore", result.ZScore))

	return result
}

// scoreCategory 对单个类别完成特征提取和打分
func (o *Orchestrator) scoreCategory(rs *normalizer.RecordSet) *categoryOutcome {
	cr := &model.CategoryResult{
		Category:         rs.Category,
		TransactionCount: rs.TransactionCount(),
	}
	out := &categoryOutcome{result: cr}

	if rs.Empty() {
		cr.Error = "insufficient data: no valid transactions after normalization"
		return out
	}

	fv := o.extractor.Extract(rs)

	thresholds, err := o.thresholds.GetThresholds(rs.Protocol, rs.Category)
	if err != nil {
		cr.Error = fmt.Sprintf("thresholds unavailable for protocol %q category %q", rs.Protocol, rs.Category)
		return out
	}

	score, err := o.aggregator.ScoreCategory(fv, thresholds)
	if err != nil {
		cr.Error = err.Error()
		return out
	}

	cr.Score = json.Number(score.String())
	cr.Features = fv
	out.score = score
	out.fv = fv
	return out
}

// walletFailureReason 汇总所有类别失败原因为wallet级错误文案
func walletFailureReason(errs *multierror.Error) string {
	if errs == nil || len(errs.Errors) == 0 {
		return "no category could be scored"
	}
	return fmt.Sprintf("no category could be scored: %s", errs.Error())
}

// mergeTags 合并并去重标签，保持首次出现顺序
func mergeTags(existing, incoming []string) []string {
	seen := make(map[string]struct{}, len(existing))
	for _, t := range existing {
		seen[t] = struct{}{}
	}
	for _, t := range incoming {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		existing = append(existing, t)
	}
	return existing
}
