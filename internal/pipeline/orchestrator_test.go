package pipeline

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ninja0404/dex-reputation/internal/common"
	"github.com/ninja0404/dex-reputation/internal/feature"
	"github.com/ninja0404/dex-reputation/internal/model"
	"github.com/ninja0404/dex-reputation/internal/scorer"
	"github.com/ninja0404/dex-reputation/internal/threshold"
	"github.com/ninja0404/dex-reputation/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.SetDefault((&logger.Config{
		Level:         "error",
		Discard:       true,
		DisableSentry: true,
	}).Build())
	os.Exit(m.Run())
}

// stubProvider 内存阈值提供器，delay用于模拟慢存储
type stubProvider struct {
	sets  map[string]*model.ThresholdSet
	delay time.Duration
}

func (p *stubProvider) GetThresholds(protocol, category string) (*model.ThresholdSet, error) {
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	if set, ok := p.sets[model.ThresholdKey(protocol, category)]; ok {
		return set, nil
	}
	if set, ok := p.sets[model.ThresholdKey(threshold.DefaultProtocol, category)]; ok {
		return set, nil
	}
	return nil, threshold.ErrNotFound
}

func (p *stubProvider) Ready() bool {
	return true
}

func fullThresholdSet(protocol, category string) *model.ThresholdSet {
	features := []string{
		model.FeatureTotalDepositUSD,
		model.FeatureAvgHoldTimeDays,
		model.FeatureWithdrawRatio,
		model.FeatureTotalSwapVolume,
		model.FeatureNumSwaps,
		model.FeatureUniquePools,
	}
	set := &model.ThresholdSet{
		Protocol: protocol,
		Category: category,
		Features: make(map[string][]model.Cutpoint, len(features)),
	}
	for _, f := range features {
		set.Features[f] = []model.Cutpoint{
			{Percentile: 0, Value: decimal.Zero},
			{Percentile: 100, Value: decimal.NewFromInt(1_000_000)},
		}
	}
	return set
}

func newTestOrchestrator(provider threshold.Provider, timeout time.Duration) *Orchestrator {
	extractor := feature.NewExtractor(nil)
	aggregator := scorer.NewAggregator(
		scorer.DefaultLPWeights(),
		scorer.DefaultSwapWeights(),
		scorer.DefaultCategoryWeights(),
		nil,
	)
	return NewOrchestrator(extractor, aggregator, provider, timeout)
}

func swapTx(id string, ts int64, usd int64) *model.Transaction {
	return &model.Transaction{
		DocumentID: id,
		Action:     common.SwapAction,
		Timestamp:  ts,
		Protocol:   "uniswap",
		PoolID:     "pool-1",
		TokenIn: &model.TokenAmount{
			Amount:    decimal.NewFromInt(usd),
			AmountUSD: decimal.NewFromInt(usd),
			Address:   "0xusdc",
			Symbol:    "USDC",
		},
		TokenOut: &model.TokenAmount{
			AmountUSD: decimal.NewFromInt(usd),
			Address:   "0xweth",
			Symbol:    "WETH",
		},
	}
}

func depositTx(id string, ts int64, usd int64) *model.Transaction {
	return &model.Transaction{
		DocumentID: id,
		Action:     common.DepositAction,
		Timestamp:  ts,
		Protocol:   "uniswap",
		PoolID:     "pool-1",
		Token0: &model.TokenAmount{
			AmountUSD: decimal.NewFromInt(usd),
			Address:   "0xusdc",
			Symbol:    "USDC",
		},
	}
}

func TestScoreWalletSuccess(t *testing.T) {
	provider := &stubProvider{
		sets: map[string]*model.ThresholdSet{
			model.ThresholdKey("uniswap", common.DexCategory): fullThresholdSet("uniswap", common.DexCategory),
		},
	}
	orch := newTestOrchestrator(provider, 2*time.Second)

	batch := &model.WalletBatch{
		WalletAddress: "0xabc",
		Data: []*model.CategoryBlock{
			{
				ProtocolType: common.DexCategory,
				Transactions: []*model.Transaction{
					swapTx("tx-1", 1700000100, 500),
					swapTx("tx-2", 1700000200, 1500),
					depositTx("tx-3", 1700000050, 2000),
				},
			},
		},
	}

	result := orch.ScoreWallet(context.Background(), batch)

	if !result.Succeeded() {
		t.Fatalf("评分失败: %s", result.Error)
	}
	if result.WalletAddress != "0xabc" {
		t.Errorf("钱包地址 = %s", result.WalletAddress)
	}
	if result.Timestamp != 1700000050 {
		t.Errorf("时间戳 = %d, 期望最早交易时间1700000050", result.Timestamp)
	}

	// ZScore为带18位小数的十进制字符串
	parts := strings.SplitN(result.ZScore, ".", 2)
	if len(parts) != 2 || len(parts[1]) != 18 {
		t.Errorf("ZScore格式不符: %q", result.ZScore)
	}
	score, err := decimal.NewFromString(result.ZScore)
	if err != nil {
		t.Fatalf("ZScore不可解析: %v", err)
	}
	if score.IsNegative() || score.GreaterThan(decimal.NewFromInt(1000)) {
		t.Errorf("ZScore超出[0,1000]: %s", result.ZScore)
	}

	if len(result.Categories) != 1 {
		t.Fatalf("类别数 = %d, 期望 1", len(result.Categories))
	}
	cr := result.Categories[0]
	if cr.Category != common.DexCategory || !cr.Succeeded() {
		t.Errorf("类别结果异常: %+v", cr)
	}
	if cr.TransactionCount != 3 {
		t.Errorf("交易数 = %d, 期望 3", cr.TransactionCount)
	}
	if cr.Features == nil {
		t.Error("成功类别应携带特征向量")
	}
}

func TestScoreWalletCategoryFailureIsolated(t *testing.T) {
	// 只配置dexes的阈值，yield类别查不到阈值但不应拖垮整个钱包
	provider := &stubProvider{
		sets: map[string]*model.ThresholdSet{
			model.ThresholdKey(threshold.DefaultProtocol, common.DexCategory): fullThresholdSet(threshold.DefaultProtocol, common.DexCategory),
		},
	}
	orch := newTestOrchestrator(provider, 2*time.Second)

	batch := &model.WalletBatch{
		WalletAddress: "0xabc",
		Data: []*model.CategoryBlock{
			{
				ProtocolType: common.DexCategory,
				Transactions: []*model.Transaction{swapTx("tx-1", 1700000100, 500)},
			},
			{
				ProtocolType: "yield",
				Transactions: []*model.Transaction{swapTx("tx-2", 1700000200, 500)},
			},
		},
	}

	result := orch.ScoreWallet(context.Background(), batch)

	if !result.Succeeded() {
		t.Fatalf("单类别失败不应导致钱包级失败: %s", result.Error)
	}
	if len(result.Categories) != 2 {
		t.Fatalf("类别数 = %d, 期望 2", len(result.Categories))
	}

	byCategory := make(map[string]*model.CategoryResult)
	for _, cr := range result.Categories {
		byCategory[cr.Category] = cr
	}
	if cr := byCategory[common.DexCategory]; cr == nil || !cr.Succeeded() {
		t.Errorf("dexes类别应评分成功: %+v", cr)
	}
	cr := byCategory["yield"]
	if cr == nil || cr.Succeeded() {
		t.Fatalf("yield类别应失败: %+v", cr)
	}
	if !strings.Contains(cr.Error, "thresholds unavailable") {
		t.Errorf("失败原因 = %q", cr.Error)
	}
}

func TestScoreWalletAllCategoriesFail(t *testing.T) {
	provider := &stubProvider{}
	orch := newTestOrchestrator(provider, 2*time.Second)

	// 唯一类别的全部交易都非法，规范化后为空
	batch := &model.WalletBatch{
		WalletAddress: "0xabc",
		Data: []*model.CategoryBlock{
			{
				ProtocolType: common.DexCategory,
				Transactions: []*model.Transaction{
					{DocumentID: "tx-1", Action: "stake", Timestamp: 1700000100},
					{DocumentID: "tx-2", Action: common.SwapAction, Timestamp: 0},
				},
			},
		},
	}

	result := orch.ScoreWallet(context.Background(), batch)

	if result.Succeeded() {
		t.Fatal("全类别失败时应为钱包级失败")
	}
	if !strings.HasPrefix(result.Error, "no category could be scored") {
		t.Errorf("错误文案 = %q", result.Error)
	}
	if result.ZScore != "" {
		t.Errorf("失败记录不应有ZScore: %q", result.ZScore)
	}
	if len(result.Categories) != 1 || result.Categories[0].Succeeded() {
		t.Errorf("类别结果异常: %+v", result.Categories)
	}
}

func TestScoreWalletEmptyBatch(t *testing.T) {
	orch := newTestOrchestrator(&stubProvider{}, 2*time.Second)

	result := orch.ScoreWallet(context.Background(), &model.WalletBatch{WalletAddress: "0xabc"})

	if result.Succeeded() {
		t.Fatal("空批次应为失败记录")
	}
	if result.Error != "no transaction data" {
		t.Errorf("错误文案 = %q", result.Error)
	}
	if len(result.Categories) != 0 {
		t.Errorf("空批次不应有类别结果: %+v", result.Categories)
	}
}

func TestScoreWalletTimeout(t *testing.T) {
	provider := &stubProvider{
		sets: map[string]*model.ThresholdSet{
			model.ThresholdKey("uniswap", common.DexCategory): fullThresholdSet("uniswap", common.DexCategory),
		},
		delay: 200 * time.Millisecond,
	}
	orch := newTestOrchestrator(provider, 10*time.Millisecond)

	batch := &model.WalletBatch{
		WalletAddress: "0xabc",
		Data: []*model.CategoryBlock{
			{
				ProtocolType: common.DexCategory,
				Transactions: []*model.Transaction{swapTx("tx-1", 1700000100, 500)},
			},
		},
	}

	result := orch.ScoreWallet(context.Background(), batch)

	if result.Succeeded() {
		t.Fatal("超时应为失败记录")
	}
	if result.Error != "processing timeout" {
		t.Errorf("错误文案 = %q", result.Error)
	}
	if result.WalletAddress != "0xabc" || result.Timestamp != 1700000100 {
		t.Errorf("失败记录应结构完整: %+v", result)
	}
}

func TestMergeTagsDeduplicates(t *testing.T) {
	got := mergeTags([]string{"Whale LP", "High Frequency Trader"}, []string{"High Frequency Trader", "Whale Trader"})
	want := []string{"Whale LP", "High Frequency Trader", "Whale Trader"}
	if len(got) != len(want) {
		t.Fatalf("mergeTags = %v, 期望 %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("mergeTags = %v, 期望 %v", got, want)
		}
	}
}
