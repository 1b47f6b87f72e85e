package feature

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ninja0404/dex-reputation/internal/common"
	"github.com/ninja0404/dex-reputation/internal/model"
	"github.com/ninja0404/dex-reputation/internal/normalizer"
)

const day = int64(86400)

func liquidity(action common.Action, poolID string, ts int64, amount0, amount1 float64) *model.Transaction {
	tx := &model.Transaction{
		Action:    action,
		Timestamp: ts,
		PoolID:    poolID,
	}
	if amount0 > 0 {
		tx.Token0 = &model.TokenAmount{AmountUSD: decimal.NewFromFloat(amount0), Symbol: "USDC"}
	}
	if amount1 > 0 {
		tx.Token1 = &model.TokenAmount{AmountUSD: decimal.NewFromFloat(amount1), Symbol: "WETH"}
	}
	return tx
}

func swap(poolID string, ts int64, amountUSD float64, symbolIn, symbolOut string) *model.Transaction {
	return &model.Transaction{
		Action:    common.SwapAction,
		Timestamp: ts,
		PoolID:    poolID,
		TokenIn:   &model.TokenAmount{AmountUSD: decimal.NewFromFloat(amountUSD), Symbol: symbolIn},
		TokenOut:  &model.TokenAmount{AmountUSD: decimal.NewFromFloat(amountUSD), Symbol: symbolOut},
	}
}

func TestExtractHoldTimeFIFO(t *testing.T) {
	// 存入t=0，取出t=15天 → 持有时间恰好15天
	rs := &normalizer.RecordSet{
		Category: common.DexCategory,
		LiquidityEvents: []*model.Transaction{
			liquidity(common.DepositAction, "pool-P", 0+1, 500, 0),
			liquidity(common.WithdrawAction, "pool-P", 1+15*day, 500, 0),
		},
	}

	fv := NewExtractor(nil).Extract(rs)
	if fv.AvgHoldTimeDays == nil {
		t.Fatal("avg_hold_time_days不应为未定义")
	}
	if !fv.AvgHoldTimeDays.Equal(decimal.NewFromInt(15)) {
		t.Errorf("avg_hold_time_days = %s, 期望15", fv.AvgHoldTimeDays)
	}
}

func TestExtractUnmatchedWithdrawExcluded(t *testing.T) {
	// 第二笔取款在同池没有先行存款，不参与平均
	rs := &normalizer.RecordSet{
		Category: common.DexCategory,
		LiquidityEvents: []*model.Transaction{
			liquidity(common.DepositAction, "pool-P", 1, 500, 0),
			liquidity(common.WithdrawAction, "pool-P", 1+15*day, 500, 0),
			liquidity(common.WithdrawAction, "pool-P", 1+30*day, 500, 0),
		},
	}

	fv := NewExtractor(nil).Extract(rs)
	if fv.AvgHoldTimeDays == nil {
		t.Fatal("avg_hold_time_days不应为未定义")
	}
	if !fv.AvgHoldTimeDays.Equal(decimal.NewFromInt(15)) {
		t.Errorf("未配对取款混入了平均值: %s", fv.AvgHoldTimeDays)
	}
	if fv.NumWithdraws != 2 {
		t.Errorf("num_withdraws = %d", fv.NumWithdraws)
	}
}

func TestExtractNoMatchedPairsUndefined(t *testing.T) {
	// 只有存款没有取款 → avg_hold_time_days未定义而不是0
	rs := &normalizer.RecordSet{
		Category: common.DexCategory,
		LiquidityEvents: []*model.Transaction{
			liquidity(common.DepositAction, "pool-P", 1, 500, 0),
		},
	}

	fv := NewExtractor(nil).Extract(rs)
	if fv.AvgHoldTimeDays != nil {
		t.Errorf("期望未定义, 实际 %s", fv.AvgHoldTimeDays)
	}
}

func TestExtractEndToEndScenario(t *testing.T) {
	// 一笔$1000 swap + 一笔$500+$500 deposit
	rs := &normalizer.RecordSet{
		Category: common.DexCategory,
		Swaps: []*model.Transaction{
			swap("pool-1", 100, 1000, "USDC", "WETH"),
		},
		LiquidityEvents: []*model.Transaction{
			liquidity(common.DepositAction, "pool-1", 200, 500, 500),
		},
	}

	fv := NewExtractor(nil).Extract(rs)

	if !fv.TotalDepositUSD.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("total_deposit_usd = %s, 期望1000", fv.TotalDepositUSD)
	}
	if !fv.TotalSwapVolume.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("total_swap_volume = %s, 期望1000", fv.TotalSwapVolume)
	}
	if fv.NumDeposits != 1 || fv.NumSwaps != 1 {
		t.Errorf("计数错误: deposits=%d swaps=%d", fv.NumDeposits, fv.NumSwaps)
	}
	if fv.UniquePools != 1 {
		t.Errorf("unique_pools = %d", fv.UniquePools)
	}
	if fv.AvgHoldTimeDays != nil {
		t.Errorf("没有取款时avg_hold_time_days应为未定义")
	}
}

func TestExtractEmptyRecordSet(t *testing.T) {
	fv := NewExtractor(nil).Extract(&normalizer.RecordSet{Category: common.DexCategory})

	if !fv.TotalDepositUSD.IsZero() || !fv.TotalSwapVolume.IsZero() {
		t.Errorf("空记录集应产出全零特征")
	}
	if fv.NumSwaps != 0 || fv.UniquePools != 0 {
		t.Errorf("空记录集计数应为0")
	}
	if fv.AvgHoldTimeDays != nil {
		t.Errorf("空记录集avg_hold_time_days应为未定义")
	}
}

func TestExtractWithdrawRatio(t *testing.T) {
	rs := &normalizer.RecordSet{
		Category: common.DexCategory,
		LiquidityEvents: []*model.Transaction{
			liquidity(common.DepositAction, "p", 1, 1000, 0),
			liquidity(common.WithdrawAction, "p", 2, 250, 0),
		},
	}

	fv := NewExtractor(nil).Extract(rs)
	if !fv.WithdrawRatio.Equal(decimal.NewFromFloat(0.25)) {
		t.Errorf("withdraw_ratio = %s, 期望0.25", fv.WithdrawRatio)
	}
}

func TestTokenDiversityScore(t *testing.T) {
	tests := []struct {
		name string
		txs  []*model.Transaction
		want int64
	}{
		{
			name: "稳定币10分非稳定币15分",
			txs: []*model.Transaction{
				swap("p", 1, 10, "USDC", "WETH"), // 10 + 15
			},
			want: 25,
		},
		{
			name: "同一代币只记一次",
			txs: []*model.Transaction{
				swap("p", 1, 10, "USDC", "WETH"),
				swap("p", 2, 10, "usdc", "WETH"), // 大小写不敏感
			},
			want: 25,
		},
		{
			name: "上限150",
			txs: []*model.Transaction{
				swap("p", 1, 10, "AAA", "BBB"),
				swap("p", 2, 10, "CCC", "DDD"),
				swap("p", 3, 10, "EEE", "FFF"),
				swap("p", 4, 10, "GGG", "HHH"),
				swap("p", 5, 10, "III", "JJJ"),
				swap("p", 6, 10, "KKK", "LLL"), // 12×15=180 → 150
			},
			want: 150,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := &normalizer.RecordSet{Category: common.DexCategory, Swaps: tt.txs}
			fv := NewExtractor(nil).Extract(rs)
			if !fv.TokenDiversity.Equal(decimal.NewFromInt(tt.want)) {
				t.Errorf("token_diversity = %s, 期望 %d", fv.TokenDiversity, tt.want)
			}
		})
	}
}
