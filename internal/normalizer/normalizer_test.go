package normalizer

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ninja0404/dex-reputation/internal/common"
	"github.com/ninja0404/dex-reputation/internal/model"
)

func usd(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func swapTx(id string, ts int64, amountUSD float64) *model.Transaction {
	return &model.Transaction{
		DocumentID: id,
		Action:     common.SwapAction,
		Timestamp:  ts,
		Protocol:   "uniswap-v3",
		PoolID:     "pool-1",
		TokenIn:    &model.TokenAmount{AmountUSD: usd(amountUSD), Symbol: "USDC"},
		TokenOut:   &model.TokenAmount{AmountUSD: usd(amountUSD), Symbol: "WETH"},
	}
}

func depositTx(id string, ts int64, amountUSD float64) *model.Transaction {
	return &model.Transaction{
		DocumentID: id,
		Action:     common.DepositAction,
		Timestamp:  ts,
		Protocol:   "uniswap-v3",
		PoolID:     "pool-1",
		Token0:     &model.TokenAmount{AmountUSD: usd(amountUSD), Symbol: "USDC"},
	}
}

func TestNormalizePartitionsByAction(t *testing.T) {
	batch := &model.WalletBatch{
		WalletAddress: "0xabc",
		Data: []*model.CategoryBlock{
			{
				ProtocolType: common.DexCategory,
				Transactions: []*model.Transaction{
					swapTx("s1", 100, 1000),
					depositTx("d1", 200, 500),
					swapTx("s2", 300, 200),
				},
			},
		},
	}

	result := Normalize(batch)
	if len(result.Errors) != 0 {
		t.Fatalf("期望无校验错误, 实际 %v", result.Errors)
	}
	if len(result.Sets) != 1 {
		t.Fatalf("期望1个类别, 实际 %d", len(result.Sets))
	}

	rs := result.Sets[0]
	if rs.Category != common.DexCategory {
		t.Errorf("类别错误: %s", rs.Category)
	}
	if rs.Protocol != "uniswap-v3" {
		t.Errorf("协议捕获错误: %s", rs.Protocol)
	}
	if len(rs.Swaps) != 2 || len(rs.LiquidityEvents) != 1 {
		t.Errorf("分区错误: swaps=%d liquidity=%d", len(rs.Swaps), len(rs.LiquidityEvents))
	}
}

func TestNormalizeDropsInvalidTransactions(t *testing.T) {
	tests := []struct {
		name string
		tx   *model.Transaction
	}{
		{
			name: "未知action",
			tx: &model.Transaction{
				DocumentID: "bad-action",
				Action:     common.Action("stake"),
				Timestamp:  100,
			},
		},
		{
			name: "非正时间戳",
			tx: &model.Transaction{
				DocumentID: "bad-ts",
				Action:     common.SwapAction,
				Timestamp:  0,
				TokenIn:    &model.TokenAmount{AmountUSD: usd(10)},
			},
		},
		{
			name: "swap两侧都缺失",
			tx: &model.Transaction{
				DocumentID: "no-sides",
				Action:     common.SwapAction,
				Timestamp:  100,
			},
		},
		{
			name: "负金额",
			tx: &model.Transaction{
				DocumentID: "neg-amount",
				Action:     common.DepositAction,
				Timestamp:  100,
				Token0:     &model.TokenAmount{AmountUSD: usd(-5)},
			},
		},
		{
			name: "deposit两侧都缺失",
			tx: &model.Transaction{
				DocumentID: "no-token",
				Action:     common.WithdrawAction,
				Timestamp:  100,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch := &model.WalletBatch{
				WalletAddress: "0xabc",
				Data: []*model.CategoryBlock{
					{
						ProtocolType: common.DexCategory,
						Transactions: []*model.Transaction{tt.tx, swapTx("ok", 100, 10)},
					},
				},
			}

			result := Normalize(batch)
			if len(result.Errors) != 1 {
				t.Fatalf("期望1条校验错误, 实际 %d", len(result.Errors))
			}
			if result.Errors[0].DocumentID != tt.tx.DocumentID {
				t.Errorf("document_id错误: %s", result.Errors[0].DocumentID)
			}
			// 坏交易被剔除但好交易保留
			if result.Sets[0].TransactionCount() != 1 {
				t.Errorf("有效交易数错误: %d", result.Sets[0].TransactionCount())
			}
		})
	}
}

func TestNormalizeSortsByTimestampStable(t *testing.T) {
	batch := &model.WalletBatch{
		WalletAddress: "0xabc",
		Data: []*model.CategoryBlock{
			{
				ProtocolType: common.DexCategory,
				Transactions: []*model.Transaction{
					swapTx("c", 300, 1),
					swapTx("a1", 100, 1),
					swapTx("a2", 100, 1), // 与a1同时间戳，必须保持相对顺序
					swapTx("b", 200, 1),
				},
			},
		},
	}

	result := Normalize(batch)
	got := make([]string, 0, 4)
	for _, tx := range result.Sets[0].Swaps {
		got = append(got, tx.DocumentID)
	}

	want := []string{"a1", "a2", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("排序结果错误: got=%v want=%v", got, want)
		}
	}
}

func TestNormalizeMergesDuplicateCategories(t *testing.T) {
	batch := &model.WalletBatch{
		WalletAddress: "0xabc",
		Data: []*model.CategoryBlock{
			{ProtocolType: "dexes", Transactions: []*model.Transaction{swapTx("s1", 100, 1)}},
			{ProtocolType: "lending", Transactions: []*model.Transaction{swapTx("s2", 100, 1)}},
			{ProtocolType: "dexes", Transactions: []*model.Transaction{swapTx("s3", 50, 1)}},
		},
	}

	result := Normalize(batch)
	if len(result.Sets) != 2 {
		t.Fatalf("期望2个类别, 实际 %d", len(result.Sets))
	}
	// 首次出现顺序
	if result.Sets[0].Category != "dexes" || result.Sets[1].Category != "lending" {
		t.Errorf("类别顺序错误: %s, %s", result.Sets[0].Category, result.Sets[1].Category)
	}
	if len(result.Sets[0].Swaps) != 2 {
		t.Errorf("重复类别未合并: %d", len(result.Sets[0].Swaps))
	}
}

func TestNormalizeKeepsEmptyCategories(t *testing.T) {
	batch := &model.WalletBatch{
		WalletAddress: "0xabc",
		Data: []*model.CategoryBlock{
			{ProtocolType: "dexes", Transactions: nil},
		},
	}

	result := Normalize(batch)
	if len(result.Sets) != 1 {
		t.Fatalf("空类别被丢弃")
	}
	if !result.Sets[0].Empty() {
		t.Errorf("期望空记录集")
	}
}
