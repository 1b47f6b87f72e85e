package feature

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ninja0404/dex-reputation/internal/common"
	"github.com/ninja0404/dex-reputation/internal/model"
	"github.com/ninja0404/dex-reputation/internal/normalizer"
)

var secondsPerDay = decimal.NewFromInt(86400)

// DefaultStableSymbols 内置稳定币符号集，token_metadata表不可用时的兜底
var DefaultStableSymbols = []string{"USDC", "USDT", "DAI", "LUSD", "USDP", "TUSD", "FRAX"}

// Extractor 类别特征提取器
// 特征值只依赖规范化记录集的内容和既定的时间排序，同样输入必然产出同样特征
type Extractor struct {
	stableSymbols map[string]struct{}
}

// NewExtractor 创建特征提取器，stableSymbols为空时使用内置稳定币集合
func NewExtractor(stableSymbols []string) *Extractor {
	if len(stableSymbols) == 0 {
		stableSymbols = DefaultStableSymbols
	}
	set := make(map[string]struct{}, len(stableSymbols))
	for _, s := range stableSymbols {
		set[strings.ToUpper(s)] = struct{}{}
	}
	return &Extractor{stableSymbols: set}
}

// Extract 从一个类别的记录集计算特征向量
// 空记录集产出全零向量（avg_hold_time_days为未定义），不会产出NaN或无穷值
func (e *Extractor) Extract(rs *normalizer.RecordSet) *model.FeatureVector {
	fv := &model.FeatureVector{}

	pools := make(map[string]struct{})
	symbols := make(map[string]struct{})
	var minTs, maxTs int64

	for _, tx := range rs.Swaps {
		fv.NumSwaps++
		fv.TotalSwapVolume = fv.TotalSwapVolume.Add(swapVolume(tx))
		notePool(pools, tx.PoolID)
		noteSymbol(symbols, tx.TokenIn)
		noteSymbol(symbols, tx.TokenOut)
		minTs, maxTs = noteTimestamp(minTs, maxTs, tx.Timestamp)
	}

	for _, tx := range rs.LiquidityEvents {
		amount := liquidityAmount(tx)
		switch tx.Action {
		case common.DepositAction:
			fv.NumDeposits++
			fv.TotalDepositUSD = fv.TotalDepositUSD.Add(amount)
		case common.WithdrawAction:
			fv.NumWithdraws++
			fv.TotalWithdrawUSD = fv.TotalWithdrawUSD.Add(amount)
		}
		notePool(pools, tx.PoolID)
		minTs, maxTs = noteTimestamp(minTs, maxTs, tx.Timestamp)
	}

	fv.UniquePools = len(pools)
	fv.AvgHoldTimeDays = avgHoldTime(rs.LiquidityEvents)

	if fv.TotalDepositUSD.IsPositive() {
		fv.WithdrawRatio = fv.TotalWithdrawUSD.Div(fv.TotalDepositUSD)
	}
	if maxTs > minTs {
		fv.AccountAgeDays = decimal.NewFromInt(maxTs - minTs).Div(secondsPerDay)
	}
	fv.TokenDiversity = e.tokenDiversity(symbols)

	return fv
}

// swapVolume 取swap输入侧的USD金额，输入侧缺失时回退到输出侧
// 两侧在成交时点经济上应当相等，偏差被容忍而非报错
func swapVolume(tx *model.Transaction) decimal.Decimal {
	if tx.TokenIn != nil {
		return tx.TokenIn.AmountUSD
	}
	if tx.TokenOut != nil {
		return tx.TokenOut.AmountUSD
	}
	return decimal.Zero
}

func liquidityAmount(tx *model.Transaction) decimal.Decimal {
	total := decimal.Zero
	if tx.Token0 != nil {
		total = total.Add(tx.Token0.AmountUSD)
	}
	if tx.Token1 != nil {
		total = total.Add(tx.Token1.AmountUSD)
	}
	return total
}

// avgHoldTime 取款与同池中最早的未配对存款按FIFO配对，
// 持有时间=取款时间-配对存款时间；批次内没有先行存款的取款不参与平均；
// 零配对时返回nil表示未定义，0天会被误读为瞬时进出
func avgHoldTime(events []*model.Transaction) *decimal.Decimal {
	pending := make(map[string][]int64) // poolId → 未配对存款时间戳队列
	totalSeconds := decimal.Zero
	matched := 0

	for _, tx := range events {
		switch tx.Action {
		case common.DepositAction:
			pending[tx.PoolID] = append(pending[tx.PoolID], tx.Timestamp)
		case common.WithdrawAction:
			queue := pending[tx.PoolID]
			if len(queue) == 0 {
				continue
			}
			depositTs := queue[0]
			pending[tx.PoolID] = queue[1:]
			totalSeconds = totalSeconds.Add(decimal.NewFromInt(tx.Timestamp - depositTs))
			matched++
		}
	}

	if matched == 0 {
		return nil
	}
	avg := totalSeconds.Div(decimal.NewFromInt(int64(matched))).Div(secondsPerDay)
	return &avg
}

// tokenDiversity 稳定币每个记10分、非稳定币每个记15分，上限150
func (e *Extractor) tokenDiversity(symbols map[string]struct{}) decimal.Decimal {
	score := 0
	for symbol := range symbols {
		if _, ok := e.stableSymbols[symbol]; ok {
			score += 10
		} else {
			score += 15
		}
	}
	if score > 150 {
		score = 150
	}
	return decimal.NewFromInt(int64(score))
}

func notePool(pools map[string]struct{}, poolID string) {
	if poolID != "" {
		pools[poolID] = struct{}{}
	}
}

func noteSymbol(symbols map[string]struct{}, side *model.TokenAmount) {
	if side != nil && side.Symbol != "" {
		symbols[strings.ToUpper(side.Symbol)] = struct{}{}
	}
}

func noteTimestamp(minTs, maxTs, ts int64) (int64, int64) {
	if minTs == 0 || ts < minTs {
		minTs = ts
	}
	if ts > maxTs {
		maxTs = ts
	}
	return minTs, maxTs
}
