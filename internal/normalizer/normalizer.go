package normalizer

import (
	"fmt"
	"sort"

	"github.com/ninja0404/dex-reputation/internal/common"
	"github.com/ninja0404/dex-reputation/internal/model"
)

// ValidationError 单笔交易的校验失败记录，携带document_id便于下游追溯
type ValidationError struct {
	DocumentID string
	Reason     string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("transaction %s: %s", e.DocumentID, e.Reason)
}

// RecordSet 一个类别规范化后的记录集：swap与流动性事件两个分区，均按时间戳稳定排序
// Protocol取自类别内第一笔有效交易，用于阈值查找
type RecordSet struct {
	Category        string
	Protocol        string
	Swaps           []*model.Transaction
	LiquidityEvents []*model.Transaction
}

// TransactionCount 记录集内有效交易总数
func (rs *RecordSet) TransactionCount() int {
	return len(rs.Swaps) + len(rs.LiquidityEvents)
}

// Empty 规范化后是否没有任何有效交易
func (rs *RecordSet) Empty() bool {
	return rs.TransactionCount() == 0
}

// Result 一个批次的规范化产物：按输入顺序排列的类别记录集+校验错误列表
type Result struct {
	Sets   []*RecordSet
	Errors []ValidationError
}

// Normalize 将钱包批次重塑为每类别一个RecordSet
// 非法交易被剔除并记录，绝不让单笔坏数据中断整个批次；
// 空类别仍然保留，保证输入中的每个类别都会出现在输出里
func Normalize(batch *model.WalletBatch) *Result {
	result := &Result{}
	byCategory := make(map[string]*RecordSet)

	for _, block := range batch.Data {
		if block == nil {
			continue
		}

		rs, seen := byCategory[block.ProtocolType]
		if !seen {
			rs = &RecordSet{Category: block.ProtocolType}
			byCategory[block.ProtocolType] = rs
			result.Sets = append(result.Sets, rs)
		}

		for _, tx := range block.Transactions {
			if verr := validate(tx); verr != nil {
				result.Errors = append(result.Errors, *verr)
				continue
			}
			if rs.Protocol == "" && tx.Protocol != "" {
				rs.Protocol = tx.Protocol
			}
			if tx.Action == common.SwapAction {
				rs.Swaps = append(rs.Swaps, tx)
			} else {
				rs.LiquidityEvents = append(rs.LiquidityEvents, tx)
			}
		}
	}

	// 时间戳稳定排序，相同时间戳保持原始相对顺序
	for _, rs := range result.Sets {
		sortByTimestamp(rs.Swaps)
		sortByTimestamp(rs.LiquidityEvents)
	}

	return result
}

func sortByTimestamp(txs []*model.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Timestamp < txs[j].Timestamp
	})
}

func validate(tx *model.Transaction) *ValidationError {
	if tx == nil {
		return &ValidationError{Reason: "transaction is null"}
	}
	if !tx.Action.IsValid() {
		return &ValidationError{
			DocumentID: tx.DocumentID,
			Reason:     fmt.Sprintf("unrecognized action %q", tx.Action),
		}
	}
	if tx.Timestamp <= 0 {
		return &ValidationError{
			DocumentID: tx.DocumentID,
			Reason:     "missing or non-positive timestamp",
		}
	}

	switch tx.Action {
	case common.SwapAction:
		// swap至少要有一侧代币金额，成交时两侧USD价值应当相等，允许偏差
		if tx.TokenIn == nil && tx.TokenOut == nil {
			return &ValidationError{
				DocumentID: tx.DocumentID,
				Reason:     "swap missing both tokenIn and tokenOut",
			}
		}
		if verr := validateAmount(tx, tx.TokenIn, "tokenIn"); verr != nil {
			return verr
		}
		if verr := validateAmount(tx, tx.TokenOut, "tokenOut"); verr != nil {
			return verr
		}
	case common.DepositAction, common.WithdrawAction:
		if tx.Token0 == nil && tx.Token1 == nil {
			return &ValidationError{
				DocumentID: tx.DocumentID,
				Reason:     string(tx.Action) + " missing both token0 and token1",
			}
		}
		if verr := validateAmount(tx, tx.Token0, "token0"); verr != nil {
			return verr
		}
		if verr := validateAmount(tx, tx.Token1, "token1"); verr != nil {
			return verr
		}
	}

	return nil
}

func validateAmount(tx *model.Transaction, side *model.TokenAmount, field string) *ValidationError {
	if side == nil {
		return nil
	}
	if side.AmountUSD.IsNegative() {
		return &ValidationError{
			DocumentID: tx.DocumentID,
			Reason:     field + ".amountUSD is negative",
		}
	}
	return nil
}
