package model

import (
	"github.com/shopspring/decimal"

	"github.com/ninja0404/dex-reputation/internal/common"
)

// TokenAmount 单边代币金额信息
type TokenAmount struct {
	Amount    decimal.Decimal `json:"amount"`
	AmountUSD decimal.Decimal `json:"amountUSD"`
	Address   string          `json:"address"`
	Symbol    string          `json:"symbol"`
}

// Transaction 钱包的一笔DEX交易（swap/deposit/withdraw三种变体共用一个结构）
// swap携带tokenIn/tokenOut，deposit/withdraw携带token0/token1
type Transaction struct {
	DocumentID string        `json:"document_id"`
	Action     common.Action `json:"action"`
	Timestamp  int64         `json:"timestamp"`
	Caller     string        `json:"caller"`
	Protocol   string        `json:"protocol"`
	PoolID     string        `json:"poolId"`
	PoolName   string        `json:"poolName"`

	TokenIn  *TokenAmount `json:"tokenIn,omitempty"`
	TokenOut *TokenAmount `json:"tokenOut,omitempty"`
	Token0   *TokenAmount `json:"token0,omitempty"`
	Token1   *TokenAmount `json:"token1,omitempty"`
}

// CategoryBlock 一个协议类别下的交易列表
type CategoryBlock struct {
	ProtocolType string         `json:"protocolType"`
	Transactions []*Transaction `json:"transactions"`
}

// WalletBatch 入站消息：一个钱包地址及其按类别分组的交易
// 管道只读，所有派生数据归单次评分运行所有
type WalletBatch struct {
	WalletAddress string           `json:"wallet_address"`
	Data          []*CategoryBlock `json:"data"`
}

// EarliestTimestamp 返回批次内最早的交易时间戳，批次为空时返回0
func (b *WalletBatch) EarliestTimestamp() int64 {
	var earliest int64
	for _, block := range b.Data {
		for _, tx := range block.Transactions {
			if tx == nil || tx.Timestamp <= 0 {
				continue
			}
			if earliest == 0 || tx.Timestamp < earliest {
				earliest = tx.Timestamp
			}
		}
	}
	return earliest
}

// TransactionCount 批次内交易总数
func (b *WalletBatch) TransactionCount() int {
	total := 0
	for _, block := range b.Data {
		total += len(block.Transactions)
	}
	return total
}
