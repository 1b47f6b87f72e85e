package common

// Action 交易行为类型（入站JSON中的action字段）
type Action string

const (
	SwapAction     Action = "swap"
	DepositAction  Action = "deposit"
	WithdrawAction Action = "withdraw"
)

// IsValid 是否为可识别的行为类型
func (a Action) IsValid() bool {
	switch a {
	case SwapAction, DepositAction, WithdrawAction:
		return true
	}
	return false
}

// IsLiquidity 是否为流动性事件（存入/取出）
func (a Action) IsLiquidity() bool {
	return a == DepositAction || a == WithdrawAction
}

// DexCategory 当前支持的协议类别
const DexCategory = "dexes"
