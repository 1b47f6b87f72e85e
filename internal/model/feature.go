package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// 特征名称常量，阈值表和标签规则通过这些名字引用特征
const (
	FeatureTotalDepositUSD  = "total_deposit_usd"
	FeatureTotalWithdrawUSD = "total_withdraw_usd"
	FeatureTotalSwapVolume  = "total_swap_volume"
	FeatureNumDeposits      = "num_deposits"
	FeatureNumWithdraws     = "num_withdraws"
	FeatureNumSwaps         = "num_swaps"
	FeatureUniquePools      = "unique_pools"
	FeatureAvgHoldTimeDays  = "avg_hold_time_days"
	FeatureWithdrawRatio    = "withdraw_ratio"
	FeatureAccountAgeDays   = "account_age_days"
	FeatureTokenDiversity   = "token_diversity_score"
)

// FeatureVector 一个类别的行为特征
// AvgHoldTimeDays为nil表示没有任何已配对的存取（区别于0天的瞬时进出）
type FeatureVector struct {
	TotalDepositUSD  decimal.Decimal
	TotalWithdrawUSD decimal.Decimal
	TotalSwapVolume  decimal.Decimal
	NumDeposits      int
	NumWithdraws     int
	NumSwaps         int
	UniquePools      int
	AvgHoldTimeDays  *decimal.Decimal

	// 以下为内部特征，参与打分和标签但不进出站JSON
	WithdrawRatio  decimal.Decimal
	AccountAgeDays decimal.Decimal
	TokenDiversity decimal.Decimal
}

// Get 按特征名取值，第二个返回值为false表示该特征当前未定义
func (fv *FeatureVector) Get(name string) (decimal.Decimal, bool) {
	switch name {
	case FeatureTotalDepositUSD:
		return fv.TotalDepositUSD, true
	case FeatureTotalWithdrawUSD:
		return fv.TotalWithdrawUSD, true
	case FeatureTotalSwapVolume:
		return fv.TotalSwapVolume, true
	case FeatureNumDeposits:
		return decimal.NewFromInt(int64(fv.NumDeposits)), true
	case FeatureNumWithdraws:
		return decimal.NewFromInt(int64(fv.NumWithdraws)), true
	case FeatureNumSwaps:
		return decimal.NewFromInt(int64(fv.NumSwaps)), true
	case FeatureUniquePools:
		return decimal.NewFromInt(int64(fv.UniquePools)), true
	case FeatureAvgHoldTimeDays:
		if fv.AvgHoldTimeDays == nil {
			return decimal.Zero, false
		}
		return *fv.AvgHoldTimeDays, true
	case FeatureWithdrawRatio:
		return fv.WithdrawRatio, true
	case FeatureAccountAgeDays:
		return fv.AccountAgeDays, true
	case FeatureTokenDiversity:
		return fv.TokenDiversity, true
	}
	return decimal.Zero, false
}

// featureVectorJSON 出站JSON形态：金额输出为原生数字而非带引号的decimal
type featureVectorJSON struct {
	TotalDepositUSD  json.Number  `json:"total_deposit_usd"`
	TotalWithdrawUSD json.Number  `json:"total_withdraw_usd"`
	TotalSwapVolume  json.Number  `json:"total_swap_volume"`
	NumDeposits      int          `json:"num_deposits"`
	NumWithdraws     int          `json:"num_withdraws"`
	NumSwaps         int          `json:"num_swaps"`
	UniquePools      int          `json:"unique_pools"`
	AvgHoldTimeDays  *json.Number `json:"avg_hold_time_days"`
}

func (fv *FeatureVector) MarshalJSON() ([]byte, error) {
	out := featureVectorJSON{
		TotalDepositUSD:  json.Number(fv.TotalDepositUSD.String()),
		TotalWithdrawUSD: json.Number(fv.TotalWithdrawUSD.String()),
		TotalSwapVolume:  json.Number(fv.TotalSwapVolume.String()),
		NumDeposits:      fv.NumDeposits,
		NumWithdraws:     fv.NumWithdraws,
		NumSwaps:         fv.NumSwaps,
		UniquePools:      fv.UniquePools,
	}
	if fv.AvgHoldTimeDays != nil {
		n := json.Number(fv.AvgHoldTimeDays.String())
		out.AvgHoldTimeDays = &n
	}
	return json.Marshal(out)
}

func (fv *FeatureVector) UnmarshalJSON(data []byte) error {
	var in featureVectorJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	var err error
	if fv.TotalDepositUSD, err = decimalFromNumber(in.TotalDepositUSD); err != nil {
		return err
	}
	if fv.TotalWithdrawUSD, err = decimalFromNumber(in.TotalWithdrawUSD); err != nil {
		return err
	}
	if fv.TotalSwapVolume, err = decimalFromNumber(in.TotalSwapVolume); err != nil {
		return err
	}
	fv.NumDeposits = in.NumDeposits
	fv.NumWithdraws = in.NumWithdraws
	fv.NumSwaps = in.NumSwaps
	fv.UniquePools = in.UniquePools
	fv.AvgHoldTimeDays = nil
	if in.AvgHoldTimeDays != nil {
		d, err := decimalFromNumber(*in.AvgHoldTimeDays)
		if err != nil {
			return err
		}
		fv.AvgHoldTimeDays = &d
	}
	return nil
}

func decimalFromNumber(n json.Number) (decimal.Decimal, error) {
	if n == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(n.String())
}
