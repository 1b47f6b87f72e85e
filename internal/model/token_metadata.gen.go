package model

import (
	"time"
)

const TableNameTokenMetadata = "token_metadata"

// TokenMetadata 代币元数据表
type TokenMetadata struct {
	ID           int64      `gorm:"column:id;primaryKey;autoIncrement:true" json:"id"`
	TokenAddress string     `gorm:"column:token_address;not null;comment:代币地址" json:"token_address"` // 代币地址
	Symbol       string     `gorm:"column:symbol;not null;comment:代币符号" json:"symbol"`               // 代币符号
	Name         string     `gorm:"column:name;not null;comment:代币名称" json:"name"`                   // 代币名称
	Decimals     int32      `gorm:"column:decimals;not null;comment:代币精度" json:"decimals"`           // 代币精度
	IsStablecoin bool       `gorm:"column:is_stablecoin;not null;comment:是否为稳定币" json:"is_stablecoin"` // 是否为稳定币
	CreatedAt    *time.Time `gorm:"column:created_at;not null;autoCreateTime" json:"created_at"`
	UpdatedAt    *time.Time `gorm:"column:updated_at;not null;autoUpdateTime" json:"updated_at"`
}

// TableName TokenMetadata's table name
func (*TokenMetadata) TableName() string {
	return TableNameTokenMetadata
}
