package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const TableNameFeatureThreshold = "feature_thresholds"

// FeatureThreshold 特征百分位切点表
type FeatureThreshold struct {
	ID         int64           `gorm:"column:id;primaryKey;autoIncrement:true" json:"id"`
	Protocol   string          `gorm:"column:protocol;not null;comment:协议标识" json:"protocol"`                            // 协议标识
	Category   string          `gorm:"column:category;not null;comment:协议类别" json:"category"`                            // 协议类别
	Feature    string          `gorm:"column:feature;not null;comment:特征名称" json:"feature"`                              // 特征名称
	Percentile int32           `gorm:"column:percentile;not null;comment:百分位(0-100)" json:"percentile"`                  // 百分位(0-100)
	Cutpoint   decimal.Decimal `gorm:"column:cutpoint;not null;default:0.000000000000000000;comment:切点值" json:"cutpoint"` // 切点值
	CreatedAt  *time.Time      `gorm:"column:created_at;not null;autoCreateTime" json:"created_at"`
	UpdatedAt  *time.Time      `gorm:"column:updated_at;not null;autoUpdateTime" json:"updated_at"`
}

// TableName FeatureThreshold's table name
func (*FeatureThreshold) TableName() string {
	return TableNameFeatureThreshold
}
