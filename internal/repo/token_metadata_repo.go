package repo

import (
	"github.com/ninja0404/dex-reputation/internal/model"
	"gorm.io/gorm"
)

// TokenMetadataRepo 代币元数据访问接口
type TokenMetadataRepo interface {
	// GetStablecoinSymbols 获取所有稳定币符号
	GetStablecoinSymbols() ([]string, error)

	// GetTokenMetadata 根据代币地址获取元数据
	GetTokenMetadata(tokenAddress string) (*model.TokenMetadata, error)
}

type tokenMetadataRepoImpl struct {
	db *gorm.DB
}

func NewTokenMetadataRepo(db *gorm.DB) TokenMetadataRepo {
	return &tokenMetadataRepoImpl{
		db: db,
	}
}

// GetStablecoinSymbols 获取所有稳定币符号
func (r *tokenMetadataRepoImpl) GetStablecoinSymbols() ([]string, error) {
	var symbols []string

	err := r.db.Model(&model.TokenMetadata{}).
		Where("is_stablecoin = ?", true).
		Distinct().
		Pluck("symbol", &symbols).Error
	if err != nil {
		return nil, err
	}

	return symbols, nil
}

// GetTokenMetadata 根据代币地址获取元数据
func (r *tokenMetadataRepoImpl) GetTokenMetadata(tokenAddress string) (*model.TokenMetadata, error) {
	var meta model.TokenMetadata

	err := r.db.
		Where("token_address = ?", tokenAddress).
		First(&meta).Error
	if err != nil {
		return nil, err
	}

	return &meta, nil
}
