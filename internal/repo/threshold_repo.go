package repo

import (
	"github.com/ninja0404/dex-reputation/internal/model"
	"gorm.io/gorm"
)

// ThresholdRepo 百分位切点数据访问接口
type ThresholdRepo interface {
	// LoadAll 加载全部切点，按协议+类别分组
	LoadAll() (map[string]*model.ThresholdSet, error)

	// LoadSet 加载指定协议+类别的切点
	LoadSet(protocol, category string) (*model.ThresholdSet, error)
}

type thresholdRepoImpl struct {
	db *gorm.DB
}

func NewThresholdRepo(db *gorm.DB) ThresholdRepo {
	return &thresholdRepoImpl{
		db: db,
	}
}

// LoadAll 加载全部切点，按协议+类别分组
func (r *thresholdRepoImpl) LoadAll() (map[string]*model.ThresholdSet, error) {
	var rows []*model.FeatureThreshold

	err := r.db.
		Order("protocol, category, feature, percentile").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	return groupThresholds(rows), nil
}

// LoadSet 加载指定协议+类别的切点
func (r *thresholdRepoImpl) LoadSet(protocol, category string) (*model.ThresholdSet, error) {
	var rows []*model.FeatureThreshold

	err := r.db.
		Where("protocol = ? AND category = ?", protocol, category).
		Order("feature, percentile").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	sets := groupThresholds(rows)
	return sets[model.ThresholdKey(protocol, category)], nil
}

// groupThresholds 把行记录聚合成ThresholdSet，切点按百分位升序
func groupThresholds(rows []*model.FeatureThreshold) map[string]*model.ThresholdSet {
	sets := make(map[string]*model.ThresholdSet)
	for _, row := range rows {
		key := model.ThresholdKey(row.Protocol, row.Category)
		set, ok := sets[key]
		if !ok {
			set = &model.ThresholdSet{
				Protocol: row.Protocol,
				Category: row.Category,
				Features: make(map[string][]model.Cutpoint),
			}
			sets[key] = set
		}
		set.Features[row.Feature] = append(set.Features[row.Feature], model.Cutpoint{
			Percentile: row.Percentile,
			Value:      row.Cutpoint,
		})
	}
	for _, set := range sets {
		set.SortCutpoints()
	}
	return sets
}
