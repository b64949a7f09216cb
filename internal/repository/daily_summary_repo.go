package repository

import (
	"CircuitEye/internal/model"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DailySummaryRepo interface {
	SaveOrUpdateSummary(ctx context.Context, summary *model.DailySummary) error
	GetSummariesSince(ctx context.Context, userID uint64, fromDate string) ([]*model.DailySummary, error)
}

type dailySummaryRepoImpl struct {
	db *gorm.DB
}

func NewDailySummaryRepo(db *gorm.DB) DailySummaryRepo {
	return &dailySummaryRepoImpl{db: db}
}

// SaveOrUpdateSummary 采用 Upsert 逻辑。(user_id, date) 已存在时只覆盖百分比，
// 同一天重复写入始终只保留一行
func (s *dailySummaryRepoImpl) SaveOrUpdateSummary(ctx context.Context, summary *model.DailySummary) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"defective_percentage", "updated_at"}),
	}).Create(summary).Error
}

// GetSummariesSince 获取 fromDate 起的汇总行，按日期升序，周趋势用
func (s *dailySummaryRepoImpl) GetSummariesSince(ctx context.Context, userID uint64, fromDate string) ([]*model.DailySummary, error) {
	summaries := make([]*model.DailySummary, 0)
	result := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("date >= ?", fromDate).
		Order("date ASC").
		Find(&summaries)
	if result.Error != nil {
		return nil, result.Error
	}
	return summaries, nil
}
