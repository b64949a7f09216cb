package repository

import (
	"CircuitEye/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
)

type DetectionRecordRepo interface {
	CreateRecords(ctx context.Context, records []*model.DetectionRecord) error
	CountByUserBetween(ctx context.Context, userID uint64, from, to time.Time) (int64, error)
	GetRecordsByUser(ctx context.Context, userID uint64) ([]*model.DetectionRecord, error)
	GetUserIDsWithRecordsBetween(ctx context.Context, from, to time.Time) ([]uint64, error)
}

type detectionRecordRepoImpl struct {
	db *gorm.DB
}

func NewDetectionRecordRepo(db *gorm.DB) DetectionRecordRepo {
	return &detectionRecordRepoImpl{db: db}
}

// CreateRecords 批量插入检测记录，记录只追加不更新
func (s *detectionRecordRepoImpl) CreateRecords(ctx context.Context, records []*model.DetectionRecord) error {
	if len(records) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Create(records).Error
}

// CountByUserBetween 统计用户在 [from, to) 内的记录数，配额检查用
func (s *detectionRecordRepoImpl) CountByUserBetween(ctx context.Context, userID uint64, from, to time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.DetectionRecord{}).
		Where("user_id = ?", userID).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *detectionRecordRepoImpl) GetRecordsByUser(ctx context.Context, userID uint64) ([]*model.DetectionRecord, error) {
	records := make([]*model.DetectionRecord, 0)
	result := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&records)
	if result.Error != nil {
		return nil, result.Error
	}
	return records, nil
}

// GetUserIDsWithRecordsBetween 找出窗口内有上传的用户，日终汇总任务用
func (s *detectionRecordRepoImpl) GetUserIDsWithRecordsBetween(ctx context.Context, from, to time.Time) ([]uint64, error) {
	ids := make([]uint64, 0)
	result := s.db.WithContext(ctx).
		Model(&model.DetectionRecord{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Distinct("user_id").
		Pluck("user_id", &ids)
	if result.Error != nil {
		return nil, result.Error
	}
	return ids, nil
}
