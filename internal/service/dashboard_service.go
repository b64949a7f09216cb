package service

import (
	"CircuitEye/internal/api/dto"
	"CircuitEye/internal/model"
	"CircuitEye/internal/repository"
	"context"
	"fmt"
	"math"
	"time"
)

const recentDefectLimit = 3

type DashboardService interface {
	GetDashboard(ctx context.Context, userID uint64) (*dto.DashboardDTO, error)
	FinalizeDailySummary(ctx context.Context, userID uint64, day time.Time) error
}

type dashboardServiceImpl struct {
	recordRepo  repository.DetectionRecordRepo
	summaryRepo repository.DailySummaryRepo
}

func NewDashboardService(
	recordRepo repository.DetectionRecordRepo,
	summaryRepo repository.DailySummaryRepo,
) DashboardService {
	return &dashboardServiceImpl{
		recordRepo:  recordRepo,
		summaryRepo: summaryRepo,
	}
}

// GetDashboard 基于用户全量检测历史构建看板。
// 读路径带副作用：每次都会把"截至今天"的缺陷率 Upsert 进当日汇总行
func (s *dashboardServiceImpl) GetDashboard(ctx context.Context, userID uint64) (*dto.DashboardDTO, error) {
	records, err := s.recordRepo.GetRecordsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := buildDashboardStats(records)

	today := time.Now().Format(time.DateOnly)
	err = s.summaryRepo.SaveOrUpdateSummary(ctx, &model.DailySummary{
		UserID:              userID,
		Date:                today,
		DefectivePercentage: stats.DefectivePercentage,
	})
	if err != nil {
		return nil, err
	}

	weekAgo := time.Now().AddDate(0, 0, -7).Format(time.DateOnly)
	summaries, err := s.summaryRepo.GetSummariesSince(ctx, userID, weekAgo)
	if err != nil {
		return nil, err
	}

	return &dto.DashboardDTO{
		Summary: dto.SummaryDTO{
			DefectPercentages: stats.DefectPercentages,
			DefectiveChart: []dto.ChartItemDTO{
				{Name: "Good PCBs", Value: stats.GoodPCBs},
				{Name: "Defective PCBs", Value: stats.DefectivePCBs},
			},
			TotalDefects:  stats.TotalDefects,
			RecentDefects: buildRecentDefects(records),
			WeeklySummary: buildWeeklySummary(summaries),
		},
	}, nil
}

// FinalizeDailySummary 日终任务用：按当前全量历史固化指定日期的汇总行
func (s *dashboardServiceImpl) FinalizeDailySummary(ctx context.Context, userID uint64, day time.Time) error {
	records, err := s.recordRepo.GetRecordsByUser(ctx, userID)
	if err != nil {
		return err
	}

	stats := buildDashboardStats(records)

	return s.summaryRepo.SaveOrUpdateSummary(ctx, &model.DailySummary{
		UserID:              userID,
		Date:                day.Format(time.DateOnly),
		DefectivePercentage: stats.DefectivePercentage,
	})
}

type dashboardStats struct {
	GoodPCBs            int
	DefectivePCBs       int
	TotalDefects        int
	DefectPercentages   []dto.DefectPercentageDTO
	DefectivePercentage float64
}

// buildDashboardStats 汇总全量历史。totalDefects 为 0 时分母按 1 处理
func buildDashboardStats(records []*model.DetectionRecord) dashboardStats {
	stats := dashboardStats{
		DefectPercentages: make([]dto.DefectPercentageDTO, 0),
	}

	defectCounts := make(map[string]int)
	classOrder := make([]string, 0)

	for _, record := range records {
		if record.IsDefective() {
			stats.DefectivePCBs++
			for _, p := range record.Predictions {
				if _, seen := defectCounts[p.ClassName]; !seen {
					classOrder = append(classOrder, p.ClassName)
				}
				defectCounts[p.ClassName]++
				stats.TotalDefects++
			}
		} else {
			stats.GoodPCBs++
		}
	}

	denominator := stats.TotalDefects
	if denominator == 0 {
		denominator = 1
	}
	for _, name := range classOrder {
		pct := float64(defectCounts[name]) / float64(denominator) * 100
		stats.DefectPercentages = append(stats.DefectPercentages, dto.DefectPercentageDTO{
			Name:       name,
			Percentage: fmt.Sprintf("%.2f", pct),
		})
	}

	totalPCBs := stats.GoodPCBs + stats.DefectivePCBs
	if totalPCBs == 0 {
		totalPCBs = 1
	}
	stats.DefectivePercentage = round2(float64(stats.DefectivePCBs) / float64(totalPCBs) * 100)

	return stats
}

// buildRecentDefects 取最近 3 条记录，最新在前
func buildRecentDefects(records []*model.DetectionRecord) []dto.RecentDefectDTO {
	limit := recentDefectLimit
	if len(records) < limit {
		limit = len(records)
	}

	recent := make([]dto.RecentDefectDTO, 0, limit)
	for i := 0; i < limit; i++ {
		record := records[i]
		defects := make([]string, 0, len(record.Predictions))
		for _, p := range record.Predictions {
			defects = append(defects, p.ClassName)
		}
		recent = append(recent, dto.RecentDefectDTO{
			PcbID:             fmt.Sprintf("PCB #%d", i+1),
			Filename:          record.Filename,
			Defects:           defects,
			ImageURL:          record.ImageURL,
			HeatmapURL:        record.HeatmapURL,
			AnnotatedImageURL: record.AnnotatedImageURL,
		})
	}
	return recent
}

// buildWeeklySummary 把近 7 天的汇总行映射为星期标签 + 数值缺陷率
func buildWeeklySummary(summaries []*model.DailySummary) []dto.WeeklySummaryDTO {
	weekly := make([]dto.WeeklySummaryDTO, 0, len(summaries))
	for _, s := range summaries {
		label := s.Date
		if day, err := time.Parse(time.DateOnly, s.Date); err == nil {
			label = day.Format("Mon")
		}
		weekly = append(weekly, dto.WeeklySummaryDTO{
			Day:       label,
			FaultRate: s.DefectivePercentage,
		})
	}
	return weekly
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
