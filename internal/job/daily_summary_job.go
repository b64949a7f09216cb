package job

import (
	"CircuitEye/internal/pkg/consts"
	"CircuitEye/internal/pkg/logger"
	"CircuitEye/internal/pkg/redis"
	"CircuitEye/internal/repository"
	"CircuitEye/internal/service"
	"context"
	log "log/slog"
	"time"

	"github.com/google/uuid"
)

// DailySummaryJob 日终把当天有上传的用户的汇总行固化一遍，
// 保证当天没人打开看板也有当日数据。历史日期不回写
type DailySummaryJob struct {
	recordRepo   repository.DetectionRecordRepo
	dashboardSvc service.DashboardService
}

func NewDailySummaryJob(
	recordRepo repository.DetectionRecordRepo,
	dashboardSvc service.DashboardService,
) *DailySummaryJob {
	return &DailySummaryJob{
		recordRepo:   recordRepo,
		dashboardSvc: dashboardSvc,
	}
}

func (s *DailySummaryJob) Run() {
	traceID := "job-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)

	lockVal := uuid.NewString()
	locked, err := redis.TryLock(ctx, consts.DailySummaryJobLock, lockVal, 10*time.Minute, 1)
	if err != nil || !locked {
		return
	}
	defer redis.UnLock(ctx, consts.DailySummaryJobLock, lockVal)

	now := time.Now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 0, 1)

	userIDs, err := s.recordRepo.GetUserIDsWithRecordsBetween(ctx, from, to)
	if err != nil {
		log.ErrorContext(ctx, "get users with records error", "err", err)
		return
	}

	for _, userID := range userIDs {
		if err = s.dashboardSvc.FinalizeDailySummary(ctx, userID, now); err != nil {
			log.ErrorContext(ctx, "finalize daily summary error", "user_id", userID, "err", err)
		}
	}

	log.InfoContext(ctx, "daily summaries finalized", "users", len(userIDs), "date", now.Format(time.DateOnly))
}
