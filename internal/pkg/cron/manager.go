package cron

import (
	"CircuitEye/internal/job"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

type Manager struct {
	engine          *cron.Cron
	dailySummaryJob *job.DailySummaryJob
}

func NewCronManager(dailySummaryJob *job.DailySummaryJob) *Manager {
	return &Manager{
		engine:          cron.New(cron.WithSeconds()),
		dailySummaryJob: dailySummaryJob,
	}
}

// RegisterJobs 注册定时任务
func (s *Manager) RegisterJobs() error {
	// 每天 23:55 固化当日汇总
	if _, err := s.engine.AddJob("0 55 23 * * *", s.dailySummaryJob); err != nil {
		return err
	}
	return nil
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动")
	s.engine.Start()
}

func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	s.engine.Stop()
}
