package wire

import (
	"CircuitEye/internal/api"
	"CircuitEye/internal/api/config"
	"CircuitEye/internal/api/handler"
	"CircuitEye/internal/job"
	"CircuitEye/internal/pkg/cron"
	"CircuitEye/internal/pkg/detection"
	"CircuitEye/internal/pkg/kafka"
	"CircuitEye/internal/repository"
	"CircuitEye/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	DB           *gorm.DB
	KafkaManager *kafka.ConsumerManager
	CronMgr      *cron.Manager
}

func BuildApplication(db *gorm.DB, cfg *config.Config) (*ApplicationContainer, error) {
	userRepo := repository.NewUserRepo(db)
	recordRepo := repository.NewDetectionRecordRepo(db)
	summaryRepo := repository.NewDailySummaryRepo(db)

	detectionClient := detection.NewClient(cfg.Detection)

	userService := service.NewUserService(userRepo)
	detectionService := service.NewDetectionService(
		userRepo, recordRepo, detectionClient,
		service.NewMinioAssetStore(), service.NewRedisQuotaLocker(),
	)
	dashboardService := service.NewDashboardService(recordRepo, summaryRepo)
	subscriptionService := service.NewSubscriptionService(userRepo)

	handlers := &api.HandlersGroup{
		UserHandler:         handler.NewUserHandler(userService),
		DetectionHandler:    handler.NewDetectionHandler(detectionService),
		DashboardHandler:    handler.NewDashboardHandler(dashboardService),
		SubscriptionHandler: handler.NewSubscriptionHandler(subscriptionService),
	}

	router := api.SetupRouter(handlers)

	kafkaMgr, err := kafka.NewConsumerManager(cfg, subscriptionService)
	if err != nil {
		return nil, err
	}

	dailySummaryJob := job.NewDailySummaryJob(recordRepo, dashboardService)
	cronMgr := cron.NewCronManager(dailySummaryJob)

	return &ApplicationContainer{
		Router:       router,
		DB:           db,
		KafkaManager: kafkaMgr,
		CronMgr:      cronMgr,
	}, nil
}
