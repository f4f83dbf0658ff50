package service

import (
	"go.uber.org/zap"

	"tudva/backend/config"
	"tudva/backend/internal/repository"
	"tudva/backend/pkg/jwt"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth      AuthService
	TimeSlot  TimeSlotService
	Scheduler SchedulerService
	Export    ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:      NewAuthService(repo, jwtMgr, blacklist, logger),
		TimeSlot:  NewTimeSlotService(repo, logger),
		Scheduler: NewSchedulerService(&cfg.Scheduler, repo, logger),
		Export:    NewExportService(repo, logger),
	}
}
