package handler

import "tudva/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth      *AuthHandler
	TimeSlot  *TimeSlotHandler
	Scheduler *SchedulerHandler
	Export    *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:      NewAuthHandler(svc.Auth),
		TimeSlot:  NewTimeSlotHandler(svc.TimeSlot),
		Scheduler: NewSchedulerHandler(svc.Scheduler),
		Export:    NewExportHandler(svc.Export),
	}
}
