package handler

import (
	"github.com/gin-gonic/gin"

	"tudva/backend/internal/service"
	"tudva/backend/pkg/response"
)

// TimeSlotHandler 时段目录 HTTP 处理器
type TimeSlotHandler struct {
	timeSlotSvc service.TimeSlotService
}

// NewTimeSlotHandler 创建 TimeSlotHandler
func NewTimeSlotHandler(timeSlotSvc service.TimeSlotService) *TimeSlotHandler {
	return &TimeSlotHandler{timeSlotSvc: timeSlotSvc}
}

// ListTimeSlots 获取时段目录（按 sort_order）
// GET /api/v1/time-slots
func (h *TimeSlotHandler) ListTimeSlots(c *gin.Context) {
	slots, err := h.timeSlotSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"timeSlots": slots})
}
