package service

import (
	"context"

	"go.uber.org/zap"

	"tudva/backend/internal/dto"
	"tudva/backend/internal/model"
	"tudva/backend/internal/repository"
)

// TimeSlotService 时段目录业务接口
type TimeSlotService interface {
	List(ctx context.Context) ([]dto.TimeSlotResponse, error)
}

type timeSlotService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTimeSlotService 创建 TimeSlotService 实例
func NewTimeSlotService(repo *repository.Repository, logger *zap.Logger) TimeSlotService {
	return &timeSlotService{repo: repo, logger: logger}
}

func (s *timeSlotService) List(ctx context.Context) ([]dto.TimeSlotResponse, error) {
	slots, err := s.repo.TimeSlot.List(ctx)
	if err != nil {
		s.logger.Error("查询时段目录失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.TimeSlotResponse, 0, len(slots))
	for i := range slots {
		result = append(result, toTimeSlotResponse(&slots[i]))
	}
	return result, nil
}

func toTimeSlotResponse(slot *model.TimeSlot) dto.TimeSlotResponse {
	return dto.TimeSlotResponse{
		ID:          slot.SlotID,
		DisplayName: slot.DisplayName,
		StartTime:   slot.StartTime,
		EndTime:     slot.EndTime,
	}
}
