package repository

import (
	"context"

	"gorm.io/gorm"

	"tudva/backend/internal/model"
)

// TimeSlotRepository 时段目录数据访问接口（只读，目录由迁移写入）
type TimeSlotRepository interface {
	GetByID(ctx context.Context, id string) (*model.TimeSlot, error)
	List(ctx context.Context) ([]model.TimeSlot, error)
}

type timeSlotRepo struct {
	db *gorm.DB
}

// NewTimeSlotRepo 创建 TimeSlotRepository 实例
func NewTimeSlotRepo(db *gorm.DB) TimeSlotRepository {
	return &timeSlotRepo{db: db}
}

func (r *timeSlotRepo) GetByID(ctx context.Context, id string) (*model.TimeSlot, error) {
	var slot model.TimeSlot
	err := r.db.WithContext(ctx).
		Where("slot_id = ?", id).
		First(&slot).Error
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *timeSlotRepo) List(ctx context.Context) ([]model.TimeSlot, error) {
	var slots []model.TimeSlot
	err := r.db.WithContext(ctx).
		Order("sort_order ASC").
		Find(&slots).Error
	return slots, err
}
