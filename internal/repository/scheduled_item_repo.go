package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"tudva/backend/internal/model"
	pkgerrors "tudva/backend/pkg/errors"
)

// ScheduledItemRepository 学生课表条目数据访问接口
type ScheduledItemRepository interface {
	Create(ctx context.Context, item *model.ScheduledItem) error
	BatchCreate(ctx context.Context, items []model.ScheduledItem) error
	GetByID(ctx context.Context, id string) (*model.ScheduledItem, error)
	ListByUser(ctx context.Context, userID string) ([]model.ScheduledItem, error)
	ListByCourse(ctx context.Context, userID, courseID string) ([]model.ScheduledItem, error)
	// ListInCell 单元格 (user, date, slot) 内的全部条目
	ListInCell(ctx context.Context, userID string, date time.Time, slotID string) ([]model.ScheduledItem, error)
	// Move 改期，带乐观锁
	Move(ctx context.Context, item *model.ScheduledItem) error
	Delete(ctx context.Context, id string) error
	// UpdateLessonNumbers 在单个事务内将 orderedIDs 的课时序号改写为 1..n
	UpdateLessonNumbers(ctx context.Context, orderedIDs []string) error
}

type scheduledItemRepo struct {
	db *gorm.DB
}

// NewScheduledItemRepo 创建 ScheduledItemRepository 实例
func NewScheduledItemRepo(db *gorm.DB) ScheduledItemRepository {
	return &scheduledItemRepo{db: db}
}

// translate 唯一约束冲突统一映射为 ErrCellTaken
func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return pkgerrors.ErrCellTaken
	}
	return err
}

func (r *scheduledItemRepo) Create(ctx context.Context, item *model.ScheduledItem) error {
	return translate(r.db.WithContext(ctx).Create(item).Error)
}

func (r *scheduledItemRepo) BatchCreate(ctx context.Context, items []model.ScheduledItem) error {
	if len(items) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).Create(&items).Error)
}

func (r *scheduledItemRepo) GetByID(ctx context.Context, id string) (*model.ScheduledItem, error) {
	var item model.ScheduledItem
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("scheduled_item_id = ?", id).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *scheduledItemRepo) ListByUser(ctx context.Context, userID string) ([]model.ScheduledItem, error) {
	var items []model.ScheduledItem
	err := r.db.WithContext(ctx).
		Preload("Course").
		Joins("JOIN time_slots ts ON ts.slot_id = scheduled_items.slot_id").
		Where("scheduled_items.user_id = ?", userID).
		Order("scheduled_items.schedule_date ASC, ts.sort_order ASC").
		Find(&items).Error
	return items, err
}

func (r *scheduledItemRepo) ListByCourse(ctx context.Context, userID, courseID string) ([]model.ScheduledItem, error) {
	var items []model.ScheduledItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Find(&items).Error
	return items, err
}

func (r *scheduledItemRepo) ListInCell(ctx context.Context, userID string, date time.Time, slotID string) ([]model.ScheduledItem, error) {
	var items []model.ScheduledItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND schedule_date = ? AND slot_id = ?", userID, date.Format("2006-01-02"), slotID).
		Find(&items).Error
	return items, err
}

func (r *scheduledItemRepo) Move(ctx context.Context, item *model.ScheduledItem) error {
	oldVersion := item.Version
	result := r.db.WithContext(ctx).
		Model(&model.ScheduledItem{}).
		Where("scheduled_item_id = ? AND version = ?", item.ScheduledItemID, oldVersion).
		Updates(map[string]interface{}{
			"schedule_date": item.ScheduleDate,
			"slot_id":       item.SlotID,
			"updated_at":    gorm.Expr("NOW()"),
			"version":       oldVersion + 1,
		})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	item.Version = oldVersion + 1
	return nil
}

func (r *scheduledItemRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("scheduled_item_id = ?", id).
		Delete(&model.ScheduledItem{}).Error
}

func (r *scheduledItemRepo) UpdateLessonNumbers(ctx context.Context, orderedIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range orderedIDs {
			err := tx.Model(&model.ScheduledItem{}).
				Where("scheduled_item_id = ?", id).
				Updates(map[string]interface{}{
					"lesson_number": i + 1,
					"updated_at":    gorm.Expr("NOW()"),
					"version":       gorm.Expr("version + 1"),
				}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
