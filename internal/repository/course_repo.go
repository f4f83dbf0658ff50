package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"tudva/backend/internal/model"
)

// CourseFilter 课程列表筛选条件
type CourseFilter struct {
	Query      string // 标题关键字，不区分大小写
	CourseType string // live / recorded，空表示不限
}

// CourseRepository 课程数据访问接口（只读）
type CourseRepository interface {
	// GetByID 查询课程，同时按顺序预加载课时与直播场次
	GetByID(ctx context.Context, id string) (*model.Course, error)
	// ListEnrolled 列出用户已选的课程
	ListEnrolled(ctx context.Context, userID string, filter CourseFilter) ([]model.Course, error)
}

type courseRepo struct {
	db *gorm.DB
}

// NewCourseRepo 创建 CourseRepository 实例
func NewCourseRepo(db *gorm.DB) CourseRepository {
	return &courseRepo{db: db}
}

func preloadCourseItems(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("LiveSessions", func(db *gorm.DB) *gorm.DB {
			return db.Order("session_date ASC, position ASC")
		})
}

func (r *courseRepo) GetByID(ctx context.Context, id string) (*model.Course, error) {
	var course model.Course
	err := preloadCourseItems(r.db.WithContext(ctx)).
		Where("course_id = ?", id).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) ListEnrolled(ctx context.Context, userID string, filter CourseFilter) ([]model.Course, error) {
	var courses []model.Course

	db := r.db.WithContext(ctx).
		Joins("JOIN enrollments e ON e.course_id = courses.course_id").
		Where("e.user_id = ?", userID)

	if q := strings.TrimSpace(filter.Query); q != "" {
		db = db.Where("courses.title ILIKE ?", "%"+q+"%")
	}
	if filter.CourseType != "" {
		db = db.Where("courses.course_type = ?", filter.CourseType)
	}

	err := preloadCourseItems(db).
		Order("courses.title ASC").
		Find(&courses).Error
	return courses, err
}
