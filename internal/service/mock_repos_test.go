package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"tudva/backend/internal/model"
	"tudva/backend/internal/repository"
	pkgerrors "tudva/backend/pkg/errors"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User // key: user_id 或 email:<email>
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = "user-" + user.Email
	}
	m.users[user.UserID] = user
	m.users["email:"+strings.ToLower(user.Email)] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	if u, ok := m.users["email:"+strings.ToLower(email)]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock EnrollmentRepository ──

type mockEnrollmentRepo struct {
	enrolled map[string]bool // key: user_id|course_id
}

func newMockEnrollmentRepo() *mockEnrollmentRepo {
	return &mockEnrollmentRepo{enrolled: make(map[string]bool)}
}

func (m *mockEnrollmentRepo) IsEnrolled(_ context.Context, userID, courseID string) (bool, error) {
	return m.enrolled[userID+"|"+courseID], nil
}

func (m *mockEnrollmentRepo) Create(_ context.Context, e *model.Enrollment) error {
	m.enrolled[e.UserID+"|"+e.CourseID] = true
	return nil
}

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	courses     map[string]*model.Course
	enrollments *mockEnrollmentRepo
}

func newMockCourseRepo(enrollments *mockEnrollmentRepo) *mockCourseRepo {
	return &mockCourseRepo{courses: make(map[string]*model.Course), enrollments: enrollments}
}

func (m *mockCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	if c, ok := m.courses[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) ListEnrolled(_ context.Context, userID string, filter repository.CourseFilter) ([]model.Course, error) {
	var result []model.Course
	for _, c := range m.courses {
		if !m.enrollments.enrolled[userID+"|"+c.CourseID] {
			continue
		}
		if filter.CourseType != "" && c.CourseType != filter.CourseType {
			continue
		}
		if filter.Query != "" && !strings.Contains(strings.ToLower(c.Title), strings.ToLower(filter.Query)) {
			continue
		}
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Title < result[j].Title })
	return result, nil
}

// ── Mock TimeSlotRepository ──

type mockTimeSlotRepo struct {
	slots []model.TimeSlot
}

func newMockTimeSlotRepo() *mockTimeSlotRepo {
	m := &mockTimeSlotRepo{}
	for i := 0; i < 6; i++ {
		m.slots = append(m.slots, model.TimeSlot{
			SlotID:      fmt.Sprintf("slot_%d", i+1),
			DisplayName: fmt.Sprintf("第%d时段", i+1),
			StartTime:   fmt.Sprintf("%02d:00", 8+2*i),
			EndTime:     fmt.Sprintf("%02d:00", 10+2*i),
			SortOrder:   i + 1,
		})
	}
	return m
}

func (m *mockTimeSlotRepo) GetByID(_ context.Context, id string) (*model.TimeSlot, error) {
	for i := range m.slots {
		if m.slots[i].SlotID == id {
			return &m.slots[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTimeSlotRepo) List(_ context.Context) ([]model.TimeSlot, error) {
	return m.slots, nil
}

// ── Mock ScheduledItemRepository ──
// 模拟两条唯一约束：(user, course, item) 与 (user, date, slot, type)

type mockScheduledItemRepo struct {
	items   []*model.ScheduledItem
	courses *mockCourseRepo
	nextID  int

	createErr error
	orders    [][]string
}

func newMockScheduledItemRepo(courses *mockCourseRepo) *mockScheduledItemRepo {
	return &mockScheduledItemRepo{courses: courses}
}

func (m *mockScheduledItemRepo) violates(item *model.ScheduledItem) bool {
	for _, e := range m.items {
		if e.ScheduledItemID == item.ScheduledItemID {
			continue
		}
		if e.UserID != item.UserID {
			continue
		}
		if e.CourseID == item.CourseID && e.ItemID == item.ItemID {
			return true
		}
		if e.ScheduleDate.Equal(item.ScheduleDate) && e.SlotID == item.SlotID && e.ItemType == item.ItemType {
			return true
		}
	}
	return false
}

func (m *mockScheduledItemRepo) Create(_ context.Context, item *model.ScheduledItem) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.violates(item) {
		return pkgerrors.ErrCellTaken
	}
	m.nextID++
	if item.ScheduledItemID == "" {
		item.ScheduledItemID = fmt.Sprintf("si-%d", m.nextID)
	}
	item.Version = 1
	cp := *item
	cp.Course = nil
	m.items = append(m.items, &cp)
	return nil
}

func (m *mockScheduledItemRepo) BatchCreate(ctx context.Context, items []model.ScheduledItem) error {
	for i := range items {
		if err := m.Create(ctx, &items[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockScheduledItemRepo) attach(item model.ScheduledItem) model.ScheduledItem {
	if c, ok := m.courses.courses[item.CourseID]; ok {
		item.Course = c
	}
	return item
}

func (m *mockScheduledItemRepo) GetByID(_ context.Context, id string) (*model.ScheduledItem, error) {
	for _, it := range m.items {
		if it.ScheduledItemID == id {
			cp := m.attach(*it)
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScheduledItemRepo) ListByUser(_ context.Context, userID string) ([]model.ScheduledItem, error) {
	var result []model.ScheduledItem
	for _, it := range m.items {
		if it.UserID == userID {
			result = append(result, m.attach(*it))
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].ScheduleDate.Equal(result[j].ScheduleDate) {
			return result[i].ScheduleDate.Before(result[j].ScheduleDate)
		}
		return result[i].SlotID < result[j].SlotID
	})
	return result, nil
}

func (m *mockScheduledItemRepo) ListByCourse(_ context.Context, userID, courseID string) ([]model.ScheduledItem, error) {
	var result []model.ScheduledItem
	for _, it := range m.items {
		if it.UserID == userID && it.CourseID == courseID {
			result = append(result, *it)
		}
	}
	return result, nil
}

func (m *mockScheduledItemRepo) ListInCell(_ context.Context, userID string, date time.Time, slotID string) ([]model.ScheduledItem, error) {
	var result []model.ScheduledItem
	for _, it := range m.items {
		if it.UserID == userID && it.ScheduleDate.Equal(date) && it.SlotID == slotID {
			result = append(result, *it)
		}
	}
	return result, nil
}

func (m *mockScheduledItemRepo) Move(_ context.Context, item *model.ScheduledItem) error {
	for _, it := range m.items {
		if it.ScheduledItemID != item.ScheduledItemID {
			continue
		}
		if it.Version != item.Version {
			return pkgerrors.ErrOptimisticLock
		}
		if m.violates(item) {
			return pkgerrors.ErrCellTaken
		}
		it.ScheduleDate = item.ScheduleDate
		it.SlotID = item.SlotID
		it.Version++
		item.Version = it.Version
		return nil
	}
	return pkgerrors.ErrOptimisticLock
}

func (m *mockScheduledItemRepo) Delete(_ context.Context, id string) error {
	for i, it := range m.items {
		if it.ScheduledItemID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *mockScheduledItemRepo) UpdateLessonNumbers(_ context.Context, orderedIDs []string) error {
	m.orders = append(m.orders, append([]string(nil), orderedIDs...))
	for n, id := range orderedIDs {
		for _, it := range m.items {
			if it.ScheduledItemID == id {
				it.LessonNumber = n + 1
				it.Version++
			}
		}
	}
	return nil
}

// ── 聚合 ──

type mockRepos struct {
	user       *mockUserRepo
	course     *mockCourseRepo
	enrollment *mockEnrollmentRepo
	timeSlot   *mockTimeSlotRepo
	items      *mockScheduledItemRepo
}

func newMockRepos() (*repository.Repository, *mockRepos) {
	enrollments := newMockEnrollmentRepo()
	courses := newMockCourseRepo(enrollments)
	m := &mockRepos{
		user:       newMockUserRepo(),
		course:     courses,
		enrollment: enrollments,
		timeSlot:   newMockTimeSlotRepo(),
		items:      newMockScheduledItemRepo(courses),
	}
	return m.repository(), m
}

// repository 以同一组 mock 重新组装聚合
func (m *mockRepos) repository() *repository.Repository {
	return &repository.Repository{
		User:          m.user,
		Course:        m.course,
		Enrollment:    m.enrollment,
		TimeSlot:      m.timeSlot,
		ScheduledItem: m.items,
	}
}
