package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"tudva/backend/config"
	"tudva/backend/internal/dto"
	"tudva/backend/internal/model"
	"tudva/backend/internal/repository"
	pkgerrors "tudva/backend/pkg/errors"
)

// ── 学生课表模块业务错误 ──

var (
	ErrInvalidDate           = errors.New("日期格式错误，应为 YYYY-MM-DD")
	ErrWrongWeekday          = errors.New("该日期不在可排课的星期")
	ErrSlotNotFound          = errors.New("时段不存在")
	ErrCourseNotFound        = errors.New("课程不存在")
	ErrNotEnrolled           = errors.New("尚未购买该课程")
	ErrItemNotInCourse       = errors.New("课时不属于该课程")
	ErrTypeMismatch          = errors.New("条目类型与课程类型不一致")
	ErrNotLiveCourse         = errors.New("该课程不是直播课")
	ErrNoLiveSessions        = errors.New("该直播课暂无场次")
	ErrLiveSessionFixed      = errors.New("直播场次的时间由课程固定，不可更改")
	ErrLiveImmovable         = errors.New("直播课场次不可调整时间")
	ErrAlreadyScheduled      = errors.New("该课时已排入课表")
	ErrLiveAlreadyScheduled  = errors.New("该直播课的全部场次均已排入课表")
	ErrCellOccupied          = errors.New("该时段已被占用，请选择其他时段")
	ErrLiveSlotConflict      = errors.New("录播课不能排在直播课所在的时段")
	ErrScheduledItemNotFound = errors.New("排课条目不存在")
	ErrEmptyUpdate           = errors.New("请提供新的日期与时段，或设置 remove")
	ErrInvalidOrder          = errors.New("顺序列表包含无效或重复的条目")
)

const dateLayout = "2006-01-02"

// SchedulerService 学生周课表业务接口
//
// 服务端是课表的唯一数据源，客户端每次变更后整体重新拉取。
// 单元格规则：同一 (用户, 日期, 时段) 内同类型至多一个条目，录播课不能加入已有直播课的单元格。
type SchedulerService interface {
	GetSchedule(ctx context.Context, userID string) (*dto.ScheduleResponse, error)
	ListAvailableCourses(ctx context.Context, userID string, req *dto.AvailableCoursesRequest) (*dto.AvailableCoursesResponse, error)
	AddCourseItem(ctx context.Context, userID string, req *dto.AddCourseItemRequest) (*dto.ScheduledItemResponse, error)
	AddLiveCourse(ctx context.Context, userID, courseID string) (*dto.ScheduleResponse, error)
	UpdateScheduledItem(ctx context.Context, userID, itemID string, req *dto.UpdateScheduledItemRequest) error
	UpdateItemsOrder(ctx context.Context, userID string, req *dto.UpdateItemsOrderRequest) error
}

type schedulerService struct {
	cfg    *config.SchedulerConfig
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSchedulerService 创建 SchedulerService 实例
func NewSchedulerService(cfg *config.SchedulerConfig, repo *repository.Repository, logger *zap.Logger) SchedulerService {
	return &schedulerService{cfg: cfg, repo: repo, logger: logger}
}

// ════════════════════════════════════════════════════════════
// 查询
// ════════════════════════════════════════════════════════════

func (s *schedulerService) GetSchedule(ctx context.Context, userID string) (*dto.ScheduleResponse, error) {
	items, err := s.repo.ScheduledItem.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询课表失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	resp := &dto.ScheduleResponse{ScheduledItems: make([]dto.ScheduledItemResponse, 0, len(items))}
	for i := range items {
		resp.ScheduledItems = append(resp.ScheduledItems, toScheduledItemResponse(&items[i]))
	}
	return resp, nil
}

// ListAvailableCourses 已选且尚未全部排入课表的课程。
// 录播课返回完整课时列表（已排课时由客户端锁定），直播课返回固定场次。
func (s *schedulerService) ListAvailableCourses(ctx context.Context, userID string, req *dto.AvailableCoursesRequest) (*dto.AvailableCoursesResponse, error) {
	courses, err := s.repo.Course.ListEnrolled(ctx, userID, repository.CourseFilter{
		Query:      req.Query,
		CourseType: req.Type,
	})
	if err != nil {
		s.logger.Error("查询已选课程失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	items, err := s.repo.ScheduledItem.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询课表失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	scheduled := make(map[string]map[string]bool)
	for _, it := range items {
		if scheduled[it.CourseID] == nil {
			scheduled[it.CourseID] = make(map[string]bool)
		}
		scheduled[it.CourseID][it.ItemID] = true
	}

	resp := &dto.AvailableCoursesResponse{Courses: make([]dto.AvailableCourseResponse, 0, len(courses))}
	for i := range courses {
		c := &courses[i]
		total := len(c.Lessons)
		if c.IsLive() {
			total = len(c.LiveSessions)
		}
		// 无可排条目或已全部排入的课程不再出现在面板中
		if total == 0 || len(scheduled[c.CourseID]) >= total {
			continue
		}
		resp.Courses = append(resp.Courses, toAvailableCourseResponse(c))
	}
	return resp, nil
}

// ════════════════════════════════════════════════════════════
// 新增
// ════════════════════════════════════════════════════════════

func (s *schedulerService) AddCourseItem(ctx context.Context, userID string, req *dto.AddCourseItemRequest) (*dto.ScheduledItemResponse, error) {
	date, err := s.parseScheduleDate(req.Date)
	if err != nil {
		return nil, err
	}
	if err := s.ensureSlot(ctx, req.SlotID); err != nil {
		return nil, err
	}

	course, err := s.loadEnrolledCourse(ctx, userID, req.CourseID)
	if err != nil {
		return nil, err
	}
	if course.CourseType != req.Type {
		return nil, ErrTypeMismatch
	}

	item := &model.ScheduledItem{
		UserID:       userID,
		CourseID:     course.CourseID,
		ItemID:       req.ItemID,
		ItemType:     course.CourseType,
		ScheduleDate: date,
		SlotID:       req.SlotID,
	}

	if course.IsLive() {
		session := findSession(course, req.ItemID)
		if session == nil {
			return nil, ErrItemNotInCourse
		}
		if session.SessionDate.Format(dateLayout) != req.Date || session.SlotID != req.SlotID {
			return nil, ErrLiveSessionFixed
		}
		item.Title = session.Title
		item.LessonNumber = session.Position
		item.TotalLessons = len(course.LiveSessions)
	} else {
		idx := findLesson(course, req.ItemID)
		if idx < 0 {
			return nil, ErrItemNotInCourse
		}
		lesson := course.Lessons[idx]
		item.Title = lesson.Title
		item.ModuleTitle = lesson.ModuleTitle
		item.LessonNumber = idx + 1
		if req.LessonNumber > 0 {
			item.LessonNumber = req.LessonNumber
		}
		item.TotalLessons = len(course.Lessons)
	}

	existing, err := s.repo.ScheduledItem.ListByCourse(ctx, userID, course.CourseID)
	if err != nil {
		s.logger.Error("查询课程排课失败", zap.String("course_id", course.CourseID), zap.Error(err))
		return nil, err
	}
	for _, e := range existing {
		if e.ItemID == req.ItemID {
			return nil, ErrAlreadyScheduled
		}
	}

	if err := s.checkCell(ctx, userID, date, req.SlotID, item.ItemType, ""); err != nil {
		return nil, err
	}

	if err := s.repo.ScheduledItem.Create(ctx, item); err != nil {
		return nil, s.translateWriteError("新增排课失败", err)
	}
	item.Course = course

	s.logger.Info("新增排课",
		zap.String("user_id", userID),
		zap.String("course_id", course.CourseID),
		zap.String("date", req.Date),
		zap.String("slot_id", req.SlotID))

	resp := toScheduledItemResponse(item)
	return &resp, nil
}

// AddLiveCourse 一次性排入直播课尚未排入的全部固定场次
func (s *schedulerService) AddLiveCourse(ctx context.Context, userID, courseID string) (*dto.ScheduleResponse, error) {
	course, err := s.loadEnrolledCourse(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	if !course.IsLive() {
		return nil, ErrNotLiveCourse
	}
	if len(course.LiveSessions) == 0 {
		return nil, ErrNoLiveSessions
	}

	existing, err := s.repo.ScheduledItem.ListByCourse(ctx, userID, courseID)
	if err != nil {
		s.logger.Error("查询课程排课失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	done := make(map[string]bool, len(existing))
	for _, e := range existing {
		done[e.ItemID] = true
	}

	var items []model.ScheduledItem
	for _, sess := range course.LiveSessions {
		if done[sess.SessionID] {
			continue
		}
		if err := s.checkCell(ctx, userID, sess.SessionDate, sess.SlotID, model.CourseTypeLive, ""); err != nil {
			return nil, fmt.Errorf("%s %s: %w", sess.SessionDate.Format(dateLayout), sess.SlotID, err)
		}
		items = append(items, model.ScheduledItem{
			UserID:       userID,
			CourseID:     courseID,
			ItemID:       sess.SessionID,
			ItemType:     model.CourseTypeLive,
			ScheduleDate: sess.SessionDate,
			SlotID:       sess.SlotID,
			LessonNumber: sess.Position,
			TotalLessons: len(course.LiveSessions),
			Title:        sess.Title,
		})
	}
	if len(items) == 0 {
		return nil, ErrLiveAlreadyScheduled
	}

	// 事务保证全部场次要么一起排入，要么都不排入
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)
	if err := txRepo.ScheduledItem.BatchCreate(ctx, items); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		return nil, s.translateWriteError("排入直播课失败", err)
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("排入直播课",
		zap.String("user_id", userID),
		zap.String("course_id", courseID),
		zap.Int("sessions", len(items)))

	resp := &dto.ScheduleResponse{ScheduledItems: make([]dto.ScheduledItemResponse, 0, len(items))}
	for i := range items {
		items[i].Course = course
		resp.ScheduledItems = append(resp.ScheduledItems, toScheduledItemResponse(&items[i]))
	}
	return resp, nil
}

// ════════════════════════════════════════════════════════════
// 调整
// ════════════════════════════════════════════════════════════

// UpdateScheduledItem 改期或移除。直播条目只能移除。
func (s *schedulerService) UpdateScheduledItem(ctx context.Context, userID, itemID string, req *dto.UpdateScheduledItemRequest) error {
	item, err := s.repo.ScheduledItem.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrScheduledItemNotFound
		}
		s.logger.Error("查询排课条目失败", zap.String("id", itemID), zap.Error(err))
		return err
	}
	// 他人的条目按不存在处理
	if item.UserID != userID {
		return ErrScheduledItemNotFound
	}

	if req.Remove {
		if err := s.repo.ScheduledItem.Delete(ctx, itemID); err != nil {
			s.logger.Error("移除排课失败", zap.String("id", itemID), zap.Error(err))
			return err
		}
		s.logger.Info("移除排课", zap.String("user_id", userID), zap.String("id", itemID))
		return nil
	}

	if req.NewDate == nil || req.NewSlotID == nil {
		return ErrEmptyUpdate
	}
	if item.ItemType == model.CourseTypeLive {
		return ErrLiveImmovable
	}

	date, err := s.parseScheduleDate(*req.NewDate)
	if err != nil {
		return err
	}
	if err := s.ensureSlot(ctx, *req.NewSlotID); err != nil {
		return err
	}

	if item.ScheduleDate.Format(dateLayout) == *req.NewDate && item.SlotID == *req.NewSlotID {
		return nil
	}

	if err := s.checkCell(ctx, userID, date, *req.NewSlotID, item.ItemType, item.ScheduledItemID); err != nil {
		return err
	}

	item.ScheduleDate = date
	item.SlotID = *req.NewSlotID
	if err := s.repo.ScheduledItem.Move(ctx, item); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return err
		}
		return s.translateWriteError("改期失败", err)
	}

	s.logger.Info("排课改期",
		zap.String("user_id", userID),
		zap.String("id", itemID),
		zap.String("date", *req.NewDate),
		zap.String("slot_id", *req.NewSlotID))
	return nil
}

// UpdateItemsOrder 按客户端给出的规范顺序将录播课的课时序号改写为 1..n
func (s *schedulerService) UpdateItemsOrder(ctx context.Context, userID string, req *dto.UpdateItemsOrderRequest) error {
	items, err := s.repo.ScheduledItem.ListByCourse(ctx, userID, req.CourseID)
	if err != nil {
		s.logger.Error("查询课程排课失败", zap.String("course_id", req.CourseID), zap.Error(err))
		return err
	}

	owned := make(map[string]string, len(items))
	recorded := 0
	for _, it := range items {
		owned[it.ScheduledItemID] = it.ItemType
		if it.ItemType == model.CourseTypeRecorded {
			recorded++
		}
	}

	seen := make(map[string]bool, len(req.OrderedItemIDs))
	for _, id := range req.OrderedItemIDs {
		typ, ok := owned[id]
		if !ok || typ != model.CourseTypeRecorded || seen[id] {
			return ErrInvalidOrder
		}
		seen[id] = true
	}
	// 必须覆盖课程的全部录播条目，否则未列出的条目会与 1..n 撞号
	if len(seen) != recorded {
		return ErrInvalidOrder
	}

	if err := s.repo.ScheduledItem.UpdateLessonNumbers(ctx, req.OrderedItemIDs); err != nil {
		s.logger.Error("更新课时顺序失败", zap.String("course_id", req.CourseID), zap.Error(err))
		return err
	}
	return nil
}

// ════════════════════════════════════════════════════════════
// 校验
// ════════════════════════════════════════════════════════════

// parseScheduleDate 解析 YYYY-MM-DD 并校验落在配置的星期
func (s *schedulerService) parseScheduleDate(raw string) (time.Time, error) {
	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	weekday, err := config.ParseWeekday(s.cfg.Weekday)
	if err != nil {
		return time.Time{}, err
	}
	if date.Weekday() != weekday {
		return time.Time{}, ErrWrongWeekday
	}
	return date, nil
}

func (s *schedulerService) ensureSlot(ctx context.Context, slotID string) error {
	if _, err := s.repo.TimeSlot.GetByID(ctx, slotID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSlotNotFound
		}
		s.logger.Error("查询时段失败", zap.String("slot_id", slotID), zap.Error(err))
		return err
	}
	return nil
}

func (s *schedulerService) loadEnrolledCourse(ctx context.Context, userID, courseID string) (*model.Course, error) {
	course, err := s.repo.Course.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}

	enrolled, err := s.repo.Enrollment.IsEnrolled(ctx, userID, courseID)
	if err != nil {
		s.logger.Error("查询选课记录失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	if !enrolled {
		return nil, ErrNotEnrolled
	}
	return course, nil
}

// checkCell 单元格排他性；exclude 为改期中的条目自身
func (s *schedulerService) checkCell(ctx context.Context, userID string, date time.Time, slotID, itemType, exclude string) error {
	occupants, err := s.repo.ScheduledItem.ListInCell(ctx, userID, date, slotID)
	if err != nil {
		s.logger.Error("查询单元格失败", zap.Error(err))
		return err
	}
	for _, o := range occupants {
		if o.ScheduledItemID == exclude {
			continue
		}
		if o.ItemType == itemType {
			return ErrCellOccupied
		}
		if itemType == model.CourseTypeRecorded && o.ItemType == model.CourseTypeLive {
			return ErrLiveSlotConflict
		}
	}
	return nil
}

// translateWriteError 并发写入命中唯一约束时按占用处理
func (s *schedulerService) translateWriteError(msg string, err error) error {
	if errors.Is(err, pkgerrors.ErrCellTaken) {
		return ErrCellOccupied
	}
	s.logger.Error(msg, zap.Error(err))
	return err
}

// ════════════════════════════════════════════════════════════
// 转换
// ════════════════════════════════════════════════════════════

func findLesson(course *model.Course, lessonID string) int {
	for i := range course.Lessons {
		if course.Lessons[i].LessonID == lessonID {
			return i
		}
	}
	return -1
}

func findSession(course *model.Course, sessionID string) *model.LiveSession {
	for i := range course.LiveSessions {
		if course.LiveSessions[i].SessionID == sessionID {
			return &course.LiveSessions[i]
		}
	}
	return nil
}

func toScheduledItemResponse(item *model.ScheduledItem) dto.ScheduledItemResponse {
	resp := dto.ScheduledItemResponse{
		ID:           item.ScheduledItemID,
		CourseID:     item.CourseID,
		ItemID:       item.ItemID,
		Type:         item.ItemType,
		Date:         item.ScheduleDate.Format(dateLayout),
		SlotID:       item.SlotID,
		LessonNumber: item.LessonNumber,
		TotalLessons: item.TotalLessons,
		Title:        item.Title,
		ModuleTitle:  item.ModuleTitle,
	}
	if item.Course != nil {
		resp.CourseTitle = item.Course.Title
		resp.BackgroundColorHex = item.Course.BackgroundColorHex
		resp.IconURL = item.Course.IconURL
	}
	return resp
}

func toAvailableCourseResponse(c *model.Course) dto.AvailableCourseResponse {
	resp := dto.AvailableCourseResponse{
		ID:                 c.CourseID,
		Title:              c.Title,
		Type:               c.CourseType,
		BackgroundColorHex: c.BackgroundColorHex,
		IconURL:            c.IconURL,
		IsEnrolled:         true,
		IsSellable:         c.IsSellable,
	}

	if c.IsLive() {
		meta := &dto.LiveCourseMetaResponse{TimeSlots: make([]dto.LiveSessionResponse, 0, len(c.LiveSessions))}
		for i, sess := range c.LiveSessions {
			if i == 0 {
				meta.StartDate = sess.SessionDate.Format(dateLayout)
			}
			meta.TimeSlots = append(meta.TimeSlots, dto.LiveSessionResponse{
				ID:     sess.SessionID,
				Title:  sess.Title,
				Date:   sess.SessionDate.Format(dateLayout),
				SlotID: sess.SlotID,
			})
		}
		resp.LiveCourseMeta = meta
		return resp
	}

	resp.AvailableLessons = make([]dto.AvailableLessonResponse, 0, len(c.Lessons))
	for i, l := range c.Lessons {
		resp.AvailableLessons = append(resp.AvailableLessons, dto.AvailableLessonResponse{
			ID:           l.LessonID,
			Title:        l.Title,
			ModuleTitle:  l.ModuleTitle,
			LessonNumber: i + 1,
			TotalLessons: len(c.Lessons),
		})
	}
	return resp
}
