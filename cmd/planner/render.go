package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"tudva/backend/internal/scheduler"
)

// renderGrid 以表格输出网格：行是日期，列是时段
func renderGrid(w io.Writer, grid *scheduler.Grid, occ scheduler.Occupancy, store *scheduler.Store, weeks int) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	catalog := grid.Catalog()
	header := []string{"日期"}
	for _, s := range catalog {
		header = append(header, fmt.Sprintf("%s %s-%s", s.DisplayName, s.StartTime, s.EndTime))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	dates := grid.Dates()
	if weeks > 0 && weeks < len(dates) {
		dates = dates[:weeks]
	}
	for _, d := range dates {
		label := d.Label
		if d.IsToday {
			label += " (今天)"
		}
		row := []string{label}
		for _, s := range catalog {
			row = append(row, cellLabel(store.CellItems(d.Date, s.ID), occ.HasTypeConflict(d.Date, s.ID)))
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
}

func cellLabel(items []scheduler.PlacedItem, conflict bool) string {
	if len(items) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, itemLabel(it))
	}
	label := strings.Join(parts, " / ")
	if conflict {
		label = "! " + label
	}
	return label
}

func itemLabel(it scheduler.PlacedItem) string {
	if it.Type == scheduler.CourseTypeLive {
		return fmt.Sprintf("[直播] %s [%s]", it.CourseTitle, shortID(it.ID))
	}
	return fmt.Sprintf("%s 第%d/%d课 [%s]", it.CourseTitle, it.LessonNumber, it.TotalLessons, shortID(it.ID))
}

// shortID 截断 UUID 便于阅读；move/remove 接受唯一前缀
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// renderPanel 输出可排课程；已排入网格的课时标记为锁定
func renderPanel(w io.Writer, panel *scheduler.Panel) {
	courses := panel.Courses()
	if len(courses) == 0 {
		fmt.Fprintln(w, "没有可排的课程")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	for _, c := range courses {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ID, c.Type, c.Title)
		if c.Type == scheduler.CourseTypeLive && c.LiveCourseMeta != nil {
			for _, s := range c.LiveCourseMeta.TimeSlots {
				fmt.Fprintf(tw, "  %s\t%s %s\t%s\n", s.ID, s.Date, s.SlotID, s.Title)
			}
			continue
		}
		for _, l := range panel.Lessons(c.ID) {
			mark := ""
			if l.Locked {
				mark = " (已排)"
			}
			fmt.Fprintf(tw, "  %s\t第%d/%d课\t%s%s\n", l.ID, l.LessonNumber, l.TotalLessons, l.Title, mark)
		}
	}
}

// renderCourseOrder 输出录播课重排后的课时顺序
func renderCourseOrder(w io.Writer, store *scheduler.Store, courseID string) {
	items := store.ItemsForCourse(courseID, scheduler.CourseTypeRecorded)
	sort.Slice(items, func(i, j int) bool { return items[i].LessonNumber < items[j].LessonNumber })
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()
	for _, it := range items {
		fmt.Fprintf(tw, "第%d课\t%s %s\t%s\t%s\n", it.LessonNumber, it.Date, it.SlotID, it.Title, it.ID)
	}
}
