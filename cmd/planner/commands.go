package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"tudva/backend/internal/scheduler"
)

// ── 查看 ──

func (a *app) cmdGrid(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("grid", pflag.ContinueOnError)
	weeks := fs.IntP("weeks", "w", 8, "显示的周数，0 表示全部")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	if err := a.engine.Start(ctx); err != nil {
		return err
	}
	renderGrid(a.out, a.engine.Grid, a.engine.Controller.Occupancy(), a.engine.Store, *weeks)
	return nil
}

func (a *app) cmdPanel(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("panel", pflag.ContinueOnError)
	query := fs.StringP("query", "q", "", "按课程标题筛选")
	typ := fs.StringP("type", "t", "", "课程类型 live|recorded")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	courseType := scheduler.CourseType(*typ)
	if *typ != "" && !courseType.Valid() {
		return fmt.Errorf("未知课程类型 %q: %w", *typ, errUsage)
	}

	if err := a.engine.Start(ctx); err != nil {
		return err
	}
	if err := a.engine.Panel.Search(ctx, *query, courseType); err != nil {
		return err
	}
	renderPanel(a.out, a.engine.Panel)
	return nil
}

// ── 变更 ──

func (a *app) cmdPlace(ctx context.Context, args []string) error {
	if len(args) != 4 {
		return errUsage
	}
	courseID, lessonID, date, slotID := args[0], args[1], args[2], args[3]

	if err := a.engine.Start(ctx); err != nil {
		return err
	}
	if err := a.engine.Panel.Open(ctx); err != nil {
		return err
	}
	ghost, err := a.engine.Panel.Ghost(courseID, lessonID)
	if err != nil {
		return err
	}
	if err := a.engine.Controller.PickUpFromPanel(ghost); err != nil {
		return err
	}
	return a.dropAt(ctx, date, slotID)
}

func (a *app) cmdMove(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return errUsage
	}
	date, slotID := args[1], args[2]

	if err := a.engine.Start(ctx); err != nil {
		return err
	}
	itemID, err := a.resolveItemID(args[0])
	if err != nil {
		return err
	}
	if err := a.engine.Controller.PickUpFromGrid(itemID); err != nil {
		return err
	}
	return a.dropAt(ctx, date, slotID)
}

// dropAt 悬停校验后放置，并输出结果
func (a *app) dropAt(ctx context.Context, date, slotID string) error {
	hover, err := a.engine.Controller.Hover(date, slotID)
	if err != nil {
		return err
	}
	if hover.TypeConflict {
		fmt.Fprintln(a.out, "提示: 该单元格同时包含直播与录播课")
	}

	res := a.engine.Controller.Drop(ctx, date, slotID)
	switch res.Outcome {
	case scheduler.DropAdded:
		fmt.Fprintf(a.out, "已排入 %s %s\n", date, slotID)
	case scheduler.DropMoved, scheduler.DropResolved:
		fmt.Fprintf(a.out, "已调整到 %s %s\n", date, slotID)
	case scheduler.DropRejected:
		return errors.New(res.Temporary.ErrorMessage)
	case scheduler.DropBlocked:
		return errors.New("录播课不能排在直播课所在的时段")
	case scheduler.DropCancelled:
		return fmt.Errorf("单元格 %s %s 不在课表网格内", date, slotID)
	case scheduler.DropFailed:
		return res.Err
	}
	return nil
}

func (a *app) cmdRemove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	if err := a.engine.Start(ctx); err != nil {
		return err
	}
	itemID, err := a.resolveItemID(args[0])
	if err != nil {
		return err
	}
	if err := a.engine.Controller.Remove(ctx, itemID); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "已移除")
	return nil
}

func (a *app) cmdAddLive(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	if err := a.engine.Start(ctx); err != nil {
		return err
	}
	if err := a.engine.Panel.Open(ctx); err != nil {
		return err
	}
	return a.engine.Panel.AddAllSessions(ctx, args[0])
}

func (a *app) cmdReorder(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	courseID := args[0]
	if err := a.engine.Start(ctx); err != nil {
		return err
	}
	if err := a.engine.Reconciler.Reconcile(ctx, courseID); err != nil {
		return err
	}
	renderCourseOrder(a.out, a.engine.Store, courseID)
	return nil
}

// resolveItemID 将 grid 输出的 ID 前缀还原为完整 ID
func (a *app) resolveItemID(prefix string) (string, error) {
	var match string
	for _, it := range a.engine.Store.Items() {
		if it.ID == prefix {
			return it.ID, nil
		}
		if strings.HasPrefix(it.ID, prefix) {
			if match != "" {
				return "", fmt.Errorf("ID 前缀 %q 不唯一", prefix)
			}
			match = it.ID
		}
	}
	if match == "" {
		return "", scheduler.ErrItemNotFound
	}
	return match, nil
}

// ── 导出 ──

func (a *app) cmdExport(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("export", pflag.ContinueOnError)
	output := fs.StringP("output", "o", "", "输出文件，默认使用服务端文件名")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	data, name, err := a.client.Export(ctx)
	if err != nil {
		return err
	}
	path := *output
	if path == "" {
		path = filepath.Base(name)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入文件失败: %w", err)
	}
	fmt.Fprintf(a.out, "已导出到 %s\n", path)
	return nil
}
