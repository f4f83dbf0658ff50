package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"tudva/backend/config"
	"tudva/backend/internal/scheduler"
	"tudva/backend/pkg/redis"
	"tudva/backend/pkg/schedclient"
)

var errUsage = errors.New("参数错误，使用 --help 查看用法")

// app 一次命令执行所需的全部组件
type app struct {
	client *schedclient.Client
	engine *scheduler.Scheduler
	cache  *redis.Client
	out    io.Writer
	logger *zap.Logger
}

func newApp(ctx context.Context, cfg *config.Config, useCache bool, logger *zap.Logger) (*app, error) {
	weekday, err := config.ParseWeekday(cfg.Scheduler.Weekday)
	if err != nil {
		return nil, err
	}

	client := schedclient.New(&cfg.Client, logger)
	if cfg.Client.Email == "" || cfg.Client.Password == "" {
		return nil, errors.New("缺少登录邮箱或密码（--email/--password 或 client.email/client.password）")
	}
	if err := client.Login(ctx, cfg.Client.Email, cfg.Client.Password); err != nil {
		return nil, fmt.Errorf("登录失败: %w", err)
	}

	catalog, err := client.TimeSlots(ctx)
	if err != nil || len(catalog) == 0 {
		logger.Warn("获取时段目录失败，使用内置目录", zap.Error(err))
		catalog = scheduler.DefaultCatalog()
	}

	a := &app{client: client, out: os.Stdout, logger: logger}

	opts := scheduler.Options{
		Catalog:     catalog,
		Weekday:     weekday,
		Occurrences: cfg.Scheduler.Occurrences,
		Location:    cfg.Scheduler.Location(),
		Notifier:    newConsoleNotifier(os.Stderr),
	}
	// Redis 为可选项：连接失败时不使用快照缓存
	if useCache {
		rdb, err := redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis 不可用，跳过快照缓存", zap.Error(err))
		} else {
			a.cache = rdb
			opts.Cache = rdb
			opts.CacheKey = strings.ToLower(cfg.Client.Email)
		}
	}

	a.engine = scheduler.New(client, opts, logger)
	return a, nil
}

func (a *app) close() {
	if a.cache != nil {
		a.cache.Close()
	}
}

// run 分派子命令
func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "grid":
		return a.cmdGrid(ctx, args)
	case "panel":
		return a.cmdPanel(ctx, args)
	case "place":
		return a.cmdPlace(ctx, args)
	case "move":
		return a.cmdMove(ctx, args)
	case "remove":
		return a.cmdRemove(ctx, args)
	case "add-live":
		return a.cmdAddLive(ctx, args)
	case "reorder":
		return a.cmdReorder(ctx, args)
	case "export":
		return a.cmdExport(ctx, args)
	default:
		return fmt.Errorf("未知命令 %q: %w", cmd, errUsage)
	}
}
