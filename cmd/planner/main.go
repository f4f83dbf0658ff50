// planner 是学生周课表的命令行客户端：通过 REST 接口驱动排课引擎。
//
//	planner [全局参数] <命令> [参数]
//
// 命令：grid | panel | place | move | remove | add-live | reorder | export
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"tudva/backend/config"
	applogger "tudva/backend/pkg/logger"
)

const usage = `用法: planner [全局参数] <命令> [参数]

命令:
  grid                               显示课表网格
  panel [--query q] [--type t]       显示可排课程
  place <courseId> <lessonId> <date> <slotId>
                                     将录播课时排入单元格
  move <itemId> <date> <slotId>      调整已排条目
  remove <itemId>                    移除已排条目
  add-live <courseId>                排入直播课的全部场次
  reorder <courseId>                 按网格位置重排录播课时编号
  export [-o file]                   导出课表 Excel

全局参数:
`

func main() {
	global := pflag.NewFlagSet("planner", pflag.ContinueOnError)
	global.SetInterspersed(false)
	configPath := global.StringP("config", "c", "", "配置文件路径")
	baseURL := global.String("base-url", "", "后端地址，覆盖 client.base_url")
	email := global.StringP("email", "e", "", "登录邮箱，覆盖 client.email")
	password := global.StringP("password", "p", "", "登录密码，覆盖 client.password")
	noCache := global.Bool("no-cache", false, "不使用 Redis 快照缓存")
	verbose := global.BoolP("verbose", "v", false, "输出调试日志")
	global.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		global.PrintDefaults()
	}

	if err := global.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		os.Exit(2)
	}
	if global.NArg() == 0 {
		global.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadClient(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	if *baseURL != "" {
		cfg.Client.BaseURL = *baseURL
	}
	if *email != "" {
		cfg.Client.Email = *email
	}
	if *password != "" {
		cfg.Client.Password = *password
	}
	cfg.Log.Level = "warn"
	if *verbose {
		cfg.Log.Level = "debug"
	}
	cfg.Log.Format = "console"

	logger, err := applogger.NewLogger(&cfg.Log, "tudva-planner")
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, cfg, !*noCache, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "启动失败: %v\n", err)
		os.Exit(1)
	}
	defer app.close()

	if err := app.run(ctx, global.Arg(0), global.Args()[1:]); err != nil {
		logger.Debug("命令失败", zap.String("command", global.Arg(0)), zap.Error(err))
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
