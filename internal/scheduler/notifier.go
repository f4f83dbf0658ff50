package scheduler

import "go.uber.org/zap"

// Level 通知级别
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notifier 非阻塞的用户通知（toast）
type Notifier interface {
	Notify(level Level, message string)
}

// LogNotifier 将用户通知写入 zap 日志
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier 创建 LogNotifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(level Level, message string) {
	switch level {
	case LevelError:
		n.logger.Warn("排课通知", zap.String("level", string(level)), zap.String("message", message))
	default:
		n.logger.Info("排课通知", zap.String("level", string(level)), zap.String("message", message))
	}
}
