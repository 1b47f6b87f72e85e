package rotate

import (
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger 基于lumberjack的滚动日志写入器，额外支持按时间间隔强制切割
type Logger struct {
	*lumberjack.Logger

	// Interval 强制切割间隔，0表示只按大小切割
	Interval time.Duration

	startOnce sync.Once
	stop      chan struct{}
}

// NewLogger 创建滚动日志写入器
func NewLogger() *Logger {
	return &Logger{
		Logger: &lumberjack.Logger{},
		stop:   make(chan struct{}),
	}
}

func (l *Logger) Write(p []byte) (n int, err error) {
	l.startOnce.Do(l.startRotateLoop)
	return l.Logger.Write(p)
}

// Close 停止时间切割协程并关闭底层文件
func (l *Logger) Close() error {
	select {
	case <-l.stop:
	default:
		close(l.stop)
	}
	return l.Logger.Close()
}

func (l *Logger) startRotateLoop() {
	if l.Interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(l.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				// 忽略切割错误，下一个周期重试
				_ = l.Rotate()
			case <-l.stop:
				return
			}
		}
	}()
}
