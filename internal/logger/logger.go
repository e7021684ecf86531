// Package logger 提供统一的日志工具
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

// Level 日志级别
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel 解析日志级别字符串，无法识别时返回 INFO
func ParseLevel(s string) Level {
	switch s {
	case "DEBUG", "debug":
		return DEBUG
	case "INFO", "info":
		return INFO
	case "WARN", "warn", "WARNING", "warning":
		return WARN
	case "ERROR", "error":
		return ERROR
	default:
		return INFO
	}
}

// sink 同一棵 logger 树共享的输出端
type sink struct {
	mu      sync.Mutex
	level   Level
	enabled bool
	console io.Writer
	fileOut *os.File
	out     *log.Logger
}

// Logger 日志记录器
// Named 派生的子 logger 与父 logger 共享级别和输出
type Logger struct {
	sink *sink
	name string
}

// 全局默认 logger
var defaultLogger = New()

// New 创建新的 Logger 实例，默认输出到 stderr，stdout 留给调用方
func New() *Logger {
	return &Logger{
		sink: &sink{
			level:   INFO,
			enabled: true,
			console: os.Stderr,
			out:     log.New(os.Stderr, "", 0),
		},
	}
}

// Default 获取默认 logger
func Default() *Logger {
	return defaultLogger
}

// Named 返回带组件名前缀的子 logger
func (l *Logger) Named(name string) *Logger {
	if l.name != "" {
		name = l.name + "/" + name
	}
	return &Logger{sink: l.sink, name: name}
}

// SetLevel 设置日志级别
func (l *Logger) SetLevel(level Level) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.level = level
}

// SetEnabled 设置是否启用日志
func (l *Logger) SetEnabled(enabled bool) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.enabled = enabled
}

// SetConsole 设置控制台输出目标，nil 表示关闭控制台输出
func (l *Logger) SetConsole(w io.Writer) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.console = w
	l.sink.updateOutput()
}

// SetFile 设置是否追加输出到文件
func (l *Logger) SetFile(enabled bool, path string) error {
	s := l.sink
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fileOut != nil {
		s.fileOut.Close()
		s.fileOut = nil
	}

	if enabled && path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			s.updateOutput()
			return fmt.Errorf("无法打开日志文件: %w", err)
		}
		s.fileOut = f
	}

	s.updateOutput()
	return nil
}

func (s *sink) updateOutput() {
	var writers []io.Writer
	if s.console != nil {
		writers = append(writers, s.console)
	}
	if s.fileOut != nil {
		writers = append(writers, s.fileOut)
	}

	switch len(writers) {
	case 0:
		s.out.SetOutput(io.Discard)
	case 1:
		s.out.SetOutput(writers[0])
	default:
		s.out.SetOutput(io.MultiWriter(writers...))
	}
}

// Enabled 判断指定级别是否会被输出
func (l *Logger) Enabled(level Level) bool {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	return l.sink.enabled && level >= l.sink.level
}

func (l *Logger) log(level Level, format string, args ...interface{}) {
	s := l.sink
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled || level < s.level {
		return
	}

	timestamp := time.Now().Format("15:04:05")
	msg := fmt.Sprintf(format, args...)
	if l.name != "" {
		s.out.Printf("%s | %-5s | %s | %s", timestamp, level.String(), l.name, msg)
		return
	}
	s.out.Printf("%s | %-5s | %s", timestamp, level.String(), msg)
}

// Debug 输出 DEBUG 级别日志
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(DEBUG, format, args...)
}

// Info 输出 INFO 级别日志
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(INFO, format, args...)
}

// Warn 输出 WARN 级别日志
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(WARN, format, args...)
}

// Error 输出 ERROR 级别日志
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(ERROR, format, args...)
}

// LogEvent 记录一次定位事件
// 未找到不是错误，用 MISS 标记并以 INFO 输出
func (l *Logger) LogEvent(category string, found bool, elapsedMs float64, detail string) {
	status := "HIT "
	if !found {
		status = "MISS"
	}
	l.Info("%-4s | %s | %6.1fms | %s", category, status, elapsedMs, detail)
}

// Close 关闭日志文件
func (l *Logger) Close() error {
	s := l.sink
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fileOut != nil {
		err := s.fileOut.Close()
		s.fileOut = nil
		s.updateOutput()
		return err
	}
	return nil
}

// 包级别便捷函数
func Debug(format string, args ...interface{}) { defaultLogger.Debug(format, args...) }
func Info(format string, args ...interface{})  { defaultLogger.Info(format, args...) }
func Warn(format string, args ...interface{})  { defaultLogger.Warn(format, args...) }
func Error(format string, args ...interface{}) { defaultLogger.Error(format, args...) }
