// 日志管理器
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/GemachDAO/openclaw/internal/config"
)

const timestampFormat = "2006-01-02 15:04:05.000"

// LoggerManager 日志管理器
type LoggerManager struct {
	logger *logrus.Logger
	config *config.LogConfig
}

// LoggerInstance 全局日志实例，未初始化时所有便捷方法均为空操作
var LoggerInstance *LoggerManager

// InitLogger 根据配置初始化 logrus 实例并设置为全局实例
func InitLogger(cfg *config.LogConfig) (*LoggerManager, error) {
	lm, err := NewLogger(cfg)
	if err != nil {
		return nil, err
	}
	LoggerInstance = lm
	return lm, nil
}

// NewLogger 创建日志管理器但不修改全局实例
// 级别非法时回退到 info，格式或输出非法时返回错误
func NewLogger(cfg *config.LogConfig) (*LoggerManager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("log config cannot be nil")
	}

	l := logrus.New()
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
		l.Warnf("Invalid log level '%s', using 'info' as default", cfg.Level)
	}

	formatter, err := newFormatter(cfg.Format)
	if err != nil {
		return nil, err
	}
	out, err := newOutput(cfg)
	if err != nil {
		return nil, err
	}

	l.SetLevel(level)
	l.SetFormatter(formatter)
	l.SetOutput(out)
	l.SetReportCaller(cfg.Caller)
	return &LoggerManager{logger: l, config: cfg}, nil
}

func newFormatter(format string) (logrus.Formatter, error) {
	switch strings.ToLower(format) {
	case "json":
		return &logrus.JSONFormatter{
			TimestampFormat: timestampFormat,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "timestamp",
				logrus.FieldKeyMsg:  "message",
			},
		}, nil
	case "text", "":
		return &logrus.TextFormatter{TimestampFormat: timestampFormat, FullTimestamp: true}, nil
	default:
		return nil, fmt.Errorf("unsupported log format: %s", format)
	}
}

// newOutput 标准输出留给报告内容，默认写 stderr
func newOutput(cfg *config.LogConfig) (io.Writer, error) {
	switch strings.ToLower(cfg.Output) {
	case "stdout":
		return os.Stdout, nil
	case "stderr", "":
		return os.Stderr, nil
	case "file":
		if cfg.FilePath == "" {
			return nil, fmt.Errorf("file path is required when output is file")
		}
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		return &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize, // MB
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge, // 天
			Compress:   cfg.Compress,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported log output: %s", cfg.Output)
	}
}

// GetLogger 获取 logrus 实例
func (lm *LoggerManager) GetLogger() *logrus.Logger {
	return lm.logger
}

// UpdateConfig 配置文件热加载时调用
// 新配置整体校验通过后才生效，输出目标未变化时沿用原有 writer
func (lm *LoggerManager) UpdateConfig(newCfg *config.LogConfig) error {
	if newCfg == nil {
		return fmt.Errorf("new config cannot be nil")
	}

	level, err := logrus.ParseLevel(newCfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	formatter, err := newFormatter(newCfg.Format)
	if err != nil {
		return err
	}
	out := lm.logger.Out
	if newCfg.Output != lm.config.Output || newCfg.FilePath != lm.config.FilePath {
		if out, err = newOutput(newCfg); err != nil {
			return err
		}
	}

	lm.logger.SetLevel(level)
	lm.logger.SetFormatter(formatter)
	lm.logger.SetOutput(out)
	lm.logger.SetReportCaller(newCfg.Caller)
	lm.config = newCfg
	return nil
}

// 便捷方法：使用全局日志实例

func Debugf(format string, args ...interface{}) {
	if LoggerInstance != nil {
		LoggerInstance.logger.Debugf(format, args...)
	}
}

func Infof(format string, args ...interface{}) {
	if LoggerInstance != nil {
		LoggerInstance.logger.Infof(format, args...)
	}
}

func Warnf(format string, args ...interface{}) {
	if LoggerInstance != nil {
		LoggerInstance.logger.Warnf(format, args...)
	}
}

func Errorf(format string, args ...interface{}) {
	if LoggerInstance != nil {
		LoggerInstance.logger.Errorf(format, args...)
	}
}

// WithField 未初始化时返回丢弃输出的 entry
func WithField(key string, value interface{}) *logrus.Entry {
	if LoggerInstance != nil {
		return LoggerInstance.logger.WithField(key, value)
	}
	return logrus.NewEntry(discardLogger).WithField(key, value)
}

var discardLogger = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}()
