// Package config 负责加载和管理 openclaw 的配置
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config 顶层配置
type Config struct {
	// 应用配置
	App *AppConfig `yaml:"app" mapstructure:"app"`

	// 日志配置
	Log *LogConfig `yaml:"log" mapstructure:"log"`

	// 限速配置
	RateLimit *RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`

	// 报告输出配置
	Output *OutputConfig `yaml:"output" mapstructure:"output"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name        string `yaml:"name" mapstructure:"name"`               // 应用名称
	Environment string `yaml:"environment" mapstructure:"environment"` // 运行环境
	Debug       bool   `yaml:"debug" mapstructure:"debug"`             // 调试模式
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `yaml:"level" mapstructure:"level"`             // 日志级别 (debug/info/warn/error)
	Format     string `yaml:"format" mapstructure:"format"`           // 日志格式 (json/text)
	Output     string `yaml:"output" mapstructure:"output"`           // 日志输出 (stdout/stderr/file)
	FilePath   string `yaml:"file_path" mapstructure:"file_path"`     // 日志文件路径
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"`       // 最大文件大小（MB）
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"` // 最大备份数
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"`         // 最大保留天数
	Compress   bool   `yaml:"compress" mapstructure:"compress"`       // 是否压缩
	Caller     bool   `yaml:"caller" mapstructure:"caller"`           // 是否显示调用者信息
}

// RateLimitConfig 扫描器限速配置
// 优先级：overrides 中的工具级配置 > max_requests_per_second > 内置默认值
type RateLimitConfig struct {
	Enabled              bool              `yaml:"enabled" mapstructure:"enabled"`                                 // 是否注入限速参数
	MaxRequestsPerSecond int               `yaml:"max_requests_per_second" mapstructure:"max_requests_per_second"` // 全局每秒请求数，0 表示未设置
	Overrides            map[string]string `yaml:"overrides" mapstructure:"overrides"`                             // 工具名 -> 完整的参数字符串
}

// OutputConfig 报告输出配置
type OutputConfig struct {
	Format string `yaml:"format" mapstructure:"format"` // markdown/table/json/yaml/csv
}

// 支持的取值
var (
	validLogLevels     = []string{"trace", "debug", "info", "warn", "warning", "error", "fatal", "panic"}
	validLogFormats    = []string{"json", "text"}
	validLogOutputs    = []string{"stdout", "stderr", "file"}
	validOutputFormats = []string{"markdown", "table", "json", "yaml", "csv"}
)

// DefaultConfig 返回内置默认配置
func DefaultConfig() *Config {
	return &Config{
		App: &AppConfig{
			Name:        "openclaw",
			Environment: "development",
		},
		Log: &LogConfig{
			Level:      "warn",
			Format:     "text",
			Output:     "stderr",
			FilePath:   "./logs/openclaw.log",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		},
		RateLimit: &RateLimitConfig{
			Enabled:   true,
			Overrides: map[string]string{},
		},
		Output: &OutputConfig{
			Format: "markdown",
		},
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.App == nil || c.Log == nil || c.RateLimit == nil || c.Output == nil {
		return fmt.Errorf("incomplete config: app, log, rate_limit and output sections are required")
	}
	if !contains(validLogLevels, c.Log.Level) {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	if !contains(validLogFormats, c.Log.Format) {
		return fmt.Errorf("invalid log format: %s", c.Log.Format)
	}
	if !contains(validLogOutputs, c.Log.Output) {
		return fmt.Errorf("invalid log output: %s", c.Log.Output)
	}
	if c.Log.Output == "file" && c.Log.FilePath == "" {
		return fmt.Errorf("log file path is required when output is file")
	}
	if c.RateLimit.MaxRequestsPerSecond < 0 {
		return fmt.Errorf("invalid max_requests_per_second: %d", c.RateLimit.MaxRequestsPerSecond)
	}
	if !contains(validOutputFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s", c.Output.Format)
	}
	return nil
}

// SaveConfig 将配置以 YAML 格式写入文件
func SaveConfig(cfg *Config, path string) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func contains(list []string, v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
