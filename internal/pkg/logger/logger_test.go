package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GemachDAO/openclaw/internal/config"
)

func TestNewLogger(t *testing.T) {
	_, err := NewLogger(nil)
	assert.Error(t, err)

	cfg := config.DefaultConfig().Log
	lm, err := NewLogger(cfg)
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, lm.GetLogger().GetLevel())
	assert.Same(t, cfg, lm.config)

	// 非法级别回退到 info
	lm, err = NewLogger(&config.LogConfig{Level: "loud", Format: "text", Output: "stderr"})
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, lm.GetLogger().GetLevel())

	_, err = NewLogger(&config.LogConfig{Level: "info", Format: "xml", Output: "stderr"})
	assert.Error(t, err)

	_, err = NewLogger(&config.LogConfig{Level: "info", Format: "text", Output: "syslog"})
	assert.Error(t, err)

	_, err = NewLogger(&config.LogConfig{Level: "info", Format: "text", Output: "file"})
	assert.Error(t, err, "file 输出必须指定路径")
}

func TestNewLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "openclaw.log")
	lm, err := NewLogger(&config.LogConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: path,
		MaxSize:  1,
	})
	require.NoError(t, err)

	lm.GetLogger().Info("policy reloaded")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"policy reloaded"`)
	assert.Contains(t, string(data), `"level":"info"`)
}

func TestUpdateConfig(t *testing.T) {
	lm, err := NewLogger(&config.LogConfig{Level: "warn", Format: "text", Output: "stderr"})
	require.NoError(t, err)

	next := &config.LogConfig{Level: "debug", Format: "json", Output: "stderr"}
	require.NoError(t, lm.UpdateConfig(next))
	assert.Equal(t, logrus.DebugLevel, lm.GetLogger().GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, lm.GetLogger().Formatter)
	assert.Same(t, next, lm.config)

	assert.Error(t, lm.UpdateConfig(nil))
	assert.Error(t, lm.UpdateConfig(&config.LogConfig{Level: "loud", Format: "json", Output: "stderr"}))
	assert.Error(t, lm.UpdateConfig(&config.LogConfig{Level: "error", Format: "xml", Output: "stderr"}))
	// 失败的更新不会替换当前配置，也不会只生效一半
	assert.Same(t, next, lm.config)
	assert.Equal(t, logrus.DebugLevel, lm.GetLogger().GetLevel())
}

func TestUpdateConfig_KeepsWriterWhenOutputUnchanged(t *testing.T) {
	lm, err := NewLogger(&config.LogConfig{Level: "info", Format: "text", Output: "stderr"})
	require.NoError(t, err)

	var buf bytes.Buffer
	lm.GetLogger().SetOutput(&buf)

	require.NoError(t, lm.UpdateConfig(&config.LogConfig{Level: "warn", Format: "text", Output: "stderr"}))
	lm.GetLogger().Warn("still here")
	assert.Contains(t, buf.String(), "still here")

	path := filepath.Join(t.TempDir(), "openclaw.log")
	require.NoError(t, lm.UpdateConfig(&config.LogConfig{Level: "warn", Format: "text", Output: "file", FilePath: path}))
	lm.GetLogger().Warn("to file")
	assert.NotContains(t, buf.String(), "to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}

func TestGlobalHelpers(t *testing.T) {
	prev := LoggerInstance
	t.Cleanup(func() { LoggerInstance = prev })

	// 未初始化时不应 panic
	LoggerInstance = nil
	Debugf("ignored %d", 1)
	Errorf("ignored %d", 2)
	assert.NotNil(t, WithField("k", "v"))

	lm, err := InitLogger(&config.LogConfig{Level: "debug", Format: "text", Output: "stderr"})
	require.NoError(t, err)
	assert.Same(t, lm, LoggerInstance)

	var buf bytes.Buffer
	lm.GetLogger().SetOutput(&buf)
	Debugf("nmap: skip host fragment #%d", 3)
	Infof("loaded")
	Warnf("careful")
	WithField("tool", "nmap").Info("rewritten")

	out := buf.String()
	assert.Contains(t, out, "skip host fragment #3")
	assert.Contains(t, out, "loaded")
	assert.Contains(t, out, "careful")
	assert.Contains(t, out, "tool=nmap")
}
