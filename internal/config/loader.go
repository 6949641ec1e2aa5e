package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// DefaultEnvPrefix 环境变量前缀
const DefaultEnvPrefix = "OPENCLAW"

// ConfigLoader 配置加载器
// 加载顺序：内置默认值 < 配置文件 < 环境变量 < 已绑定的命令行参数
type ConfigLoader struct {
	configFile string
	searchDirs []string
	envPrefix  string
	viper      *viper.Viper
}

// NewConfigLoader 创建配置加载器
// configFile 为空时在 ./configs 和当前目录下搜索 config.<env>.yaml 与 config.yaml，
// 找不到配置文件不算错误，直接使用默认值
func NewConfigLoader(configFile, envPrefix string) *ConfigLoader {
	if envPrefix == "" {
		envPrefix = DefaultEnvPrefix
	}
	return &ConfigLoader{
		configFile: configFile,
		searchDirs: []string{"./configs", "."},
		envPrefix:  envPrefix,
		viper:      viper.New(),
	}
}

// Viper 暴露底层实例，供 CLI 绑定 flag
func (cl *ConfigLoader) Viper() *viper.Viper {
	return cl.viper
}

// LoadConfig 加载配置
func (cl *ConfigLoader) LoadConfig() (*Config, error) {
	cl.viper.SetConfigType("yaml")

	cl.viper.SetEnvPrefix(cl.envPrefix)
	cl.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cl.viper.AutomaticEnv()
	cl.bindEnvVars()

	cl.setDefaults()

	if err := cl.loadConfigFile(); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	var cfg Config
	if err := cl.viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.RateLimit != nil && cfg.RateLimit.Overrides == nil {
		cfg.RateLimit.Overrides = map[string]string{}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// loadConfigFile 加载配置文件
func (cl *ConfigLoader) loadConfigFile() error {
	if cl.configFile == "" {
		cl.configFile = os.Getenv(cl.envPrefix + "_CONFIG_PATH")
	}

	// 显式指定的配置文件必须存在
	if cl.configFile != "" {
		cl.viper.SetConfigFile(cl.configFile)
		return cl.viper.ReadInConfig()
	}

	for _, dir := range cl.searchDirs {
		cl.viper.AddConfigPath(dir)
	}

	// 先尝试环境特定的配置文件
	cl.viper.SetConfigName("config." + cl.getEnvironment())
	err := cl.viper.ReadInConfig()
	if err == nil {
		return nil
	}
	if !isNotFound(err) {
		return err
	}

	cl.viper.SetConfigName("config")
	if err := cl.viper.ReadInConfig(); err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

// getEnvironment 获取运行环境
func (cl *ConfigLoader) getEnvironment() string {
	env := os.Getenv(cl.envPrefix + "_ENV")
	if env == "" {
		env = os.Getenv("GO_ENV")
	}
	if env == "" {
		env = "development"
	}
	return env
}

// bindEnvVars 绑定环境变量
func (cl *ConfigLoader) bindEnvVars() {
	p := cl.envPrefix

	cl.viper.BindEnv("app.environment", p+"_ENV")
	cl.viper.BindEnv("app.debug", p+"_DEBUG")

	cl.viper.BindEnv("log.level", p+"_LOG_LEVEL")
	cl.viper.BindEnv("log.format", p+"_LOG_FORMAT")
	cl.viper.BindEnv("log.output", p+"_LOG_OUTPUT")
	cl.viper.BindEnv("log.file_path", p+"_LOG_FILE_PATH")

	cl.viper.BindEnv("rate_limit.enabled", p+"_RATE_LIMIT_ENABLED")
	cl.viper.BindEnv("rate_limit.max_requests_per_second", p+"_RATE_LIMIT_RPS")

	cl.viper.BindEnv("output.format", p+"_OUTPUT_FORMAT")
}

// setDefaults 设置默认值，与 DefaultConfig 保持一致
func (cl *ConfigLoader) setDefaults() {
	def := DefaultConfig()

	cl.viper.SetDefault("app.name", def.App.Name)
	cl.viper.SetDefault("app.environment", def.App.Environment)
	cl.viper.SetDefault("app.debug", def.App.Debug)

	cl.viper.SetDefault("log.level", def.Log.Level)
	cl.viper.SetDefault("log.format", def.Log.Format)
	cl.viper.SetDefault("log.output", def.Log.Output)
	cl.viper.SetDefault("log.file_path", def.Log.FilePath)
	cl.viper.SetDefault("log.max_size", def.Log.MaxSize)
	cl.viper.SetDefault("log.max_backups", def.Log.MaxBackups)
	cl.viper.SetDefault("log.max_age", def.Log.MaxAge)
	cl.viper.SetDefault("log.compress", def.Log.Compress)
	cl.viper.SetDefault("log.caller", def.Log.Caller)

	cl.viper.SetDefault("rate_limit.enabled", def.RateLimit.Enabled)
	cl.viper.SetDefault("rate_limit.max_requests_per_second", def.RateLimit.MaxRequestsPerSecond)
	cl.viper.SetDefault("rate_limit.overrides", map[string]string{})

	cl.viper.SetDefault("output.format", def.Output.Format)
}

// GetConfigPath 实际使用的配置文件路径，未找到配置文件时为空
func (cl *ConfigLoader) GetConfigPath() string {
	return cl.viper.ConfigFileUsed()
}

func isNotFound(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf)
}

// LoadConfigFromFile 从指定文件加载配置
func LoadConfigFromFile(configFile string) (*Config, error) {
	return NewConfigLoader(configFile, DefaultEnvPrefix).LoadConfig()
}
