package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// EnvLoader 从 .env 文件加载环境变量
// 已存在的环境变量不会被覆盖，之后由 ConfigLoader 通过 OPENCLAW_* 读取
type EnvLoader struct {
	envFiles []string // .env 文件路径列表
	loaded   bool
}

// NewEnvLoader 创建环境变量加载器，未指定文件时使用 .env
func NewEnvLoader(envFiles ...string) *EnvLoader {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	return &EnvLoader{envFiles: envFiles}
}

// Load 依次加载 .env 文件，文件不存在时跳过
func (e *EnvLoader) Load() error {
	if e.loaded {
		return nil
	}
	for _, envFile := range e.envFiles {
		if _, err := os.Stat(envFile); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}
	e.loaded = true
	return nil
}

// Read 读取 .env 文件内容但不写入进程环境
func (e *EnvLoader) Read() (map[string]string, error) {
	merged := make(map[string]string)
	for _, envFile := range e.envFiles {
		if _, err := os.Stat(envFile); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		vars, err := godotenv.Read(envFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read env file %s: %w", envFile, err)
		}
		for k, v := range vars {
			merged[k] = v
		}
	}
	return merged, nil
}
