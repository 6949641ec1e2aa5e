package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ConfigChangeCallback 配置变更回调
type ConfigChangeCallback func(oldConfig, newConfig *Config) error

// ConfigWatcher 配置文件监听器
// 监听配置文件所在目录而不是文件本身，编辑器的 rename+create 保存方式也能被捕获
type ConfigWatcher struct {
	configFile  string
	config      *Config
	watcher     *fsnotify.Watcher
	callbacks   []ConfigChangeCallback
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
	reloadDelay time.Duration
	timer       *time.Timer

	// OnError 重载失败时调用，为空则忽略
	OnError func(error)
}

// NewConfigWatcher 创建配置监听器
func NewConfigWatcher(configFile string) (*ConfigWatcher, error) {
	if configFile == "" {
		return nil, fmt.Errorf("config file path is empty")
	}
	abs, err := filepath.Abs(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &ConfigWatcher{
		configFile:  abs,
		watcher:     watcher,
		ctx:         ctx,
		cancel:      cancel,
		reloadDelay: 500 * time.Millisecond, // 防抖延迟
	}, nil
}

// SetReloadDelay 设置防抖延迟
func (cw *ConfigWatcher) SetReloadDelay(d time.Duration) {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	cw.reloadDelay = d
}

// Start 加载初始配置并开始监听
func (cw *ConfigWatcher) Start() error {
	cfg, err := LoadConfigFromFile(cw.configFile)
	if err != nil {
		return fmt.Errorf("failed to load initial config: %w", err)
	}

	cw.mu.Lock()
	cw.config = cfg
	cw.mu.Unlock()

	if err := cw.watcher.Add(filepath.Dir(cw.configFile)); err != nil {
		return fmt.Errorf("failed to watch config file %s: %w", cw.configFile, err)
	}

	go cw.watchLoop()
	return nil
}

// Stop 停止监听
func (cw *ConfigWatcher) Stop() error {
	cw.cancel()
	cw.mu.Lock()
	if cw.timer != nil {
		cw.timer.Stop()
	}
	cw.mu.Unlock()
	return cw.watcher.Close()
}

// GetConfig 获取当前配置
func (cw *ConfigWatcher) GetConfig() *Config {
	cw.mu.RLock()
	defer cw.mu.RUnlock()
	return cw.config
}

// AddCallback 添加配置变更回调
func (cw *ConfigWatcher) AddCallback(callback ConfigChangeCallback) {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	cw.callbacks = append(cw.callbacks, callback)
}

func (cw *ConfigWatcher) watchLoop() {
	for {
		select {
		case <-cw.ctx.Done():
			return
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			cw.handleFileEvent(event)
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.reportError(fmt.Errorf("config watcher error: %w", err))
		}
	}
}

// handleFileEvent 只关心目标文件的写入和创建事件
// 连续事件会重置定时器，最后一次事件之后 reloadDelay 才真正重载
func (cw *ConfigWatcher) handleFileEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != cw.configFile {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	cw.mu.Lock()
	defer cw.mu.Unlock()
	if cw.timer != nil {
		cw.timer.Stop()
	}
	cw.timer = time.AfterFunc(cw.reloadDelay, func() {
		if err := cw.reloadConfig(); err != nil {
			cw.reportError(err)
		}
	})
}

// reloadConfig 重新加载配置，任一回调失败则保留旧配置
func (cw *ConfigWatcher) reloadConfig() error {
	if cw.ctx.Err() != nil {
		return nil
	}

	newConfig, err := LoadConfigFromFile(cw.configFile)
	if err != nil {
		return fmt.Errorf("failed to load new config: %w", err)
	}

	cw.mu.RLock()
	oldConfig := cw.config
	callbacks := append([]ConfigChangeCallback(nil), cw.callbacks...)
	cw.mu.RUnlock()

	for _, callback := range callbacks {
		if err := callback(oldConfig, newConfig); err != nil {
			return fmt.Errorf("config change callback failed: %w", err)
		}
	}

	cw.mu.Lock()
	cw.config = newConfig
	cw.mu.Unlock()
	return nil
}

func (cw *ConfigWatcher) reportError(err error) {
	if cw.OnError != nil {
		cw.OnError(err)
	}
}
