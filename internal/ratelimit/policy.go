// Package ratelimit 根据限速策略为扫描器命令注入限速参数
package ratelimit

import (
	"errors"
	"strings"

	"github.com/GemachDAO/openclaw/internal/config"
)

// ErrNilPolicy 调用方传入了空策略
var ErrNilPolicy = errors.New("rate limit policy is nil")

// PolicyOptions 构造 Policy 的参数
type PolicyOptions struct {
	Enabled              bool
	MaxRequestsPerSecond int               // <= 0 表示未设置
	Overrides            map[string]string // 工具名 -> 完整参数字符串
}

// Policy 限速策略，构造后不可变，可在多个 goroutine 间共享
type Policy struct {
	enabled   bool
	maxRPS    int
	overrides map[string]string
}

// NewPolicy 创建策略，overrides 会被复制并按工具名归一化
func NewPolicy(opts PolicyOptions) *Policy {
	p := &Policy{
		enabled:   opts.Enabled,
		overrides: make(map[string]string, len(opts.Overrides)),
	}
	if opts.MaxRequestsPerSecond > 0 {
		p.maxRPS = opts.MaxRequestsPerSecond
	}
	for tool, flags := range opts.Overrides {
		name := ToolName(tool)
		flags = strings.TrimSpace(flags)
		if name == "" || flags == "" {
			continue
		}
		p.overrides[name] = flags
	}
	return p
}

// DefaultPolicy 启用限速，仅使用内置默认值
func DefaultPolicy() *Policy {
	return NewPolicy(PolicyOptions{Enabled: true})
}

// DisabledPolicy 不注入任何参数
func DisabledPolicy() *Policy {
	return NewPolicy(PolicyOptions{})
}

// FromConfig 根据配置文件中的 rate_limit 段构造策略，nil 时使用默认配置
func FromConfig(cfg *config.RateLimitConfig) *Policy {
	if cfg == nil {
		cfg = config.DefaultConfig().RateLimit
	}
	return NewPolicy(PolicyOptions{
		Enabled:              cfg.Enabled,
		MaxRequestsPerSecond: cfg.MaxRequestsPerSecond,
		Overrides:            cfg.Overrides,
	})
}

// Enabled 是否启用
func (p *Policy) Enabled() bool { return p.enabled }

// MaxRequestsPerSecond 全局速率，0 表示未设置
func (p *Policy) MaxRequestsPerSecond() int { return p.maxRPS }

// Override 返回工具级覆盖配置
func (p *Policy) Override(tool string) (string, bool) {
	flags, ok := p.overrides[ToolName(tool)]
	return flags, ok
}

// Resolve 解析工具应使用的限速参数，优先级固定：
//  1. 策略未启用 -> 空串
//  2. 工具级覆盖 -> 原样返回
//  3. 设置了全局速率 -> 按工具的参数模板格式化，无模板的工具为空串
//  4. 内置默认值
//  5. 空串
func (p *Policy) Resolve(tool string) string {
	if !p.enabled {
		return ""
	}
	name := ToolName(tool)
	if flags, ok := p.overrides[name]; ok {
		return flags
	}
	t, known := toolsByName[name]
	if p.maxRPS > 0 {
		if !known {
			return ""
		}
		return t.FormatRate(p.maxRPS)
	}
	if known {
		return t.DefaultFlags()
	}
	return ""
}

// Resolve 包级入口，策略为空时返回 ErrNilPolicy
func Resolve(tool string, p *Policy) (string, error) {
	if p == nil {
		return "", ErrNilPolicy
	}
	return p.Resolve(tool), nil
}
