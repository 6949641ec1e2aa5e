package ratelimit

import (
	"strings"

	"github.com/GemachDAO/openclaw/internal/pkg/logger"
)

// throttleIndicators 已经指定了限速/并发的参数特征 (小写)
// 检测覆盖整条命令且不区分工具：即便是其他工具的写法也视为用户已设置限速。
// 已知误判：通用的 "-t " 在 nuclei 中表示模板、在 ffuf/gobuster 中表示线程数，
// 命中后同样不会注入。宁可不改，也不重复注入
var throttleIndicators = []string{
	"--max-rate",
	"--min-rate",
	"--rate",
	"-rate",
	"-rl ",
	"--delay",
	"--scan-delay",
	"--max-scan-delay",
	"-pause",
	"--throttle",
	"-t ",
	"--max-parallelism",
	"-rate-limit",
	"--rate-limit",
}

// ThrottleIndicators 返回限速特征列表的副本
func ThrottleIndicators() []string {
	return append([]string(nil), throttleIndicators...)
}

// HasThrottleIndicator 命令中是否已包含任意限速特征
func HasThrottleIndicator(command string) bool {
	lower := strings.ToLower(command)
	for _, ind := range throttleIndicators {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	return false
}

// Rewrite 在工具名之后插入限速参数
// 命令为空、策略解析不到参数、命令中已有限速特征或已包含同样的参数时原样返回。
// 对同一策略重复调用结果不变
func (p *Policy) Rewrite(command string) string {
	tokens := strings.Fields(command)
	if len(tokens) == 0 {
		return command
	}

	flags := p.Resolve(tokens[0])
	if flags == "" {
		return command
	}

	if HasThrottleIndicator(command) {
		logger.Debugf("ratelimit: %s already throttled, leave command unchanged", ToolName(tokens[0]))
		return command
	}

	flagTokens := strings.Fields(flags)
	if containsRun(tokens[1:], flagTokens) {
		return command
	}

	out := make([]string, 0, len(tokens)+len(flagTokens))
	out = append(out, tokens[0])
	out = append(out, flagTokens...)
	out = append(out, tokens[1:]...)
	return strings.Join(out, " ")
}

// Rewrite 包级入口，策略为空时返回 ErrNilPolicy
func Rewrite(command string, p *Policy) (string, error) {
	if p == nil {
		return "", ErrNilPolicy
	}
	return p.Rewrite(command), nil
}

// containsRun tokens 中是否存在与 run 完全相同的连续片段
func containsRun(tokens, run []string) bool {
	if len(run) == 0 || len(run) > len(tokens) {
		return false
	}
	for i := 0; i+len(run) <= len(tokens); i++ {
		match := true
		for j := range run {
			if tokens[i+j] != run[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
