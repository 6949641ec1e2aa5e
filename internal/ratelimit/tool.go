package ratelimit

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Tool 支持限速的扫描器，封闭枚举
type Tool int

const (
	ToolUnknown Tool = iota
	ToolNmap
	ToolMasscan
	ToolNuclei
	ToolFfuf
	ToolHttpx
	ToolFeroxbuster
	ToolGobuster
	ToolWpscan
	ToolSqlmap
	ToolNikto
	ToolHydra

	toolCount
)

// toolDef 每个工具唯一的限速参数写法
// defaultFlags 为未设置全局速率时使用的内置默认值
// format 将每秒请求数转换为该工具的参数
type toolDef struct {
	name         string
	defaultFlags string
	format       func(rps int) string
}

// toolDefs 以 Tool 为下标，数组长度由 toolCount 约束，新增枚举值必须补齐此表
var toolDefs = [toolCount]toolDef{
	ToolUnknown:     {},
	ToolNmap:        {name: "nmap", defaultFlags: "--max-rate 100", format: perSecond("--max-rate")},
	ToolMasscan:     {name: "masscan", defaultFlags: "--rate 100", format: perSecond("--rate")},
	ToolNuclei:      {name: "nuclei", defaultFlags: "-rate-limit 50", format: perSecond("-rate-limit")},
	ToolFfuf:        {name: "ffuf", defaultFlags: "-rate 50", format: perSecond("-rate")},
	ToolHttpx:       {name: "httpx", defaultFlags: "-rl 50", format: perSecond("-rl")},
	ToolFeroxbuster: {name: "feroxbuster", defaultFlags: "--rate-limit 50", format: perSecond("--rate-limit")},
	ToolGobuster:    {name: "gobuster", defaultFlags: "--delay 100ms", format: delayMillis("--delay", "ms")},
	ToolWpscan:      {name: "wpscan", defaultFlags: "--throttle 100", format: delayMillis("--throttle", "")},
	ToolSqlmap:      {name: "sqlmap", defaultFlags: "--delay 1", format: delaySeconds("--delay")},
	ToolNikto:       {name: "nikto", defaultFlags: "-Pause 1", format: delaySeconds("-Pause")},
	ToolHydra:       {name: "hydra", defaultFlags: "-t 4", format: perSecond("-t")},
}

var toolsByName = func() map[string]Tool {
	m := make(map[string]Tool, toolCount)
	for t := ToolUnknown + 1; t < toolCount; t++ {
		m[toolDefs[t].name] = t
	}
	return m
}()

// String 工具名
func (t Tool) String() string {
	if t <= ToolUnknown || t >= toolCount {
		return "unknown"
	}
	return toolDefs[t].name
}

// DefaultFlags 内置默认限速参数
func (t Tool) DefaultFlags() string {
	if t <= ToolUnknown || t >= toolCount {
		return ""
	}
	return toolDefs[t].defaultFlags
}

// FormatRate 按工具的参数写法格式化每秒请求数，rps <= 0 时返回空串
func (t Tool) FormatRate(rps int) string {
	if t <= ToolUnknown || t >= toolCount || rps <= 0 {
		return ""
	}
	return toolDefs[t].format(rps)
}

// ParseTool 根据工具名 (或带路径的可执行文件) 查找枚举值
func ParseTool(ref string) (Tool, bool) {
	t, ok := toolsByName[ToolName(ref)]
	return t, ok
}

// SupportedTools 返回全部支持的工具，按枚举顺序
func SupportedTools() []Tool {
	tools := make([]Tool, 0, toolCount-1)
	for t := ToolUnknown + 1; t < toolCount; t++ {
		tools = append(tools, t)
	}
	return tools
}

// ToolName 从可执行文件引用中提取工具名
// 去掉目录部分 (兼容 / 与 \)、.exe/.py 后缀，并转为小写
// 例如 /usr/local/bin/nmap -> nmap, C:\Tools\FFUF.exe -> ffuf
func ToolName(ref string) string {
	name := strings.TrimSpace(ref)
	name = strings.Trim(name, `"'`)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	name = strings.ToLower(name)
	for _, suffix := range []string{".exe", ".py"} {
		name = strings.TrimSuffix(name, suffix)
	}
	return name
}

// ==================== 参数模板 ====================

// perSecond 直接以每秒请求数作为参数值
func perSecond(flag string) func(int) string {
	return func(rps int) string {
		return fmt.Sprintf("%s %d", flag, rps)
	}
}

// delayMillis 以请求间隔 (毫秒) 作为参数值，至少 1ms
func delayMillis(flag, unit string) func(int) string {
	return func(rps int) string {
		ms := 1000 / rps
		if ms < 1 {
			ms = 1
		}
		return fmt.Sprintf("%s %d%s", flag, ms, unit)
	}
}

// delaySeconds 以请求间隔 (秒，保留三位小数) 作为参数值，至少 0.001
func delaySeconds(flag string) func(int) string {
	return func(rps int) string {
		sec := math.Round(1000/float64(rps)) / 1000
		if sec < 0.001 {
			sec = 0.001
		}
		return flag + " " + strconv.FormatFloat(sec, 'f', -1, 64)
	}
}
