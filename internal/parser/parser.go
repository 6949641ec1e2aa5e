// Package parser 将第三方扫描器的原始输出转换为结构化记录
// 所有解析函数都是纯函数，对畸形输入尽力而为，从不因为单个片段失败而返回错误
package parser

import (
	"errors"
	"fmt"
	"strings"
)

// Format 支持的工具输出格式
type Format string

const (
	FormatNmap   Format = "nmap"   // nmap -oX
	FormatNuclei Format = "nuclei" // nuclei -jsonl
	FormatFfuf   Format = "ffuf"   // ffuf -of json
	FormatAuto   Format = "auto"
)

// ErrUnknownFormat 请求了不支持的格式，属于调用方错误
var ErrUnknownFormat = errors.New("unknown output format")

// Result 一次解析的结果，只有与格式对应的切片会被填充
type Result struct {
	Format   Format          `json:"format" yaml:"format"`
	Hosts    []HostRecord    `json:"hosts,omitempty" yaml:"hosts,omitempty"`
	Findings []FindingRecord `json:"findings,omitempty" yaml:"findings,omitempty"`
	Fuzz     []FuzzResult    `json:"fuzz,omitempty" yaml:"fuzz,omitempty"`
}

// Len 记录总数
func (r *Result) Len() int {
	return len(r.Hosts) + len(r.Findings) + len(r.Fuzz)
}

// ParseFormat 将用户输入的格式名转换为 Format
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatNmap, FormatNuclei, FormatFfuf, FormatAuto:
		return f, nil
	case "":
		return FormatAuto, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// DetectFormat 根据内容特征猜测输出格式
// XML 报告 -> nmap；带 results 数组的单个 JSON 文档 -> ffuf；其他按 JSONL 处理
func DetectFormat(raw string) Format {
	trimmed := trimInput(raw)
	switch {
	case strings.HasPrefix(trimmed, "<"):
		return FormatNmap
	case strings.HasPrefix(trimmed, "{") && strings.Contains(trimmed, `"results"`) && !strings.Contains(trimmed, "\n{"):
		return FormatFfuf
	default:
		return FormatNuclei
	}
}

// trimInput 去掉首尾空白和 UTF-8 BOM
// Windows 下重定向保存的报告常带 BOM
func trimInput(raw string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "\uFEFF"))
}

// Parse 按格式分发到具体的解析函数，FormatAuto 会先自动识别
func Parse(format Format, raw string) (*Result, error) {
	if format == FormatAuto || format == "" {
		format = DetectFormat(raw)
	}

	res := &Result{Format: format}
	switch format {
	case FormatNmap:
		res.Hosts = ParseNmapXML(raw)
	case FormatNuclei:
		res.Findings = ParseNucleiJSONL(raw)
	case FormatFfuf:
		res.Fuzz = ParseFfufJSON(raw)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return res, nil
}
