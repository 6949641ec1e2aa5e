package parser

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/GemachDAO/openclaw/internal/pkg/logger"
)

// nuclei 不同版本的字段名并不统一，每个字段按顺序尝试多个候选键
// 形如 "info.name" 的键表示嵌套对象中的字段
var (
	templateIDKeys = []string{"template-id", "templateID", "template_id", "template"}
	nameKeys       = []string{"info.name", "name"}
	severityKeys   = []string{"info.severity", "severity"}
	typeKeys       = []string{"type", "protocol"}
	hostKeys       = []string{"host", "ip"}
	matchedKeys    = []string{"matched-at", "matched", "matched_at", "url"}
	extractedKeys  = []string{"extracted-results", "extracted_results"}
	timestampKeys  = []string{"timestamp", "time"}
	curlKeys       = []string{"curl-command", "curl_command"}
)

// ParseNucleiJSONL 解析 nuclei -jsonl 输出，每行一条记录
// 空行跳过；无法解码为 JSON 对象的行直接丢弃，不影响后续行
func ParseNucleiJSONL(raw string) []FindingRecord {
	var findings []FindingRecord

	// 输入已整体在内存中，直接按行切分，避免 bufio.Scanner 的单行长度上限
	for i, line := range strings.Split(raw, "\n") {
		line = trimInput(line)
		if line == "" {
			continue
		}

		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(line), &obj); err != nil || obj == nil {
			logger.Debugf("nuclei: skip undecodable line %d", i+1)
			continue
		}
		findings = append(findings, newFindingRecord(obj))
	}

	return findings
}

func newFindingRecord(obj map[string]interface{}) FindingRecord {
	f := FindingRecord{
		TemplateID:  lookupString(obj, templateIDKeys...),
		Type:        lookupString(obj, typeKeys...),
		Host:        lookupString(obj, hostKeys...),
		Timestamp:   lookupString(obj, timestampKeys...),
		CurlCommand: lookupString(obj, curlKeys...),
	}
	f.Name = lookupString(obj, nameKeys...)
	if f.Name == "" {
		f.Name = f.TemplateID
	}
	f.Severity = NormalizeSeverity(lookupString(obj, severityKeys...))
	f.MatchedAt = lookupString(obj, matchedKeys...)
	if f.MatchedAt == "" {
		f.MatchedAt = f.Host
	}
	f.ExtractedResults = lookupStrings(obj, extractedKeys...)
	return f
}

// lookup 按顺序返回第一个存在且非 null 的字段
func lookup(obj map[string]interface{}, keys ...string) (interface{}, bool) {
	for _, key := range keys {
		cur := obj
		parts := strings.Split(key, ".")
		for i, part := range parts {
			v, ok := cur[part]
			if !ok || v == nil {
				break
			}
			if i == len(parts)-1 {
				return v, true
			}
			next, ok := v.(map[string]interface{})
			if !ok {
				break
			}
			cur = next
		}
	}
	return nil, false
}

func lookupString(obj map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		v, ok := lookup(obj, key)
		if !ok {
			continue
		}
		if s := scalarString(v); s != "" {
			return s
		}
	}
	return ""
}

func lookupStrings(obj map[string]interface{}, keys ...string) []string {
	v, ok := lookup(obj, keys...)
	if !ok {
		return nil
	}
	switch vv := v.(type) {
	case []interface{}:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			if s := scalarString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		if s := scalarString(vv); s != "" {
			return []string{s}
		}
		return nil
	}
}

// scalarString 将 JSON 标量转换为字符串，对象和数组返回空串
func scalarString(v interface{}) string {
	switch vv := v.(type) {
	case string:
		return strings.TrimSpace(vv)
	case float64:
		return strconv.FormatFloat(vv, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(vv)
	default:
		return ""
	}
}
