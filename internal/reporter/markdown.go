package reporter

import (
	"fmt"
	"strings"

	"github.com/GemachDAO/openclaw/internal/parser"
)

// SeverityCounts 按等级统计漏洞数量，五个等级都会出现在结果中
func SeverityCounts(findings []parser.FindingRecord) map[parser.Severity]int {
	counts := make(map[parser.Severity]int, len(parser.Severities))
	for _, s := range parser.Severities {
		counts[s] = 0
	}
	for _, f := range findings {
		// 记录可能由调用方手工构造，这里再归一化一次保证计数之和等于总数
		counts[parser.NormalizeSeverity(string(f.Severity))]++
	}
	return counts
}

// FormatFindings 按等级分组输出漏洞，五个等级固定输出，即使为空
func FormatFindings(findings []parser.FindingRecord) string {
	counts := SeverityCounts(findings)
	groups := make(map[parser.Severity][]parser.FindingRecord, len(parser.Severities))
	for _, f := range findings {
		sev := parser.NormalizeSeverity(string(f.Severity))
		groups[sev] = append(groups[sev], f)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Findings (%d)\n\n", len(findings))

	b.WriteString("| Severity | Count |\n|---|---|\n")
	for _, sev := range parser.Severities {
		fmt.Fprintf(&b, "| %s | %d |\n", sev, counts[sev])
	}

	for _, sev := range parser.Severities {
		fmt.Fprintf(&b, "\n### %s (%d)\n\n", titleCase(string(sev)), counts[sev])
		if len(groups[sev]) == 0 {
			b.WriteString("_None_\n")
			continue
		}
		for _, f := range groups[sev] {
			fmt.Fprintf(&b, "- **%s** `%s` at %s", escapeCell(f.Name), f.TemplateID, escapeCell(f.MatchedAt))
			if len(f.ExtractedResults) > 0 {
				fmt.Fprintf(&b, " (extracted: %s)", escapeCell(strings.Join(f.ExtractedResults, ", ")))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// FormatHosts 每个主机只列出开放端口
func FormatHosts(hosts []parser.HostRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Hosts (%d)\n", len(hosts))

	for _, h := range hosts {
		title := h.Address
		if h.Hostname != "" {
			title = fmt.Sprintf("%s (%s)", h.Address, h.Hostname)
		}
		fmt.Fprintf(&b, "\n### %s - %s\n\n", title, h.State)
		if h.OS != "" {
			fmt.Fprintf(&b, "OS: %s\n\n", h.OS)
		}

		open := h.OpenPorts()
		if len(open) == 0 {
			b.WriteString("_No open ports_\n")
			continue
		}
		b.WriteString("| Port | Protocol | Service | Version |\n|---|---|---|---|\n")
		for _, p := range open {
			version := strings.TrimSpace(p.Product + " " + p.Version)
			fmt.Fprintf(&b, "| %d | %s | %s | %s |\n", p.Port, p.Protocol, escapeCell(p.Service), escapeCell(version))
		}
	}
	return b.String()
}

// FormatFuzzResults 按输入顺序列出全部结果
func FormatFuzzResults(results []parser.FuzzResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Fuzz Results (%d)\n\n", len(results))
	if len(results) == 0 {
		b.WriteString("_None_\n")
		return b.String()
	}

	b.WriteString("| URL | Status | Length | Words | Lines | Content-Type | Redirect |\n|---|---|---|---|---|---|---|\n")
	for _, r := range results {
		fmt.Fprintf(&b, "| %s | %d | %d | %d | %d | %s | %s |\n",
			escapeCell(r.URL), r.Status, r.Length, r.Words, r.Lines,
			escapeCell(r.ContentType), escapeCell(r.RedirectLocation))
	}
	return b.String()
}

// FormatResult 根据结果类型选择对应的格式化函数
func FormatResult(res *parser.Result) string {
	if res == nil {
		return ""
	}
	switch res.Format {
	case parser.FormatNmap:
		return FormatHosts(res.Hosts)
	case parser.FormatNuclei:
		return FormatFindings(res.Findings)
	case parser.FormatFfuf:
		return FormatFuzzResults(res.Fuzz)
	default:
		return ""
	}
}

// escapeCell 避免竖线和换行破坏 markdown 表格
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
