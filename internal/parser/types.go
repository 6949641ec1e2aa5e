package parser

import (
	"strconv"
	"strings"
)

// HostState 主机存活状态
type HostState string

const (
	HostUp   HostState = "up"
	HostDown HostState = "down"
)

// PortState 端口状态，只允许三种取值
type PortState string

const (
	PortOpen     PortState = "open"
	PortClosed   PortState = "closed"
	PortFiltered PortState = "filtered"
)

// NormalizePortState 归一化端口状态，未知值一律视为 filtered
// nmap 的 "open|filtered" 等组合状态同样落入 filtered
func NormalizePortState(s string) PortState {
	switch PortState(strings.ToLower(strings.TrimSpace(s))) {
	case PortOpen:
		return PortOpen
	case PortClosed:
		return PortClosed
	default:
		return PortFiltered
	}
}

// Severity 漏洞等级
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Severities 按从高到低排列的五个固定等级
var Severities = []Severity{
	SeverityCritical,
	SeverityHigh,
	SeverityMedium,
	SeverityLow,
	SeverityInfo,
}

// NormalizeSeverity 归一化漏洞等级，无法识别的输入统一为 info
func NormalizeSeverity(s string) Severity {
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case SeverityLow:
		return SeverityLow
	case SeverityMedium:
		return SeverityMedium
	case SeverityHigh:
		return SeverityHigh
	case SeverityCritical:
		return SeverityCritical
	default:
		return SeverityInfo
	}
}

// HostRecord 单个主机的解析结果
type HostRecord struct {
	Address  string       `json:"address" yaml:"address"`
	Hostname string       `json:"hostname,omitempty" yaml:"hostname,omitempty"`
	State    HostState    `json:"state" yaml:"state"`
	OS       string       `json:"os,omitempty" yaml:"os,omitempty"`
	Ports    []PortRecord `json:"ports" yaml:"ports"`
}

// OpenPorts 返回状态为 open 的端口，保持原有顺序
func (h HostRecord) OpenPorts() []PortRecord {
	var open []PortRecord
	for _, p := range h.Ports {
		if p.State == PortOpen {
			open = append(open, p)
		}
	}
	return open
}

// PortRecord 端口信息
type PortRecord struct {
	Port     int       `json:"port" yaml:"port"`
	Protocol string    `json:"protocol" yaml:"protocol"` // tcp/udp
	State    PortState `json:"state" yaml:"state"`
	Service  string    `json:"service,omitempty" yaml:"service,omitempty"`
	Product  string    `json:"product,omitempty" yaml:"product,omitempty"`
	Version  string    `json:"version,omitempty" yaml:"version,omitempty"`
}

// FindingRecord nuclei 单行输出对应的漏洞记录
type FindingRecord struct {
	TemplateID       string   `json:"template_id" yaml:"template_id"`
	Name             string   `json:"name" yaml:"name"`
	Severity         Severity `json:"severity" yaml:"severity"`
	Type             string   `json:"type" yaml:"type"`
	Host             string   `json:"host" yaml:"host"`
	MatchedAt        string   `json:"matched_at" yaml:"matched_at"`
	ExtractedResults []string `json:"extracted_results,omitempty" yaml:"extracted_results,omitempty"`
	Timestamp        string   `json:"timestamp" yaml:"timestamp"`
	CurlCommand      string   `json:"curl_command,omitempty" yaml:"curl_command,omitempty"`
}

// FuzzResult ffuf results 数组中的单个元素
type FuzzResult struct {
	URL              string `json:"url" yaml:"url"`
	Status           int    `json:"status" yaml:"status"`
	Length           int    `json:"length" yaml:"length"`
	Words            int    `json:"words" yaml:"words"`
	Lines            int    `json:"lines" yaml:"lines"`
	ContentType      string `json:"content_type,omitempty" yaml:"content_type,omitempty"`
	RedirectLocation string `json:"redirect_location,omitempty" yaml:"redirect_location,omitempty"`
}

// ==================== 表格化输出 ====================
// 以下方法让结果集可以直接交给 reporter 渲染成表格或导出 CSV

// Hosts 主机结果集
type Hosts []HostRecord

func (hs Hosts) Headers() []string {
	return []string{"Address", "Hostname", "State", "OS", "Port", "Proto", "PortState", "Service", "Product", "Version"}
}

func (hs Hosts) Rows() [][]string {
	var rows [][]string
	for _, h := range hs {
		if len(h.Ports) == 0 {
			rows = append(rows, []string{h.Address, h.Hostname, string(h.State), h.OS, "", "", "", "", "", ""})
			continue
		}
		for _, p := range h.Ports {
			rows = append(rows, []string{
				h.Address, h.Hostname, string(h.State), h.OS,
				strconv.Itoa(p.Port), p.Protocol, string(p.State), p.Service, p.Product, p.Version,
			})
		}
	}
	return rows
}

// Findings 漏洞结果集
type Findings []FindingRecord

func (fs Findings) Headers() []string {
	return []string{"Severity", "Template", "Name", "Type", "Host", "Matched", "Extracted", "Timestamp"}
}

func (fs Findings) Rows() [][]string {
	rows := make([][]string, 0, len(fs))
	for _, f := range fs {
		rows = append(rows, []string{
			string(f.Severity), f.TemplateID, f.Name, f.Type, f.Host, f.MatchedAt,
			strings.Join(f.ExtractedResults, ","), f.Timestamp,
		})
	}
	return rows
}

// FuzzResults 目录爆破结果集
type FuzzResults []FuzzResult

func (rs FuzzResults) Headers() []string {
	return []string{"URL", "Status", "Length", "Words", "Lines", "ContentType", "Redirect"}
}

func (rs FuzzResults) Rows() [][]string {
	rows := make([][]string, 0, len(rs))
	for _, r := range rs {
		rows = append(rows, []string{
			r.URL, strconv.Itoa(r.Status), strconv.Itoa(r.Length), strconv.Itoa(r.Words),
			strconv.Itoa(r.Lines), r.ContentType, r.RedirectLocation,
		})
	}
	return rows
}
