package parser

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/GemachDAO/openclaw/internal/pkg/logger"
)

// 只建模我们关心的 nmap XML 片段
// 端口号使用字符串接收，避免单个非法 portid 导致整个主机片段解码失败

type nmapHost struct {
	Status    nmapStatus     `xml:"status"`
	Addresses []nmapAddress  `xml:"address"`
	Hostnames []nmapHostname `xml:"hostnames>hostname"`
	Ports     []nmapPort     `xml:"ports>port"`
	OSMatches []nmapOSMatch  `xml:"os>osmatch"`
}

type nmapStatus struct {
	State string `xml:"state,attr"`
}

type nmapAddress struct {
	Addr     string `xml:"addr,attr"`
	AddrType string `xml:"addrtype,attr"`
}

type nmapHostname struct {
	Name string `xml:"name,attr"`
}

type nmapPort struct {
	Protocol string       `xml:"protocol,attr"`
	PortID   string       `xml:"portid,attr"`
	State    *nmapState   `xml:"state"`
	Service  *nmapService `xml:"service"`
}

type nmapState struct {
	State string `xml:"state,attr"`
}

type nmapService struct {
	Name    string `xml:"name,attr"`
	Product string `xml:"product,attr"`
	Version string `xml:"version,attr"`
}

type nmapOSMatch struct {
	Name string `xml:"name,attr"`
}

// ParseNmapXML 解析 nmap -oX 输出
// 先按 <host>...</host> 切分片段，每个片段独立解析：
// 1. 优先使用 encoding/xml 结构化解码
// 2. 片段无法解码时，退化为片段内的正则提取
// 任何片段的失败都只影响自身，永远不会中断整体解析
func ParseNmapXML(raw string) []HostRecord {
	fragments := splitHostFragments(raw)
	hosts := make([]HostRecord, 0, len(fragments))

	for i, frag := range fragments {
		host, ok := parseHostFragment(frag)
		if !ok {
			logger.Debugf("nmap: skip host fragment #%d without address", i)
			continue
		}
		hosts = append(hosts, host)
	}
	return hosts
}

// parseHostFragment 解析单个主机片段，返回 false 表示该片段应被丢弃
func parseHostFragment(frag string) (HostRecord, bool) {
	var h nmapHost
	if err := xml.Unmarshal([]byte(frag), &h); err != nil {
		logger.Debugf("nmap: structured decode failed, fallback to pattern extraction: %v", err)
		return extractHostFragment(frag)
	}

	addr := pickAddress(h.Addresses)
	if addr == "" {
		return HostRecord{}, false
	}

	host := HostRecord{
		Address: addr,
		State:   normalizeHostState(h.Status.State),
		Ports:   []PortRecord{},
	}
	if len(h.Hostnames) > 0 {
		host.Hostname = strings.TrimSpace(h.Hostnames[0].Name)
	}
	if len(h.OSMatches) > 0 {
		host.OS = strings.TrimSpace(h.OSMatches[0].Name)
	}

	for _, p := range h.Ports {
		port, ok := newPortRecord(p.Protocol, p.PortID)
		if !ok {
			logger.Debugf("nmap: skip port entry protocol=%q portid=%q on %s", p.Protocol, p.PortID, addr)
			continue
		}
		if p.State != nil {
			port.State = NormalizePortState(p.State.State)
		}
		if p.Service != nil {
			port.Service = p.Service.Name
			port.Product = p.Service.Product
			port.Version = p.Service.Version
		}
		host.Ports = append(host.Ports, port)
	}

	return host, true
}

// pickAddress 优先返回 IP 地址，其次是第一个地址 (例如只有 MAC 的情况)
func pickAddress(addrs []nmapAddress) string {
	for _, a := range addrs {
		t := strings.ToLower(a.AddrType)
		if (t == "ipv4" || t == "ipv6") && strings.TrimSpace(a.Addr) != "" {
			return strings.TrimSpace(a.Addr)
		}
	}
	for _, a := range addrs {
		if s := strings.TrimSpace(a.Addr); s != "" {
			return s
		}
	}
	return ""
}

// newPortRecord 校验协议和端口号，两者缺一不可
// 状态默认 filtered，由调用方根据片段内容覆盖
func newPortRecord(protocol, portID string) (PortRecord, bool) {
	proto := strings.ToLower(strings.TrimSpace(protocol))
	if proto != "tcp" && proto != "udp" {
		return PortRecord{}, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(portID))
	if err != nil || n < 1 || n > 65535 {
		return PortRecord{}, false
	}
	return PortRecord{
		Port:     n,
		Protocol: proto,
		State:    PortFiltered,
	}, true
}

func normalizeHostState(s string) HostState {
	if strings.EqualFold(strings.TrimSpace(s), string(HostUp)) {
		return HostUp
	}
	return HostDown
}
