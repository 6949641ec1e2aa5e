package parser

import (
	"html"
	"strings"

	"github.com/dlclark/regexp2"
)

// 片段级正则
// 标签名后的 \b 用于区分 <host> 与 <hostnames>/<hosthint>，<port> 与 <ports>
// 片段内容不允许跨过下一个同名开始标签，未闭合的片段只会丢弃自身
var (
	hostFragmentRegexp = regexp2.MustCompile(`<host\b[^>]*>(?:(?!<host\b).)*?</host>`, regexp2.Singleline|regexp2.IgnoreCase)
	portFragmentRegexp = regexp2.MustCompile(`<port\b[^>]*?(?:/>|>(?:(?!<port\b).)*?</port>)`, regexp2.Singleline|regexp2.IgnoreCase)

	addressTagRegexp  = regexp2.MustCompile(`<address\b[^>]*>`, regexp2.IgnoreCase)
	hostnameTagRegexp = regexp2.MustCompile(`<hostname\b[^>]*>`, regexp2.IgnoreCase)
	statusTagRegexp   = regexp2.MustCompile(`<status\b[^>]*>`, regexp2.IgnoreCase)
	osmatchTagRegexp  = regexp2.MustCompile(`<osmatch\b[^>]*>`, regexp2.IgnoreCase)
	portTagRegexp     = regexp2.MustCompile(`<port\b[^>]*>`, regexp2.IgnoreCase)
	stateTagRegexp    = regexp2.MustCompile(`<state\b[^>]*>`, regexp2.IgnoreCase)
	serviceTagRegexp  = regexp2.MustCompile(`<service\b[^>]*>`, regexp2.IgnoreCase)
)

// 属性正则按属性名缓存，包级只读
var attrRegexps = map[string]*regexp2.Regexp{}

func init() {
	for _, name := range []string{"addr", "addrtype", "name", "state", "protocol", "portid", "product", "version"} {
		attrRegexps[name] = regexp2.MustCompile(`\b`+name+`\s*=\s*"([^"]*)"`, regexp2.IgnoreCase)
	}
}

// splitHostFragments 按 <host>...</host> 切分报告
// 没有闭合标签的残缺片段不会被返回
func splitHostFragments(raw string) []string {
	return findAllStrings(hostFragmentRegexp, raw)
}

// extractHostFragment 结构化解码失败时的退化路径
// 每个字段独立匹配，缺少其中一个不影响其他字段
func extractHostFragment(frag string) (HostRecord, bool) {
	var addrs []nmapAddress
	for _, tag := range findAllStrings(addressTagRegexp, frag) {
		addrs = append(addrs, nmapAddress{
			Addr:     attrValue(tag, "addr"),
			AddrType: attrValue(tag, "addrtype"),
		})
	}
	addr := pickAddress(addrs)
	if addr == "" {
		return HostRecord{}, false
	}

	host := HostRecord{
		Address:  addr,
		Hostname: attrValue(firstString(hostnameTagRegexp, frag), "name"),
		State:    normalizeHostState(attrValue(firstString(statusTagRegexp, frag), "state")),
		OS:       attrValue(firstString(osmatchTagRegexp, frag), "name"),
		Ports:    []PortRecord{},
	}

	for _, pf := range findAllStrings(portFragmentRegexp, frag) {
		if port, ok := extractPortFragment(pf); ok {
			host.Ports = append(host.Ports, port)
		}
	}
	return host, true
}

func extractPortFragment(frag string) (PortRecord, bool) {
	open := firstString(portTagRegexp, frag)
	port, ok := newPortRecord(attrValue(open, "protocol"), attrValue(open, "portid"))
	if !ok {
		return PortRecord{}, false
	}
	if s := attrValue(firstString(stateTagRegexp, frag), "state"); s != "" {
		port.State = NormalizePortState(s)
	}
	svc := firstString(serviceTagRegexp, frag)
	port.Service = attrValue(svc, "name")
	port.Product = attrValue(svc, "product")
	port.Version = attrValue(svc, "version")
	return port, true
}

// attrValue 从单个标签文本中取出属性值
func attrValue(tag, name string) string {
	if tag == "" {
		return ""
	}
	re, ok := attrRegexps[name]
	if !ok {
		return ""
	}
	m, err := re.FindStringMatch(tag)
	if err != nil || m == nil {
		return ""
	}
	g := m.GroupByNumber(1)
	if g == nil {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(g.String()))
}

func firstString(re *regexp2.Regexp, s string) string {
	m, err := re.FindStringMatch(s)
	if err != nil || m == nil {
		return ""
	}
	return m.String()
}

func findAllStrings(re *regexp2.Regexp, s string) []string {
	var out []string
	m, err := re.FindStringMatch(s)
	for err == nil && m != nil {
		out = append(out, m.String())
		m, err = re.FindNextMatch(m)
	}
	return out
}
