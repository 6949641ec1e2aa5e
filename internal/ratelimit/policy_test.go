package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GemachDAO/openclaw/internal/config"
)

func TestResolve_Defaults(t *testing.T) {
	p := DefaultPolicy()

	flags, err := Resolve("nmap", p)
	require.NoError(t, err)
	assert.Equal(t, "--max-rate 100", flags)

	for _, tool := range SupportedTools() {
		assert.Equal(t, tool.DefaultFlags(), p.Resolve(tool.String()), "tool %s", tool)
		assert.NotEmpty(t, tool.DefaultFlags(), "tool %s", tool)
	}

	assert.Equal(t, "", p.Resolve("curl"))
	assert.Equal(t, "", p.Resolve(""))
}

func TestResolve_GlobalRate(t *testing.T) {
	p := NewPolicy(PolicyOptions{Enabled: true, MaxRequestsPerSecond: 50})

	want := map[string]string{
		"nmap":        "--max-rate 50",
		"masscan":     "--rate 50",
		"nuclei":      "-rate-limit 50",
		"ffuf":        "-rate 50",
		"httpx":       "-rl 50",
		"feroxbuster": "--rate-limit 50",
		"gobuster":    "--delay 20ms",
		"wpscan":      "--throttle 20",
		"sqlmap":      "--delay 0.02",
		"nikto":       "-Pause 0.02",
		"hydra":       "-t 50",
	}
	require.Len(t, want, len(SupportedTools()))
	for tool, flags := range want {
		assert.Equal(t, flags, p.Resolve(tool), "tool %s", tool)
	}

	// 全局速率下未知工具没有模板
	assert.Equal(t, "", p.Resolve("curl"))
}

func TestResolve_Precedence(t *testing.T) {
	tests := []struct {
		name string
		opts PolicyOptions
		tool string
		want string
	}{
		{
			name: "禁用时覆盖项也不生效",
			opts: PolicyOptions{Enabled: false, MaxRequestsPerSecond: 10, Overrides: map[string]string{"nmap": "--max-rate 5"}},
			tool: "nmap",
			want: "",
		},
		{
			name: "覆盖项优先于全局速率",
			opts: PolicyOptions{Enabled: true, MaxRequestsPerSecond: 50, Overrides: map[string]string{"nmap": "--max-rate 5"}},
			tool: "nmap",
			want: "--max-rate 5",
		},
		{
			name: "覆盖项键名大小写与路径不敏感",
			opts: PolicyOptions{Enabled: true, Overrides: map[string]string{"/opt/NMAP": "-T2"}},
			tool: "nmap",
			want: "-T2",
		},
		{
			name: "未知工具的覆盖项同样生效",
			opts: PolicyOptions{Enabled: true, Overrides: map[string]string{"curl": "--limit-rate 10k"}},
			tool: "curl",
			want: "--limit-rate 10k",
		},
		{
			name: "空覆盖项被忽略",
			opts: PolicyOptions{Enabled: true, Overrides: map[string]string{"ffuf": "  "}},
			tool: "ffuf",
			want: "-rate 50",
		},
		{
			name: "负数速率视为未设置",
			opts: PolicyOptions{Enabled: true, MaxRequestsPerSecond: -5},
			tool: "httpx",
			want: "-rl 50",
		},
		{
			name: "工具名带路径和后缀",
			opts: PolicyOptions{Enabled: true},
			tool: `C:\Tools\Nuclei.exe`,
			want: "-rate-limit 50",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewPolicy(tt.opts).Resolve(tt.tool))
		})
	}
}

func TestNewPolicy_CopiesOverrides(t *testing.T) {
	overrides := map[string]string{"nmap": "--max-rate 1"}
	p := NewPolicy(PolicyOptions{Enabled: true, Overrides: overrides})

	overrides["nmap"] = "--max-rate 999"
	overrides["masscan"] = "--rate 999"

	assert.Equal(t, "--max-rate 1", p.Resolve("nmap"))
	assert.Equal(t, "--rate 100", p.Resolve("masscan"))
}

func TestFromConfig(t *testing.T) {
	p := FromConfig(nil)
	assert.True(t, p.Enabled())
	assert.Equal(t, 0, p.MaxRequestsPerSecond())

	p = FromConfig(&config.RateLimitConfig{
		Enabled:              true,
		MaxRequestsPerSecond: 10,
		Overrides:            map[string]string{"Nuclei": "-rl 3"},
	})
	assert.Equal(t, 10, p.MaxRequestsPerSecond())
	flags, ok := p.Override("nuclei")
	assert.True(t, ok)
	assert.Equal(t, "-rl 3", flags)
	assert.Equal(t, "--max-rate 10", p.Resolve("nmap"))
}

func TestNilPolicy(t *testing.T) {
	_, err := Resolve("nmap", nil)
	assert.ErrorIs(t, err, ErrNilPolicy)

	_, err = Rewrite("nmap -sV target.com", nil)
	assert.ErrorIs(t, err, ErrNilPolicy)
}

func TestDisabledPolicy(t *testing.T) {
	p := DisabledPolicy()
	assert.False(t, p.Enabled())
	for _, tool := range SupportedTools() {
		assert.Equal(t, "", p.Resolve(tool.String()))
	}
}
