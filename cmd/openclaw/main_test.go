package main

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute 每次构建新的命令树，避免 flag 状态在用例之间残留
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("OPENCLAW_CONFIG_PATH", "")
	t.Setenv("OPENCLAW_RATE_LIMIT_RPS", "")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRewriteCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"默认策略", []string{"rewrite", "nmap -sV target.com"}, "nmap --max-rate 100 -sV target.com\n"},
		{"全局速率", []string{"rewrite", "--rps", "50", "nmap -sV target.com"}, "nmap --max-rate 50 -sV target.com\n"},
		{"禁用", []string{"rewrite", "--disable", "nmap -sV target.com"}, "nmap -sV target.com\n"},
		{"工具级覆盖", []string{"rewrite", "--override", "nmap=-T2", "nmap -sV target.com"}, "nmap -T2 -sV target.com\n"},
		{"已有限速参数", []string{"rewrite", "nuclei -rl 10 -u https://x"}, "nuclei -rl 10 -u https://x\n"},
		{"不加引号的命令", []string{"rewrite", "nmap", "-sV", "target.com"}, "nmap --max-rate 100 -sV target.com\n"},
		{"不加引号且带 flag", []string{"rewrite", "--rps", "50", "nmap", "-sV", "target.com"}, "nmap --max-rate 50 -sV target.com\n"},
		{"命令之后的 --disable 属于命令本身", []string{"rewrite", "nmap", "-sV", "--disable", "target.com"}, "nmap --max-rate 100 -sV --disable target.com\n"},
		{"不加引号的已限速命令", []string{"rewrite", "nuclei", "-rl", "10", "-u", "https://x"}, "nuclei -rl 10 -u https://x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, "", tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestRewriteCommand_Errors(t *testing.T) {
	_, err := execute(t, "", "rewrite")
	assert.Error(t, err)

	_, err = execute(t, "", "rewrite", "--rps", "-1", "nmap x")
	assert.Error(t, err)
}

func TestRewriteCommand_Stdin(t *testing.T) {
	in := "nmap -sV a\n\nffuf -u http://t/FUZZ -rate 5\ncurl https://x\n"
	out, err := execute(t, in, "rewrite", "--stdin")
	require.NoError(t, err)
	assert.Equal(t, "nmap --max-rate 100 -sV a\n\nffuf -u http://t/FUZZ -rate 5\ncurl https://x\n", out)
}

func TestResolveCommand(t *testing.T) {
	out, err := execute(t, "", "resolve", "/usr/bin/nmap")
	require.NoError(t, err)
	assert.Equal(t, "--max-rate 100\n", out)

	out, err = execute(t, "", "resolve", "--rps", "4", "sqlmap")
	require.NoError(t, err)
	assert.Equal(t, "--delay 0.25\n", out)

	out, err = execute(t, "", "resolve", "--list")
	require.NoError(t, err)
	assert.Contains(t, out, "feroxbuster")
	assert.Contains(t, out, "--rate-limit 50")
}

func TestParseCommand(t *testing.T) {
	in := `{"results":[{"url":"http://t/a","status":200,"length":10,"words":2,"lines":1}]}`

	out, err := execute(t, in, "parse", "ffuf", "-o", "csv")
	require.NoError(t, err)
	assert.Equal(t, "\xEF\xBB\xBFURL,Status,Length,Words,Lines,ContentType,Redirect\nhttp://t/a,200,10,2,1,,\n", out)

	// 自动识别并使用配置中的默认输出格式 (markdown)
	out, err = execute(t, in, "parse")
	require.NoError(t, err)
	assert.Contains(t, out, "## Fuzz Results (1)")

	_, err = execute(t, in, "parse", "burp")
	assert.Error(t, err)

	_, err = execute(t, in, "parse", "-o", "pdf")
	assert.Error(t, err)
}

func TestConfigCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "configs", "config.yaml")

	out, err := execute(t, "", "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	_, err = execute(t, "", "config", "init", path)
	assert.Error(t, err, "已存在的文件需要 --force")

	out, err = execute(t, "", "--config", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "# "+path)
	assert.Contains(t, out, "max_requests_per_second: 0")

	out, err = execute(t, "", "--config", path, "rewrite", "masscan -p80 10.0.0.0/8")
	require.NoError(t, err)
	assert.Equal(t, "masscan --rate 100 -p80 10.0.0.0/8\n", out)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "openclaw ")
	assert.Contains(t, out, "Go Version:")
}
