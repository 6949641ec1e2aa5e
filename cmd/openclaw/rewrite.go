package main

import (
	"bufio"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/GemachDAO/openclaw/internal/config"
	"github.com/GemachDAO/openclaw/internal/pkg/logger"
	"github.com/GemachDAO/openclaw/internal/ratelimit"
)

// policyFlags 命令行中对限速策略的覆盖
type policyFlags struct {
	disable   bool
	rps       int
	overrides map[string]string
}

// bindPolicyFlags 注册限速相关的 flag，rewrite 与 resolve 共用
func bindPolicyFlags(cmd *cobra.Command, pf *policyFlags) {
	flags := cmd.Flags()
	flags.BoolVar(&pf.disable, "disable", false, "禁用限速注入")
	flags.IntVar(&pf.rps, "rps", 0, "全局每秒请求数，覆盖各工具的内置默认值")
	flags.StringToStringVar(&pf.overrides, "override", nil, "工具级参数覆盖，例如 --override nmap='--max-rate 10'")
}

// buildPolicy 以配置文件为基础，叠加命令行覆盖项
func buildPolicy(cmd *cobra.Command, cfg *config.RateLimitConfig, pf *policyFlags) (*ratelimit.Policy, error) {
	if cfg == nil {
		cfg = config.DefaultConfig().RateLimit
	}
	opts := ratelimit.PolicyOptions{
		Enabled:              cfg.Enabled,
		MaxRequestsPerSecond: cfg.MaxRequestsPerSecond,
		Overrides:            make(map[string]string, len(cfg.Overrides)+len(pf.overrides)),
	}
	for k, v := range cfg.Overrides {
		opts.Overrides[k] = v
	}

	if cmd.Flags().Changed("disable") {
		opts.Enabled = !pf.disable
	}
	if cmd.Flags().Changed("rps") {
		if pf.rps < 0 {
			return nil, fmt.Errorf("invalid --rps: %d", pf.rps)
		}
		opts.MaxRequestsPerSecond = pf.rps
	}
	for k, v := range pf.overrides {
		opts.Overrides[k] = v
	}
	return ratelimit.NewPolicy(opts), nil
}

func newRewriteCmd() *cobra.Command {
	var (
		pf     policyFlags
		stream bool
	)

	cmd := &cobra.Command{
		Use:   "rewrite [command]",
		Short: "为扫描器命令注入限速参数",
		Long: `在工具名之后插入限速参数。命令中已经包含任意限速参数时保持不变。
openclaw 自身的 flag 需要写在扫描器命令之前，之后的参数原样作为命令的一部分，可以不加引号。

示例:
  openclaw rewrite "nmap -sV target.com"
  openclaw rewrite nmap -sV target.com
  openclaw rewrite --rps 50 nmap -sV target.com
  openclaw rewrite --override nuclei='-rl 5' "nuclei -u https://t"
  cat commands.txt | openclaw rewrite --stdin
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := buildPolicy(cmd, appConfig.RateLimit, &pf)
			if err != nil {
				return err
			}

			if stream {
				return runRewriteStream(cmd, policy, &pf)
			}

			if len(args) == 0 {
				return fmt.Errorf("command is required (or use --stdin)")
			}
			rewritten, err := ratelimit.Rewrite(strings.Join(args, " "), policy)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), rewritten)
			return nil
		},
	}

	bindPolicyFlags(cmd, &pf)
	cmd.Flags().BoolVar(&stream, "stdin", false, "逐行读取标准输入中的命令并输出改写结果，配置文件变更时自动重载策略")
	// 第一个位置参数之后的内容都属于扫描器命令，例如 nmap 的 -sV
	cmd.Flags().SetInterspersed(false)

	return cmd
}

// runRewriteStream 流式改写
// 使用配置文件时监听文件变化，新策略通过 atomic.Pointer 整体替换，正在处理的行不受影响
func runRewriteStream(cmd *cobra.Command, initial *ratelimit.Policy, pf *policyFlags) error {
	var current atomic.Pointer[ratelimit.Policy]
	current.Store(initial)

	if appConfigPath != "" {
		watcher, err := config.NewConfigWatcher(appConfigPath)
		if err != nil {
			return err
		}
		watcher.OnError = func(err error) {
			logger.Errorf("config reload failed: %v", err)
		}
		watcher.AddCallback(func(_, newCfg *config.Config) error {
			policy, err := buildPolicy(cmd, newCfg.RateLimit, pf)
			if err != nil {
				return err
			}
			if logger.LoggerInstance != nil {
				if err := logger.LoggerInstance.UpdateConfig(newCfg.Log); err != nil {
					return err
				}
			}
			current.Store(policy)
			logger.Infof("rate limit policy reloaded from %s", appConfigPath)
			return nil
		})
		if err := watcher.Start(); err != nil {
			watcher.Stop()
			return err
		}
		defer watcher.Stop()
	}

	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			fmt.Fprintln(out, line)
			continue
		}
		fmt.Fprintln(out, current.Load().Rewrite(line))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read commands: %w", err)
	}
	return nil
}
