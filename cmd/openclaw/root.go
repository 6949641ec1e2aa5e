package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/GemachDAO/openclaw/internal/config"
	"github.com/GemachDAO/openclaw/internal/pkg/logger"
)

var (
	cfgFile  string
	envFiles []string

	// 在 PersistentPreRunE 中加载，子命令直接使用
	appConfig     *config.Config
	appConfigPath string
)

// newRootCmd 构建完整的命令树，测试中每次都重新构建以隔离 flag 状态
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "openclaw",
		Short: "扫描器输出解析与限速参数注入工具",
		Long: `openclaw 负责两件事:
  1. 将 nmap / nuclei / ffuf 的原始输出解析为结构化结果并生成报告
  2. 在扫描器命令中注入限速参数，不会覆盖用户已经指定的限速设置

示例:
  openclaw parse nmap -f scan.xml
  nuclei -u https://t -jsonl | openclaw parse nuclei -o table
  openclaw rewrite "nmap -sV target.com"
  openclaw rewrite --rps 20 "ffuf -u https://t/FUZZ -w words.txt"
`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initRuntime(cmd)
		},
	}

	pFlags := cmd.PersistentFlags()
	pFlags.StringVar(&cfgFile, "config", "", "配置文件路径 (默认搜索 ./configs/config.yaml, ./config.yaml)")
	pFlags.StringSliceVar(&envFiles, "env-file", []string{".env"}, ".env 文件路径，可重复指定")
	pFlags.String("log-level", "", "日志级别 (debug, info, warn, error)")

	cmd.AddCommand(newParseCmd())
	cmd.AddCommand(newRewriteCmd())
	cmd.AddCommand(newResolveCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute 执行根命令
func Execute() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\n[FATAL] openclaw crashed unexpectedly: %v\n", r)
			os.Exit(1)
		}
	}()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// initRuntime 依次加载 .env、配置文件并初始化日志
func initRuntime(cmd *cobra.Command) error {
	if err := config.NewEnvLoader(envFiles...).Load(); err != nil {
		return err
	}

	loader := config.NewConfigLoader(cfgFile, config.DefaultEnvPrefix)
	if flag := cmd.Flags().Lookup("log-level"); flag != nil {
		if err := loader.Viper().BindPFlag("log.level", flag); err != nil {
			return fmt.Errorf("failed to bind log-level flag: %w", err)
		}
	}

	cfg, err := loader.LoadConfig()
	if err != nil {
		return err
	}
	appConfig = cfg
	appConfigPath = loader.GetConfigPath()

	if _, err := logger.InitLogger(cfg.Log); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	if appConfigPath != "" {
		logger.Debugf("using config file %s", appConfigPath)
	}
	return nil
}
