package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GemachDAO/openclaw/internal/ratelimit"
	"github.com/GemachDAO/openclaw/internal/reporter"
)

// toolTable 支持的工具及当前策略下的参数
type toolTable struct {
	policy *ratelimit.Policy
}

func (t toolTable) Headers() []string {
	return []string{"Tool", "Default", "Resolved"}
}

func (t toolTable) Rows() [][]string {
	var rows [][]string
	for _, tool := range ratelimit.SupportedTools() {
		rows = append(rows, []string{tool.String(), tool.DefaultFlags(), t.policy.Resolve(tool.String())})
	}
	return rows
}

func newResolveCmd() *cobra.Command {
	var (
		pf   policyFlags
		list bool
	)

	cmd := &cobra.Command{
		Use:   "resolve [tool]",
		Short: "显示工具在当前策略下的限速参数",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := buildPolicy(cmd, appConfig.RateLimit, &pf)
			if err != nil {
				return err
			}

			if list || len(args) == 0 {
				return reporter.NewConsoleReporter(cmd.OutOrStdout()).Report(toolTable{policy: policy})
			}

			flags, err := ratelimit.Resolve(args[0], policy)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), flags)
			return nil
		},
	}

	bindPolicyFlags(cmd, &pf)
	cmd.Flags().BoolVar(&list, "list", false, "列出全部支持的工具")

	return cmd
}
