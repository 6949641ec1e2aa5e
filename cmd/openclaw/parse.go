package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/GemachDAO/openclaw/internal/parser"
	"github.com/GemachDAO/openclaw/internal/pkg/logger"
	"github.com/GemachDAO/openclaw/internal/reporter"
)

func newParseCmd() *cobra.Command {
	var (
		inputFile    string
		outputFormat string
	)

	cmd := &cobra.Command{
		Use:   "parse [nmap|nuclei|ffuf|auto]",
		Short: "解析扫描器输出并生成报告",
		Long: `读取扫描器的原始输出，解析为结构化结果后按指定格式输出。
未指定格式时根据内容自动识别。

示例:
  openclaw parse nmap -f scan.xml
  openclaw parse -f results.json -o json
  cat findings.jsonl | openclaw parse nuclei -o csv > findings.csv
`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"nmap", "nuclei", "ffuf", "auto"},
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			format, err := parser.ParseFormat(name)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("output") {
				outputFormat = appConfig.Output.Format
			}
			out, err := reporter.ParseOutputFormat(outputFormat)
			if err != nil {
				return err
			}

			raw, err := readInput(cmd, inputFile)
			if err != nil {
				return err
			}

			res, err := parser.Parse(format, raw)
			if err != nil {
				return err
			}
			if res.Len() == 0 {
				logger.Warnf("no %s records found in input", res.Format)
			} else {
				logger.WithField("format", res.Format).Infof("parsed %d records", res.Len())
			}

			return reporter.Write(cmd.OutOrStdout(), res, out)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&inputFile, "file", "f", "-", "输入文件，- 表示标准输入")
	flags.StringVarP(&outputFormat, "output", "o", "markdown", "输出格式 (markdown, table, json, yaml, csv)")

	return cmd
}

// readInput 读取文件或标准输入
func readInput(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(data), nil
}
