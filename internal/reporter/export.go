package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/GemachDAO/openclaw/internal/parser"
)

// OutputFormat 报告输出格式
type OutputFormat string

const (
	OutputMarkdown OutputFormat = "markdown"
	OutputTable    OutputFormat = "table"
	OutputJSON     OutputFormat = "json"
	OutputYAML     OutputFormat = "yaml"
	OutputCSV      OutputFormat = "csv"
)

// ParseOutputFormat 校验输出格式
func ParseOutputFormat(name string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(name))); f {
	case OutputMarkdown, OutputTable, OutputJSON, OutputYAML, OutputCSV:
		return f, nil
	case "", "md":
		return OutputMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", name)
	}
}

// Write 将解析结果按指定格式写出
func Write(w io.Writer, res *parser.Result, format OutputFormat) error {
	if res == nil {
		return fmt.Errorf("result cannot be nil")
	}
	switch format {
	case OutputMarkdown:
		_, err := io.WriteString(w, FormatResult(res))
		return err
	case OutputTable:
		return NewConsoleReporter(w).Report(Tabular(res))
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case OutputCSV:
		return WriteCSV(w, Tabular(res))
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteCSV 导出为 CSV，首行为表头
// 写入 UTF-8 BOM，防止 Excel 打开乱码
func WriteCSV(w io.Writer, data TabularData) error {
	if data == nil {
		return nil
	}
	if _, err := io.WriteString(w, "\xEF\xBB\xBF"); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(data.Headers()); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	if err := cw.WriteAll(data.Rows()); err != nil {
		return fmt.Errorf("failed to write csv rows: %w", err)
	}
	return nil
}
