package reporter

import (
	"fmt"
	"io"

	"github.com/pterm/pterm" // 引入 pterm 库用于控制台输出

	"github.com/GemachDAO/openclaw/internal/parser"
)

// TabularData 可以被渲染为表格的数据
// parser.Hosts / parser.Findings / parser.FuzzResults 均实现了该接口
type TabularData interface {
	Headers() []string
	Rows() [][]string
}

// Tabular 将解析结果转换为表格数据
func Tabular(res *parser.Result) TabularData {
	if res == nil {
		return nil
	}
	switch res.Format {
	case parser.FormatNmap:
		return parser.Hosts(res.Hosts)
	case parser.FormatNuclei:
		return parser.Findings(res.Findings)
	case parser.FormatFfuf:
		return parser.FuzzResults(res.Fuzz)
	default:
		return nil
	}
}

// ConsoleReporter 控制台表格输出
type ConsoleReporter struct {
	out io.Writer
}

func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	return &ConsoleReporter{out: out}
}

// Report 渲染表格，没有数据时输出提示
func (r *ConsoleReporter) Report(data TabularData) error {
	if data == nil || len(data.Rows()) == 0 {
		_, err := fmt.Fprintln(r.out, "No results found.")
		return err
	}

	tableData := pterm.TableData{data.Headers()}
	tableData = append(tableData, data.Rows()...)

	rendered, err := pterm.DefaultTable.
		WithHasHeader(true).
		WithBoxed(false). // 简洁风格
		WithData(tableData).
		Srender()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	_, err = fmt.Fprintln(r.out, rendered)
	return err
}
