package parser

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/GemachDAO/openclaw/internal/pkg/logger"
)

// ffufDocument ffuf -of json 的顶层结构，只关心 results
type ffufDocument struct {
	Results []json.RawMessage `json:"results"`
}

var (
	fuzzURLKeys      = []string{"url"}
	fuzzStatusKeys   = []string{"status", "status_code"}
	fuzzLengthKeys   = []string{"length", "content_length"}
	fuzzWordsKeys    = []string{"words"}
	fuzzLinesKeys    = []string{"lines"}
	fuzzCTypeKeys    = []string{"content-type", "content_type"}
	fuzzRedirectKeys = []string{"redirectlocation", "redirect_location", "redirect"}
)

// ParseFfufJSON 解析 ffuf 的 JSON 报告
// 整个文档无法解码时返回空切片；results 中单个元素不是对象时跳过该元素
func ParseFfufJSON(raw string) []FuzzResult {
	results := []FuzzResult{}

	var doc ffufDocument
	if err := json.Unmarshal([]byte(trimInput(raw)), &doc); err != nil {
		logger.Debugf("ffuf: malformed document: %v", err)
		return results
	}

	for i, elem := range doc.Results {
		var obj map[string]interface{}
		if err := json.Unmarshal(elem, &obj); err != nil || obj == nil {
			logger.Debugf("ffuf: skip result #%d", i)
			continue
		}
		results = append(results, FuzzResult{
			URL:              lookupString(obj, fuzzURLKeys...),
			Status:           lookupInt(obj, fuzzStatusKeys...),
			Length:           lookupInt(obj, fuzzLengthKeys...),
			Words:            lookupInt(obj, fuzzWordsKeys...),
			Lines:            lookupInt(obj, fuzzLinesKeys...),
			ContentType:      lookupString(obj, fuzzCTypeKeys...),
			RedirectLocation: lookupString(obj, fuzzRedirectKeys...),
		})
	}
	return results
}

// lookupInt 数字字段，兼容字符串形式的数字，无法解析时为 0
// 超出 int 范围的数值与非数字字符串同样处理
func lookupInt(obj map[string]interface{}, keys ...string) int {
	for _, key := range keys {
		v, ok := lookup(obj, key)
		if !ok {
			continue
		}
		switch vv := v.(type) {
		case float64:
			if math.IsNaN(vv) || vv >= float64(math.MaxInt) || vv < float64(math.MinInt) {
				continue
			}
			return int(vv)
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(vv)); err == nil {
				return n
			}
		}
	}
	return 0
}
