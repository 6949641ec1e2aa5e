package parser

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFfufJSON = `{
  "commandline": "ffuf -u http://t/FUZZ -w words.txt -of json",
  "time": "2024-01-01T00:00:00Z",
  "results": [
    {"input":{"FUZZ":"a"},"position":1,"status":200,"length":10,"words":2,"lines":1,"content-type":"text/html","redirectlocation":"","url":"http://t/a","host":"t"},
    {"input":{"FUZZ":"admin"},"position":2,"status":301,"length":0,"words":1,"lines":1,"content-type":"","redirectlocation":"/admin/","url":"http://t/admin","host":"t"}
  ],
  "config": {"method": "GET"}
}`

func TestParseFfufJSON(t *testing.T) {
	results := ParseFfufJSON(sampleFfufJSON)
	require.Len(t, results, 2)

	assert.Equal(t, FuzzResult{
		URL:         "http://t/a",
		Status:      200,
		Length:      10,
		Words:       2,
		Lines:       1,
		ContentType: "text/html",
	}, results[0])
	assert.Equal(t, "http://t/admin", results[1].URL)
	assert.Equal(t, 301, results[1].Status)
	assert.Equal(t, "/admin/", results[1].RedirectLocation)
}

func TestParseFfufJSON_Minimal(t *testing.T) {
	results := ParseFfufJSON(`{"results":[{"url":"http://t/a","status":200,"length":10,"words":2,"lines":1}]}`)
	require.Len(t, results, 1)
	assert.Equal(t, FuzzResult{URL: "http://t/a", Status: 200, Length: 10, Words: 2, Lines: 1}, results[0])
}

func TestParseFfufJSON_AlternateKeys(t *testing.T) {
	raw := `{"results":[{"url":"http://t/b","status_code":"403","content_length":55,"content_type":"text/plain","redirect_location":"/login"}]}`
	results := ParseFfufJSON(raw)
	require.Len(t, results, 1)
	assert.Equal(t, FuzzResult{
		URL:              "http://t/b",
		Status:           403,
		Length:           55,
		ContentType:      "text/plain",
		RedirectLocation: "/login",
	}, results[0])
}

func TestParseFfufJSON_SkipsNonObjectElements(t *testing.T) {
	raw := `{"results":[1,"x",null,{"url":"http://t/ok","status":204},[]]}`
	results := ParseFfufJSON(raw)
	require.Len(t, results, 1)
	assert.Equal(t, "http://t/ok", results[0].URL)
	assert.Equal(t, 204, results[0].Status)
}

func TestParseFfufJSON_OutOfRangeNumbers(t *testing.T) {
	raw := `{"results":[{"url":"http://t/huge","status":1e300,"length":-1e300,"words":"1e300","lines":3}]}`
	results := ParseFfufJSON(raw)
	require.Len(t, results, 1)
	assert.Equal(t, FuzzResult{URL: "http://t/huge", Lines: 3}, results[0])

	// 第一个键越界时继续尝试后备键
	assert.Equal(t, 404, lookupInt(map[string]interface{}{"status": 1e19, "status_code": 404.0}, fuzzStatusKeys...))

	tests := []struct {
		name string
		v    float64
	}{
		{"正无穷", math.Inf(1)},
		{"负无穷", math.Inf(-1)},
		{"NaN", math.NaN()},
		{"刚好越界", float64(math.MaxInt)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, 0, lookupInt(map[string]interface{}{"length": tt.v}, fuzzLengthKeys...))
		})
	}
}

func TestParseFfufJSON_ByteOrderMark(t *testing.T) {
	results := ParseFfufJSON("\uFEFF" + sampleFfufJSON)
	assert.Len(t, results, 2)
}

func TestParseFfufJSON_MalformedDocument(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"空输入", ""},
		{"截断", `{"results":[{"url":"http://t/a"`},
		{"非 JSON", "ffuf v2.1.0"},
		{"results 不是数组", `{"results":{"url":"x"}}`},
		{"没有 results", `{"commandline":"ffuf"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := ParseFfufJSON(tt.raw)
			assert.NotNil(t, results)
			assert.Empty(t, results)
		})
	}
}
