//go:build integration

package integration

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

// 集成测试辅助函数
// 针对已启动的服务运行:go test -tags integration ./test/integration/...
// 地址通过MTGKIOSK_BASE_URL指定,默认http://localhost:8080

const Timeout = 10 * time.Second

// BaseURL 服务地址
var BaseURL = func() string {
	if v := os.Getenv("MTGKIOSK_BASE_URL"); v != "" {
		return v
	}
	return "http://localhost:8080"
}()

// AdminToken 启用认证时通过MTGKIOSK_ADMIN_TOKEN传入
var AdminToken = os.Getenv("MTGKIOSK_ADMIN_TOKEN")

// Response 原始响应
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Decode 解析JSON响应体
func (r *Response) Decode(t *testing.T, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Body, dst), "解析JSON响应失败: %s", string(r.Body))
}

// ErrorMessage 错误响应中的error字段
func (r *Response) ErrorMessage(t *testing.T) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	r.Decode(t, &body)
	return body.Error
}

func do(t *testing.T, req *http.Request) *Response {
	t.Helper()
	if AdminToken != "" {
		req.Header.Set("Authorization", "Bearer "+AdminToken)
	}

	client := &http.Client{Timeout: Timeout}
	resp, err := client.Do(req)
	require.NoError(t, err, "发送HTTP请求失败")
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取响应体失败")
	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: body}
}

// GetJSON 发送GET请求
func GetJSON(t *testing.T, path string) *Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, BaseURL+path, nil)
	require.NoError(t, err, "创建HTTP请求失败")
	return do(t, req)
}

// SendJSON 发送带JSON body的请求
func SendJSON(t *testing.T, method, path string, data interface{}) *Response {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err, "JSON序列化失败")

	req, err := http.NewRequest(method, BaseURL+path, bytes.NewReader(raw))
	require.NoError(t, err, "创建HTTP请求失败")
	req.Header.Set("Content-Type", "application/json")
	return do(t, req)
}

// UploadCSV 上传CSV文件
func UploadCSV(t *testing.T, path, filename, content string) *Response {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, BaseURL+path, &buf)
	require.NoError(t, err, "创建HTTP请求失败")
	req.Header.Set("Content-Type", w.FormDataContentType())
	return do(t, req)
}
