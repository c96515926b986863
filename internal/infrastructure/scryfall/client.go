// Package scryfall Scryfall API客户端(限流 + 重试),用于目录导入
package scryfall

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/xiebiao/mtgkiosk/internal/domain/set"
	"github.com/xiebiao/mtgkiosk/internal/infrastructure/config"
	"github.com/xiebiao/mtgkiosk/pkg/logger"
	"github.com/xiebiao/mtgkiosk/pkg/metrics"
)

const (
	defaultBaseURL = "https://api.scryfall.com"
	initialBackoff = time.Second
	maxBackoff     = 16 * time.Second
)

// ErrNotFound 资源不存在(404)
var ErrNotFound = errors.New("scryfall: not found")

// Client Scryfall客户端
// 所有请求共享一个限流器(默认10 req/s),429/5xx/网络错误按指数退避重试
type Client struct {
	httpClient     *http.Client
	limiter        *rate.Limiter
	baseURL        string
	userAgent      string
	maxRetries     int
	initialBackoff time.Duration
}

// NewClient 创建客户端
func NewClient(cfg config.ScryfallConfig) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = 10
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "mtgkiosk/1.0"
	}

	return &Client{
		// 下载bulk文件时Body读取可能很久,超时只约束到响应头
		httpClient: &http.Client{
			Transport: &http.Transport{ResponseHeaderTimeout: timeout, Proxy: http.ProxyFromEnvironment},
		},
		limiter:        rate.NewLimiter(rate.Limit(rps), 1),
		baseURL:        baseURL,
		userAgent:      userAgent,
		maxRetries:     cfg.MaxRetries,
		initialBackoff: initialBackoff,
	}
}

// FetchSets 获取全部系列(跟随next_page分页)
func (c *Client) FetchSets(ctx context.Context) ([]*set.Set, error) {
	var sets []*set.Set
	next := c.baseURL + "/sets"
	for next != "" {
		var page SetList
		if err := c.getJSON(ctx, next, &page); err != nil {
			return nil, fmt.Errorf("fetch sets: %w", err)
		}
		for i := range page.Data {
			sets = append(sets, page.Data[i].ToDomain())
		}
		next = ""
		if page.HasMore {
			next = page.NextPage
		}
	}
	return sets, nil
}

// BulkDataURL 解析某类bulk文件(如default_cards)的下载地址
func (c *Client) BulkDataURL(ctx context.Context, bulkType string) (string, error) {
	var list BulkDataList
	if err := c.getJSON(ctx, c.baseURL+"/bulk-data", &list); err != nil {
		return "", fmt.Errorf("fetch bulk data: %w", err)
	}
	for _, b := range list.Data {
		if b.Type == bulkType {
			return b.DownloadURI, nil
		}
	}
	return "", fmt.Errorf("bulk data %q: %w", bulkType, ErrNotFound)
}

// Download 打开下载流,调用方负责Close
func (c *Client) Download(ctx context.Context, url string) (io.ReadCloser, error) {
	resp, err := c.do(ctx, url)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *Client) getJSON(ctx context.Context, url string, dst interface{}) error {
	resp, err := c.do(ctx, url)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// do 限流 + 重试,成功时返回200响应
func (c *Client) do(ctx context.Context, url string) (*http.Response, error) {
	backoff := c.initialBackoff
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, backoff); err != nil {
				return nil, err
			}
			backoff = min(backoff*2, maxBackoff)
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			metrics.RecordScryfall("error")
			lastErr = err
			logger.Ctx(ctx).Warn().Err(err).Int("attempt", attempt+1).Str("url", url).Msg("Scryfall请求失败,准备重试")
			continue
		}

		metrics.RecordScryfall(strconv.Itoa(resp.StatusCode))

		switch {
		case resp.StatusCode == http.StatusOK:
			return resp, nil

		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = fmt.Errorf("scryfall: status %d", resp.StatusCode)
			if d := retryAfter(resp.Header.Get("Retry-After")); d > backoff {
				backoff = d
			}
			drain(resp)
			logger.Ctx(ctx).Warn().Int("status", resp.StatusCode).Int("attempt", attempt+1).Str("url", url).Msg("Scryfall限流或服务异常,准备重试")

		case resp.StatusCode == http.StatusNotFound:
			drain(resp)
			return nil, fmt.Errorf("%s: %w", url, ErrNotFound)

		default:
			defer drain(resp)
			var apiErr APIError
			if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Details != "" {
				return nil, &apiErr
			}
			return nil, fmt.Errorf("scryfall: status %d", resp.StatusCode)
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

func retryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
