package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/habitlog/internal/db"
	"github.com/habitlog/internal/service"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

// MetricContributions 是 GitHub 数据源唯一支持的指标
const MetricContributions = "contributions"

const defaultGitHubAPIURL = "https://api.github.com"

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// GitHubOptions 配置 GitHubProvider
type GitHubOptions struct {
	Token     string
	Username  string
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64
	CacheTTL  time.Duration
}

// GitHubProvider 统计某天的提交、PR 与 issue 数量之和，与贡献图一致
type GitHubProvider struct {
	token    string
	username string
	baseURL  string
	client   httpDoer
	limiter  *rate.Limiter
	cache    Cache
	cacheTTL time.Duration
	log      logrus.FieldLogger
}

// NewGitHubProvider 创建 GitHubProvider；cache 为 nil 时使用内存缓存
func NewGitHubProvider(opts GitHubOptions, cache Cache, logger logrus.FieldLogger) *GitHubProvider {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultGitHubAPIURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	limit := opts.RateLimit
	if limit <= 0 {
		limit = 5
	}
	if cache == nil {
		cache = NewMemoryCache()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &GitHubProvider{
		token:    opts.Token,
		username: opts.Username,
		baseURL:  baseURL,
		client:   &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(rate.Limit(limit), 1),
		cache:    cache,
		cacheTTL: opts.CacheTTL,
		log:      logger.WithField("provider", service.ProviderGitHub),
	}
}

// SetHTTPClient 替换 HTTP 客户端，主要面向测试场景
func (p *GitHubProvider) SetHTTPClient(client httpDoer) {
	if client == nil {
		p.client = &http.Client{Timeout: 10 * time.Second}
		return
	}
	p.client = client
}

func (p *GitHubProvider) Name() string {
	return service.ProviderGitHub
}

// FetchValue 不支持的指标返回 nil, nil
func (p *GitHubProvider) FetchValue(ctx context.Context, habit db.Habit, isoDate string) (*float64, error) {
	if habit.ProviderMetric != MetricContributions {
		p.log.WithFields(logrus.Fields{"habit_id": habit.ID, "metric": habit.ProviderMetric}).Warn("unsupported github metric")
		return nil, nil
	}
	if _, err := service.ParseDate(isoDate); err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("github:%s:%s:%s", p.username, MetricContributions, isoDate)
	if cached, ok, err := p.cache.Get(ctx, cacheKey); err != nil {
		p.log.WithError(err).Warn("provider cache read failed")
	} else if ok {
		if value, err := strconv.ParseFloat(cached, 64); err == nil {
			return &value, nil
		}
	}

	total, err := p.contributions(ctx, isoDate)
	if err != nil {
		return nil, err
	}

	if err := p.cache.Set(ctx, cacheKey, strconv.FormatFloat(total, 'f', -1, 64), p.cacheTTL); err != nil {
		p.log.WithError(err).Warn("provider cache write failed")
	}
	p.log.WithFields(logrus.Fields{"date": isoDate, "total": total}).Info("github contributions fetched")
	return &total, nil
}

// contributions 任一查询失败即整体失败，避免把不完整的合计写入缓存
func (p *GitHubProvider) contributions(ctx context.Context, isoDate string) (float64, error) {
	queries := []struct {
		path  string
		query string
	}{
		{"/search/commits", fmt.Sprintf("author:%s committer-date:%s", p.username, isoDate)},
		{"/search/issues", fmt.Sprintf("author:%s type:pr created:%s", p.username, isoDate)},
		{"/search/issues", fmt.Sprintf("author:%s type:issue created:%s", p.username, isoDate)},
	}

	var total float64
	for _, q := range queries {
		count, err := p.searchCount(ctx, q.path, q.query)
		if err != nil {
			return 0, err
		}
		total += count
	}
	return total, nil
}

func (p *GitHubProvider) searchCount(ctx context.Context, path, query string) (float64, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return 0, p.unavailable(fmt.Errorf("rate limiter: %w", err))
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("per_page", "1")
	endpoint := p.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("build github request: %w", err)
	}
	req.Header.Set("Authorization", "token "+p.token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "habitlog/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, p.unavailable(fmt.Errorf("request %s: %w", path, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, p.unavailable(fmt.Errorf("read %s response: %w", path, err))
	}

	if resp.StatusCode >= 400 {
		return 0, p.statusError(resp, body)
	}

	count := gjson.GetBytes(body, "total_count")
	if !count.Exists() {
		return 0, p.unavailable(fmt.Errorf("%s response missing total_count", path))
	}
	return count.Float(), nil
}

func (p *GitHubProvider) statusError(resp *http.Response, body []byte) error {
	msg := strings.TrimSpace(gjson.GetBytes(body, "message").String())
	if msg == "" {
		msg = resp.Status
	}
	cause := fmt.Errorf("github returned %s: %s", resp.Status, msg)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0":
		return &service.ProviderError{
			Provider:   p.Name(),
			Kind:       service.ProviderErrorRateLimit,
			RetryAfter: retryAfter(resp.Header, time.Now()),
			Err:        cause,
		}
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return &service.ProviderError{Provider: p.Name(), Kind: service.ProviderErrorAuth, Err: cause}
	default:
		return p.unavailable(cause)
	}
}

func (p *GitHubProvider) unavailable(err error) error {
	return &service.ProviderError{Provider: p.Name(), Kind: service.ProviderErrorUnavailable, Err: err}
}

// retryAfter 优先读取 Retry-After（秒），其次根据 X-RateLimit-Reset 推算
func retryAfter(header http.Header, now time.Time) time.Duration {
	if v := strings.TrimSpace(header.Get("Retry-After")); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	if v := strings.TrimSpace(header.Get("X-RateLimit-Reset")); v != "" {
		if epoch, err := strconv.ParseInt(v, 10, 64); err == nil {
			if d := time.Unix(epoch, 0).Sub(now); d > 0 {
				return d.Round(time.Second)
			}
		}
	}
	return 0
}
