package utils

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"

	"gogwan-api/internal/config"
	"gogwan-api/internal/logger"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

var (
	// 全局客户端实例，将在初始化时设置
	RestyDefaultClient *resty.Client
)

// InitHTTPClients 初始化HTTP客户端
func InitHTTPClients(cfg *config.Config) {
	RestyDefaultClient = NewRestyClient(cfg)
}

// NewRestyClient 创建带连接池与重试的客户端
func NewRestyClient(cfg *config.Config) *resty.Client {
	// 创建自定义的Transport
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        cfg.HTTPClient.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.HTTPClient.MaxIdleConnsPerHost,
		MaxConnsPerHost:     cfg.HTTPClient.MaxConnsPerHost,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.Security.TLSSkipVerify,
			MinVersion:         tls.VersionTLS12, // 强制使用TLS 1.2+
		},
	}

	client := resty.NewWithClient(&http.Client{
		Transport: transport,
		Timeout:   cfg.HTTPClient.Timeout,
	}).
		SetRetryCount(cfg.HTTPClient.RetryCount).
		SetRetryWaitTime(cfg.HTTPClient.RetryWaitTime).
		SetRetryMaxWaitTime(cfg.HTTPClient.RetryMaxWaitTime).
		SetHeaders(map[string]string{
			"Accept":     "application/json",
			"User-Agent": "gogwan-api/1.0",
		}).
		OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
			logger.Debug("上游响应",
				zap.String("url", resp.Request.URL),
				zap.Int("status", resp.StatusCode()),
				zap.Duration("latency", resp.Time()),
			)
			if resp.StatusCode() >= 400 {
				return fmt.Errorf("upstream error: status %d, body: %s",
					resp.StatusCode(), resp.String())
			}
			return nil
		})

	// 添加重试条件
	client.AddRetryCondition(func(r *resty.Response, err error) bool {
		// 网络错误或5xx错误时重试
		return err != nil || r.StatusCode() >= 500
	})

	return client
}
