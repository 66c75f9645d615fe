// Package fetch provides the HTTP client used against the retailer upstream.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/marketsnap/catalog-crawler/internal/crawler"
	"github.com/marketsnap/catalog-crawler/internal/metrics"
)

// Config configures the upstream HTTP client.
type Config struct {
	UserAgent      string
	RequestTimeout time.Duration
	MaxAttempts    int
	RetryDelay     time.Duration
}

// Client implements crawler.Fetcher using the Colly collector.
type Client struct {
	baseCollector *colly.Collector
	retry         *FixedDelayPolicy
	logger        *zap.Logger
}

// NewClient constructs a configured Colly-based client.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, errors.New("fetch: user agent is required")
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	base := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
	)
	// Pages are revisited across pagination passes; deduplication is
	// handled above this layer by the category id index.
	base.AllowURLRevisit = true
	base.IgnoreRobotsTxt = true
	base.WithTransport(&http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          16,
		MaxIdleConnsPerHost:   8,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.RequestTimeout,
		ForceAttemptHTTP2:     true,
	})
	base.SetRequestTimeout(cfg.RequestTimeout)

	return &Client{
		baseCollector: base,
		retry:         NewFixedDelayPolicy(cfg.MaxAttempts, cfg.RetryDelay),
		logger:        logger,
	}, nil
}

// Bytes fetches the request and returns the raw response body.
func (c *Client) Bytes(ctx context.Context, req crawler.FetchRequest) ([]byte, error) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		body, status, err := c.do(ctx, req)
		if err == nil {
			metrics.ObserveFetch(kindOf(req), strconv.Itoa(status))
			return body, nil
		}
		metrics.ObserveFetch(kindOf(req), statusLabel(status))
		lastErr = err
		if !c.retry.ShouldRetry(err, attempt+1) {
			break
		}
		metrics.ObserveRetry()
		c.logger.Warn("retrying fetch",
			zap.String("url", req.URL),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
		if err := c.retry.Wait(ctx, attempt); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

// JSON fetches the request and decodes the response body into v.
func (c *Client) JSON(ctx context.Context, req crawler.FetchRequest, v any) error {
	body, err := c.Bytes(ctx, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode response from %s: %w", req.URL, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, req crawler.FetchRequest) ([]byte, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	collector := c.baseCollector.Clone()
	resultCh := make(chan fetchResult, 1)
	var once sync.Once
	send := func(res fetchResult) {
		once.Do(func() {
			resultCh <- res
		})
	}

	collector.OnRequest(func(r *colly.Request) {
		for k, vals := range req.Headers {
			for _, v := range vals {
				r.Headers.Set(k, v)
			}
		}
	})

	collector.OnResponse(func(r *colly.Response) {
		send(fetchResult{
			body:   append([]byte{}, r.Body...),
			status: r.StatusCode,
		})
	})

	collector.OnError(func(r *colly.Response, err error) {
		if err == nil {
			err = errors.New("unknown colly error")
		}
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		send(fetchResult{status: status, err: fmt.Errorf("fetch %s: %w", req.URL, err)})
	})

	var visitErr error
	if len(req.JSONBody) > 0 {
		collector.OnRequest(func(r *colly.Request) {
			r.Headers.Set("Content-Type", "application/json")
		})
		visitErr = collector.PostRaw(requestURL(req), req.JSONBody)
	} else {
		visitErr = collector.Visit(requestURL(req))
	}
	if visitErr != nil {
		return nil, 0, fmt.Errorf("fetch %s: %w", req.URL, visitErr)
	}
	collector.Wait()

	select {
	case res := <-resultCh:
		if err := ctx.Err(); err != nil {
			return nil, res.status, err
		}
		return res.body, res.status, res.err
	default:
		return nil, 0, fmt.Errorf("fetch %s: no response produced", req.URL)
	}
}

func requestURL(req crawler.FetchRequest) string {
	if len(req.Query) == 0 {
		return req.URL
	}
	return req.URL + "?" + req.Query.Encode()
}

func kindOf(req crawler.FetchRequest) string {
	if len(req.JSONBody) > 0 {
		return "post"
	}
	return "get"
}

func statusLabel(status int) string {
	if status == 0 {
		return "error"
	}
	return strconv.Itoa(status)
}

type fetchResult struct {
	body   []byte
	status int
	err    error
}
