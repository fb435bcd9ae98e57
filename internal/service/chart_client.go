package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"roast-server/internal/models"
)

// ErrChartServiceFailed - ошибка вызова внешнего сервиса расчета карты.
var ErrChartServiceFailed = errors.New("ошибка сервиса расчета натальной карты")

// ChartClient запрашивает расчет натальной карты у внешнего сервиса.
type ChartClient interface {
	// ComputeChart вызывает сервис с разложенными параметрами рождения.
	ComputeChart(ctx context.Context, details models.BirthDetails) (*models.ChartData, error)
}

// Compile-time check
var _ ChartClient = (*httpChartClient)(nil)

type httpChartClient struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewChartClient creates a ChartClient calling the external chart HTTP API.
func NewChartClient(url string, timeout time.Duration, logger *zap.Logger) ChartClient {
	return &httpChartClient{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Named("ChartClient"),
	}
}

// ComputeChart POSTs the birth parameters and decodes the structured response.
// Any non-2xx status fails the call so the workflow step can retry.
func (c *httpChartClient) ComputeChart(ctx context.Context, details models.BirthDetails) (*models.ChartData, error) {
	body, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chart request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create chart request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Chart service request failed", zap.Error(err), zap.String("url", c.url))
		return nil, fmt.Errorf("%w: %v", ErrChartServiceFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Тело читаем только для диагностики в логе
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.logger.Error("Chart service returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", respBody),
		)
		return nil, fmt.Errorf("%w: status %d", ErrChartServiceFailed, resp.StatusCode)
	}

	var chart models.ChartData
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrChartServiceFailed, err)
	}

	c.logger.Debug("Chart computed",
		zap.Duration("latency", time.Since(start)),
		zap.String("sunSign", chart.SunSign),
		zap.String("moonSign", chart.MoonSign),
	)
	return &chart, nil
}
