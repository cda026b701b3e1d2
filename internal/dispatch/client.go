// Package dispatch опрашивает ленту диспетчерской, которая раздаёт новые заказы партнёрам.
//
// Лента отвечает на GET /api/dispatch/partners/{partnerID}/orders:
//   - 200 и JSON-массив заказов в формате model.OrderPayload;
//   - 204, если для партнёра сейчас ничего нет;
//   - 429, если партнёр опрашивает слишком часто; Retry-After задаёт паузу в секундах.
//
// Лента может присылать один и тот же заказ повторно, пока партнёр его не принял.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmeshcher/delivery-partner/internal/model"
)

const requestTimeout = 5 * time.Second

var errNotConfigured = errors.New("dispatch feed address is not set")

// Client запрашивает заказы у ленты диспетчерской.
type Client struct {
	feedURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент ленты. Адрес без схемы считается http.
func NewClient(address string) *Client {
	feedURL := strings.TrimRight(address, "/")
	if feedURL != "" && !strings.Contains(feedURL, "://") {
		feedURL = "http://" + feedURL
	}

	return &Client{
		feedURL:    feedURL,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// FetchOrders возвращает заказы, предложенные партнёру, и код ответа ленты.
// Для 429 вместо ошибки возвращается пауза до следующего запроса.
func (c *Client) FetchOrders(ctx context.Context, partnerID string) ([]model.OrderPayload, int, time.Duration, error) {
	if c == nil || c.feedURL == "" {
		return nil, 0, 0, errNotConfigured
	}

	endpoint, err := url.JoinPath(c.feedURL, "api", "dispatch", "partners", url.PathEscape(partnerID), "orders")
	if err != nil {
		return nil, 0, 0, fmt.Errorf("build feed url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("create feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("poll dispatch feed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var offered []model.OrderPayload
		if err := json.NewDecoder(resp.Body).Decode(&offered); err != nil {
			return nil, resp.StatusCode, 0, fmt.Errorf("decode offered orders: %w", err)
		}
		return offered, resp.StatusCode, 0, nil
	case http.StatusNoContent:
		return nil, resp.StatusCode, 0, nil
	case http.StatusTooManyRequests:
		return nil, resp.StatusCode, retryAfter(resp.Header), nil
	default:
		return nil, resp.StatusCode, 0, fmt.Errorf("dispatch feed answered %d", resp.StatusCode)
	}
}

// retryAfter поддерживает только форму Retry-After в секундах.
func retryAfter(h http.Header) time.Duration {
	seconds, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
