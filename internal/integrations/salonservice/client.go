package salonservice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент для работы с SalonService
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента SalonService
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// GetSalon получает профиль салона вместе с часами работы
func (c *Client) GetSalon(ctx context.Context, salonID int64) (*Salon, error) {
	url := fmt.Sprintf("%s/internal/salons/%d", c.baseURL, salonID)

	var salon Salon
	if err := c.getJSON(ctx, url, &salon, ErrSalonNotFound); err != nil {
		return nil, err
	}

	return &salon, nil
}

// GetMenuItem получает позицию меню салона
func (c *Client) GetMenuItem(ctx context.Context, salonID, menuID int64) (*MenuItem, error) {
	url := fmt.Sprintf("%s/internal/salons/%d/menu/%d", c.baseURL, salonID, menuID)

	var item MenuItem
	if err := c.getJSON(ctx, url, &item, ErrMenuItemNotFound); err != nil {
		return nil, err
	}

	return &item, nil
}

// getJSON выполняет GET-запрос и декодирует JSON-ответ.
// 404 маппится в notFoundErr вызывающей операции.
func (c *Client) getJSON(ctx context.Context, url string, dst interface{}, notFoundErr error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Продолжаем обработку
	case http.StatusNotFound:
		return notFoundErr
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return nil
}
