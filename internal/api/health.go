package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/ignatzorin/proposely/internal/models"
)

const PathHealth = "/health"

// Health проверяет доступность бэкенда. Текстовый ответ попадает в Status.
func (c *Client) Health(ctx context.Context) (*models.HealthStatus, error) {
	resp, err := c.Do(ctx, PathHealth, RequestOptions{Method: http.MethodGet})
	if err != nil {
		return nil, err
	}

	if !resp.IsJSON() {
		return &models.HealthStatus{Status: strings.TrimSpace(resp.Text())}, nil
	}
	var status models.HealthStatus
	if err := resp.Decode(&status); err != nil {
		return nil, err
	}
	return &status, nil
}
