package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ignatzorin/proposely/internal/models"
	"github.com/ignatzorin/proposely/internal/pkg/apperror"
)

// Пути бэкенда.
const (
	PathPreview       = "/api/proposals/preview"
	PathCreate        = "/api/proposals/create"
	PathGeneratePDF   = "/api/generate-proposal"
	PathList          = "/api/proposals/list"
	PathProposalsRoot = "/api/proposals/"
)

// GenerateProposal отправляет форму на генерацию и возвращает проверенный ответ.
func (c *Client) GenerateProposal(ctx context.Context, req models.GenerateProposalRequest) (*models.GenerateProposalResponse, error) {
	resp, err := c.Do(ctx, c.generatePath, RequestOptions{
		Method:  http.MethodPost,
		Body:    req,
		Timeout: c.generationTimeout,
	})
	if err != nil {
		return nil, err
	}
	return decodeProposal(resp)
}

// PreviewProposal генерирует предложение без PDF.
func (c *Client) PreviewProposal(ctx context.Context, req models.GenerateProposalRequest) (*models.GenerateProposalResponse, error) {
	resp, err := c.Do(ctx, PathPreview, RequestOptions{
		Method:  http.MethodPost,
		Body:    req,
		Timeout: c.generationTimeout,
	})
	if err != nil {
		return nil, err
	}
	return decodeProposal(resp)
}

// SaveProposal сохраняет метаданные предложения на сервере (нужна авторизация).
func (c *Client) SaveProposal(ctx context.Context, req models.GenerateProposalRequest, generatePDF bool) (*models.SavedProposal, error) {
	resp, err := c.Do(ctx, PathCreate, RequestOptions{
		Method: http.MethodPost,
		Body:   models.SaveProposalRequest{GenerateProposalRequest: req, GeneratePDF: generatePDF},
	})
	if err != nil {
		return nil, err
	}

	var saved models.SavedProposal
	if err := resp.Decode(&saved); err != nil {
		return nil, err
	}
	if err := saved.Validate(); err != nil {
		return nil, apperror.Malformed(err, "некорректный ответ сервера: нет идентификатора предложения")
	}
	return &saved, nil
}

// GenerateProposalPDF запрашивает PDF в raw режиме. Вызывающий закрывает Body.
func (c *Client) GenerateProposalPDF(ctx context.Context, req models.GenerateProposalRequest) (*http.Response, error) {
	resp, err := c.Do(ctx, PathGeneratePDF, RequestOptions{
		Method:  http.MethodPost,
		Body:    req,
		Timeout: c.generationTimeout,
		Raw:     true,
	})
	if err != nil {
		return nil, err
	}
	return resp.Raw, nil
}

// ListProposals возвращает сохранённые предложения пользователя.
func (c *Client) ListProposals(ctx context.Context) ([]models.SavedProposal, error) {
	resp, err := c.Do(ctx, PathList, RequestOptions{Method: http.MethodGet})
	if err != nil {
		return nil, err
	}

	var list []models.SavedProposal
	if err := resp.Decode(&list); err != nil {
		return nil, err
	}
	for i := range list {
		if err := list[i].Validate(); err != nil {
			return nil, apperror.Malformed(err, "некорректный ответ сервера: запись без идентификатора")
		}
	}
	return list, nil
}

// DeleteProposal удаляет сохранённое предложение.
func (c *Client) DeleteProposal(ctx context.Context, id string) error {
	if id == "" {
		return apperror.New(apperror.ErrCodeValidation, "не указан идентификатор предложения")
	}
	_, err := c.Do(ctx, PathProposalsRoot+url.PathEscape(id), RequestOptions{Method: http.MethodDelete})
	return err
}

// DownloadPDF скачивает PDF по ссылке, выданной бэкендом. Вызывающий закрывает Body.
func (c *Client) DownloadPDF(ctx context.Context, downloadURL string) (*http.Response, error) {
	if downloadURL == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "не указана ссылка на PDF")
	}
	resp, err := c.Do(ctx, downloadURL, RequestOptions{
		Method:  http.MethodGet,
		Timeout: c.generationTimeout,
		Raw:     true,
	})
	if err != nil {
		return nil, err
	}
	return resp.Raw, nil
}

func decodeProposal(resp *Response) (*models.GenerateProposalResponse, error) {
	var out models.GenerateProposalResponse
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	if err := out.Validate(); err != nil {
		return nil, apperror.Malformed(err, "некорректный ответ сервера: предложение не соответствует схеме")
	}
	return &out, nil
}
