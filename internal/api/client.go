package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/proposely/internal/logger"
	"github.com/ignatzorin/proposely/internal/pkg/apperror"
)

const (
	// DefaultTimeout ограничивает обычные вызовы.
	DefaultTimeout = 20 * time.Second
	// GenerationTimeout ограничивает генерацию и получение PDF.
	GenerationTimeout = 60 * time.Second
	// DefaultGeneratePath используется, если путь генерации не задан.
	DefaultGeneratePath = "/generate"

	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"
)

// CredentialProvider отдаёт текущий bearer токен.
// Пустая строка без ошибки означает, что токена нет.
type CredentialProvider interface {
	Token(ctx context.Context) (string, error)
}

// Client выполняет запросы к бэкенду генерации предложений.
type Client struct {
	baseURL           string
	creds             CredentialProvider
	httpClient        *http.Client
	generatePath      string
	defaultTimeout    time.Duration
	generationTimeout time.Duration
}

// Option настраивает Client.
type Option func(*Client)

// WithHTTPClient подменяет http.Client (тесты, прокси).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithGeneratePath задаёт путь JSON-генерации.
func WithGeneratePath(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.generatePath = path
		}
	}
}

// WithTimeouts переопределяет таймауты по умолчанию; нулевые значения игнорируются.
func WithTimeouts(request, generation time.Duration) Option {
	return func(c *Client) {
		if request > 0 {
			c.defaultTimeout = request
		}
		if generation > 0 {
			c.generationTimeout = generation
		}
	}
}

// NewClient создаёт экземпляр клиента. creds может быть nil.
func NewClient(baseURL string, creds CredentialProvider, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		// Таймаут задаётся на каждый вызов через контекст.
		httpClient:        &http.Client{},
		generatePath:      DefaultGeneratePath,
		defaultTimeout:    DefaultTimeout,
		generationTimeout: GenerationTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL возвращает адрес бэкенда.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// RequestOptions задаёт параметры одного вызова.
type RequestOptions struct {
	Method   string
	Body     any
	Token    string
	Headers  map[string]string
	Timeout  time.Duration
	FormData bool
	Raw      bool
}

// Response описывает успешный ответ бэкенда.
// В raw режиме заполнен только Raw; вызывающий обязан закрыть Raw.Body.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Raw        *http.Response
}

// IsJSON сообщает, что ответ объявлен как JSON.
func (r *Response) IsJSON() bool {
	return isJSONContentType(r.Header.Get("Content-Type"))
}

// Text возвращает тело ответа как строку.
func (r *Response) Text() string {
	return string(r.Body)
}

// Decode разбирает JSON тело ответа в v.
func (r *Response) Decode(v any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return apperror.Malformed(nil, "некорректный ответ сервера: пустое тело")
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return apperror.Malformed(err, "некорректный ответ сервера")
	}
	return nil
}

// Do выполняет один HTTP вызов и возвращает разобранный ответ или нормализованную ошибку.
func (c *Client) Do(ctx context.Context, path string, opts RequestOptions) (*Response, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	start := time.Now()
	resp, err := c.do(ctx, method, path, opts)
	duration := time.Since(start)
	recordCall(duration, err)

	fields := logrus.Fields{
		"method":      method,
		"path":        path,
		"duration_ms": duration.Milliseconds(),
	}
	if err != nil {
		fields["status"] = apperror.Status(err)
		logger.WithFields(fields).WithError(err).Warn("api: запрос завершился ошибкой")
		return nil, err
	}
	fields["status"] = resp.StatusCode
	logger.WithFields(fields).Debug("api: запрос выполнен")
	return resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, opts RequestOptions) (*Response, error) {
	target := c.resolveURL(path)

	// Токен уходит только на хост бэкенда: ссылки на CDN и presigned URL его не получают.
	var token string
	if c.sameOrigin(target) {
		token = opts.Token
		if token == "" && c.creds != nil {
			stored, err := c.creds.Token(ctx)
			if err != nil {
				return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось прочитать токен сессии")
			}
			token = stored
		}
	}

	headers := make(http.Header)
	if !opts.FormData {
		headers.Set("Content-Type", contentTypeJSON)
	}
	for k, v := range opts.Headers {
		headers.Set(k, v)
	}

	var body io.Reader
	if opts.Body != nil && method != http.MethodGet {
		if opts.FormData {
			encoded, err := encodeForm(opts.Body)
			if err != nil {
				return nil, apperror.Wrap(err, apperror.ErrCodeBadRequest, "не удалось закодировать форму")
			}
			body = strings.NewReader(encoded)
			headers.Set("Content-Type", contentTypeForm)
		} else {
			payload, err := json.Marshal(opts.Body)
			if err != nil {
				return nil, apperror.Wrap(err, apperror.ErrCodeBadRequest, "не удалось закодировать тело запроса")
			}
			body = bytes.NewReader(payload)
		}
	}
	if token != "" {
		headers.Set("Authorization", "Bearer "+token)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = c.defaultTimeout
	}

	reqCtx, cancel := context.WithCancel(ctx)
	var timedOut atomic.Bool
	timer := time.AfterFunc(timeout, func() {
		timedOut.Store(true)
		cancel()
	})
	release := func() {
		timer.Stop()
		cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, method, target, body)
	if err != nil {
		release()
		return nil, apperror.Wrap(err, apperror.ErrCodeBadRequest, "некорректный запрос")
	}
	req.Header = headers

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		release()
		return nil, classifyTransportError(ctx, timedOut.Load(), err)
	}

	ok := httpResp.StatusCode >= 200 && httpResp.StatusCode < 300

	if ok && opts.Raw {
		// Заголовки получены: таймер больше не действует, тело читает вызывающий.
		if !timer.Stop() && timedOut.Load() {
			httpResp.Body.Close()
			cancel()
			return nil, apperror.Timeout(context.DeadlineExceeded)
		}
		httpResp.Body = &cancelOnClose{ReadCloser: httpResp.Body, cancel: cancel}
		return &Response{
			StatusCode: httpResp.StatusCode,
			Header:     httpResp.Header,
			Raw:        httpResp,
		}, nil
	}

	data, readErr := io.ReadAll(httpResp.Body)
	httpResp.Body.Close()
	fired := timedOut.Load()
	release()

	if !ok {
		msg := extractErrorMessage(httpResp, data, readErr)
		return nil, apperror.FromStatus(httpResp.StatusCode, msg)
	}
	if readErr != nil {
		return nil, classifyTransportError(ctx, fired, readErr)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       data,
	}
	if resp.IsJSON() && len(bytes.TrimSpace(data)) > 0 && !json.Valid(data) {
		return nil, apperror.Malformed(nil, "некорректный ответ сервера: невалидный JSON")
	}
	return resp, nil
}

// resolveURL склеивает путь с базовым адресом; абсолютные http(s) адреса используются как есть.
func (c *Client) resolveURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// sameOrigin сообщает, что адрес указывает на тот же scheme и host, что и baseURL.
func (c *Client) sameOrigin(target string) bool {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return false
	}
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	return strings.EqualFold(base.Scheme, u.Scheme) && strings.EqualFold(base.Host, u.Host)
}

func classifyTransportError(parent context.Context, timedOut bool, err error) error {
	switch {
	case timedOut:
		return apperror.Timeout(err)
	case errors.Is(parent.Err(), context.DeadlineExceeded):
		return apperror.Timeout(err)
	case parent.Err() != nil:
		return apperror.Wrap(parent.Err(), apperror.ErrCodeCanceled, "запрос отменён")
	case errors.Is(err, context.DeadlineExceeded):
		return apperror.Timeout(err)
	default:
		return apperror.Wrap(err, apperror.ErrCodeRequestFailed, "не удалось связаться с сервером")
	}
}

func isJSONContentType(ct string) bool {
	if ct == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.Contains(ct, contentTypeJSON)
	}
	return mediaType == contentTypeJSON || strings.HasSuffix(mediaType, "+json")
}

// cancelOnClose освобождает ресурсы вызова при закрытии тела raw ответа.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}
