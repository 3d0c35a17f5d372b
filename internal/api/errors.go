package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

// messageFields проверяются по порядку при разборе тела ошибки.
var messageFields = []string{"detail", "message", "error"}

// extractErrorMessage достаёт человекочитаемое сообщение из тела неуспешного ответа.
// Пустая строка означает, что сообщение не найдено и будет подставлен код статуса.
func extractErrorMessage(resp *http.Response, body []byte, readErr error) string {
	if readErr != nil {
		return statusText(resp)
	}

	if isJSONContentType(resp.Header.Get("Content-Type")) {
		var data any
		if err := json.Unmarshal(body, &data); err != nil {
			return statusText(resp)
		}
		if obj, ok := data.(map[string]any); ok {
			for _, key := range messageFields {
				if msg := fieldMessage(obj[key]); msg != "" {
					return msg
				}
			}
		}
		encoded, err := json.Marshal(data)
		if err != nil {
			return statusText(resp)
		}
		return string(encoded)
	}

	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return statusText(resp)
}

// fieldMessage пропускает пустые значения; нестроковые значения кодируются в JSON.
func fieldMessage(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if !val {
			return ""
		}
	case float64:
		if val == 0 {
			return ""
		}
	}
	encoded, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(encoded)
}

// statusText возвращает текст статуса без числового кода ("Not Found").
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
