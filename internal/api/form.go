package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// encodeForm превращает верхний уровень объекта в application/x-www-form-urlencoded.
// Порядок ключей совпадает с порядком полей структуры; null и опущенные значения пропускаются.
func encodeForm(body any) (string, error) {
	if values, ok := body.(url.Values); ok {
		return values.Encode(), nil
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("api: сериализация формы: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return "", fmt.Errorf("api: разбор формы: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return "", fmt.Errorf("api: тело формы должно быть объектом")
	}

	var parts []string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return "", fmt.Errorf("api: разбор формы: %w", err)
		}
		key, _ := keyTok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return "", fmt.Errorf("api: разбор формы: %w", err)
		}
		text, present := formValue(value)
		if !present {
			continue
		}
		parts = append(parts, url.QueryEscape(key)+"="+url.QueryEscape(text))
	}
	return strings.Join(parts, "&"), nil
}

// formValue возвращает строковое представление значения; false для null.
func formValue(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", false
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s, true
		}
	}
	return string(trimmed), true
}
