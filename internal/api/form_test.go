package api

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeForm(t *testing.T) {
	budget := 1500.5

	tests := []struct {
		name string
		body any
		want string
	}{
		{
			name: "declaration order kept",
			body: struct {
				Username string `json:"username"`
				Password string `json:"password"`
			}{"a@b.com", "x"},
			want: "username=a%40b.com&password=x",
		},
		{
			name: "nil values skipped",
			body: struct {
				Name   string   `json:"name"`
				Budget *float64 `json:"budget"`
				Note   *string  `json:"note"`
			}{Name: "Acme Co", Budget: &budget},
			want: "name=Acme+Co&budget=1500.5",
		},
		{
			name: "scalars in literal form",
			body: map[string]any{"a": true, "b": 3, "c": nil},
			want: "a=true&b=3",
		},
		{
			name: "url values",
			body: url.Values{"grant_type": {"password"}},
			want: "grant_type=password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := encodeForm(tt.body)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeForm_RejectsNonObject(t *testing.T) {
	_, err := encodeForm([]string{"a", "b"})
	assert.Error(t, err)
}
