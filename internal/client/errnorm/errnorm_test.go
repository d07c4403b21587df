package errnorm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jain-bhavna/recipe-ai-app/internal/client/client"
)

type emptyErr struct{}

func (emptyErr) Error() string { return "" }

type panicErr struct{}

func (panicErr) Error() string { panic("boom") }

func apiErr(status int, detail string) error {
	e := &client.APIError{StatusCode: status}
	if detail != "" {
		e.Detail = []byte(detail)
	}
	return e
}

func TestMessage(t *testing.T) {
	var nilAPI *client.APIError

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation list", apiErr(422, `[{"loc":["body","email"],"msg":"value is not a valid email address"}]`), "value is not a valid email address"},
		{"string detail", apiErr(500, `"model unavailable"`), "model unavailable"},
		{"wrapped string detail", fmt.Errorf("detect: %w", apiErr(400, `"Invalid image format. Use JPEG or PNG."`)), "Invalid image format. Use JPEG or PNG."},
		{"empty list falls through", apiErr(422, `[]`), "request failed with status code 422"},
		{"list without msg falls to text", apiErr(422, `[{"loc":["body"]}]`), "request failed with status code 422"},
		{"blank string detail", apiErr(400, `"  "`), "request failed with status code 400"},
		{"object detail", apiErr(400, `{"code":1}`), "request failed with status code 400"},
		{"no detail", apiErr(502, ""), "request failed with status code 502"},
		{"transport", fmt.Errorf("%w: dial tcp: connection refused", client.ErrUnavailable), "server unavailable: dial tcp: connection refused"},
		{"context", context.DeadlineExceeded, "context deadline exceeded"},
		{"nil", nil, Fallback},
		{"empty text", emptyErr{}, Fallback},
		{"panicking error", panicErr{}, Fallback},
		{"typed nil api error", nilAPI, Fallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Message(tt.err)
			assert.Equal(t, tt.want, got)
			assert.NotEmpty(t, got)
		})
	}
}

func TestFields(t *testing.T) {
	err := apiErr(422, `[
		{"loc":["body","email"],"msg":"bad email"},
		{"loc":["body","password"],"msg":"too short"},
		{"loc":["body","email"],"msg":"second email message"},
		{"loc":[],"msg":"no field"}
	]`)

	assert.Equal(t, map[string]string{"email": "bad email", "password": "too short"}, Fields(err))
	assert.Nil(t, Fields(apiErr(400, `"Email already exists"`)))
	assert.Nil(t, Fields(errors.New("plain")))
	assert.Nil(t, Fields(nil))
}
