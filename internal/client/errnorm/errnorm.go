// Package errnorm turns any error produced by the API layer into a single
// human-readable message.
package errnorm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jain-bhavna/recipe-ai-app/internal/client/client"
)

// Fallback is shown when an error carries nothing displayable.
const Fallback = "Request failed"

type validationItem struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// Message returns the text to show for err. First match wins:
// the first validation item's msg, a string detail, the error text, Fallback.
// It never returns an empty string and never panics.
func Message(err error) (msg string) {
	defer func() {
		if r := recover(); r != nil || msg == "" {
			msg = Fallback
		}
	}()

	if err == nil {
		return Fallback
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr != nil {
		if items := detailItems(apiErr.Detail); len(items) > 0 && strings.TrimSpace(items[0].Msg) != "" {
			return items[0].Msg
		}
		if s := detailString(apiErr.Detail); s != "" {
			return s
		}
	}

	if text := strings.TrimSpace(err.Error()); text != "" {
		return text
	}
	return Fallback
}

// Fields maps each validation item's field name (last loc element) to its
// message. The first message per field is kept. Nil when err carries no
// validation list.
func Fields(err error) map[string]string {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr == nil {
		return nil
	}

	items := detailItems(apiErr.Detail)
	if len(items) == 0 {
		return nil
	}

	out := make(map[string]string, len(items))
	for _, it := range items {
		if len(it.Loc) == 0 || it.Msg == "" {
			continue
		}
		field := fmt.Sprint(it.Loc[len(it.Loc)-1])
		if _, ok := out[field]; !ok {
			out[field] = it.Msg
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func detailItems(raw json.RawMessage) []validationItem {
	if len(raw) == 0 || raw[0] != '[' {
		return nil
	}
	var items []validationItem
	if json.Unmarshal(raw, &items) != nil {
		return nil
	}
	return items
}

func detailString(raw json.RawMessage) string {
	if len(raw) == 0 || raw[0] != '"' {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return strings.TrimSpace(s)
}
