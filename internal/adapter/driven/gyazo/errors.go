package gyazo

import (
	"html"
	"io"
	"net/http"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/ericfisherdev/gyazobot/internal/domain/model"
)

const (
	// maxErrorBodyRead caps how much of a failed response is read.
	maxErrorBodyRead = 16 << 10
	// maxErrorBodyLen caps the sanitized body kept on a TransportError, since
	// it ends up in a chat message.
	maxErrorBodyLen = 300
)

// errorBodyPolicy strips all markup; gateways in front of Gyazo answer some
// failures with HTML pages.
var errorBodyPolicy = bluemonday.StrictPolicy()

// newStatusError builds a TransportError from a non-success response.
func newStatusError(resp *http.Response) *model.TransportError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyRead))
	return &model.TransportError{
		StatusCode: resp.StatusCode,
		Body:       sanitizeErrorBody(string(raw)),
	}
}

// sanitizeErrorBody removes markup, collapses whitespace and truncates.
func sanitizeErrorBody(body string) string {
	text := html.UnescapeString(errorBodyPolicy.Sanitize(body))
	text = strings.Join(strings.Fields(text), " ")

	runes := []rune(text)
	if len(runes) > maxErrorBodyLen {
		text = string(runes[:maxErrorBodyLen]) + "…"
	}
	return text
}
