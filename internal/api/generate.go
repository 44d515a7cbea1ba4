package api

import (
	"context"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/zaril/internal/errors"
	"github.com/diogo/zaril/internal/models"
)

// Complete sends the conversation without streaming and returns the full reply
func (c *Client) Complete(ctx context.Context, messages []models.Message) (string, error) {
	endpoint := c.baseURL + models.PathCompletions

	body, err := c.buildPayload(messages, false)
	if err != nil {
		return "", err
	}

	req, err := c.newRequest(ctx, http.MethodPost, endpoint, body, models.DefaultHeaders())
	if err != nil {
		return "", err
	}

	raw, err := c.do(req, "complete", endpoint)
	if err != nil {
		return "", err
	}

	return parseCompletion(raw, endpoint)
}

// parseCompletion extracts the assistant reply from a non-streamed response
func parseCompletion(raw []byte, endpoint string) (string, error) {
	if !gjson.ValidBytes(raw) {
		return "", apierrors.NewParseError("response is not valid JSON", endpoint)
	}
	if msg := gjson.GetBytes(raw, PathErrorMessage); msg.Exists() {
		return "", apierrors.NewAPIErrorWithBody(0, endpoint, msg.String(), string(raw))
	}
	content := gjson.GetBytes(raw, PathMessageContent)
	if !content.Exists() {
		return "", apierrors.NewParseError("response has no message content", PathMessageContent)
	}
	return content.String(), nil
}
