package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	commonhttp "laundry-workers/internal/common/http"
)

// APIEmailSender posts to a transactional email HTTP API that answers
// {"data":{"id":...}} on success and {"error":...} on rejection.
type APIEmailSender struct {
	client   *commonhttp.Client
	endpoint string
	apiKey   string
}

func NewAPIEmailSender(client *commonhttp.Client, endpoint, apiKey string) *APIEmailSender {
	return &APIEmailSender{client: client, endpoint: endpoint, apiKey: apiKey}
}

type emailAPIRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

type emailAPIResponse struct {
	Data *struct {
		ID string `json:"id"`
	} `json:"data"`
	ID    string          `json:"id"`
	Error json.RawMessage `json:"error"`
}

func (s *APIEmailSender) SendEmail(ctx context.Context, msg EmailMessage) (Receipt, error) {
	resp, err := s.client.PostJSON(ctx, s.endpoint, emailAPIRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
	}, map[string]string{"Authorization": "Bearer " + s.apiKey})
	if err != nil {
		return Receipt{}, fmt.Errorf("email api request: %w", err)
	}

	var body emailAPIResponse
	_ = json.Unmarshal(resp.Body, &body)

	if msg := apiErrorMessage(body.Error); msg != "" {
		return Receipt{}, &ProviderError{Provider: "email-api", StatusCode: resp.StatusCode, Message: msg}
	}
	if !resp.OK() {
		return Receipt{}, &ProviderError{Provider: "email-api", StatusCode: resp.StatusCode, Message: truncate(string(resp.Body), 200)}
	}

	id := body.ID
	if body.Data != nil && body.Data.ID != "" {
		id = body.Data.ID
	}
	return Receipt{MessageID: id}, nil
}

// apiErrorMessage accepts either a string or an object with a message field.
func apiErrorMessage(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
		Name    string `json:"name"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && (obj.Message != "" || obj.Name != "") {
		return strings.TrimSpace(obj.Name + " " + obj.Message)
	}
	return string(raw)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
