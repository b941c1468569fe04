package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	commonhttp "laundry-workers/internal/common/http"
)

// GatewaySMSSender sends through an SMS gateway REST API: a form-encoded POST of
// From/To/Body to /Accounts/{sid}/Messages.json with basic auth.
type GatewaySMSSender struct {
	client     *commonhttp.Client
	baseURL    string
	accountSID string
	authToken  string
}

func NewGatewaySMSSender(client *commonhttp.Client, baseURL, accountSID, authToken string) *GatewaySMSSender {
	return &GatewaySMSSender{
		client:     client,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		accountSID: accountSID,
		authToken:  authToken,
	}
}

type gatewayResponse struct {
	SID     string `json:"sid"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (s *GatewaySMSSender) SendSMS(ctx context.Context, msg SMSMessage) (Receipt, error) {
	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", s.baseURL, url.PathEscape(s.accountSID))

	form := url.Values{}
	form.Set("From", msg.From)
	form.Set("To", msg.To)
	form.Set("Body", msg.Body)

	resp, err := s.client.PostForm(ctx, endpoint, form, s.accountSID, s.authToken)
	if err != nil {
		return Receipt{}, fmt.Errorf("sms gateway request: %w", err)
	}

	var body gatewayResponse
	_ = json.Unmarshal(resp.Body, &body)

	if !resp.OK() {
		message := body.Message
		if message == "" {
			message = truncate(string(resp.Body), 200)
		}
		return Receipt{}, &ProviderError{Provider: "sms-gateway", StatusCode: resp.StatusCode, Message: message}
	}
	return Receipt{MessageID: body.SID}, nil
}
