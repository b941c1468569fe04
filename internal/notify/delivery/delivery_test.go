package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"laundry-workers/internal/common/config"
	commonhttp "laundry-workers/internal/common/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockSESService struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

func (m *MockSESService) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	return m.SendEmailFunc(ctx, params, optFns...)
}

type MockSNSService struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func (m *MockSNSService) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return m.PublishFunc(ctx, params, optFns...)
}

func TestAPIEmailSender(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantID    string
		wantError string
	}{
		{"success with data id", http.StatusOK, `{"data":{"id":"em_123"}}`, "em_123", ""},
		{"success with flat id", http.StatusOK, `{"id":"em_456"}`, "em_456", ""},
		{"error string", http.StatusOK, `{"error":"domain not verified"}`, "", "domain not verified"},
		{"error object", http.StatusUnprocessableEntity, `{"error":{"name":"validation_error","message":"bad to"}}`, "", "validation_error bad to"},
		{"non 2xx without body", http.StatusInternalServerError, `oops`, "", "status 500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got emailAPIRequest
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "Bearer key-1", r.Header.Get("Authorization"))
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			sender := NewAPIEmailSender(commonhttp.NewClient(5*time.Second), srv.URL, "key-1")
			receipt, err := sender.SendEmail(context.Background(), EmailMessage{
				From: "hello@laundry.test", To: "jane@example.com", Subject: "Hi", HTML: "<p>Hi</p>",
			})

			assert.Equal(t, "jane@example.com", got.To)
			assert.Equal(t, "hello@laundry.test", got.From)
			assert.Equal(t, "<p>Hi</p>", got.HTML)

			if tt.wantError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
				var perr *ProviderError
				assert.True(t, errors.As(err, &perr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, receipt.MessageID)
		})
	}
}

func TestAPIEmailSender_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	sender := NewAPIEmailSender(commonhttp.NewClient(time.Second), srv.URL, "key")
	_, err := sender.SendEmail(context.Background(), EmailMessage{To: "x@example.com"})
	assert.Error(t, err)
}

func TestGatewaySMSSender(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantID    string
		wantError string
	}{
		{"created", http.StatusCreated, `{"sid":"SM1","status":"queued"}`, "SM1", ""},
		{"rejected", http.StatusBadRequest, `{"code":21211,"message":"Invalid 'To' Phone Number"}`, "", "Invalid 'To' Phone Number"},
		{"unauthorized no json", http.StatusUnauthorized, `denied`, "", "denied"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/2010-04-01/Accounts/AC1/Messages.json", r.URL.Path)
				user, pass, ok := r.BasicAuth()
				assert.True(t, ok)
				assert.Equal(t, "AC1", user)
				assert.Equal(t, "secret", pass)
				require.NoError(t, r.ParseForm())
				assert.Equal(t, "+15550001111", r.PostForm.Get("From"))
				assert.Equal(t, "+15552223333", r.PostForm.Get("To"))
				assert.Equal(t, "Your order was picked up", r.PostForm.Get("Body"))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			sender := NewGatewaySMSSender(commonhttp.NewClient(5*time.Second), srv.URL+"/2010-04-01/", "AC1", "secret")
			receipt, err := sender.SendSMS(context.Background(), SMSMessage{
				From: "+15550001111", To: "+15552223333", Body: "Your order was picked up",
			})
			if tt.wantError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, receipt.MessageID)
		})
	}
}

func TestSESEmailSender(t *testing.T) {
	mock := &MockSESService{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			assert.Equal(t, "jane@example.com", params.Destination.ToAddresses[0])
			assert.Equal(t, "hello@laundry.test", *params.Source)
			assert.Equal(t, "Subject", *params.Message.Subject.Data)
			assert.Equal(t, "<b>Body</b>", *params.Message.Body.Html.Data)
			return &ses.SendEmailOutput{MessageId: aws.String("ses-1")}, nil
		},
	}

	receipt, err := NewSESEmailSender(mock).SendEmail(context.Background(), EmailMessage{
		From: "hello@laundry.test", To: "jane@example.com", Subject: "Subject", HTML: "<b>Body</b>",
	})
	require.NoError(t, err)
	assert.Equal(t, "ses-1", receipt.MessageID)

	failing := &MockSESService{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return nil, errors.New("SES service unavailable")
		},
	}
	_, err = NewSESEmailSender(failing).SendEmail(context.Background(), EmailMessage{To: "jane@example.com"})
	assert.ErrorContains(t, err, "SES service unavailable")
}

func TestSNSSMSSender(t *testing.T) {
	mock := &MockSNSService{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			assert.Equal(t, "+15552223333", *params.PhoneNumber)
			assert.Equal(t, "hello", *params.Message)
			return &sns.PublishOutput{MessageId: aws.String("sns-1")}, nil
		},
	}

	receipt, err := NewSNSSMSSender(mock).SendSMS(context.Background(), SMSMessage{To: "+15552223333", Body: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "sns-1", receipt.MessageID)
}

func TestNewProviders(t *testing.T) {
	var cfg config.NotificationConfig
	cfg.Email.Enabled = true
	cfg.Email.Provider = "api"
	cfg.Email.APIURL = "http://localhost/emails"
	cfg.Email.FromEmail = "hello@laundry.test"
	cfg.SMS.Enabled = false
	cfg.ProviderTimeout = 1000

	p, err := NewProviders(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &APIEmailSender{}, p.Email)
	assert.Nil(t, p.SMS)
	assert.Equal(t, "hello@laundry.test", p.FromEmail)

	cfg.SMS.Enabled = true
	cfg.SMS.Provider = "carrier-pigeon"
	_, err = NewProviders(context.Background(), cfg)
	assert.Error(t, err)
}
