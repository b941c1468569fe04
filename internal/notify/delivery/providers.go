package delivery

import (
	"context"
	"fmt"

	awsclients "laundry-workers/internal/common/aws"
	"laundry-workers/internal/common/config"
	commonhttp "laundry-workers/internal/common/http"
)

// Providers are the configured senders. A nil sender means the channel is disabled.
type Providers struct {
	Email     EmailSender
	SMS       SMSSender
	FromEmail string
	FromPhone string
}

// NewProviders builds the senders selected in config.
func NewProviders(ctx context.Context, cfg config.NotificationConfig) (*Providers, error) {
	p := &Providers{
		FromEmail: cfg.Email.FromEmail,
		FromPhone: cfg.SMS.FromNumber,
	}
	httpClient := commonhttp.NewClient(config.GetDuration(cfg.ProviderTimeout))

	if cfg.Email.Enabled {
		switch cfg.Email.Provider {
		case "api":
			p.Email = NewAPIEmailSender(httpClient, cfg.Email.APIURL, cfg.Email.APIKey)
		case "ses":
			client, err := awsclients.NewSESClient(ctx, cfg.AWS)
			if err != nil {
				return nil, fmt.Errorf("ses client: %w", err)
			}
			p.Email = NewSESEmailSender(client)
		default:
			return nil, fmt.Errorf("unknown email provider %q", cfg.Email.Provider)
		}
	}

	if cfg.SMS.Enabled {
		switch cfg.SMS.Provider {
		case "gateway":
			p.SMS = NewGatewaySMSSender(httpClient, cfg.SMS.GatewayURL, cfg.SMS.AccountSID, cfg.SMS.AuthToken)
		case "sns":
			client, err := awsclients.NewSNSClient(ctx, cfg.AWS)
			if err != nil {
				return nil, fmt.Errorf("sns client: %w", err)
			}
			p.SMS = NewSNSSMSSender(client)
		default:
			return nil, fmt.Errorf("unknown sms provider %q", cfg.SMS.Provider)
		}
	}

	return p, nil
}
