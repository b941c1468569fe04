package aws

import (
	"context"

	appconfig "laundry-workers/internal/common/config"

	"github.com/aws/aws-sdk-go-v2/service/ses"
)

// SESAPI is the subset of the SES client used by the email adapter.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

func NewSESClient(ctx context.Context, cfg appconfig.AWSConfig) (*ses.Client, error) {
	awsCfg, err := LoadConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return ses.NewFromConfig(awsCfg, func(o *ses.Options) {
		if cfg.Endpoint != "" {
			o.EndpointResolver = ses.EndpointResolverFromURL(cfg.Endpoint)
		}
	}), nil
}
