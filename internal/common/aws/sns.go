package aws

import (
	"context"

	appconfig "laundry-workers/internal/common/config"

	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// SNSAPI is the subset of the SNS client used by the SMS adapter.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func NewSNSClient(ctx context.Context, cfg appconfig.AWSConfig) (*sns.Client, error) {
	awsCfg, err := LoadConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return sns.NewFromConfig(awsCfg, func(o *sns.Options) {
		if cfg.Endpoint != "" {
			o.EndpointResolver = sns.EndpointResolverFromURL(cfg.Endpoint)
		}
	}), nil
}
