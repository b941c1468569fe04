// Package aws builds the SES and SNS clients behind the email and SMS adapters.
package aws

import (
	"context"
	"fmt"

	appconfig "laundry-workers/internal/common/config"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// LoadConfig resolves region and credentials. Static keys win over the default chain when
// both are set.
func LoadConfig(ctx context.Context, cfg appconfig.AWSConfig) (awssdk.Config, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return awssdk.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return awsCfg, nil
}
