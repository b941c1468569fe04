package delivery

import (
	"context"
	"fmt"

	awsclients "laundry-workers/internal/common/aws"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SESEmailSender sends email through AWS SES.
type SESEmailSender struct {
	client awsclients.SESAPI
}

func NewSESEmailSender(client awsclients.SESAPI) *SESEmailSender {
	return &SESEmailSender{client: client}
}

func (s *SESEmailSender) SendEmail(ctx context.Context, msg EmailMessage) (Receipt, error) {
	out, err := s.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(msg.Subject)},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(msg.HTML)},
			},
		},
		Source: aws.String(msg.From),
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("ses send: %w", err)
	}
	return Receipt{MessageID: aws.ToString(out.MessageId)}, nil
}

// SNSSMSSender sends transactional SMS through AWS SNS.
type SNSSMSSender struct {
	client awsclients.SNSAPI
}

func NewSNSSMSSender(client awsclients.SNSAPI) *SNSSMSSender {
	return &SNSSMSSender{client: client}
}

func (s *SNSSMSSender) SendSMS(ctx context.Context, msg SMSMessage) (Receipt, error) {
	out, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(msg.To),
		Message:     aws.String(msg.Body),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"AWS.SNS.SMS.SMSType": {
				DataType:    aws.String("String"),
				StringValue: aws.String("Transactional"),
			},
		},
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("sns publish: %w", err)
	}
	return Receipt{MessageID: aws.ToString(out.MessageId)}, nil
}
