package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// SQSSender is the subset of the SQS client used here.
type SQSSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSNotifier sends notifications to an SQS queue. The kind travels as a
// message attribute so the mailer can filter without decoding the body.
type SQSNotifier struct {
	client   SQSSender
	queueURL string
}

// NewSQSNotifier loads the default AWS configuration for region. endpoint
// overrides the service endpoint (LocalStack).
func NewSQSNotifier(ctx context.Context, queueURL, region, endpoint string) (*SQSNotifier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	client := sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return NewSQSNotifierWithClient(client, queueURL), nil
}

// NewSQSNotifierWithClient creates a notifier over client
func NewSQSNotifierWithClient(client SQSSender, queueURL string) *SQSNotifier {
	return &SQSNotifier{client: client, queueURL: queueURL}
}

func (n *SQSNotifier) SendInvite(ctx context.Context, msg InviteNotification) error {
	return n.send(ctx, KindInvite, msg)
}

func (n *SQSNotifier) SendDecision(ctx context.Context, msg DecisionNotification) error {
	return n.send(ctx, KindDecision, msg)
}

func (n *SQSNotifier) send(ctx context.Context, kind string, payload any) error {
	return deliver(ctx, "sqs", kind, payload, func(body []byte) error {
		_, err := n.client.SendMessage(ctx, &sqs.SendMessageInput{
			QueueUrl:    aws.String(n.queueURL),
			MessageBody: aws.String(string(body)),
			MessageAttributes: map[string]types.MessageAttributeValue{
				"kind": {DataType: aws.String("String"), StringValue: aws.String(kind)},
			},
		})
		return err
	})
}
