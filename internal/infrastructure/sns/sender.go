package sns

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/policy-letter-api/internal/config"
	"github.com/policy-letter-api/internal/domain"
)

// PublishAPI is the SNS call the publisher needs.
type PublishAPI interface {
	Publish(ctx context.Context, in *sns.PublishInput, opts ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// DispatchPublisher posts letter dispatch events to a topic.
type DispatchPublisher struct {
	client   PublishAPI
	topicARN string
}

// NewClient creates an SNS client, pointed at cfg.AWSEndpointURL when set.
func NewClient(awsCfg aws.Config, cfg *config.Config) *sns.Client {
	return sns.NewFromConfig(awsCfg, func(o *sns.Options) {
		if cfg.AWSEndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
		}
	})
}

func NewDispatchPublisher(client PublishAPI, topicARN string) *DispatchPublisher {
	return &DispatchPublisher{client: client, topicARN: topicARN}
}

func (p *DispatchPublisher) PublishDispatch(ctx context.Context, ev domain.DispatchEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal dispatch event: %w", err)
	}
	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Subject:  aws.String("letter.dispatched"),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"letter_type": {DataType: aws.String("String"), StringValue: aws.String(ev.LetterType)},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}
