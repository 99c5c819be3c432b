package cloud

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/kinesis"
)

// KinesisSink is a RecordSink backed by a Kinesis data stream.
type KinesisSink struct {
	client *kinesis.Client
	stream string
}

// NewKinesisSink creates a KinesisSink for the given stream using the
// default AWS credential chain.
func NewKinesisSink(ctx context.Context, stream, region string) (*KinesisSink, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &KinesisSink{
		client: kinesis.NewFromConfig(cfg),
		stream: stream,
	}, nil
}

// Publish puts one record onto the stream.
func (k *KinesisSink) Publish(ctx context.Context, partitionKey string, payload []byte) error {
	_, err := k.client.PutRecord(ctx, &kinesis.PutRecordInput{
		StreamName:   aws.String(k.stream),
		Data:         payload,
		PartitionKey: aws.String(partitionKey),
	})
	if err != nil {
		return fmt.Errorf("put kinesis record: %w", err)
	}
	return nil
}
