package observability

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// MetricsPutter is the part of the CloudWatch client used here
type MetricsPutter interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchRecorder publishes operation timings as CloudWatch metrics
type CloudWatchRecorder struct {
	namespace string
	client    MetricsPutter
	logger    *zap.Logger
}

// NewCloudWatchRecorder creates a recorder; a nil client disables publishing
func NewCloudWatchRecorder(namespace string, client MetricsPutter, logger *zap.Logger) *CloudWatchRecorder {
	return &CloudWatchRecorder{namespace: namespace, client: client, logger: logger}
}

// RecordOperation implements Recorder
func (m *CloudWatchRecorder) RecordOperation(ctx context.Context, kind, name string, duration time.Duration, err error) {
	if m == nil || m.client == nil {
		return
	}

	now := time.Now()
	dims := []types.Dimension{
		{Name: aws.String("Kind"), Value: aws.String(kind)},
		{Name: aws.String("Name"), Value: aws.String(name)},
		{Name: aws.String("Status"), Value: aws.String(statusLabel(err))},
	}
	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String("OperationLatency"),
				Dimensions: dims,
				Value:      aws.Float64(float64(duration.Milliseconds())),
				Unit:       types.StandardUnitMilliseconds,
				Timestamp:  aws.Time(now),
			},
			{
				MetricName: aws.String("OperationCount"),
				Dimensions: dims,
				Value:      aws.Float64(1),
				Unit:       types.StandardUnitCount,
				Timestamp:  aws.Time(now),
			},
		},
	}

	if _, putErr := m.client.PutMetricData(ctx, input); putErr != nil {
		m.logger.Warn("Failed to publish CloudWatch metrics",
			zap.String("operation", name),
			zap.Error(putErr),
		)
	}
}
