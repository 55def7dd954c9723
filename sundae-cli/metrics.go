package sundaecli

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/cloudwatch/cloudwatchiface"
	"github.com/rs/zerolog"
)

const metricsNamespace = "sundae-services"

type Metrics struct {
	service    Service
	cloudwatch cloudwatchiface.CloudWatchAPI
}

func NewMetrics(service Service, cloudwatch cloudwatchiface.CloudWatchAPI) Metrics {
	return Metrics{
		service,
		cloudwatch,
	}
}

type MetricName string

const (
	ResponseTimeMetric        MetricName = "ResponseTime"
	ConnectAcceptedMetric     MetricName = "ConnectAccepted"
	ConnectRejectedMetric     MetricName = "ConnectRejected"
	DisconnectedMetric        MetricName = "Disconnected"
	EnvelopesDispatchedMetric MetricName = "EnvelopesDispatched"
	EnvelopesDroppedMetric    MetricName = "EnvelopesDropped"
	DeliveryFailuresMetric    MetricName = "DeliveryFailures"
)

type DimensionName string

const (
	ServiceNameDimension    DimensionName = "Service"
	ServiceVersionDimension DimensionName = "Version"
	RouteDimension          DimensionName = "Route"
)

func defaultDimensions(service Service) map[DimensionName]string {
	return map[DimensionName]string{
		ServiceNameDimension:    service.Name,
		ServiceVersionDimension: service.Version,
	}
}

func mapToDimensions(ms ...map[DimensionName]string) []*cloudwatch.Dimension {
	var dimensions []*cloudwatch.Dimension
	for _, ds := range ms {
		for k, v := range ds {
			if v == "" {
				continue
			}
			dimensions = append(dimensions, &cloudwatch.Dimension{
				Name:  aws.String(string(k)),
				Value: aws.String(v),
			})
		}
	}
	return dimensions
}

func (m Metrics) put(ctx context.Context, name MetricName, unit string, value float64, dimensions []map[DimensionName]string) {
	if m.cloudwatch == nil {
		return
	}
	awsDimensions := mapToDimensions(append(dimensions, defaultDimensions(m.service))...)
	_, err := m.cloudwatch.PutMetricDataWithContext(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(metricsNamespace),
		MetricData: []*cloudwatch.MetricDatum{
			{
				MetricName: aws.String(string(name)),
				Timestamp:  aws.Time(time.Now()),
				Unit:       aws.String(unit),
				Value:      aws.Float64(value),
				Dimensions: awsDimensions,
			},
		},
	})
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("metric", string(name)).Msg("couldn't publish metric")
	}
}

func (m Metrics) Event(ctx context.Context, name MetricName, dimensions ...map[DimensionName]string) {
	m.put(ctx, name, "Count", 1, dimensions)
}

func (m Metrics) Timing(ctx context.Context, name MetricName, start time.Time, dimensions ...map[DimensionName]string) {
	m.put(ctx, name, "Milliseconds", float64(time.Since(start).Milliseconds()), dimensions)
}

func (m Metrics) Gauge(ctx context.Context, name MetricName, value float64, dimensions ...map[DimensionName]string) {
	m.put(ctx, name, "None", value, dimensions)
}
