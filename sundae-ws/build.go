package sundaews

import (
	"context"
	"fmt"

	sundaecli "github.com/SundaeSwap-finance/sundae-ws-notify/sundae-cli"
	sundaeddb "github.com/SundaeSwap-finance/sundae-ws-notify/sundae-ddb"
	sundaesecret "github.com/SundaeSwap-finance/sundae-ws-notify/sundae-secret"
	"github.com/SundaeSwap-finance/sundae-ws-notify/sundae-ws/connectiondao"
	"github.com/SundaeSwap-finance/sundae-ws-notify/sundae-ws/publish"
	"github.com/SundaeSwap-finance/sundae-ws-notify/sundae-ws/push"
	"github.com/SundaeSwap-finance/sundae-ws-notify/sundae-ws/token"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	consumer "github.com/harlow/kinesis-consumer"
	"github.com/rs/zerolog"
)

// TokenConfig returns the Cognito settings from flags, overlaid by the config
// secret when one is named.
func TokenConfig(s *session.Session) (token.Config, error) {
	config := token.Config{
		Region:     WSOpts.Region,
		UserPoolID: WSOpts.UserPoolID,
		ClientID:   WSOpts.ClientID,
	}
	if _, err := sundaesecret.LoadIfSet(s, WSOpts.ConfigSecret, &config); err != nil {
		return token.Config{}, err
	}
	if err := config.Validate(); err != nil {
		return token.Config{}, err
	}
	return config, nil
}

// BuildRegistry creates the connections DAO from the DynamoDB flags.
func BuildRegistry(s *session.Session) (*connectiondao.DAO, error) {
	api, err := sundaeddb.DynamoDBAPI(s)
	if err != nil {
		return nil, err
	}
	return connectiondao.Build(api, sundaecli.CommonOpts.Env, sundaeddb.DDBOpts.TableName), nil
}

// NewHandler builds the process-wide clients once. The verifier keeps
// refreshing its key set for the life of ctx.
func NewHandler(ctx context.Context, service sundaecli.Service) (*Handler, error) {
	s, err := session.NewSession()
	if err != nil {
		return nil, fmt.Errorf("unable to create aws session: %w", err)
	}
	if WSOpts.APIURL == "" && !sundaecli.CommonOpts.Dry {
		return nil, fmt.Errorf("api-url is required")
	}

	config, err := TokenConfig(s)
	if err != nil {
		return nil, err
	}
	verifier, err := token.NewCognitoVerifier(ctx, config)
	if err != nil {
		return nil, err
	}

	registry, err := BuildRegistry(s)
	if err != nil {
		return nil, err
	}

	var (
		logger  = sundaecli.Logger(service)
		metrics = sundaecli.NewMetrics(service, cloudwatch.New(s))
		pusher  = buildPusher(s, logger)
	)

	logger.Info().
		Str("table", registry.TableName()).
		Bool("dry", sundaecli.CommonOpts.Dry).
		Msg("handler ready")

	return &Handler{
		Verifier: verifier,
		Registry: registry,
		Dispatcher: &Dispatcher{
			Subscribers: registry,
			Pusher:      pusher,
			Logger:      logger,
			Metrics:     metrics,
			Concurrency: WSOpts.Concurrency,
		},
		Logger:  logger,
		Metrics: metrics,
	}, nil
}

// buildPusher posts to the management API, or only logs frames with --dry.
func buildPusher(s *session.Session, logger zerolog.Logger) Pusher {
	if sundaecli.CommonOpts.Dry {
		return push.DryRun{Logger: logger}
	}
	return push.Build(s, WSOpts.APIURL)
}

// Start serves Lambda invocations, or in console mode consumes the Kinesis
// stream directly.
func (h *Handler) Start(ctx context.Context) error {
	if !sundaecli.CommonOpts.Console {
		lambda.Start(h.HandleEvent)
		return nil
	}
	return h.consumeStream(ctx)
}

func (h *Handler) consumeStream(ctx context.Context) error {
	streamName := WSOpts.StreamName
	if streamName == "" {
		streamName = publish.StreamName(sundaecli.CommonOpts.Env)
	}

	iteratorType := "LATEST"
	if WSOpts.Replay {
		iteratorType = "TRIM_HORIZON"
	}
	c, err := consumer.New(streamName, consumer.WithShardIteratorType(iteratorType))
	if err != nil {
		return fmt.Errorf("unable to consume stream %v: %w", streamName, err)
	}

	ctx = h.Logger.WithContext(ctx)
	h.Logger.Info().Str("stream", streamName).Msg("listening")
	return c.Scan(ctx, func(record *consumer.Record) error {
		return h.Dispatcher.Dispatch(ctx, []RawEnvelope{{Data: record.Data}})
	})
}
