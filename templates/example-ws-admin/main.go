package main

import (
	"log"
	"os"

	sundaecli "github.com/SundaeSwap-finance/sundae-ws-notify/sundae-cli"
	sundaeddb "github.com/SundaeSwap-finance/sundae-ws-notify/sundae-ddb"
	sundaerest "github.com/SundaeSwap-finance/sundae-ws-notify/sundae-rest"
	sundaews "github.com/SundaeSwap-finance/sundae-ws-notify/sundae-ws"
	"github.com/SundaeSwap-finance/sundae-ws-notify/sundae-ws/publish"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/kinesis"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/urfave/cli/v2"
)

// served under /ws-admin behind API Gateway
var service = sundaecli.NewSubpathService("ws-admin")

var opts struct {
	QueueURL string
}

func main() {
	var flags []cli.Flag
	flags = append(flags, sundaecli.CommonFlags...)
	flags = append(flags, sundaecli.PortFlag(5001))
	flags = append(flags, sundaeddb.DDBFlags...)
	flags = append(flags,
		sundaecli.StringFlag("queue-url", "The SQS queue notifications are published to; the stream is used when unset", &opts.QueueURL),
		sundaews.StreamNameFlag,
	)

	app := sundaecli.App(service, action, flags...)
	if err := app.Run(os.Args); err != nil {
		log.Fatalln(err)
	}
}

func action(_ *cli.Context) error {
	s, err := session.NewSession()
	if err != nil {
		return err
	}

	registry, err := sundaews.BuildRegistry(s)
	if err != nil {
		return err
	}

	var publisher publish.Publisher
	if opts.QueueURL != "" {
		publisher = publish.NewSQS(sqs.New(s), opts.QueueURL)
	} else {
		streamName := sundaews.WSOpts.StreamName
		if streamName == "" {
			streamName = publish.StreamName(sundaecli.CommonOpts.Env)
		}
		publisher = publish.NewKinesis(kinesis.New(s), streamName)
	}

	routes := sundaerest.Middlewares(service, sundaews.AdminRoutes(registry, publisher))
	return sundaerest.Webserver(service, routes)
}
