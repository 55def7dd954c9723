package main

import (
	"context"
	"log"
	"os"

	sundaecli "github.com/SundaeSwap-finance/sundae-ws-notify/sundae-cli"
	sundaeddb "github.com/SundaeSwap-finance/sundae-ws-notify/sundae-ddb"
	sundaews "github.com/SundaeSwap-finance/sundae-ws-notify/sundae-ws"
	"github.com/urfave/cli/v2"
)

var service = sundaecli.NewService("ws-notify")

func main() {
	var flags []cli.Flag
	flags = append(flags, sundaecli.CommonFlags...)
	flags = append(flags, sundaeddb.DDBFlags...)
	flags = append(flags, sundaews.WSFlags...)

	app := sundaecli.App(service, action, flags...)
	if err := app.Run(os.Args); err != nil {
		log.Fatalln(err)
	}
}

func action(_ *cli.Context) error {
	ctx := context.Background()

	handler, err := sundaews.NewHandler(ctx, service)
	if err != nil {
		return err
	}
	return handler.Start(ctx)
}
