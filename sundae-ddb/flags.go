package sundaeddb

import (
	sundaecli "github.com/SundaeSwap-finance/sundae-ws-notify/sundae-cli"
	"github.com/urfave/cli/v2"
)

var DDBOpts struct {
	DAXCluster string
	TableName  string
}

var DAXClusterFlag = sundaecli.StringFlag("dax-cluster", "The DAX cluster to connect to", &DDBOpts.DAXCluster)

var TableNameFlag = &cli.StringFlag{
	Name:        "table-name",
	Usage:       "The websocket connections table; defaults to the environment's table",
	EnvVars:     []string{"WEB_CONNECTIONS_TABLE", "TABLE_NAME"},
	Destination: &DDBOpts.TableName,
}

var DDBFlags = []cli.Flag{
	DAXClusterFlag,
	TableNameFlag,
}
