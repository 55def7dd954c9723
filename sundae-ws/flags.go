package sundaews

import (
	sundaecli "github.com/SundaeSwap-finance/sundae-ws-notify/sundae-cli"
	"github.com/urfave/cli/v2"
)

var WSOpts struct {
	Region       string
	UserPoolID   string
	ClientID     string
	ConfigSecret string
	APIURL       string
	StreamName   string
	Replay       bool
	Concurrency  int
}

var RegionFlag = sundaecli.StringFlag("region", "The region of the Cognito user pool", &WSOpts.Region)
var UserPoolIDFlag = sundaecli.StringFlag("cognito-user-pool-id", "The Cognito user pool issuing tokens", &WSOpts.UserPoolID)
var ClientIDFlag = sundaecli.StringFlag("cognito-user-pool-client-id", "The Cognito app client tokens must be issued for", &WSOpts.ClientID)
var ConfigSecretFlag = sundaecli.StringFlag("config-secret", "Optional secret holding region, userPoolId and clientId", &WSOpts.ConfigSecret)
var APIURLFlag = sundaecli.StringFlag("api-url", "The API Gateway Management API endpoint used to push to connections", &WSOpts.APIURL)
var StreamNameFlag = sundaecli.StringFlag("stream-name", "The Kinesis stream to consume in console mode", &WSOpts.StreamName)
var ReplayFlag = sundaecli.BoolFlag("replay", "Whether to replay the stream from the beginning in console mode", &WSOpts.Replay)
var ConcurrencyFlag = sundaecli.IntFlag("concurrency", "Max concurrent pushes per notification", &WSOpts.Concurrency, defaultConcurrency)

var WSFlags = []cli.Flag{
	RegionFlag,
	UserPoolIDFlag,
	ClientIDFlag,
	ConfigSecretFlag,
	APIURLFlag,
	StreamNameFlag,
	ReplayFlag,
	ConcurrencyFlag,
}
