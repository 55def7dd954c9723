package connectiondao

import "strings"

const (
	// ReverseIndex is the GSI keyed by connection id, used to find every site a
	// connection is registered under.
	ReverseIndex = "GSI1"

	topicSuffix = "/connections"
)

// Connection is one live websocket registered under one site. A single item
// carries both access paths: PK/SK for lookups by site, GSI1PK/GSI1SK for
// lookups by connection.
type Connection struct {
	PK           string `dynamodbav:"PK" ddb:"hash"`
	SK           string `dynamodbav:"SK" ddb:"range"`
	ConnectionID string `dynamodbav:"connectionId"`
	GSI1PK       string `dynamodbav:"GSI1PK" ddb:"gsi_hash:GSI1"`
	GSI1SK       string `dynamodbav:"GSI1SK" ddb:"gsi_range:GSI1"`
	TTL          int64  `dynamodbav:"TimeToLive"`
}

// NewConnection builds the record registering connectionID under site.
func NewConnection(site, connectionID string, expiresAt int64) Connection {
	key := TopicKey(site)
	return Connection{
		PK:           key,
		SK:           connectionID,
		ConnectionID: connectionID,
		GSI1PK:       connectionID,
		GSI1SK:       key,
		TTL:          expiresAt,
	}
}

// Site returns the site the record is registered under.
func (c Connection) Site() string {
	return SiteOf(c.PK)
}

// TopicKey returns the partition key for a site, e.g. site-1 -> site-1/connections.
func TopicKey(site string) string {
	return site + topicSuffix
}

// SiteOf reverses TopicKey.
func SiteOf(topicKey string) string {
	return strings.TrimSuffix(topicKey, topicSuffix)
}
