package connectiondao

import (
	"testing"
	"time"

	"github.com/tj/assert"
)

func TestNewConnection(t *testing.T) {
	conn := NewConnection("site-1", "abc=", 42)
	assert.Equal(t, "site-1/connections", conn.PK)
	assert.Equal(t, "abc=", conn.SK)
	assert.Equal(t, "abc=", conn.ConnectionID)
	assert.Equal(t, "abc=", conn.GSI1PK)
	assert.Equal(t, "site-1/connections", conn.GSI1SK)
	assert.EqualValues(t, 42, conn.TTL)
	assert.Equal(t, "site-1", conn.Site())
}

func TestTopicKey(t *testing.T) {
	assert.Equal(t, "site-1/connections", TopicKey("site-1"))
	assert.Equal(t, "site-1", SiteOf(TopicKey("site-1")))
	assert.Equal(t, "default", SiteOf("default"))
}

func TestTableName(t *testing.T) {
	assert.Equal(t, "prod-sundae-ws--connections", TableName("prod"))
}

func TestExpiresAt(t *testing.T) {
	now := time.Unix(1700000000, 0)

	dao := &DAO{Now: func() time.Time { return now }}
	assert.Equal(t, now.Add(24*time.Hour).Unix(), dao.expiresAt())

	dao.TTL = time.Hour
	assert.Equal(t, now.Add(time.Hour).Unix(), dao.expiresAt())
}
