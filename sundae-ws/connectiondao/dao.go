package connectiondao

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/savaki/ddb"
	"golang.org/x/sync/errgroup"
)

// DefaultTTL bounds how long a registration survives without a disconnect.
const DefaultTTL = 24 * time.Hour

// DAO provides access to the websocket connections table.
type DAO struct {
	table     *ddb.Table
	tableName string

	// TTL overrides DefaultTTL when positive.
	TTL time.Duration
	Now func() time.Time
}

// New creates a new connections DAO.
func New(api dynamodbiface.DynamoDBAPI, tableName string) *DAO {
	return &DAO{
		table:     ddb.New(api).MustTable(tableName, Connection{}),
		tableName: tableName,
	}
}

func (d *DAO) TableName() string {
	return d.tableName
}

func (d *DAO) expiresAt() int64 {
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	ttl := d.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return now().Add(ttl).Unix()
}

// Put stores a connection record.
func (d *DAO) Put(ctx context.Context, conn Connection) error {
	if err := d.table.Put(conn).RunWithContext(ctx); err != nil {
		return fmt.Errorf("failed to put connection %v for %v: %w", conn.ConnectionID, conn.PK, err)
	}
	return nil
}

// RegisterMemberships writes one record per site concurrently. Every write runs
// to completion; the first error is returned and successful writes are kept.
func (d *DAO) RegisterMemberships(ctx context.Context, connectionID string, sites []string) error {
	expiresAt := d.expiresAt()

	var g errgroup.Group
	seen := make(map[string]struct{}, len(sites))
	for _, site := range sites {
		if _, ok := seen[site]; ok {
			continue
		}
		seen[site] = struct{}{}

		conn := NewConnection(site, connectionID, expiresAt)
		g.Go(func() error {
			return d.Put(ctx, conn)
		})
	}
	return g.Wait()
}

// SubscribersOf returns the ids of every connection registered under site, in
// sort key order. No subscribers is not an error.
func (d *DAO) SubscribersOf(ctx context.Context, site string) ([]string, error) {
	var conns []Connection
	err := d.table.Query("#PK = ?", TopicKey(site)).
		FindAllWithContext(ctx, &conns)
	if err != nil {
		return nil, fmt.Errorf("failed to query connections for site %v: %w", site, err)
	}

	ids := make([]string, 0, len(conns))
	for _, conn := range conns {
		conn := conn
		ids = append(ids, conn.ConnectionID)
	}
	return ids, nil
}

// MembershipsOf returns every record for a connection using the reverse index.
func (d *DAO) MembershipsOf(ctx context.Context, connectionID string) ([]Connection, error) {
	var conns []Connection
	err := d.table.Query("#GSI1PK = ?", connectionID).
		IndexName(ReverseIndex).
		FindAllWithContext(ctx, &conns)
	if err != nil {
		return nil, fmt.Errorf("failed to query memberships for connection %v: %w", connectionID, err)
	}
	return conns, nil
}

// Delete removes a single record. Deleting a missing record is a no-op.
func (d *DAO) Delete(ctx context.Context, topicKey, connectionID string) error {
	if err := d.table.Delete(topicKey).Range(connectionID).RunWithContext(ctx); err != nil {
		return fmt.Errorf("failed to delete connection %v from %v: %w", connectionID, topicKey, err)
	}
	return nil
}

// Deregister removes every record for a connection. Deletes run concurrently
// and are not retried; anything left behind expires with its TTL.
func (d *DAO) Deregister(ctx context.Context, connectionID string) error {
	conns, err := d.MembershipsOf(ctx, connectionID)
	if err != nil {
		return err
	}

	var g errgroup.Group
	for _, conn := range conns {
		conn := conn
		g.Go(func() error {
			return d.Delete(ctx, conn.PK, conn.SK)
		})
	}
	return g.Wait()
}
