// Package mongodb provides the MongoDB implementation of the docdb interfaces.
//
// Documents are stored with their id in _id. Struct documents are encoded with
// the driver's BSON codec and honor `bson` tags. Change subscriptions use
// change streams and therefore need a replica set or sharded cluster.
package mongodb

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/unifiedui/typed-docdb/pkg/docdb"
)

// idField is the field MongoDB uses as the primary key.
const idField = "_id"

// Client implements the docdb.Client interface for MongoDB.
type Client struct {
	client   *mongo.Client
	database *mongo.Database
	logger   zerolog.Logger
}

// ClientConfig holds MongoDB connection configuration.
type ClientConfig struct {
	URI          string
	DatabaseName string
	Logger       *zerolog.Logger
}

// NewClient creates a new MongoDB client.
func NewClient(ctx context.Context, config *ClientConfig) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if config.URI == "" {
		return nil, fmt.Errorf("mongodb URI is required")
	}
	if config.DatabaseName == "" {
		return nil, fmt.Errorf("database name is required")
	}

	clientOpts := options.Client().ApplyURI(config.URI)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return Wrap(client, config.DatabaseName, config.Logger), nil
}

// Wrap adapts a connected driver client. A nil logger disables logging.
func Wrap(client *mongo.Client, databaseName string, logger *zerolog.Logger) *Client {
	c := &Client{
		client:   client,
		database: client.Database(databaseName),
		logger:   zerolog.Nop(),
	}
	if logger != nil {
		c.logger = *logger
	}
	return c
}

// Database returns the underlying driver database.
func (c *Client) Database() *mongo.Database {
	return c.database
}

// Collection returns a reference to the named collection.
func (c *Client) Collection(name string) docdb.CollectionRef {
	return &CollectionRef{Query: &Query{client: c, collection: c.database.Collection(name)}}
}

// Batch opens a write batch that commits inside one transaction.
func (c *Client) Batch() docdb.WriteBatch {
	return &WriteBatch{client: c}
}

// Ping verifies the connection to MongoDB.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("mongodb ping failed: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (c *Client) Close(ctx context.Context) error {
	if err := c.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from mongodb: %w", err)
	}
	return nil
}
