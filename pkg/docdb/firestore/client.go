// Package firestore provides the Google Cloud Firestore implementation of the
// docdb interfaces.
//
// Calls go straight to cloud.google.com/go/firestore and its errors are
// returned unchanged, so status.Code(err) keeps working for callers. Struct
// documents are encoded with the SDK's codec and honor `firestore` tags.
package firestore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/unifiedui/typed-docdb/pkg/docdb"
)

// ClientConfig holds Firestore connection configuration.
type ClientConfig struct {
	ProjectID string
	// DatabaseID selects a named database. Empty means "(default)".
	DatabaseID string
	// CredentialsFile is a service account key path. Empty uses application
	// default credentials, or the emulator when FIRESTORE_EMULATOR_HOST is set.
	CredentialsFile string
	Logger          *zerolog.Logger
}

// Client implements docdb.Client for Firestore.
type Client struct {
	client *firestore.Client
	logger zerolog.Logger
}

// NewClient creates a new Firestore client.
func NewClient(ctx context.Context, config *ClientConfig) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if config.ProjectID == "" {
		return nil, fmt.Errorf("firestore project ID is required")
	}

	var opts []option.ClientOption
	if config.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(config.CredentialsFile))
	}

	var (
		client *firestore.Client
		err    error
	)
	if config.DatabaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, config.ProjectID, config.DatabaseID, opts...)
	} else {
		client, err = firestore.NewClient(ctx, config.ProjectID, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}

	return Wrap(client, config.Logger), nil
}

// Wrap adapts an existing SDK client. A nil logger disables logging.
func Wrap(client *firestore.Client, logger *zerolog.Logger) *Client {
	c := &Client{client: client, logger: zerolog.Nop()}
	if logger != nil {
		c.logger = *logger
	}
	return c
}

// SDK returns the wrapped Firestore client.
func (c *Client) SDK() *firestore.Client {
	return c.client
}

// Collection returns a reference to the named collection.
func (c *Client) Collection(name string) docdb.CollectionRef {
	ref := c.client.Collection(name)
	return &CollectionRef{
		Query: &Query{client: c, query: ref.Query},
		ref:   ref,
	}
}

// Batch opens a native write batch.
func (c *Client) Batch() docdb.WriteBatch {
	return &WriteBatch{client: c, batch: c.client.Batch()}
}

// Ping lists at most one collection to verify connectivity.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.client.Collections(ctx).Next()
	if err != nil && !errors.Is(err, iterator.Done) {
		return fmt.Errorf("firestore ping failed: %w", err)
	}
	return nil
}

// Close closes the Firestore connection.
func (c *Client) Close(ctx context.Context) error {
	if err := c.client.Close(); err != nil {
		return fmt.Errorf("failed to close firestore client: %w", err)
	}
	return nil
}
