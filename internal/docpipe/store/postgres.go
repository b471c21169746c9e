package store

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/kart-io/docpipe/internal/model"
	"github.com/kart-io/docpipe/pkg/component/postgres"
)

// datastore implements the Factory interface on a gorm connection.
type datastore struct {
	db     *gorm.DB
	client *postgres.Client
}

// NewFactory builds a store factory from postgres options, enabling the
// pgvector extension and migrating the schema.
func NewFactory(opts *postgres.Options) (Factory, error) {
	client, err := postgres.New(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres client: %w", err)
	}

	factory, err := NewFactoryWithClient(client)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return factory, nil
}

// NewFactoryWithClient builds a store factory on an existing postgres
// client. The caller keeps ownership of the client until the factory
// is closed.
func NewFactoryWithClient(client *postgres.Client) (Factory, error) {
	ds := &datastore{db: client.DB(), client: client}
	if err := ds.prepare(); err != nil {
		return nil, err
	}
	return ds, nil
}

// NewFactoryWithDB builds a store factory on an existing gorm
// connection. Schema migration is left to the caller; tests use this
// with an in-memory sqlite database.
func NewFactoryWithDB(db *gorm.DB) Factory {
	return &datastore{db: db}
}

func (ds *datastore) prepare() error {
	if err := ds.db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("failed to enable pgvector extension: %w", err)
	}
	if err := ds.AutoMigrate(); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// AutoMigrate migrates the database schema.
func (ds *datastore) AutoMigrate() error {
	return ds.db.AutoMigrate(
		&model.Document{},
		&model.DocumentChunk{},
		&model.SearchQuery{},
		&model.SearchResult{},
	)
}

// Documents returns the document store.
func (ds *datastore) Documents() DocumentStore {
	return newDocuments(ds.db)
}

// Chunks returns the chunk store.
func (ds *datastore) Chunks() ChunkStore {
	return newChunks(ds.db)
}

// SearchLogs returns the search log store.
func (ds *datastore) SearchLogs() SearchLogStore {
	return newSearchLogs(ds.db)
}

// Close closes the factory and underlying connections.
func (ds *datastore) Close() error {
	if ds.client != nil {
		return ds.client.Close()
	}
	return nil
}
