package indexedredis

import (
	"fmt"
	"log"
	"time"

	"go.etcd.io/bbolt"
)

// DB binds a schema to a store and carries the configured logging.
type DB struct {
	store   Store
	schema  *Schema
	logf    func(format string, args ...any)
	verbose bool

	stats dbStats
}

type Options struct {
	Logf      func(format string, args ...any)
	Verbose   bool
	IsTesting bool
	MmapSize  int
}

// Open binds a schema to an existing store. Fails when a link field targets
// a model the schema does not declare.
func Open(store Store, schema *Schema, opt Options) (*DB, error) {
	if err := schema.validateRefs(); err != nil {
		return nil, err
	}
	db := &DB{
		store:   store,
		schema:  schema,
		logf:    opt.Logf,
		verbose: opt.Verbose,
	}
	if db.logf == nil {
		db.logf = log.Printf
	}
	return db, nil
}

// OpenBolt opens or creates a Bolt database file and binds the schema to it.
func OpenBolt(path string, schema *Schema, opt Options) (*DB, error) {
	bopt := &bbolt.Options{
		Timeout: 10 * time.Second,
	}
	*bopt = *bbolt.DefaultOptions
	if opt.IsTesting {
		bopt.NoSync = true
		bopt.NoFreelistSync = true
		bopt.InitialMmapSize = 1024 * 1024 * 5
	} else {
		bopt.InitialMmapSize = 1024 * 1024 * 1024
		bopt.FreelistType = bbolt.FreelistMapType
	}
	if opt.MmapSize != 0 {
		bopt.InitialMmapSize = opt.MmapSize
	}

	bdb, err := bbolt.Open(path, 0666, bopt)
	if err != nil {
		return nil, fmt.Errorf("indexedredis: %w", err)
	}
	return Open(NewBoltStore(bdb), schema, opt)
}

// OpenMem binds the schema to a fresh in-memory store.
func OpenMem(schema *Schema, opt Options) (*DB, error) {
	return Open(NewMemStore(), schema, opt)
}

func (db *DB) Schema() *Schema {
	return db.schema
}

func (db *DB) Store() Store {
	return db.store
}

func (db *DB) Close() error {
	return db.store.Close()
}
