package db

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/zap"

	"liyu1981.xyz/energy-opdb-service/pkg/common"
)

// Capabilities are deployment features that change how reads are composed
// but never what they return.
type Capabilities struct {
	NativeLookup bool
}

// DB is the process-wide storage engine resource. It is safe for
// concurrent use.
type DB struct {
	Client       *mongo.Client
	Database     *mongo.Database
	Capabilities Capabilities
	Options      Options
}

var (
	instance *DB
	initErr  error
	once     sync.Once
)

const connectTimeout = 10 * time.Second

// Open connects and pings the storage engine.
func Open(ctx context.Context, opts Options) (*DB, error) {
	logger := common.GetLoggerWith(common.LoggerNameDb)

	if opts.TLS && opts.CABucket != "" && opts.CAKey != "" {
		client, err := NewS3Client(ctx)
		if err != nil {
			return nil, err
		}
		if err := FetchCABundle(ctx, client, opts.CABucket, opts.CAKey, opts.TLSCAFile); err != nil {
			return nil, err
		}
		logger.Info("Downloaded CA bundle", zap.String("bucket", opts.CABucket), zap.String("file", opts.TLSCAFile))
	}

	client, err := mongo.Connect(options.Client().ApplyURI(opts.BuildURI()))
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	logger.Info("Connected to database",
		zap.String("uri", opts.Redacted()),
		zap.String("database", opts.Database),
		zap.Bool("native_lookup", opts.NativeLookup))

	return &DB{
		Client:       client,
		Database:     client.Database(opts.Database),
		Capabilities: Capabilities{NativeLookup: opts.NativeLookup},
		Options:      opts,
	}, nil
}

// GetInstance opens the process-wide DB on first use. Later calls return
// the same instance (or the same error) whatever options they pass.
func GetInstance(ctx context.Context, opts Options) (*DB, error) {
	once.Do(func() {
		instance, initErr = Open(ctx, opts)
	})
	return instance, initErr
}

func (d *DB) Collection(name string) *mongo.Collection {
	return d.Database.Collection(name)
}

func (d *DB) Ping(ctx context.Context) error {
	return d.Client.Ping(ctx, readpref.Primary())
}

func (d *DB) Close(ctx context.Context) error {
	if d == nil || d.Client == nil {
		return nil
	}
	common.GetLoggerWith(common.LoggerNameDb).Info("Closing database connection")
	return d.Client.Disconnect(ctx)
}
