package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/qcbd/app-beneficiary/internal/logging"
	"github.com/qcbd/app-beneficiary/internal/redisclient"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
	"go.uber.org/zap"
)

var (
	// MongoDB database handle
	MongoDB *mongo.Database
	// Redis client
	Redis *redisclient.Client

	maintenance *cron.Cron
)

// IndexSpec describes one index the service relies on
type IndexSpec struct {
	Collection func() string
	Name       string
	Keys       bson.D
	Unique     bool
}

// RequiredIndexes lists the indexes ensured on startup and by maintenance
var RequiredIndexes = []IndexSpec{
	{
		Collection: func() string { return AppConfig.ApplicationCollection },
		Name:       "status_1_created_at_-1",
		Keys:       bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
	},
	{
		Collection: func() string { return AppConfig.ApplicationCollection },
		Name:       "permanent_district_1",
		Keys:       bson.D{{Key: "address.permanent.district", Value: 1}},
	},
	{
		Collection: func() string { return AppConfig.ApplicationCollection },
		Name:       "bc_registration_1",
		Keys:       bson.D{{Key: "primary_information.bc_registration", Value: 1}},
	},
	{
		Collection: func() string { return AppConfig.UserCollection },
		Name:       "username_1",
		Keys:       bson.D{{Key: "username", Value: 1}},
		Unique:     true,
	},
	{
		Collection: func() string { return AppConfig.AuditLogsCollection },
		Name:       "resource_id_1_timestamp_-1",
		Keys:       bson.D{{Key: "resource_id", Value: 1}, {Key: "timestamp", Value: -1}},
	},
}

// InitMongoDB initializes the MongoDB connection
func InitMongoDB() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(AppConfig.MongoURI).
		SetMonitor(otelmongo.NewMonitor()).
		SetMaxPoolSize(100).
		SetMinPoolSize(5).
		SetMaxConnIdleTime(5 * time.Minute).
		SetRetryWrites(true).
		SetRetryReads(true)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	MongoDB = client.Database(AppConfig.MongoDatabase)

	if err := EnsureIndexes(context.Background(), MongoDB); err != nil {
		logging.Logger.Error("failed to ensure indexes on startup", zap.Error(err))
	}

	logging.Logger.Info("connected to MongoDB",
		zap.String("uri", maskMongoURI(AppConfig.MongoURI)),
		zap.String("database", AppConfig.MongoDatabase),
	)
	return nil
}

// InitRedis initializes the Redis connection. A failed ping is logged and
// the client is kept: cache calls fail soft.
func InitRedis() {
	redisClient := redis.NewClient(&redis.Options{
		Addr:         AppConfig.RedisURI,
		Password:     AppConfig.RedisPassword,
		DB:           AppConfig.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	Redis = redisclient.NewClient(redisClient)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := Redis.Ping(ctx).Err(); err != nil {
		logging.Logger.Error("failed to connect to Redis",
			zap.String("uri", AppConfig.RedisURI),
			zap.Error(err))
		return
	}

	logging.Logger.Info("connected to Redis", zap.String("uri", AppConfig.RedisURI))
}

// maskMongoURI hides credentials in a MongoDB URI
func maskMongoURI(uri string) string {
	at := strings.LastIndex(uri, "@")
	if at == -1 {
		return uri
	}
	scheme := "mongodb://"
	if strings.HasPrefix(uri, "mongodb+srv://") {
		scheme = "mongodb+srv://"
	}
	return scheme + "****:****@" + uri[at+1:]
}

// EnsureIndexes creates every required index that does not exist yet
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	logger := logging.Logger.Named("database")
	logger.Info("ensuring required indexes exist")

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for _, spec := range RequiredIndexes {
		if err := ensureIndex(ctx, db, spec, logger); err != nil {
			return err
		}
	}

	logger.Info("all required indexes verified")
	return nil
}

func ensureIndex(ctx context.Context, db *mongo.Database, spec IndexSpec, logger *logging.SafeLogger) error {
	collectionName := spec.Collection()
	collection := db.Collection(collectionName)

	cursor, err := collection.Indexes().List(ctx)
	if err != nil {
		logger.Error("failed to list indexes", zap.String("collection", collectionName), zap.Error(err))
		return err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var index bson.M
		if err := cursor.Decode(&index); err != nil {
			continue
		}
		if name, ok := index["name"].(string); ok && name == spec.Name {
			logger.Debug("index already exists",
				zap.String("collection", collectionName),
				zap.String("index", spec.Name))
			return nil
		}
	}

	model := mongo.IndexModel{
		Keys:    spec.Keys,
		Options: options.Index().SetName(spec.Name).SetUnique(spec.Unique),
	}

	if _, err := collection.Indexes().CreateOne(ctx, model); err != nil {
		// another instance may have created it concurrently
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		logger.Error("failed to create index",
			zap.String("collection", collectionName),
			zap.String("index", spec.Name),
			zap.Error(err))
		return err
	}

	logger.Info("created index",
		zap.String("collection", collectionName),
		zap.String("index", spec.Name))
	return nil
}

// StartIndexMaintenance re-checks indexes on the configured cron schedule
func StartIndexMaintenance() error {
	if MongoDB == nil {
		return fmt.Errorf("mongodb not initialized")
	}

	maintenance = cron.New()
	_, err := maintenance.AddFunc(AppConfig.IndexMaintenanceSchedule, func() {
		if err := EnsureIndexes(context.Background(), MongoDB); err != nil {
			logging.Logger.Error("index maintenance failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid index maintenance schedule %q: %w", AppConfig.IndexMaintenanceSchedule, err)
	}

	maintenance.Start()
	logging.Logger.Info("index maintenance scheduled",
		zap.String("schedule", AppConfig.IndexMaintenanceSchedule))
	return nil
}

// StopIndexMaintenance stops the maintenance scheduler and waits for a
// running job to finish
func StopIndexMaintenance() {
	if maintenance == nil {
		return
	}
	<-maintenance.Stop().Done()
}

// CloseConnections disconnects MongoDB and Redis
func CloseConnections(ctx context.Context) {
	if MongoDB != nil {
		if err := MongoDB.Client().Disconnect(ctx); err != nil {
			logging.Logger.Error("failed to disconnect MongoDB", zap.Error(err))
		}
	}
	if Redis != nil {
		if err := Redis.Close(); err != nil {
			logging.Logger.Error("failed to close Redis", zap.Error(err))
		}
	}
}
