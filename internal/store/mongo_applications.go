package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/qcbd/app-beneficiary/internal/models"
	"github.com/qcbd/app-beneficiary/internal/observability"
	"github.com/qcbd/app-beneficiary/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultQueryTimeout bounds single MongoDB operations
const DefaultQueryTimeout = 10 * time.Second

// MongoApplicationStore keeps applications in a MongoDB collection
type MongoApplicationStore struct {
	collection *mongo.Collection
}

// NewMongoApplicationStore creates a store over collection
func NewMongoApplicationStore(collection *mongo.Collection) *MongoApplicationStore {
	return &MongoApplicationStore{collection: collection}
}

func recordOperation(operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	observability.DatabaseOperations.WithLabelValues(operation, status).Inc()
}

// Create inserts app
func (s *MongoApplicationStore) Create(ctx context.Context, app *models.OrphanApplication) error {
	ctx, span := utils.TraceDatabaseUpdate(ctx, s.collection.Name(), "_id", true)
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	_, err := s.collection.InsertOne(ctx, app)
	recordOperation("insert", err)
	if err != nil {
		utils.RecordErrorInSpan(span, err, map[string]interface{}{"application.id": app.ID})
		return fmt.Errorf("failed to insert application: %w", err)
	}
	return nil
}

// Update replaces the stored application with app
func (s *MongoApplicationStore) Update(ctx context.Context, app *models.OrphanApplication) error {
	ctx, span := utils.TraceDatabaseUpdate(ctx, s.collection.Name(), "_id", false)
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	result, err := s.collection.ReplaceOne(ctx, bson.M{"_id": app.ID}, app)
	recordOperation("update", err)
	if err != nil {
		utils.RecordErrorInSpan(span, err, map[string]interface{}{"application.id": app.ID})
		return fmt.Errorf("failed to update application: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.ErrApplicationNotFound
	}
	return nil
}

// Get loads the application with id
func (s *MongoApplicationStore) Get(ctx context.Context, id string) (*models.OrphanApplication, error) {
	ctx, span := utils.TraceDatabaseFind(ctx, s.collection.Name(), "_id")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	var app models.OrphanApplication
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&app)
	if errors.Is(err, mongo.ErrNoDocuments) {
		recordOperation("find", nil)
		return nil, models.ErrApplicationNotFound
	}
	recordOperation("find", err)
	if err != nil {
		utils.RecordErrorInSpan(span, err, map[string]interface{}{"application.id": id})
		return nil, fmt.Errorf("failed to load application: %w", err)
	}
	return &app, nil
}

// Delete removes the application with id
func (s *MongoApplicationStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	recordOperation("delete", err)
	if err != nil {
		return fmt.Errorf("failed to delete application: %w", err)
	}
	if result.DeletedCount == 0 {
		return models.ErrApplicationNotFound
	}
	return nil
}

// List returns one page of applications matching filter, newest first
func (s *MongoApplicationStore) List(ctx context.Context, filter models.ApplicationFilter, page utils.Pagination) ([]models.OrphanApplication, int64, error) {
	query := applicationQuery(filter)

	ctx, span := utils.TraceDatabaseFind(ctx, s.collection.Name(), "list")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	total, err := s.collection.CountDocuments(ctx, query)
	if err != nil {
		recordOperation("count", err)
		return nil, 0, fmt.Errorf("failed to count applications: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(page.Skip()).
		SetLimit(int64(page.PerPage))

	cursor, err := s.collection.Find(ctx, query, opts)
	recordOperation("find", err)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list applications: %w", err)
	}
	defer cursor.Close(ctx)

	apps := make([]models.OrphanApplication, 0, page.PerPage)
	if err := cursor.All(ctx, &apps); err != nil {
		return nil, 0, fmt.Errorf("failed to decode applications: %w", err)
	}

	utils.AddSpanAttribute(span, "db.total", total)
	return apps, total, nil
}

// ForEach streams applications matching filter, newest first
func (s *MongoApplicationStore) ForEach(ctx context.Context, filter models.ApplicationFilter, fn func(*models.OrphanApplication) error) error {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})

	cursor, err := s.collection.Find(ctx, applicationQuery(filter), opts)
	recordOperation("find", err)
	if err != nil {
		return fmt.Errorf("failed to query applications: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var app models.OrphanApplication
		if err := cursor.Decode(&app); err != nil {
			return fmt.Errorf("failed to decode application: %w", err)
		}
		if err := fn(&app); err != nil {
			return err
		}
	}
	return cursor.Err()
}
