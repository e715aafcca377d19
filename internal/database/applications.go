package database

import (
	"context"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

type ApplicationRepository struct {
	coll *mongo.Collection
}

func NewApplicationRepository(db *mongo.Database) *ApplicationRepository {
	return &ApplicationRepository{coll: db.Collection(ApplicationsCollection)}
}

func (r *ApplicationRepository) InsertApplication(ctx context.Context, app *models.LeaseApplication) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, app); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.Wrap(err, apperr.KindConflict, "checkout already submitted")
		}
		return errors.Wrap(err, "insert lease application")
	}
	return nil
}

// List returns one page of applications, newest first, and the total count.
func (r *ApplicationRepository) List(ctx context.Context, page, limit int64) ([]models.LeaseApplication, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{}
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, errors.Wrap(err, "count lease applications")
	}

	cursor, err := r.coll.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((page-1)*limit).
		SetLimit(limit))
	if err != nil {
		return nil, 0, errors.Wrap(err, "find lease applications")
	}
	defer cursor.Close(ctx)

	apps := make([]models.LeaseApplication, 0)
	if err := cursor.All(ctx, &apps); err != nil {
		return nil, 0, errors.Wrap(err, "decode lease applications")
	}
	return apps, total, nil
}
