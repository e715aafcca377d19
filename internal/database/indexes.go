package database

import (
	"context"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type collectionIndexes struct {
	collection string
	models     []mongo.IndexModel
}

func indexPlan() []collectionIndexes {
	return []collectionIndexes{
		{
			collection: AccountsCollection,
			models: []mongo.IndexModel{{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetName("email_unique").SetUnique(true),
			}},
		},
		{
			collection: AdminUsersCollection,
			models: []mongo.IndexModel{{
				Keys:    bson.D{{Key: "userId", Value: 1}},
				Options: options.Index().SetName("userId_unique").SetUnique(true),
			}},
		},
		{
			collection: ProductsCollection,
			models: []mongo.IndexModel{{
				Keys:    bson.D{{Key: "isActive", Value: 1}, {Key: "createdAt", Value: -1}},
				Options: options.Index().SetName("active_createdAt"),
			}},
		},
		{
			collection: FunnelEventsCollection,
			models: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "createdAt", Value: -1}},
					Options: options.Index().SetName("createdAt_index"),
				},
				{
					Keys:    bson.D{{Key: "sessionId", Value: 1}, {Key: "createdAt", Value: 1}},
					Options: options.Index().SetName("session_createdAt"),
				},
			},
		},
		{
			collection: ApplicationsCollection,
			models: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "createdAt", Value: -1}},
					Options: options.Index().SetName("createdAt_index"),
				},
				{
					Keys:    bson.D{{Key: "checkoutSessionId", Value: 1}},
					Options: options.Index().SetName("checkoutSessionId_unique").SetUnique(true),
				},
			},
		},
	}
}

// EnsureIndexes creates every index the repositories rely on. It keeps going
// after a failure and returns the first error.
func EnsureIndexes(ctx context.Context, db *mongo.Database, lg *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, 3*queryTimeout)
	defer cancel()

	var first error
	for _, plan := range indexPlan() {
		names, err := db.Collection(plan.collection).Indexes().CreateMany(ctx, plan.models)
		if err != nil {
			lg.Warn("ensure indexes", zap.String("collection", plan.collection), zap.Error(err))
			if first == nil {
				first = errors.Wrapf(err, "indexes for %s", plan.collection)
			}
			continue
		}
		lg.Info("indexes ready", zap.String("collection", plan.collection), zap.Strings("indexes", names))
	}
	return first
}
