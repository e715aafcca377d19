package database

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/funnel"
	"storefront/internal/models"
)

type FunnelEventRepository struct {
	coll *mongo.Collection
}

func NewFunnelEventRepository(db *mongo.Database) *FunnelEventRepository {
	return &FunnelEventRepository{coll: db.Collection(FunnelEventsCollection)}
}

func (r *FunnelEventRepository) InsertFunnelEvent(ctx context.Context, ev *models.FunnelEvent) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if ev.ID.IsZero() {
		ev.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, ev); err != nil {
		return errors.Wrap(err, "insert funnel event")
	}
	return nil
}

type bucketCount struct {
	Key string `bson:"_id"`
	N   int    `bson:"n"`
}

type funnelTotals struct {
	Events    int   `bson:"events"`
	Sessions  int   `bson:"sessions"`
	Timed     int   `bson:"timed"`
	TimeTotal int64 `bson:"timeTotal"`
}

type funnelFacets struct {
	Totals  []funnelTotals `bson:"totals"`
	Steps   []bucketCount  `bson:"steps"`
	Devices []bucketCount  `bson:"devices"`
	Traffic []bucketCount  `bson:"traffic"`
}

// distinctSessionsBy counts distinct sessions per value of field.
func distinctSessionsBy(field string) bson.A {
	return bson.A{
		bson.M{"$group": bson.M{"_id": bson.M{"k": "$" + field, "s": "$sessionId"}}},
		bson.M{"$group": bson.M{"_id": "$_id.k", "n": bson.M{"$sum": 1}}},
	}
}

func funnelPipeline(since time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"createdAt": bson.M{"$gte": since}}}},
		{{Key: "$facet", Value: bson.M{
			"totals": bson.A{
				bson.M{"$group": bson.M{
					"_id":       nil,
					"events":    bson.M{"$sum": 1},
					"sessions":  bson.M{"$addToSet": "$sessionId"},
					"timed":     bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$isNumber": "$timeSpentSeconds"}, 1, 0}}},
					"timeTotal": bson.M{"$sum": bson.M{"$ifNull": bson.A{"$timeSpentSeconds", 0}}},
				}},
				bson.M{"$project": bson.M{
					"_id":       0,
					"events":    1,
					"sessions":  bson.M{"$size": "$sessions"},
					"timed":     1,
					"timeTotal": bson.M{"$toLong": "$timeTotal"},
				}},
			},
			"steps":   distinctSessionsBy("funnelStep"),
			"devices": distinctSessionsBy("deviceType"),
			"traffic": distinctSessionsBy("trafficSource"),
		}}},
	}
}

func countsFromFacets(f funnelFacets) funnel.Counts {
	c := funnel.Counts{
		StepSessions:    toCountMap(f.Steps),
		DeviceSessions:  toCountMap(f.Devices),
		TrafficSessions: toCountMap(f.Traffic),
	}
	if len(f.Totals) > 0 {
		t := f.Totals[0]
		c.Events = t.Events
		c.Sessions = t.Sessions
		c.TimedEvents = t.Timed
		c.TimeSpentTotal = t.TimeTotal
	}
	return c
}

func toCountMap(buckets []bucketCount) map[string]int {
	out := make(map[string]int, len(buckets))
	for _, b := range buckets {
		key := b.Key
		if key == "" {
			key = "unknown"
		}
		out[key] += b.N
	}
	return out
}

// FunnelCounts aggregates events created at or after since in one round trip.
func (r *FunnelEventRepository) FunnelCounts(ctx context.Context, since time.Time) (funnel.Counts, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*queryTimeout)
	defer cancel()

	cursor, err := r.coll.Aggregate(ctx, funnelPipeline(since))
	if err != nil {
		return funnel.Counts{}, errors.Wrap(err, "aggregate funnel events")
	}
	defer cursor.Close(ctx)

	var facets []funnelFacets
	if err := cursor.All(ctx, &facets); err != nil {
		return funnel.Counts{}, errors.Wrap(err, "decode funnel aggregate")
	}
	if len(facets) == 0 {
		return countsFromFacets(funnelFacets{}), nil
	}
	return countsFromFacets(facets[0]), nil
}
