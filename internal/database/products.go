package database

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

// ProductQuery filters the public catalogue. Pagination applies only when
// both Page and Limit are set.
type ProductQuery struct {
	Search string
	Brand  string
	Page   int64
	Limit  int64
}

func (q ProductQuery) paginated() bool { return q.Page > 0 && q.Limit > 0 }

type ProductRepository struct {
	coll *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{coll: db.Collection(ProductsCollection)}
}

func visibleProductFilter() bson.M {
	return bson.M{
		"isActive":  bson.M{"$ne": false},
		"isDeleted": bson.M{"$ne": true},
	}
}

func productFilter(q ProductQuery) bson.M {
	filter := visibleProductFilter()
	if brand := strings.TrimSpace(q.Brand); brand != "" {
		filter["brand"] = bson.M{"$regex": "^" + regexp.QuoteMeta(brand) + "$", "$options": "i"}
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		filter["name"] = bson.M{"$regex": regexp.QuoteMeta(search), "$options": "i"}
	}
	return filter
}

// List returns visible products, newest first, and the total matching count.
func (r *ProductRepository) List(ctx context.Context, q ProductQuery) ([]models.Product, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := productFilter(q)
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if q.paginated() {
		findOptions.SetSkip((q.Page - 1) * q.Limit).SetLimit(q.Limit)
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, errors.Wrap(err, "count products")
	}
	cursor, err := r.coll.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, errors.Wrap(err, "find products")
	}
	defer cursor.Close(ctx)

	products, err := decodeProducts(ctx, cursor)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// FindProduct returns a single product that is not soft-deleted. Inactive
// products are returned; the configurator rejects them.
func (r *ProductRepository) FindProduct(ctx context.Context, id string) (models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return models.Product{}, apperr.BadRequest("invalid product id")
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var raw bson.M
	err = r.coll.FindOne(ctx, bson.M{"_id": oid, "isDeleted": bson.M{"$ne": true}}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Product{}, apperr.NotFound("product not found")
	}
	if err != nil {
		return models.Product{}, errors.Wrap(err, "find product")
	}
	return normalizeProductDocument(raw)
}

// normalizeProductDocument fixes fields that older catalogue imports stored
// with loose types before decoding into models.Product.
func normalizeProductDocument(raw bson.M) (models.Product, error) {
	if val, ok := raw["isActive"]; ok {
		switch typed := val.(type) {
		case string:
			raw["isActive"] = !strings.EqualFold(strings.TrimSpace(typed), "false")
		case bool:
		default:
			raw["isActive"] = true
		}
	} else {
		raw["isActive"] = true
	}

	if val, ok := raw["stock"]; ok {
		switch typed := val.(type) {
		case int32:
			raw["stock"] = int(typed)
		case int64:
			raw["stock"] = int(typed)
		case float64:
			raw["stock"] = int(typed)
		case int:
		default:
			raw["stock"] = 0
		}
	} else {
		raw["stock"] = 0
	}

	switch typed := raw["monthlyPrice"].(type) {
	case int32:
		raw["monthlyPrice"] = float64(typed)
	case int64:
		raw["monthlyPrice"] = float64(typed)
	case string:
		raw["monthlyPrice"], _ = strconv.ParseFloat(strings.TrimSpace(typed), 64)
	}

	data, err := bson.Marshal(raw)
	if err != nil {
		return models.Product{}, errors.Wrap(err, "re-encode product")
	}
	var p models.Product
	if err := bson.Unmarshal(data, &p); err != nil {
		return models.Product{}, errors.Wrap(err, "decode product")
	}
	p.InStock = p.Stock > 0
	return p, nil
}

func decodeProducts(ctx context.Context, cursor *mongo.Cursor) ([]models.Product, error) {
	products := make([]models.Product, 0)
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, errors.Wrap(err, "decode product")
		}
		product, err := normalizeProductDocument(raw)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	if err := cursor.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate products")
	}
	return products, nil
}
