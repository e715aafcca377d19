package database

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

type AccountRepository struct {
	coll *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{coll: db.Collection(AccountsCollection)}
}

// FindByEmail looks up an account by its lower-cased email.
func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (models.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var acc models.Account
	err := r.coll.FindOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))}).Decode(&acc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Account{}, apperr.NotFound("account not found")
	}
	if err != nil {
		return models.Account{}, errors.Wrap(err, "find account")
	}
	return acc, nil
}
