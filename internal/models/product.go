package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PricedOption is a configurable choice that shifts the monthly price.
type PricedOption struct {
	Label      string  `bson:"label" json:"label"`
	PriceDelta float64 `bson:"priceDelta" json:"priceDelta"`
}

// LeaseTerm is a supported lease duration in months.
type LeaseTerm struct {
	Months     int     `bson:"months" json:"months"`
	PriceDelta float64 `bson:"priceDelta" json:"priceDelta"`
}

type Product struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Brand          string             `bson:"brand,omitempty" json:"brand,omitempty"`
	Description    string             `bson:"description,omitempty" json:"description,omitempty"`
	ImageURL       string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	MonthlyPrice   float64            `bson:"monthlyPrice" json:"monthlyPrice"`
	StorageOptions []PricedOption     `bson:"storageOptions" json:"storageOptions"`
	Conditions     []PricedOption     `bson:"conditions" json:"conditions"`
	Colors         StringList         `bson:"colors" json:"colors"`
	LeaseTerms     []LeaseTerm        `bson:"leaseTerms" json:"leaseTerms"`
	Stock          int                `bson:"stock" json:"stock"`
	InStock        bool               `bson:"-" json:"inStock"`
	IsActive       bool               `bson:"isActive" json:"isActive"`
	IsDeleted      bool               `bson:"isDeleted" json:"isDeleted,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}
