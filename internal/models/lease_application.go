package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ApplicationCustomer captures buyer contact details for a lease application.
type ApplicationCustomer struct {
	FullName     string `bson:"fullName" json:"fullName"`
	Email        string `bson:"email" json:"email"`
	Phone        string `bson:"phone" json:"phone"`
	OrderType    string `bson:"orderType" json:"orderType"`
	BusinessName string `bson:"businessName,omitempty" json:"businessName,omitempty"`
}

// ApplicationDevice is the configured device snapshot the customer checked out with.
type ApplicationDevice struct {
	ProductID         string  `bson:"productId" json:"productId"`
	ProductName       string  `bson:"productName" json:"productName"`
	ProductImageURL   string  `bson:"productImageUrl,omitempty" json:"productImageUrl,omitempty"`
	MonthlyPrice      float64 `bson:"monthlyPrice" json:"monthlyPrice"`
	SelectedStorage   string  `bson:"selectedStorage" json:"selectedStorage"`
	SelectedColor     string  `bson:"selectedColor" json:"selectedColor"`
	SelectedCondition string  `bson:"selectedCondition" json:"selectedCondition"`
	LeaseTermMonths   int     `bson:"leaseTermMonths" json:"leaseTermMonths"`
}

// ApplicationDocument points at an uploaded file in the private bucket.
// Path is bucket-qualified ("<bucket>/<object path>").
type ApplicationDocument struct {
	Path        string `bson:"path" json:"path"`
	Filename    string `bson:"filename" json:"filename"`
	ContentType string `bson:"contentType,omitempty" json:"contentType,omitempty"`
	Size        int64  `bson:"size" json:"size"`
}

type LeaseApplication struct {
	ID                primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	CheckoutSessionID string              `bson:"checkoutSessionId" json:"checkoutSessionId"`
	Customer          ApplicationCustomer `bson:"customer" json:"customer"`
	Device            ApplicationDevice   `bson:"device" json:"device"`
	AddProtection     bool                `bson:"addProtection" json:"addProtection"`
	ProtectionPrice   float64             `bson:"protectionPrice" json:"protectionPrice"`
	TotalPrice        float64             `bson:"totalPrice" json:"totalPrice"`
	NationalID        ApplicationDocument `bson:"nationalId" json:"nationalId"`
	SalaryCertificate ApplicationDocument `bson:"salaryCertificate" json:"salaryCertificate"`
	Status            string              `bson:"status" json:"status"`
	CreatedAt         time.Time           `bson:"createdAt" json:"createdAt"`
}
