package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FunnelEvent is one immutable analytics row.
type FunnelEvent struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID        string             `bson:"sessionId" json:"sessionId"`
	UserID           string             `bson:"userId,omitempty" json:"userId,omitempty"`
	FunnelStep       string             `bson:"funnelStep" json:"funnelStep"`
	DeviceType       string             `bson:"deviceType" json:"deviceType"`
	TrafficSource    string             `bson:"trafficSource" json:"trafficSource"`
	IPAddress        string             `bson:"ipAddress,omitempty" json:"ipAddress,omitempty"`
	UserAgent        string             `bson:"userAgent,omitempty" json:"userAgent,omitempty"`
	TimeSpentSeconds *int               `bson:"timeSpentSeconds,omitempty" json:"timeSpentSeconds,omitempty"`
	Referrer         string             `bson:"referrer,omitempty" json:"referrer,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
}
