// models/payment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment statuses
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// Payment records the settlement split for a paid work order.
// Created exactly once per work order, immutable thereafter.
type Payment struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	WorkOrderID   primitive.ObjectID `json:"workOrderId" bson:"workOrderId"`
	ClientID      primitive.ObjectID `json:"clientId" bson:"clientId"`
	VendorID      primitive.ObjectID `json:"vendorId" bson:"vendorId"`
	TotalAmount   float64            `json:"totalAmount" bson:"totalAmount"`
	VendorAmount  float64            `json:"vendorAmount" bson:"vendorAmount"`
	ServiceFee    float64            `json:"serviceFee" bson:"serviceFee"`
	Status        string             `json:"status" bson:"status"`
	TransactionID string             `json:"transactionId,omitempty" bson:"transactionId,omitempty"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
}
