// models/vendor_application.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vendor application statuses
const (
	ApplicationStatusPending  = "pending"
	ApplicationStatusAccepted = "accepted"
	ApplicationStatusRejected = "rejected"
)

// VendorApplication is a vendor's bid against an open work order.
type VendorApplication struct {
	ID                  primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	WorkOrderID         primitive.ObjectID `json:"workOrderId" bson:"workOrderId"`
	VendorID            primitive.ObjectID `json:"vendorId" bson:"vendorId"`
	ProposalAmount      float64            `json:"proposalAmount" bson:"proposalAmount"`
	EstimatedCompletion time.Time          `json:"estimatedCompletion" bson:"estimatedCompletion"`
	ProposalNotes       string             `json:"proposalNotes,omitempty" bson:"proposalNotes,omitempty"`
	Status              string             `json:"status" bson:"status"` // "pending", "accepted", "rejected"
	CreatedAt           time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt           time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// ApplyRequest is the payload a vendor submits to bid on a work order.
type ApplyRequest struct {
	ProposalAmount      float64   `json:"proposalAmount"`
	EstimatedCompletion time.Time `json:"estimatedCompletion"`
	ProposalNotes       string    `json:"proposalNotes,omitempty"`
}
