// models/work_order.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Work order lifecycle statuses. Orders only move forward:
// open -> assigned -> in_progress -> completed -> approved -> paid
const (
	WorkOrderStatusOpen       = "open"
	WorkOrderStatusAssigned   = "assigned"
	WorkOrderStatusInProgress = "in_progress"
	WorkOrderStatusCompleted  = "completed"
	WorkOrderStatusApproved   = "approved"
	WorkOrderStatusPaid       = "paid"
)

// Work order priorities
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// DefaultServiceFeePercentage is the platform's default cut of the total amount.
const DefaultServiceFeePercentage = 15.0

// workOrderTransitions is the set of legal forward edges of the lifecycle.
var workOrderTransitions = map[string]string{
	WorkOrderStatusOpen:       WorkOrderStatusAssigned,
	WorkOrderStatusAssigned:   WorkOrderStatusInProgress,
	WorkOrderStatusInProgress: WorkOrderStatusCompleted,
	WorkOrderStatusCompleted:  WorkOrderStatusApproved,
	WorkOrderStatusApproved:   WorkOrderStatusPaid,
}

// CanTransition reports whether a work order may move from one status to another.
func CanTransition(from, to string) bool {
	return workOrderTransitions[from] == to
}

// IsValidPriority reports whether p is one of the known priorities.
func IsValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// WorkOrder model
type WorkOrder struct {
	ID                   primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	ClientID             primitive.ObjectID  `json:"clientId" bson:"clientId"`
	Title                string              `json:"title" bson:"title"`
	Description          string              `json:"description" bson:"description"`
	Category             string              `json:"category" bson:"category"`
	Priority             string              `json:"priority" bson:"priority"`
	Status               string              `json:"status" bson:"status"`
	BudgetMin            *float64            `json:"budgetMin,omitempty" bson:"budgetMin,omitempty"`
	BudgetMax            *float64            `json:"budgetMax,omitempty" bson:"budgetMax,omitempty"`
	Location             string              `json:"location" bson:"location"`
	AssignedVendorID     *primitive.ObjectID `json:"assignedVendorId,omitempty" bson:"assignedVendorId,omitempty"`
	CompletionNotes      string              `json:"completionNotes,omitempty" bson:"completionNotes,omitempty"`
	ServiceFeePercentage float64             `json:"serviceFeePercentage" bson:"serviceFeePercentage"`
	TotalAmount          *float64            `json:"totalAmount,omitempty" bson:"totalAmount,omitempty"`
	VendorAmount         *float64            `json:"vendorAmount,omitempty" bson:"vendorAmount,omitempty"`
	CreatedAt            time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt            time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// CreateWorkOrderRequest is the payload for opening a new work order.
type CreateWorkOrderRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Priority    string   `json:"priority"`
	Location    string   `json:"location"`
	BudgetMin   *float64 `json:"budgetMin,omitempty"`
	BudgetMax   *float64 `json:"budgetMax,omitempty"`
}

// CompleteWorkOrderRequest is the payload a vendor submits when finishing work.
type CompleteWorkOrderRequest struct {
	CompletionNotes string `json:"completionNotes"`
}

// ServiceFeeUpdateRequest is the payload for a manager fee adjustment.
type ServiceFeeUpdateRequest struct {
	ServiceFeePercentage float64 `json:"serviceFeePercentage"`
}

// SettleRequest is the payload for processing a payment. The fee percentage
// is optional; when omitted the order's stored percentage applies.
type SettleRequest struct {
	ServiceFeePercentage *float64 `json:"serviceFeePercentage,omitempty"`
}
