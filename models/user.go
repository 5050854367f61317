// models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles
const (
	RoleManager = "manager"
	RoleClient  = "client"
	RoleVendor  = "vendor"
)

// User account statuses
const (
	UserStatusActive    = "active"
	UserStatusPending   = "pending"
	UserStatusSuspended = "suspended"
)

// User model
type User struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Email         string             `json:"email" bson:"email"`
	Password      string             `json:"password,omitempty" bson:"password,omitempty"`
	FullName      string             `json:"fullName" bson:"fullName"`
	Phone         string             `json:"phone,omitempty" bson:"phone,omitempty"`
	UserType      string             `json:"userType" bson:"userType"` // "manager", "client", "vendor"
	Status        string             `json:"status" bson:"status"`     // "active", "pending", "suspended"
	CompanyName   string             `json:"companyName,omitempty" bson:"companyName,omitempty"`
	LicenseNumber string             `json:"licenseNumber,omitempty" bson:"licenseNumber,omitempty"` // vendors only
	Specialties   []string           `json:"specialties,omitempty" bson:"specialties,omitempty"`     // vendors only
	GoogleID      string             `json:"googleId,omitempty" bson:"googleId,omitempty"`
	ProfilePic    string             `json:"profilePic,omitempty" bson:"profilePic,omitempty"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// IsVendor reports whether the account belongs to a service vendor.
func (u *User) IsVendor() bool { return u.UserType == RoleVendor }

// IsClient reports whether the account belongs to a property client.
func (u *User) IsClient() bool { return u.UserType == RoleClient }

// IsManager reports whether the account belongs to the platform manager.
func (u *User) IsManager() bool { return u.UserType == RoleManager }
