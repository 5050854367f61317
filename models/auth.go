// models/auth.go
package models

// SignupRequest is the payload for email/password registration.
type SignupRequest struct {
	Email         string   `json:"email" validate:"required,email"`
	Password      string   `json:"password" validate:"required,min=8"`
	FullName      string   `json:"fullName" validate:"required"`
	UserType      string   `json:"userType" validate:"required"` // "client" or "vendor"
	Phone         string   `json:"phone,omitempty"`
	CompanyName   string   `json:"companyName,omitempty"`
	LicenseNumber string   `json:"licenseNumber,omitempty"`
	Specialties   []string `json:"specialties,omitempty"`
}

// LoginRequest is the payload for email/password login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued tokens and the account.
type LoginResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	User         User   `json:"user"`
}
