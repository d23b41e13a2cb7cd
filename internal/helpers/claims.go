package helpers

import "github.com/golang-jwt/jwt/v5"

// CustomClaims is the token payload issued by the auth provider.
type CustomClaims struct {
	Role  string `json:"role"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// EnhancedClaims is what handlers read from the request context.
type EnhancedClaims struct {
	*CustomClaims
	Role   string `json:"role"`
	UserID string `json:"id"`
	Email  string `json:"email,omitempty"`
}

func (ec *EnhancedClaims) IsAdmin() bool {
	return ec.Role == "admin"
}

// IsVenueOwner reports whether the account can manage venues and
// decide on inquiries.
func (ec *EnhancedClaims) IsVenueOwner() bool {
	return ec.Role == "owner"
}

func (ec *EnhancedClaims) HasRole(role string) bool {
	return ec.Role == role
}

func (ec *EnhancedClaims) GetSafeRole() string {
	if ec.Role == "" {
		return "customer"
	}
	return ec.Role
}
