package auth

type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

type AuthResponse struct {
	ID         string `json:"id"`
	Code       string `json:"code"`
	Identifier string `json:"identifier"`
	Name       string `json:"name"`
	Role       string `json:"role"`
}

// Credentials is what a strategy extracted from a request.
type Credentials struct {
	Identifier string
	Password   string
	// RequireSecret is set by strategies that carry a password on every
	// request (body). Header and cookie strategies trust the identifier.
	RequireSecret bool
}

// Principal is the resolved caller.
type Principal struct {
	EmployeeID string
	Identifier string
	Role       string
}
