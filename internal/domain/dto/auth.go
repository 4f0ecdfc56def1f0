package dto

// Credentials is the body of POST /auth/register and POST /auth/login.
type Credentials struct {
	Username string `json:"username" binding:"required" example:"tester"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// LoginResponse is returned by a successful POST /auth/login.
type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username,omitempty"`
	Type     string `json:"type,omitempty" example:"Bearer"`
}

// AuthResponse is returned by POST /auth/register.
type AuthResponse struct {
	Message  string `json:"message"`
	Username string `json:"username,omitempty"`
	Success  bool   `json:"success"`
}
