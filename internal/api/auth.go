package api

import "context"

// User is the authenticated account profile.
type User struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Role         string  `json:"role"`
	ProfileImage *string `json:"profile_image"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

// AuthResponse carries the session token issued on login or register.
type AuthResponse struct {
	Token   string `json:"sanctum_token"`
	Message string `json:"message"`
}

// AuthClient talks to the auth endpoints. Token storage is the caller's
// concern; this client only exchanges credentials for tokens.
type AuthClient struct {
	c *Client
}

// NewAuthClient creates an auth client over the shared HTTP core.
func NewAuthClient(c *Client) *AuthClient {
	return &AuthClient{c: c}
}

// Login exchanges credentials for a session token.
func (a *AuthClient) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var out AuthResponse
	err := a.c.post(ctx, "/auth/login", body, &out)
	return out, err
}

// Register creates an account and returns its session token.
func (a *AuthClient) Register(ctx context.Context, name, email, password string) (AuthResponse, error) {
	body := map[string]string{"name": name, "email": email, "password": password}
	var out AuthResponse
	err := a.c.post(ctx, "/auth/register", body, &out)
	return out, err
}

// Logout invalidates the current session token server-side.
func (a *AuthClient) Logout(ctx context.Context) error {
	return a.c.post(ctx, "/auth/logout", nil, nil)
}

// Profile returns the current user. A 401 means the stored token is no
// longer valid and the caller should treat the session as signed out.
func (a *AuthClient) Profile(ctx context.Context) (User, error) {
	var out User
	err := a.c.get(ctx, "/user", nil, &out)
	return out, err
}
