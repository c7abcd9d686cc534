package auth

import "time"

// Client is a registered telemetry producer (one mobile SDK installation or
// test harness). The raw key is never stored.
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	KeyHash   string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

type RegisterRequest struct {
	Name string `json:"name"`
	Key  string `json:"key"`
}

type TokenRequest struct {
	ClientID string `json:"client_id"`
	Key      string `json:"key"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}
