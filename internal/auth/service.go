package auth

import (
	"context"
	"errors"
	"time"

	"backend-navtelemetry/internal/db"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Device clients hold tokens for a whole session; no refresh flow, they
// re-exchange their key when the token expires.
const accessTokenTTL = 24 * time.Hour

type Service struct {
	secret []byte
	db     db.Querier
}

type Claims struct {
	ClientID string `json:"client_id"`
	jwt.RegisteredClaims
}

func NewService(secret string, querier db.Querier) *Service {
	return &Service{
		secret: []byte(secret),
		db:     querier,
	}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (Client, TokenResponse, error) {
	if req.Name == "" || req.Key == "" {
		return Client{}, TokenResponse{}, errors.New("name and key required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Key), bcrypt.DefaultCost)
	if err != nil {
		return Client{}, TokenResponse{}, err
	}

	client := Client{
		ID:      uuid.NewString(),
		Name:    req.Name,
		KeyHash: string(hash),
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO clients (id, name, key_hash)
		VALUES ($1,$2,$3)
		RETURNING created_at
	`, client.ID, client.Name, client.KeyHash)
	if err := row.Scan(&client.CreatedAt); err != nil {
		return Client{}, TokenResponse{}, err
	}

	tokens, err := s.issueToken(client.ID)
	if err != nil {
		return Client{}, TokenResponse{}, err
	}
	return client, tokens, nil
}

func (s *Service) Token(ctx context.Context, req TokenRequest) (TokenResponse, error) {
	row := s.db.QueryRow(ctx, `
		SELECT key_hash FROM clients WHERE id = $1
	`, req.ClientID)

	var keyHash string
	if err := row.Scan(&keyHash); err != nil {
		return TokenResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(keyHash), []byte(req.Key)); err != nil {
		return TokenResponse{}, errors.New("invalid credentials")
	}

	return s.issueToken(req.ClientID)
}

func (s *Service) ValidateAccessToken(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return "", errors.New("token invalid")
	}
	return claims.ClientID, nil
}

func (s *Service) issueToken(clientID string) (TokenResponse, error) {
	access, err := signTokenFn(s, clientID, accessTokenTTL)
	if err != nil {
		return TokenResponse{}, err
	}

	return TokenResponse{
		AccessToken: access,
		TokenType:   "Bearer",
		ExpiresIn:   int64(accessTokenTTL.Seconds()),
	}, nil
}

var signTokenFn = (*Service).signToken

func (s *Service) signToken(clientID string, ttl time.Duration) (string, error) {
	claims := Claims{
		ClientID: clientID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
