// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"passwordless/config"
	"passwordless/internal/domain/service"
)

const signingKeyBits = 2048

// jwtService implements service.TokenService with RS256 signatures. The
// keypair is generated at construction and lives for the process lifetime;
// restarting the service invalidates all outstanding tokens.
type jwtService struct {
	privateKey *rsa.PrivateKey
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewJWTService is the constructor for jwtService.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg.JWT == nil {
		return nil, errors.New("jwt config must be provided")
	}

	key, err := rsa.GenerateKey(rand.Reader, signingKeyBits)
	if err != nil {
		return nil, errors.Wrap(err, "generate signing keypair")
	}

	return &jwtService{
		privateKey: key,
		issuer:     cfg.JWT.Issuer,
		accessTTL:  cfg.JWT.AccessTokenTTL,
		refreshTTL: cfg.JWT.RefreshTokenTTL,
	}, nil
}

// IssueAccessToken creates a short-lived token carrying the account's email
// for stateless identification by resource servers.
func (s *jwtService) IssueAccessToken(accountID uuid.UUID, email string) (string, error) {
	return s.generateToken(accountID, email, service.TokenTypeAccess, s.accessTTL)
}

// IssueRefreshToken creates the longer-lived rotation token. It carries no
// profile claims; the ledger row holds the metadata.
func (s *jwtService) IssueRefreshToken(accountID uuid.UUID) (string, error) {
	return s.generateToken(accountID, "", service.TokenTypeRefresh, s.refreshTTL)
}

// ValidateToken parses and verifies a token string, mapping library errors
// into the two domain verification failures.
func (s *jwtService) ValidateToken(tokenString string) (*service.Claims, error) {
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return &s.privateKey.PublicKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, service.ErrTokenExpired
		}

		return nil, service.ErrTokenInvalid
	}

	accountID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, service.ErrTokenInvalid
	}

	return &service.Claims{
		AccountID:        accountID,
		Email:            claims.Email,
		TokenType:        claims.TokenType,
		RegisteredClaims: claims.RegisteredClaims,
	}, nil
}

// HashToken returns the hex SHA-256 digest of the token string. Tokens are
// looked up in the ledger by this digest so plaintext never touches storage.
func (s *jwtService) HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))

	return hex.EncodeToString(sum[:])
}

func (s *jwtService) AccessTokenTTL() time.Duration {
	return s.accessTTL
}

func (s *jwtService) RefreshTokenTTL() time.Duration {
	return s.refreshTTL
}

type tokenClaims struct {
	Email     string `json:"email,omitempty"`
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

func (s *jwtService) generateToken(accountID uuid.UUID, email, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Email:     email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(s.privateKey)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}

	return signed, nil
}
