package mockapi

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// The platform serializes expiries with seven fractional digits, more than
// microsecond precision. The stand-in does the same so clients are forced
// to handle it.
const expiryFormat = "2006-01-02T15:04:05.0000000Z07:00"

// tokenPairResponse mirrors the login/refresh response body
type tokenPairResponse struct {
	AccessToken           string `json:"accessToken"`
	RefreshToken          string `json:"refreshToken"`
	AccessTokenExpiresAt  string `json:"accessTokenExpiresAt"`
	RefreshTokenExpiresAt string `json:"refreshTokenExpiresAt"`
}

// Authenticator issues and validates the stand-in's JWT token pairs
type Authenticator struct {
	secret     []byte
	email      string
	password   string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewAuthenticator creates an Authenticator for one operator account
func NewAuthenticator(secret []byte, email, password string, accessTTL, refreshTTL time.Duration) *Authenticator {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 24 * time.Hour
	}
	return &Authenticator{
		secret:     secret,
		email:      email,
		password:   password,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Login validates credentials and issues a fresh token pair
func (a *Authenticator) Login(username, password string) (*tokenPairResponse, error) {
	if username != a.email || password != a.password {
		return nil, ErrInvalidCredentials
	}
	return a.issuePair()
}

// Refresh validates a refresh token and issues a fresh pair
func (a *Authenticator) Refresh(refreshToken string) (*tokenPairResponse, error) {
	claims, err := a.parse(refreshToken)
	if err != nil {
		return nil, err
	}
	if use, _ := claims["use"].(string); use != "refresh" {
		return nil, errors.New("not a refresh token")
	}
	return a.issuePair()
}

// Validate checks an access token's signature and expiry
func (a *Authenticator) Validate(accessToken string) error {
	_, err := a.parse(accessToken)
	return err
}

func (a *Authenticator) issuePair() (*tokenPairResponse, error) {
	now := time.Now().UTC()
	accessExpiry := now.Add(a.accessTTL)
	refreshExpiry := now.Add(a.refreshTTL)

	access, err := a.sign("access", accessExpiry)
	if err != nil {
		return nil, err
	}
	refresh, err := a.sign("refresh", refreshExpiry)
	if err != nil {
		return nil, err
	}

	return &tokenPairResponse{
		AccessToken:           access,
		RefreshToken:          refresh,
		AccessTokenExpiresAt:  accessExpiry.Format(expiryFormat),
		RefreshTokenExpiresAt: refreshExpiry.Format(expiryFormat),
	}, nil
}

func (a *Authenticator) sign(use string, expiry time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub": a.email,
		"use": use,
		"exp": jwt.NewNumericDate(expiry),
		"iat": jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

func (a *Authenticator) parse(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
