package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTConfig carries the signing keys and lifetimes for both token kinds.
// Built once in main from the environment and passed into the components
// that need it.
type JWTConfig struct {
	AccessKey     string
	RefreshKey    string
	AccessExpire  time.Duration
	RefreshExpire time.Duration
}

// Tokens struct to describe tokens object.
type Tokens struct {
	Access  string
	Refresh string
}

// TokenMetadata struct to describe metadata in JWT.
type TokenMetadata struct {
	Id  string
	Otp bool
	Exp int64
}

// GenerateTokens func for generate a new Access & Refresh tokens.
func GenerateTokens(cfg JWTConfig, id string, otp bool) (*Tokens, error) {
	accessToken, err := generateToken(id, otp, cfg.AccessExpire, cfg.AccessKey)
	if err != nil {
		return nil, err
	}

	refreshToken, err := generateToken(id, otp, cfg.RefreshExpire, cfg.RefreshKey)
	if err != nil {
		return nil, err
	}

	return &Tokens{
		Access:  accessToken,
		Refresh: refreshToken,
	}, nil
}

func generateToken(id string, otp bool, expire time.Duration, key string) (string, error) {
	claims := jwt.MapClaims{}

	claims["id"] = id
	claims["otp"] = otp
	claims["exp"] = time.Now().Add(expire).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	return token.SignedString([]byte(key))
}

func CheckAndExtractTokenMetadata(token string, key string) (*TokenMetadata, error) {
	t, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		return []byte(key), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := t.Claims.(jwt.MapClaims); ok && t.Valid {
		return &TokenMetadata{
			Id:  claims["id"].(string),
			Otp: claims["otp"].(bool),
			Exp: int64(claims["exp"].(float64)),
		}, nil
	}

	return nil, err
}
