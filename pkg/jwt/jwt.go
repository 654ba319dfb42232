package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/d60-Lab/social-graph/config"
)

var ErrInvalidToken = errors.New("invalid token")

// Service 签发与校验 HS256 token，Subject 存用户ID
type Service struct {
	secret []byte
	issuer string
	expire time.Duration
}

type Claims struct {
	Username string `json:"username"`
	jwtv5.RegisteredClaims
}

func NewService(cfg config.JWTConfig) *Service {
	return &Service{secret: []byte(cfg.Secret), issuer: cfg.Issuer, expire: cfg.Expire}
}

// Generate 生成访问令牌
func (s *Service) Generate(userID, username string) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.issuer,
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(s.expire)),
		},
	}
	return jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString(s.secret)
}

// Parse 校验并解析令牌
func (s *Service) Parse(tokenString string) (*Claims, error) {
	token, err := jwtv5.ParseWithClaims(tokenString, &Claims{}, func(t *jwtv5.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
