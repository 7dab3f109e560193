package jwt

import (
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const tokenTypeAccess = "access"

// Claims is the caller identity carried by an access token.
type Claims struct {
	Subject    string
	EmployeeID *string
	IsAdmin    bool
}

type Service interface {
	GenerateAccessToken(claims Claims) (token string, expiresAt int64, err error)
	ParseAccessToken(tokenString string) (Claims, error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) GenerateAccessToken(claims Claims) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	payload := map[string]interface{}{
		"sub":         claims.Subject,
		"employee_id": valueOrNil(claims.EmployeeID),
		"is_admin":    claims.IsAdmin,
		"type":        tokenTypeAccess,
		"exp":         expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(payload)
	return tokenString, expiresAt, err
}

// ParseAccessToken verifies the signature and expiry and rejects non-access tokens.
func (j *JWTService) ParseAccessToken(tokenString string) (Claims, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return Claims{}, err
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != tokenTypeAccess {
		return Claims{}, jwt.ErrInvalidJWT()
	}

	claims := Claims{Subject: token.Subject()}
	if raw, ok := token.Get("employee_id"); ok {
		if id, ok := raw.(string); ok && id != "" {
			claims.EmployeeID = &id
		}
	}
	if raw, ok := token.Get("is_admin"); ok {
		claims.IsAdmin, _ = raw.(bool)
	}
	return claims, nil
}

func valueOrNil(value *string) interface{} {
	if value == nil {
		return nil
	}
	return *value
}
