package jwt

import (
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Service verifies access tokens issued by the identity service and
// mints short-lived SSE tokens. Token issuance for login flows lives in
// the identity service, not here.
type Service interface {
	JWTAuth() *jwtauth.JWTAuth
	GenerateSSEToken(caregiverID string) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (caregiverID string, err error)
}

type JWTService struct {
	secretKey   string
	sseTokenTTL time.Duration
	tokenAuth   *jwtauth.JWTAuth
}

func NewJWTService(secretKey string, sseTokenTTL string) Service {
	ttl, err := time.ParseDuration(sseTokenTTL)
	if err != nil || ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &JWTService{
		secretKey:   secretKey,
		sseTokenTTL: ttl,
		tokenAuth:   jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// GenerateSSEToken generates a short-lived token for SSE connections,
// which cannot carry the Authorization header.
func (j *JWTService) GenerateSSEToken(caregiverID string) (token string, expiresIn int, err error) {
	expiresAt := time.Now().Add(j.sseTokenTTL).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"caregiver_id": caregiverID,
		"type":         "sse",
		"exp":          expiresAt,
	})
	if err != nil {
		return "", 0, err
	}

	return tokenString, int(j.sseTokenTTL.Seconds()), nil
}

// ValidateSSEToken validates an SSE token and returns the caregiver ID.
func (j *JWTService) ValidateSSEToken(tokenString string) (caregiverID string, err error) {
	token, err := j.tokenAuth.Decode(tokenString)
	if err != nil {
		return "", err
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != "sse" {
		return "", jwt.ErrInvalidJWT()
	}

	caregiverVal, ok := token.Get("caregiver_id")
	if !ok {
		return "", jwt.ErrInvalidJWT()
	}

	caregiverID, ok = caregiverVal.(string)
	if !ok {
		return "", jwt.ErrInvalidJWT()
	}

	return caregiverID, nil
}
