package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// MemberClaims : le Subject porte l'identifiant numérique du membre.
type MemberClaims struct {
	Nickname string `json:"nickname,omitempty"`
	jwt.RegisteredClaims
}

// JWTProvider signe et vérifie des tokens HS256. L'émission des tokens
// appartient au service d'identité ; Generate sert aux outils et aux tests.
type JWTProvider struct {
	secret       []byte
	issuer       string
	accessExpiry time.Duration
}

func NewJWTProvider(secret []byte, issuer string) (*JWTProvider, error) {
	if len(secret) < 16 {
		return nil, fmt.Errorf("jwt secret must be at least 16 bytes")
	}
	return &JWTProvider{
		secret:       secret,
		issuer:       issuer,
		accessExpiry: 15 * time.Minute,
	}, nil
}

func (j *JWTProvider) Generate(memberID int64, nickname string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = j.accessExpiry
	}
	now := time.Now()
	claims := MemberClaims{
		Nickname: nickname,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    j.issuer,
			Subject:   strconv.FormatInt(memberID, 10),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
}

// Validate vérifie signature, émetteur et expiration puis renvoie l'ID du membre.
func (j *JWTProvider) Validate(tokenString string) (int64, error) {
	opts := []jwt.ParserOption{
		// Seul HS256 est accepté : bloque "none" et les confusions d'algorithme
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if j.issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &MemberClaims{}, func(*jwt.Token) (any, error) {
		return j.secret, nil
	}, opts...)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*MemberClaims)
	if !ok || !token.Valid {
		return 0, ErrInvalidToken
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return id, nil
}
