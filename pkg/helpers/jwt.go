package helpers

import (
	"crypto/rsa"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTManager verifies bearer tokens. The signing algorithm is selected via
// configuration: HS256/HS384/HS512 against a shared secret, or
// RS256/RS384/RS512 against a PEM-encoded public key.
type JWTManager struct {
	algorithm string
	secret    []byte
	publicKey *rsa.PublicKey
}

// Claims carries the caller identity attached to authenticated requests.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

var hmacAlgorithms = map[string]struct{}{
	"HS256": {},
	"HS384": {},
	"HS512": {},
}

var rsaAlgorithms = map[string]struct{}{
	"RS256": {},
	"RS384": {},
	"RS512": {},
}

// NewJWTManager builds a manager for the configured algorithm. A non-empty
// publicKeyPEM selects RSA verification; otherwise the shared secret is used.
func NewJWTManager(secret, publicKeyPEM, algorithm string) (*JWTManager, error) {
	if algorithm == "" {
		algorithm = "HS256"
	}
	m := &JWTManager{algorithm: algorithm}

	if publicKeyPEM != "" {
		if _, ok := rsaAlgorithms[algorithm]; !ok {
			return nil, errors.New("jwt: public key requires an RS* algorithm")
		}
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(publicKeyPEM))
		if err != nil {
			return nil, err
		}
		m.publicKey = key
		return m, nil
	}

	if _, ok := hmacAlgorithms[algorithm]; !ok {
		return nil, errors.New("jwt: unsupported algorithm " + algorithm)
	}
	if secret == "" {
		return nil, errors.New("jwt: verification requires a secret or public key")
	}
	m.secret = []byte(secret)
	return m, nil
}

// Parse validates the token signature and expiry and returns its claims.
func (m *JWTManager) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if m.publicKey != nil {
			return m.publicKey, nil
		}
		return m.secret, nil
	}, jwt.WithValidMethods([]string{m.algorithm}))
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Generate signs a token for the given subject. Only available with HMAC
// algorithms; RSA verification-only managers hold no private key.
func (m *JWTManager) Generate(subject, email, role string, ttl time.Duration) (string, error) {
	if m.secret == nil {
		return "", errors.New("jwt: signing requires an HMAC secret")
	}
	now := time.Now()
	claims := &Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.GetSigningMethod(m.algorithm), claims)
	return t.SignedString(m.secret)
}
