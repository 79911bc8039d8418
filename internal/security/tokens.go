package security

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/rsa"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token is malformed or invalid.
	ErrInvalidToken = errors.New("invalid token")
)

// AccessClaims holds JWT claims for the admin access token.
type AccessClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

// IntentClaims holds JWT claims for a punch intent token. The server issues one
// after resolving a scan so the commit step cannot alter the employee, device,
// direction, or prefilled time.
type IntentClaims struct {
	jwt.RegisteredClaims
	Kind        string `json:"kind"` // "arrival" or "departure"
	Fingerprint string `json:"fingerprint"`
	Day         string `json:"day"` // YYYY-MM-DD in the site time zone
	PunchAt     int64  `json:"punch_at"`
}

// TokenProvider issues and validates JWT access and punch intent tokens using RS256 or ES256 (private/public key).
type TokenProvider struct {
	privateKey crypto.Signer
	publicKey  crypto.PublicKey
	issuer     string
	audience   string
	accessTTL  time.Duration
	intentTTL  time.Duration
}

// NewTokenProvider returns a TokenProvider that signs with the given private key (RS256 or ES256).
// issuer and audience are set on claims and checked on validation.
func NewTokenProvider(privateKey crypto.Signer, publicKey crypto.PublicKey, issuer, audience string, accessTTL, intentTTL time.Duration) *TokenProvider {
	return &TokenProvider{
		privateKey: privateKey,
		publicKey:  publicKey,
		issuer:     issuer,
		audience:   audience,
		accessTTL:  accessTTL,
		intentTTL:  intentTTL,
	}
}

// IssueAccess issues a short-lived access JWT for the given admin.
// Returns the token string, its jti, and expiration time.
func (p *TokenProvider) IssueAccess(adminID, email, role string) (token string, jti string, expiresAt time.Time, err error) {
	jti, err = generateJTI()
	if err != nil {
		return "", "", time.Time{}, err
	}
	now := time.Now().UTC()
	expiresAt = now.Add(p.accessTTL)
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   adminID,
			Issuer:    p.issuer,
			Audience:  jwt.ClaimStrings{p.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email: email,
		Role:  role,
	}
	token, err = p.sign(claims)
	return token, jti, expiresAt, err
}

// IssueIntent issues a punch intent JWT binding employee, device fingerprint,
// direction, day, and the prefilled punch time. PunchAt keeps second precision;
// sub-second detail is dropped on the round trip.
func (p *TokenProvider) IssueIntent(employeeID, fingerprint, kind, day string, punchAt time.Time) (token string, expiresAt time.Time, err error) {
	jti, err := generateJTI()
	if err != nil {
		return "", time.Time{}, err
	}
	now := time.Now().UTC()
	expiresAt = now.Add(p.intentTTL)
	claims := IntentClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   employeeID,
			Issuer:    p.issuer,
			Audience:  jwt.ClaimStrings{p.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Kind:        kind,
		Fingerprint: fingerprint,
		Day:         day,
		PunchAt:     punchAt.Unix(),
	}
	token, err = p.sign(claims)
	return token, expiresAt, err
}

func (p *TokenProvider) sign(claims jwt.Claims) (string, error) {
	var method jwt.SigningMethod
	switch p.privateKey.Public().(type) {
	case *rsa.PublicKey:
		method = jwt.SigningMethodRS256
	case *ecdsa.PublicKey:
		method = jwt.SigningMethodES256
	default:
		return "", ErrInvalidToken
	}
	t := jwt.NewWithClaims(method, claims)
	return t.SignedString(p.privateKey)
}

func (p *TokenProvider) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodRSA); ok {
		return p.publicKey, nil
	}
	if _, ok := token.Method.(*jwt.SigningMethodECDSA); ok {
		return p.publicKey, nil
	}
	return nil, ErrInvalidToken
}

// ValidateAccess parses and validates the access token (signature, exp, iss, aud).
// Returns adminID, email, role, or error.
func (p *TokenProvider) ValidateAccess(tokenString string) (adminID, email, role string, err error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, p.keyFunc)
	if err != nil {
		return "", "", "", ErrInvalidToken
	}
	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return "", "", "", ErrInvalidToken
	}
	if !p.issuerAudienceOK(claims.Issuer, claims.Audience) {
		return "", "", "", ErrInvalidToken
	}
	return claims.Subject, claims.Email, claims.Role, nil
}

// ValidateIntent parses and validates a punch intent token (signature, exp, iss, aud).
// Returns the claims so the caller can check fingerprint, kind, and day.
func (p *TokenProvider) ValidateIntent(tokenString string) (*IntentClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &IntentClaims{}, p.keyFunc)
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*IntentClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if !p.issuerAudienceOK(claims.Issuer, claims.Audience) {
		return nil, ErrInvalidToken
	}
	if claims.Kind == "" || claims.Fingerprint == "" || claims.Day == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (p *TokenProvider) issuerAudienceOK(issuer string, audience jwt.ClaimStrings) bool {
	if issuer != p.issuer {
		return false
	}
	for _, a := range audience {
		if a == p.audience {
			return true
		}
	}
	return false
}

func generateJTI() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
