package middleware

import (
	"context"
	"crypto/rsa"
	"errors"
	"log"
	"net/http"
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware verifies RS256 operator tokens issued by the identity
// service. It protects the dashboard itself; backend credentials are
// configured separately.
type AuthMiddleware struct {
	publicKey *rsa.PublicKey
}

func NewAuthMiddleware(publicKey *rsa.PublicKey) *AuthMiddleware {
	return &AuthMiddleware{publicKey: publicKey}
}

type contextKey string

const operatorKey contextKey = "operator"

// Operator is the authenticated caller.
type Operator struct {
	UserID string
	Role   string
}

// OperatorFromContext returns the caller stored by RequireRole.
func OperatorFromContext(ctx context.Context) (Operator, bool) {
	op, ok := ctx.Value(operatorKey).(Operator)
	return op, ok
}

var (
	errMissingHeader = errors.New("missing authorization header")
	errBadHeader     = errors.New("invalid authorization header")
	errBadToken      = errors.New("invalid token")
)

func (m *AuthMiddleware) RequireRole(roles []string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		op, err := m.authenticate(r)
		if err != nil {
			log.Printf("dashboard: rejected %s %s: %v", r.Method, r.URL.Path, err)
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		if !slices.Contains(roles, op.Role) {
			log.Printf("dashboard: role mismatch: required one of %v, got %s", roles, op.Role)
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), operatorKey, op)))
	}
}

func (m *AuthMiddleware) authenticate(r *http.Request) (Operator, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return Operator{}, errMissingHeader
	}
	scheme, tokenString, ok := strings.Cut(header, " ")
	if !ok || scheme != "Bearer" || tokenString == "" {
		return Operator{}, errBadHeader
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.publicKey, nil
	})
	if err != nil || !token.Valid {
		return Operator{}, errBadToken
	}

	userID, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	if userID == "" || role == "" {
		return Operator{}, errBadToken
	}
	return Operator{UserID: userID, Role: role}, nil
}
