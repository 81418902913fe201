package auth

import (
	"net/http"
	"strings"
	"time"

	"centrale/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is what a parsed token carries: who the user is and which role
// drives their partition.
type Claims struct {
	Username string
	Role     model.Role
}

// GenerateJWT creates a token for a given user.
func GenerateJWT(username string, role model.Role, secret string) (string, error) {
	claims := jwt.MapClaims{
		"username": username,
		"role":     string(role),
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
		"iat":      time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseJWT validates a token and extracts its claims.
func ParseJWT(tokenStr, secret string) (*Claims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, jwt.ErrTokenMalformed
	}

	username, ok := mapClaims["username"].(string)
	if !ok || username == "" {
		return nil, jwt.ErrTokenMalformed
	}
	roleStr, ok := mapClaims["role"].(string)
	if !ok {
		return nil, jwt.ErrTokenMalformed
	}
	role, err := model.ParseRole(roleStr)
	if err != nil {
		return nil, jwt.ErrTokenInvalidClaims
	}

	return &Claims{Username: username, Role: role}, nil
}

func ExtractToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}

	parts := strings.Split(auth, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return parts[1]
}
