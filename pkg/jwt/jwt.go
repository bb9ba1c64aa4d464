// Package jwt emite y valida los tokens de sesión de Ombor (HS256).
// El token lleva usuario, empresa y rol (ceo | admin | seller): el middleware de auth fija el
// tenant de cada petición y RequireRole decide sin ir a la BD.
package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrEmptySecret no se firma ni se valida nada sin secreto.
	ErrEmptySecret = errors.New("jwt: secret vacío")
	// ErrMissingTenant token bien firmado pero sin usuario o empresa.
	ErrMissingTenant = errors.New("jwt: token sin user_id o company_id")
)

// Claims de sesión. Subject repite UserID. Role puede venir vacío en tokens antiguos;
// RequireRole los rechaza con MISSING_ROLE.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id"`
	CompanyID string `json:"company_id"`
	Role      string `json:"role"`
}

// Generate firma un token de sesión que vence a los expMinutes.
func Generate(secret, userID, companyID, role, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	issuedAt := time.Now()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Duration(expMinutes) * time.Minute)),
		},
		UserID:    userID,
		CompanyID: companyID,
		Role:      role,
	}).SignedString([]byte(secret))
}

// Parse valida firma, algoritmo (solo HS256: un token "none" o RS256 se rechaza) y expiración,
// y devuelve el tenant y el rol de la sesión.
func Parse(secret, tokenString string) (userID, companyID, role string, err error) {
	if secret == "" {
		return "", "", "", ErrEmptySecret
	}
	var claims Claims
	_, err = jwt.ParseWithClaims(tokenString, &claims,
		func(*jwt.Token) (interface{}, error) { return []byte(secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", "", "", err
	}
	if claims.UserID == "" || claims.CompanyID == "" {
		return "", "", "", ErrMissingTenant
	}
	return claims.UserID, claims.CompanyID, claims.Role, nil
}
