package jwt_test

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Ombor-api/pkg/jwt"
)

const secret = "secreto-de-prueba"

func sign(t *testing.T, method gojwt.SigningMethod, key any, claims jwt.Claims) string {
	t.Helper()
	tok, err := gojwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return tok
}

func validClaims() jwt.Claims {
	return jwt.Claims{
		RegisteredClaims: gojwt.RegisteredClaims{ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           "u1",
		CompanyID:        "c1",
		Role:             "seller",
	}
}

func TestParse_RoundTrip(t *testing.T) {
	tok, err := jwt.Generate(secret, "u1", "c1", "admin", "ombor", 5)
	require.NoError(t, err)

	userID, companyID, role, err := jwt.Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
	assert.Equal(t, "c1", companyID)
	assert.Equal(t, "admin", role)
}

func TestParse_SoloHS256(t *testing.T) {
	hs512 := sign(t, gojwt.SigningMethodHS512, []byte(secret), validClaims())
	_, _, _, err := jwt.Parse(secret, hs512)
	assert.Error(t, err)

	none := sign(t, gojwt.SigningMethodNone, gojwt.UnsafeAllowNoneSignatureType, validClaims())
	_, _, _, err = jwt.Parse(secret, none)
	assert.Error(t, err)
}

func TestParse_SinExpiracionSeRechaza(t *testing.T) {
	c := validClaims()
	c.ExpiresAt = nil
	_, _, _, err := jwt.Parse(secret, sign(t, gojwt.SigningMethodHS256, []byte(secret), c))
	assert.Error(t, err)
}

func TestParse_SinEmpresa(t *testing.T) {
	c := validClaims()
	c.CompanyID = ""
	_, _, _, err := jwt.Parse(secret, sign(t, gojwt.SigningMethodHS256, []byte(secret), c))
	assert.ErrorIs(t, err, jwt.ErrMissingTenant)
}

func TestSecretVacio(t *testing.T) {
	_, err := jwt.Generate("", "u1", "c1", "admin", "ombor", 5)
	assert.ErrorIs(t, err, jwt.ErrEmptySecret)
	_, _, _, err = jwt.Parse("", "x.y.z")
	assert.ErrorIs(t, err, jwt.ErrEmptySecret)
}
