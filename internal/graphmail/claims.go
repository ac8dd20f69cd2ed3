package graphmail

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims holds the Microsoft Entra ID claims surfaced in diagnostic
// output: the registered application's display name and its assigned roles
// (e.g. Mail.Send), plus the standard registered claims.
type TokenClaims struct {
	AppDisplayName string   `json:"app_displayname"`
	Roles          []string `json:"roles"`
	jwt.RegisteredClaims
}

// ParseTokenClaims extracts claims from an access token without verifying
// its signature; the token was already accepted by the issuer, so this is
// display-only parsing.
func ParseTokenClaims(tokenString string) (*TokenClaims, error) {
	token, _, err := new(jwt.Parser).ParseUnverified(tokenString, &TokenClaims{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWT: %w", err)
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok {
		return nil, fmt.Errorf("failed to extract claims from token")
	}
	return claims, nil
}
