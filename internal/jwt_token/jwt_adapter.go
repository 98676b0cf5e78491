package jwttoken

import (
	dErrors "ledgerpass/pkg/domain-errors"
	authmw "ledgerpass/pkg/platform/middleware/auth"
)

// JWTServiceAdapter exposes JWTService to the bearer middleware.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*authmw.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	sender, err := claims.Sender()
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token does not name a valid principal")
	}
	return &authmw.JWTClaims{Principal: sender, JTI: claims.ID}, nil
}
