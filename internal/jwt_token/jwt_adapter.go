package jwttoken

import (
	"domainfactor/pkg/platform/middleware/admin"
)

// AdminValidator adapts JWTService to the admin middleware.
type AdminValidator struct {
	service *JWTService
}

func NewAdminValidator(service *JWTService) *AdminValidator {
	return &AdminValidator{service: service}
}

func (a *AdminValidator) ValidateAdminToken(tokenString string) (*admin.Claims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &admin.Claims{Subject: claims.Subject, Role: claims.Role}, nil
}
