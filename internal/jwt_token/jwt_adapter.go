package jwttoken

// ValidatorAdapter adapts JWTService to the middleware's TokenValidator
// interface.
type ValidatorAdapter struct {
	service *JWTService
}

func NewValidatorAdapter(service *JWTService) *ValidatorAdapter {
	return &ValidatorAdapter{service: service}
}

func (a *ValidatorAdapter) Validate(tokenString string) (subject, role string, err error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return "", "", err
	}
	return claims.Subject, claims.Role, nil
}
