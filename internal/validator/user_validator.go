package validator

import (
	"regexp"
	"strings"

	"posapp/internal/domain/model"
	"posapp/internal/usecase"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,64}$`)

// ユーザー名の形式
func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(strings.TrimSpace(username)) {
		return usecase.NewValidationError("username must be 3-64 characters of letters, digits, '_', '.', '-'")
	}
	return nil
}

// パスワード最低文字数とよくある弱いパスワードの拒否
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return usecase.NewValidationError("password too short")
	}
	if isWeakPassword(password) {
		return usecase.NewValidationError("weak password")
	}
	return nil
}

// ロールは staff / manager / admin のどれか
func ValidateRole(role string) (model.Role, error) {
	r := model.Role(strings.ToLower(strings.TrimSpace(role)))
	if !r.IsValid() {
		return "", usecase.NewValidationError("invalid role")
	}
	return r, nil
}

func isWeakPassword(password string) bool {
	normalized := strings.ToLower(strings.TrimSpace(password))

	weak := map[string]struct{}{
		"password":    {},
		"password123": {},
		"1234567890":  {},
		"12345678":    {},
		"qwertyuiop":  {},
		"letmein1":    {},
		"admin123":    {},
	}

	_, ok := weak[normalized]
	return ok
}
