package validation

import (
	"fmt"
	"unicode/utf8"
)

// MinPasswordLength задаёт минимальную длину пароля при регистрации.
const MinPasswordLength = 6

// ValidatePassword проверяет пароль новой учётной записи.
// Остальные требования к паролю проверяет бэкенд.
func ValidatePassword(password string) error {
	if err := ValidateNonEmpty("пароль", password); err != nil {
		return err
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return fmt.Errorf("пароль должен быть не менее %d символов", MinPasswordLength)
	}
	return nil
}
