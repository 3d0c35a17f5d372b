package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ignatzorin/proposely/internal/models"
	"github.com/ignatzorin/proposely/internal/pkg/apperror"
)

// Константы валидации
const (
	MinClientNameLength  = 2
	MaxClientNameLength  = 100
	MinProjectTypeLength = 3
	MaxProjectTypeLength = 100
	MaxCompanyNameLength = 100
	MaxTitleLength       = 200
	MaxContentLength     = 10000
	MinSettingsNameLen   = 2
	MaxBudget            = 100000000.0 // 100 миллионов
)

var (
	emailLocalRegex  = regexp.MustCompile(`^[a-z0-9._+-]+$`)
	emailDomainRegex = regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
)

// ValidateLength проверяет длину строки в символах.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должно быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должно быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("некорректный формат email")
	}

	localPart, domainPart := parts[0], parts[1]

	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}
	if len(domainPart) == 0 || len(domainPart) > 255 {
		return fmt.Errorf("доменная часть email должна быть от 1 до 255 символов")
	}
	if !emailLocalRegex.MatchString(localPart) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}
	if !emailDomainRegex.MatchString(domainPart) {
		return fmt.Errorf("доменная часть email имеет некорректный формат")
	}

	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidateBudget проверяет бюджет проекта, если он указан.
func ValidateBudget(budget *float64) error {
	if budget == nil {
		return nil
	}
	if *budget < 0 {
		return fmt.Errorf("бюджет проекта не может быть отрицательным")
	}
	if *budget > MaxBudget {
		return fmt.Errorf("бюджет проекта не может превышать %.0f", MaxBudget)
	}
	return nil
}

// ValidateProposalForm проверяет форму генерации предложения.
// Пробелы по краям не учитываются; пустое название компании допустимо.
func ValidateProposalForm(req models.GenerateProposalRequest) error {
	if err := ValidateLength("имя клиента", strings.TrimSpace(req.ClientName), MinClientNameLength, MaxClientNameLength); err != nil {
		return invalid(err)
	}
	if err := ValidateLength("тип проекта", strings.TrimSpace(req.ProjectType), MinProjectTypeLength, MaxProjectTypeLength); err != nil {
		return invalid(err)
	}
	if err := ValidateLength("название компании", strings.TrimSpace(req.CompanyName), 0, MaxCompanyNameLength); err != nil {
		return invalid(err)
	}
	if err := ValidateLength("заголовок", req.Title, 0, MaxTitleLength); err != nil {
		return invalid(err)
	}
	if err := ValidateLength("текст", req.Content, 0, MaxContentLength); err != nil {
		return invalid(err)
	}
	if err := ValidateBudget(req.ProjectBudget); err != nil {
		return invalid(err)
	}
	return nil
}

// ValidateLogin проверяет форму входа.
func ValidateLogin(email, password string) error {
	if err := ValidateEmail(email); err != nil {
		return invalid(err)
	}
	if err := ValidateNonEmpty("пароль", password); err != nil {
		return invalid(err)
	}
	return nil
}

// ValidateSignup проверяет форму регистрации.
func ValidateSignup(name, email, password string) error {
	if err := ValidateLength("имя", strings.TrimSpace(name), 0, MaxClientNameLength); err != nil {
		return invalid(err)
	}
	if err := ValidateEmail(email); err != nil {
		return invalid(err)
	}
	if err := ValidatePassword(password); err != nil {
		return invalid(err)
	}
	return nil
}

// ValidateCompanySettings проверяет форму настроек компании.
func ValidateCompanySettings(s models.CompanySettings) error {
	if err := ValidateLength("название компании", strings.TrimSpace(s.CompanyName), MinSettingsNameLen, MaxCompanyNameLength); err != nil {
		return invalid(err)
	}
	if err := ValidateEmail(s.CompanyEmail); err != nil {
		return invalid(err)
	}
	return nil
}

func invalid(err error) error {
	return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
}
