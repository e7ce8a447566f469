package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// EmailPattern упрощенная проверка формата email: local@domain.tld
var EmailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// PhonePattern допускает цифры, пробелы, дефисы, скобки и ведущий +
var PhonePattern = regexp.MustCompile(`^\+?[0-9 ()\-]{6,20}$`)

const (
	// MinPasswordLen минимальная длина пароля
	MinPasswordLen = 8
	// MaxPasswordLen bcrypt игнорирует все после 72 байт
	MaxPasswordLen = 72
	// MaxNameLen максимальная длина имени в символах
	MaxNameLen = 100
	// MaxEmailLen максимальная длина email
	MaxEmailLen = 254
)

// NormalizeEmail приводит email к виду, в котором он хранится
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail проверяет формат email
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}

	if len(email) > MaxEmailLen {
		return fmt.Errorf("email must not exceed %d characters", MaxEmailLen)
	}

	if !EmailPattern.MatchString(email) {
		return fmt.Errorf("email %q is not valid", email)
	}

	return nil
}

// ValidatePassword проверяет требования к паролю
// Длина: 8-72 байта
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	if len(password) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLen)
	}

	if len(password) > MaxPasswordLen {
		return fmt.Errorf("password must not exceed %d bytes", MaxPasswordLen)
	}

	return nil
}

// ValidateName проверяет отображаемое имя пользователя
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}

	if utf8.RuneCountInString(name) > MaxNameLen {
		return fmt.Errorf("name must not exceed %d characters", MaxNameLen)
	}

	return nil
}

// ValidatePhone проверяет телефон. Пустой телефон допустим.
func ValidatePhone(phone string) error {
	if phone == "" {
		return nil
	}

	if !PhonePattern.MatchString(phone) {
		return fmt.Errorf("phone %q is not valid", phone)
	}

	return nil
}
