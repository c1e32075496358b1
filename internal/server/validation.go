package server

import (
	"fmt"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	maxNameLength    = 20
	maxMessageLength = 280
)

var validatorOnce sync.Once

func registerValidators() {
	validatorOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = engine.RegisterValidation("playername", func(fl validator.FieldLevel) bool {
			_, err := validateName(fl.Field().String())
			return err == nil
		})
		_ = engine.RegisterValidation("chatmessage", func(fl validator.FieldLevel) bool {
			_, err := validateMessage(fl.Field().String())
			return err == nil
		})
	})
}

func validateName(name string) (string, error) {
	trimmed := normalizeText(name)
	if trimmed == "" {
		return "", fmt.Errorf("name is required")
	}
	if utf8.RuneCountInString(trimmed) > maxNameLength {
		return "", fmt.Errorf("name must be %d characters or fewer", maxNameLength)
	}
	if !isPrintableText(trimmed) {
		return "", fmt.Errorf("name contains unsupported characters")
	}
	return trimmed, nil
}

// validateMessage only rejects empty and oversized input. Anything a
// guesser can type must survive untouched, because correctness is an
// exact match against the current word after trimming surrounding
// whitespace and nothing else.
func validateMessage(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("message is required")
	}
	if utf8.RuneCountInString(text) > maxMessageLength {
		return "", fmt.Errorf("message must be %d characters or fewer", maxMessageLength)
	}
	if !isPrintableText(text) {
		return "", fmt.Errorf("message contains unsupported characters")
	}
	return text, nil
}

func normalizeText(text string) string {
	fields := strings.Fields(strings.TrimSpace(text))
	return strings.Join(fields, " ")
}

func isPrintableText(text string) bool {
	for _, r := range text {
		if r == ' ' {
			continue
		}
		if unicode.IsControl(r) || !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}
