package server

import (
	"strings"
)

const (
	minNameLength   = 2
	maxNameLength   = 20
	maxAnswerLength = 100
	maxPINLength    = 8
)

func validateName(name string) (string, error) {
	trimmed := normalizeText(name)
	if len(trimmed) < minNameLength {
		return "", invalidInput("name must be at least %d characters", minNameLength)
	}
	if len(trimmed) > maxNameLength {
		return "", invalidInput("name must be %d characters or fewer", maxNameLength)
	}
	if !isSafeText(trimmed) {
		return "", invalidInput("name contains unsupported characters")
	}
	return trimmed, nil
}

func validateAnswer(text string) (string, error) {
	trimmed := normalizeText(text)
	if trimmed == "" {
		return "", invalidInput("answer is required")
	}
	if len(trimmed) > maxAnswerLength {
		return "", invalidInput("answer must be %d characters or fewer", maxAnswerLength)
	}
	if !isSafeText(trimmed) {
		return "", invalidInput("answer contains unsupported characters")
	}
	return trimmed, nil
}

func validatePIN(pin string) (string, error) {
	trimmed := strings.TrimSpace(pin)
	if trimmed == "" || len(trimmed) > maxPINLength {
		return "", errInvalidPIN
	}
	for _, r := range trimmed {
		if r < '0' || r > '9' {
			return "", errInvalidPIN
		}
	}
	return trimmed, nil
}

func normalizeText(text string) string {
	fields := strings.Fields(strings.TrimSpace(text))
	return strings.Join(fields, " ")
}

func isSafeText(text string) bool {
	for _, r := range text {
		if r > 127 {
			return false
		}
		if r >= 'a' && r <= 'z' {
			continue
		}
		if r >= 'A' && r <= 'Z' {
			continue
		}
		if r >= '0' && r <= '9' {
			continue
		}
		switch r {
		case ' ', '-', '_', '\'', '"', '.', ',', '!', '?', ':', ';', '&', '(', ')', '/':
			continue
		default:
			return false
		}
	}
	return true
}
