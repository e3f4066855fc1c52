package utils

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// IsUUID checks if the string is a valid UUID
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// Helper for IDs
func GenerateID() string {
	return uuid.New().String()
}

const voucherAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateVoucherCode produces a short human-readable code from a template.
// "{CODE}" in the template is replaced with 8 random characters; an empty
// template yields a bare code.
func GenerateVoucherCode(template string) string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("VC-%s", uuid.New().String()[:8])
	}
	code := make([]byte, 8)
	for i, b := range buf {
		code[i] = voucherAlphabet[int(b)%len(voucherAlphabet)]
	}
	if template == "" {
		return string(code)
	}
	if strings.Contains(template, "{CODE}") {
		return strings.ReplaceAll(template, "{CODE}", string(code))
	}
	return template + "-" + string(code)
}
