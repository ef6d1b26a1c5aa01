package utils

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const scanCodeRandomBytes = 32

var scanCodeEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// ==================== SCAN CODE ====================

// GenerateScanCode returns "<token>--<random>". The token is a time-ordered
// UUIDv7 (unique per process and monotonic), the suffix is 256 bits of
// crypto/rand. Barcode schemes may match on the token part alone.
func GenerateScanCode() (string, error) {
	token, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate scan token: %w", err)
	}

	buf := make([]byte, scanCodeRandomBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate scan suffix: %w", err)
	}

	return strings.ReplaceAll(token.String(), "-", "") + "--" + scanCodeEncoding.EncodeToString(buf), nil
}

// ScanCodeToken returns the token part of a scan code.
func ScanCodeToken(code string) string {
	token, _, _ := strings.Cut(code, "--")
	return token
}

// ==================== ORDER REF ====================

// GenerateTransactionRef creates an opaque purchase reference.
// Format: PUR-<uuid without dashes, upper case>
func GenerateTransactionRef() string {
	return "PUR-" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
}
