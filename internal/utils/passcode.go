package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// passcodeFloor and passcodeSpan keep generated codes in [100000, 999999]
// so they never carry a leading zero.
var (
	passcodeFloor = big.NewInt(100000)
	passcodeSpan  = big.NewInt(900000)
)

// GeneratePasscode returns a random 6-digit numeric passcode.
func GeneratePasscode() (string, error) {
	n, err := rand.Int(rand.Reader, passcodeSpan)
	if err != nil {
		return "", fmt.Errorf("failed to generate passcode: %w", err)
	}
	return n.Add(n, passcodeFloor).String(), nil
}
