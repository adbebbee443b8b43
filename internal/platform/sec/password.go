// Copyright (c) 2026 Lexora. All rights reserved.
// Author: dev@lexora.app

package sec

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// # Password Policy

const (
	// MinPasswordLength is the minimum accepted password length for both
	// user-chosen and system-generated passwords.
	MinPasswordLength = 8

	// generatedPasswordLength is the length of provisioning passwords.
	generatedPasswordLength = 16
)

// Character classes used by the generator. Ambiguous glyphs (0/O, 1/l)
// are excluded because generated passwords are relayed out-of-band.
const (
	lowerChars   = "abcdefghijkmnopqrstuvwxyz"
	upperChars   = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	digitChars   = "23456789"
	symbolChars  = "!@#$%^&*-_+="
	allPassChars = lowerChars + upperChars + digitChars + symbolChars
)

// GenerateStrongPassword creates a random provisioning password.
//
// Accounts are never created with a user-supplied password: a generated one
// is issued and the user is expected to rotate it via the reset flow. The
// result always contains at least one lowercase letter, one uppercase
// letter, and one digit, matching the platform password policy.
func GenerateStrongPassword() (string, error) {
	password := make([]byte, generatedPasswordLength)

	// Guarantee one character from each mandatory class up front.
	classes := []string{lowerChars, upperChars, digitChars}
	for i, class := range classes {
		ch, err := randomChar(class)
		if err != nil {
			return "", err
		}
		password[i] = ch
	}

	// Fill the remainder from the full alphabet.
	for i := len(classes); i < generatedPasswordLength; i++ {
		ch, err := randomChar(allPassChars)
		if err != nil {
			return "", err
		}
		password[i] = ch
	}

	// Shuffle so the mandatory characters are not positionally predictable.
	for i := len(password) - 1; i > 0; i-- {
		j, err := randomIndex(i + 1)
		if err != nil {
			return "", err
		}
		password[i], password[j] = password[j], password[i]
	}

	return string(password), nil
}

// randomChar picks a uniformly random character from the given alphabet.
func randomChar(alphabet string) (byte, error) {
	idx, err := randomIndex(len(alphabet))
	if err != nil {
		return 0, err
	}
	return alphabet[idx], nil
}

// randomIndex returns a uniform random int in [0, n) from crypto/rand.
func randomIndex(n int) (int, error) {
	value, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("sec_random_index_failed: %w", err)
	}
	return int(value.Int64()), nil
}
