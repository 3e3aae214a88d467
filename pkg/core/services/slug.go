package services

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// Slugify lowercases s and keeps runs of [a-z0-9] joined by single hyphens.
func Slugify(s string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		default:
			pendingHyphen = true
		}
	}
	return b.String()
}

// usernameFromEmail derives a handle candidate from the local part of email.
func usernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	base := Slugify(local)
	if len(base) > 24 {
		base = strings.TrimRight(base[:24], "-")
	}
	if len(base) < 3 {
		base = strings.Trim("user-"+base, "-")
	}
	return base
}

const digits = "0123456789"

func randomDigits(length int) (string, error) {
	b := make([]byte, length)
	for i := range b {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", err
		}
		b[i] = digits[num.Int64()]
	}
	return string(b), nil
}
