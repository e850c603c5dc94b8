package library

import (
	"regexp"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

var emailPattern = regexp.MustCompile(`^[\w.-]+@[\w.-]+\.\w+$`)

// Credentials hashes and verifies passwords. Every password is suffixed with
// a process wide pepper before bcrypt sees it.
type Credentials struct {
	pepper []byte
	cost   int
}

// NewCredentials returns a credential store. A cost outside bcrypt's range
// falls back to bcrypt.DefaultCost.
func NewCredentials(pepper string, cost int) *Credentials {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Credentials{pepper: []byte(pepper), cost: cost}
}

func (c *Credentials) peppered(password string) []byte {
	b := make([]byte, 0, len(password)+len(c.pepper))
	b = append(b, password...)
	return append(b, c.pepper...)
}

// Hash derives a salted bcrypt hash. The output differs on every call, so
// compare with Verify.
func (c *Credentials) Hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword(c.peppered(password), c.cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Verify reports whether password matches hash. A malformed hash is a mismatch.
func (c *Credentials) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), c.peppered(password)) == nil
}

// ValidateEmail checks the local@domain.tld shape.
func ValidateEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ValidatePassword requires at least 8 characters and one upper-case letter.
func ValidatePassword(s string) bool {
	if utf8.RuneCountInString(s) < 8 {
		return false
	}
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}
