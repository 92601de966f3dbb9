package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Solution is a platform as reported by discovery, before it is given an id.
type Solution struct {
	Name    string  `json:"name"`
	LogoURL *string `json:"logoUrl"`
}

// Platform is an enterprise system node in the mesh.
type Platform struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	LogoURL *string `json:"logoUrl"`
}

// NewPlatform builds a platform with a generated id. prefix is "auto" for
// discovered entries and "custom" for user-entered ones.
func NewPlatform(prefix, name string, logo *string) Platform {
	name = strings.TrimSpace(name)
	return Platform{
		ID:      prefix + "-" + uuid.NewString(),
		Name:    name,
		LogoURL: ResolveLogo(name, logo),
	}
}

// Logo returns the logo URL or "".
func (p Platform) Logo() string {
	if p.LogoURL == nil {
		return ""
	}
	return *p.LogoURL
}

// OptionalString returns nil for blank strings and a pointer to the trimmed
// value otherwise.
func OptionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
