// Package namespace scopes every read and write to one logical index and,
// optionally, one lexical language profile.
package namespace

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kailas-cloud/hybridex/internal/domain"
)

// Default is the namespace used when the caller names none.
const Default = "default"

// MaxNameLength is the maximum namespace name length.
const MaxNameLength = 64

var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Namespace is a validated (name, language) scope.
type Namespace struct {
	name     string
	language Language
}

// Resolve validates and normalizes a namespace name and an optional language.
// An empty name resolves to Default, an empty language to the Neutral profile.
func Resolve(name, language string) (Namespace, error) {
	n, err := ValidateName(name)
	if err != nil {
		return Namespace{}, err
	}
	lang, err := ParseLanguage(language)
	if err != nil {
		return Namespace{}, err
	}
	return Namespace{name: n, language: lang}, nil
}

// MustResolve is Resolve for compile-time constants. Panics on error.
func MustResolve(name, language string) Namespace {
	ns, err := Resolve(name, language)
	if err != nil {
		panic(err)
	}
	return ns
}

// ValidateName normalizes a bare namespace name.
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Default, nil
	}
	if len(name) > MaxNameLength {
		return "", fmt.Errorf("namespace %q too long (max %d): %w", name, MaxNameLength, domain.ErrInvalidNamespace)
	}
	if !nameRegex.MatchString(name) {
		return "", fmt.Errorf(
			"namespace %q must be alphanumeric with underscores and hyphens: %w", name, domain.ErrInvalidNamespace,
		)
	}
	return name, nil
}

// Name returns the namespace name.
func (n Namespace) Name() string { return n.name }

// Language returns the lexical language profile.
func (n Namespace) Language() Language { return n.language }

// WithLanguage returns a copy scoped to another language profile.
func (n Namespace) WithLanguage(l Language) Namespace {
	return Namespace{name: n.name, language: l}
}

func (n Namespace) String() string {
	if n.language.IsNeutral() {
		return n.name
	}
	return n.name + "/" + string(n.language)
}
