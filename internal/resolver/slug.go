package resolver

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"trellis/internal/object"
)

const (
	// maxSlugLength bounds system-generated ids.
	maxSlugLength = 32
	// maxCollisionAttempts caps how many numeric suffixes are tried before
	// id generation gives up.
	maxCollisionAttempts = 100
)

var (
	// ErrEmptySlug is returned when a title reduces to nothing after slugification.
	ErrEmptySlug = errors.New("resolver: title produces empty slug")
	// ErrDuplicateID is returned when every collision suffix is exhausted.
	ErrDuplicateID = errors.New("resolver: could not generate unique id")
)

// asciiFold strips combining marks after NFD decomposition, mapping accented
// characters onto their closest ASCII base.
var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify normalizes a human-readable title into an id slug: lowercase,
// transliterated to ASCII, runs of non-alphanumerics collapsed to single
// hyphens, trimmed, and truncated to 32 characters.
func Slugify(title string) string {
	folded, _, err := transform.String(asciiFold, title)
	if err != nil {
		folded = title
	}
	folded = strings.ToLower(folded)
	var b strings.Builder
	lastHyphen := true // swallow leading separators
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	slug := strings.Trim(b.String(), "-")
	return truncateSlug(slug, maxSlugLength)
}

// truncateSlug cuts a slug to limit characters without leaving a trailing hyphen.
func truncateSlug(slug string, limit int) string {
	if len(slug) > limit {
		slug = slug[:limit]
	}
	return strings.TrimRight(slug, "-")
}

// GenerateID derives a collision-free id for a new object of the given kind
// from its title. On collision it appends -1, -2, ... re-truncating the base
// so the suffixed id still fits 32 characters, and fails with ErrDuplicateID
// once 100 suffixes are exhausted. Generation is deterministic for a fixed
// tree state.
func (r *Resolver) GenerateID(kind object.Kind, title string) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("resolver: invalid kind %q", string(kind))
	}
	base := Slugify(title)
	if base == "" {
		return "", fmt.Errorf("%w: %q", ErrEmptySlug, title)
	}
	exists, err := r.idExists(kind, base)
	if err != nil {
		return "", err
	}
	if !exists {
		return base, nil
	}
	for n := 1; n <= maxCollisionAttempts; n++ {
		suffix := fmt.Sprintf("-%d", n)
		candidate := truncateSlug(base, maxSlugLength-len(suffix)) + suffix
		exists, err := r.idExists(kind, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w for %s %q after %d attempts", ErrDuplicateID, kind, base, maxCollisionAttempts)
}

// idExists reports whether an object of the kind already owns the id in
// either addressing system.
func (r *Resolver) idExists(kind object.Kind, id string) (bool, error) {
	_, err := r.IDToPath(kind, id)
	if err == nil {
		return true, nil
	}
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return false, nil
	}
	return false, err
}
