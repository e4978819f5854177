package resolver

import (
	"fmt"
	"strings"
)

// maxIDLength is the filesystem limit enforced on externally supplied ids.
const maxIDLength = 255

// SecurityError reports an id that failed pre-filesystem validation. These are
// raised before any path under the planning root is touched.
type SecurityError struct {
	ID     string
	Reason string
}

func (e *SecurityError) Error() string {
	return fmt.Sprintf("resolver: security validation failed for %q: %s", e.ID, e.Reason)
}

// reservedNames are device names some filesystems treat specially. Rejected
// case-insensitively so records stay portable.
var reservedNames = map[string]struct{}{
	"con": {}, "prn": {}, "aux": {}, "nul": {},
	"com1": {}, "com2": {}, "com3": {}, "com4": {}, "com5": {},
	"com6": {}, "com7": {}, "com8": {}, "com9": {},
	"lpt1": {}, "lpt2": {}, "lpt3": {}, "lpt4": {}, "lpt5": {},
	"lpt6": {}, "lpt7": {}, "lpt8": {}, "lpt9": {},
}

// CleanID strips surrounding whitespace and any single-character-plus-hyphen
// kind prefix ("P-", "E-", "F-", "T-", or any other letter) from an id. The
// prefix is stripped generically so ids copied from filenames in either
// addressing system normalize the same way.
func CleanID(id string) string {
	id = strings.TrimSpace(id)
	if len(id) >= 2 && id[1] == '-' && isASCIILetter(id[0]) {
		return id[2:]
	}
	return id
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// ValidateID checks a cleaned id against the security rules shared by path
// resolution and prerequisite validation: no traversal, no absolute or rooted
// forms, no control characters, no reserved device names, bounded length, and
// a restricted charset.
func ValidateID(id string) error {
	if id == "" {
		return &SecurityError{ID: id, Reason: "empty id"}
	}
	if len(id) > maxIDLength {
		return &SecurityError{ID: id, Reason: fmt.Sprintf("id exceeds %d characters", maxIDLength)}
	}
	if strings.Contains(id, "..") {
		return &SecurityError{ID: id, Reason: "path traversal sequence"}
	}
	if strings.HasPrefix(id, "/") || strings.HasPrefix(id, "\\") || strings.HasPrefix(id, "~") {
		return &SecurityError{ID: id, Reason: "absolute or rooted path"}
	}
	if strings.ContainsAny(id, "/\\:") {
		return &SecurityError{ID: id, Reason: "path separator in id"}
	}
	for _, r := range id {
		if r < 0x20 || r == 0x7f {
			return &SecurityError{ID: id, Reason: "control character in id"}
		}
	}
	if _, reserved := reservedNames[strings.ToLower(id)]; reserved {
		return &SecurityError{ID: id, Reason: "reserved device name"}
	}
	for _, r := range id {
		if !isIDRune(r) {
			return &SecurityError{ID: id, Reason: fmt.Sprintf("illegal character %q in id", r)}
		}
	}
	if strings.HasPrefix(id, ".") {
		return &SecurityError{ID: id, Reason: "id starts with a dot"}
	}
	return nil
}

// isIDRune is the loose external charset: system-generated ids are lowercase
// [a-z0-9-], but externally supplied task ids may also carry uppercase,
// underscores, and interior dots.
func isIDRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '-' || r == '_' || r == '.':
		return true
	}
	return false
}
