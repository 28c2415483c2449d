// Package services – username allocation.
//
// Handles are derived from a free-text display name: lowercase, all
// non-alphanumerics stripped, plus a random 4-digit suffix. Allocation
// retries a bounded number of times against the directory's username index,
// then switches to a UUID-fragment suffix, so the loop cannot run unbounded
// even on a crowded namespace. The unique index on the username field
// remains the final arbiter against concurrent allocation.
package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// usernameMaxAttempts bounds the random-suffix retry loop.
const usernameMaxAttempts = 10

var nonAlnumRE = regexp.MustCompile(`[^a-z0-9]`)

// usernameBase normalizes a display name into the handle base: lowercased
// with every non-alphanumeric character (including whitespace) removed.
func usernameBase(name string) string {
	return nonAlnumRE.ReplaceAllString(strings.ToLower(name), "")
}

// allocateUsername derives a collision-free handle from nameHint, falling
// back to the local part of email, then to "user", when the hint normalizes
// to nothing.
func allocateUsername(ctx context.Context, dir UserDirectory, nameHint, email string) (string, error) {
	base := usernameBase(nameHint)
	if base == "" {
		if at := strings.IndexByte(email, '@'); at > 0 {
			base = usernameBase(email[:at])
		}
	}
	if base == "" {
		base = "user"
	}

	for i := 0; i < usernameMaxAttempts; i++ {
		candidate := fmt.Sprintf("%s%d", base, 1000+rand.IntN(9000))
		taken, err := dir.UsernameExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}

	// Numeric suffixes exhausted their attempts; a UUID fragment gives a
	// namespace large enough that one more check suffices.
	candidate := base + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	taken, err := dir.UsernameExists(ctx, candidate)
	if err != nil {
		return "", err
	}
	if taken {
		return "", fmt.Errorf("username namespace exhausted for base %q", base)
	}
	return candidate, nil
}
