package bitbucket

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	// slugRegex matches Bitbucket workspace and repository slugs:
	// lowercase letters, digits, hyphen, underscore, dot.
	slugRegex = regexp.MustCompile(`^[a-z0-9._-]+$`)
)

// ValidateSlug validates a workspace or repository slug before it is
// interpolated into a URL path.
func ValidateSlug(slug, fieldName string) error {
	if slug == "" {
		return configError("%s is required", fieldName)
	}
	if !slugRegex.MatchString(slug) {
		return configError("%s contains invalid characters; allowed: lowercase letters, digits, '.', '-', '_'", fieldName)
	}
	return nil
}

// ValidateUUID validates a webhook or pipeline identifier. Bitbucket returns
// these UUIDs wrapped in braces; both forms are accepted.
func ValidateUUID(id, fieldName string) error {
	if id == "" {
		return configError("%s is required", fieldName)
	}
	trimmed := strings.TrimPrefix(strings.TrimSuffix(id, "}"), "{")
	if _, err := uuid.Parse(trimmed); err != nil {
		return configError("%s %q is not a valid UUID", fieldName, id)
	}
	return nil
}

// BraceUUID normalizes a webhook identifier to the brace-wrapped form the
// API expects in paths.
func BraceUUID(id string) string {
	if strings.HasPrefix(id, "{") {
		return id
	}
	return fmt.Sprintf("{%s}", id)
}
