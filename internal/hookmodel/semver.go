package hookmodel

import "github.com/Masterminds/semver/v3"

func newConstraint(s string) (*semver.Constraints, error) { return semver.NewConstraint(s) }
func newVersion(s string) (*semver.Version, error)        { return semver.NewVersion(s) }

// ParseLanguageRequest parses a hook's language_version field into the
// four-variant form spec §4.5 step 5 describes.
func ParseLanguageRequest(raw string) LanguageRequest {
	switch raw {
	case "", "default":
		return LanguageRequest{Kind: LanguageDefault}
	case "system":
		return LanguageRequest{Kind: LanguageSystem}
	}

	if _, err := semver.NewConstraint(raw); err == nil {
		if _, vErr := semver.NewVersion(raw); vErr == nil {
			return LanguageRequest{Kind: LanguageSpecific, Constraint: raw}
		}
		return LanguageRequest{Kind: LanguageRange, Constraint: raw}
	}

	return LanguageRequest{Kind: LanguageSpecific, Constraint: raw}
}
