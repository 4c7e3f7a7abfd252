package domain

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	dErrors "github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain-errors"
)

// ExternalRef is the opaque key (persona_external) linking a local record to
// its identity in the external person service. Synthetic refs are minted
// locally when the upstream could not supply one; they are valid refs and
// survive until a later reconciliation replaces them.
type ExternalRef string

// Synthetic ref prefixes. The prefix records why the upstream yielded nothing
// at mint time.
const (
	syntheticLocalPrefix   = "local_"
	syntheticOfflinePrefix = "offline_"
	syntheticTimeoutPrefix = "timeout_"
)

const maxExternalRefLen = 128

// ParseExternalRef validates an upstream-supplied or stored ref. Refs are
// opaque, so only hygiene is enforced: non-empty after trimming, bounded
// length, printable characters.
func ParseExternalRef(raw string) (ExternalRef, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "external reference must not be empty")
	}
	if len(trimmed) > maxExternalRefLen {
		return "", dErrors.New(dErrors.CodeInvalidInput, "external reference is too long")
	}
	for _, r := range trimmed {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return "", dErrors.New(dErrors.CodeInvalidInput, "external reference contains invalid characters")
		}
	}
	return ExternalRef(trimmed), nil
}

func (r ExternalRef) String() string { return string(r) }

// IsZero reports whether the ref is unset.
func (r ExternalRef) IsZero() bool { return r == "" }

// IsSynthetic reports whether the ref was minted locally instead of resolved
// from the external person service.
func (r ExternalRef) IsSynthetic() bool {
	s := string(r)
	return strings.HasPrefix(s, syntheticLocalPrefix) ||
		strings.HasPrefix(s, syntheticOfflinePrefix) ||
		strings.HasPrefix(s, syntheticTimeoutPrefix)
}

// SyntheticKind names the failure that minted a synthetic ref: "local",
// "offline" or "timeout". Empty for real references.
func (r ExternalRef) SyntheticKind() string {
	s := string(r)
	switch {
	case strings.HasPrefix(s, syntheticLocalPrefix):
		return "local"
	case strings.HasPrefix(s, syntheticOfflinePrefix):
		return "offline"
	case strings.HasPrefix(s, syntheticTimeoutPrefix):
		return "timeout"
	}
	return ""
}

// SyntheticLocalRef mints a placeholder ref for an identity the upstream
// answered for but never identified: "local_<nationalID>_<unix>".
func SyntheticLocalRef(nationalID NationalID, at time.Time) ExternalRef {
	return ExternalRef(syntheticLocalPrefix + string(nationalID) + "_" + strconv.FormatInt(at.Unix(), 10))
}

// SyntheticOfflineRef mints a placeholder ref when the upstream was
// unreachable: "offline_<unix>".
func SyntheticOfflineRef(at time.Time) ExternalRef {
	return ExternalRef(syntheticOfflinePrefix + strconv.FormatInt(at.Unix(), 10))
}

// SyntheticTimeoutRef mints a placeholder ref when the upstream timed out:
// "timeout_<unix>".
func SyntheticTimeoutRef(at time.Time) ExternalRef {
	return ExternalRef(syntheticTimeoutPrefix + strconv.FormatInt(at.Unix(), 10))
}
