package email

import (
	"regexp"
	"strings"
)

// InstitutionalDomain is the university mail domain required for coach and
// volunteer-student accounts.
const InstitutionalDomain = "@unl.edu.ec"

var institutionalPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@unl\.edu\.ec$`)

// Normalize trims surrounding whitespace and lowercases an address.
// Addresses are compared and stored in this form.
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// IsInstitutional reports whether a normalized address belongs to the
// university domain. Both checks run: the suffix rejects lookalike domains
// and the pattern rejects malformed local parts.
func IsInstitutional(addr string) bool {
	return strings.HasSuffix(addr, InstitutionalDomain) && institutionalPattern.MatchString(addr)
}

// TechnicalDomain holds the placeholder addresses the backend mints itself,
// kept off the institutional domain so provisioned accounts are
// recognizable.
const TechnicalDomain = "@atletas.unl.edu.ec"

// TechnicalAddress builds the deterministic placeholder address for an
// athlete account provisioned during enrollment. Same national id, same
// address, so re-enrollment hits the same upstream account.
func TechnicalAddress(nationalID string) string {
	return "atleta_" + strings.TrimSpace(nationalID) + TechnicalDomain
}
