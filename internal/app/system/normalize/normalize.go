// Package normalize canonicalizes user-supplied values before they are
// stored or compared.
package normalize

import "strings"

// Email trims and lowercases an email address. Emails are natural keys
// in users, memberships, registrations and payments.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims whitespace and preserves case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Status trims and lowercases a status value.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Role trims a role value. Roles are camelCase ("clubManager") so case
// is kept.
func Role(s string) string {
	return strings.TrimSpace(s)
}

// Currency lowercases an ISO currency code the way the gateway reports it.
func Currency(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
