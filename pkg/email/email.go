package email

import (
	"strings"
)

// SplitAddress splits an address into its local part and domain. It is
// stricter than RFC 5322: the address must contain exactly one '@', so a
// quoted local part holding an '@' is rejected. Either part may be empty.
func SplitAddress(address string) (local, domain string, ok bool) {
	parts := strings.Split(address, "@")
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// Domain returns the domain of the address, or "" when the address does not
// split into exactly two parts.
func Domain(address string) string {
	_, domain, ok := SplitAddress(address)
	if !ok {
		return ""
	}
	return domain
}
