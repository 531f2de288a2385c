package mailer

import (
	"net/mail"
	"strings"

	"golang.org/x/net/idna"
)

const maxLabelLength = 63

// ValidateAddress checks that address is a bare local-part@domain address.
// The domain must be a host name of at least two labels with a top-level
// label of two or more characters that is not all digits. Internationalized
// domains are checked in their ASCII (punycode) form. Display-name forms such
// as "Ann <ann@example.com>" and domain literals such as "[1.2.3.4]" are rejected.
func ValidateAddress(address string) error {
	if address == "" || strings.TrimSpace(address) != address {
		return &AddressError{Address: address}
	}

	parsed, err := mail.ParseAddress(address)
	if err != nil || parsed.Name != "" || parsed.Address != address {
		return &AddressError{Address: address}
	}

	at := strings.LastIndexByte(address, '@')
	if at <= 0 || !validDomain(address[at+1:]) {
		return &AddressError{Address: address}
	}

	return nil
}

func validDomain(domain string) bool {
	if strings.HasPrefix(domain, "[") {
		return false
	}
	ascii, err := idna.Lookup.ToASCII(domain)
	if err != nil {
		return false
	}

	labels := strings.Split(ascii, ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if !validLabel(label) {
			return false
		}
	}

	tld := labels[len(labels)-1]
	return len(tld) >= 2 && strings.Trim(tld, "0123456789") != ""
}

// validLabel reports whether label is an LDH label: letters, digits and
// hyphens, not starting or ending with a hyphen.
func validLabel(label string) bool {
	if label == "" || len(label) > maxLabelLength || label[0] == '-' || label[len(label)-1] == '-' {
		return false
	}
	for i := 0; i < len(label); i++ {
		c := label[i]
		if c != '-' && !('0' <= c && c <= '9') && !('a' <= c && c <= 'z') && !('A' <= c && c <= 'Z') {
			return false
		}
	}
	return true
}
