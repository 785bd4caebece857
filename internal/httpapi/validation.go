package httpapi

import "net/mail"

const minPasswordLength = 6

func validEmail(s string) bool {
	if s == "" || len(s) > 254 {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	// Reject "Name <addr>" forms; only the bare address is accepted.
	return addr.Address == s
}

func validPhone(s string) bool {
	if s == "" {
		return true
	}
	if len(s) > 20 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '+' || r == '-' || r == ' ' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return true
}
