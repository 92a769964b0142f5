package model

// WeakPasswordMessage is shown when IsStrongPassword rejects a password.
const WeakPasswordMessage = "Password must be at least 8 characters long and include uppercase, lowercase, a number, and a special character."

// IsStrongPassword reports whether p has at least 8 characters with an ASCII
// upper-case letter, lower-case letter and digit, plus one character outside
// those classes.
func IsStrongPassword(p string) bool {
	var n int
	var upper, lower, digit, special bool
	for _, r := range p {
		n++
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			special = true
		}
	}
	return n >= 8 && upper && lower && digit && special
}
