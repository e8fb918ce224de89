package catalog

// isbn.go holds the check-digit predicates for book identifiers.
//
// Both predicates expect a code already passed through NormalizeCode and
// never panic: any malformed input simply fails the check.

import (
	"strings"
	"unicode"
)

// NormalizeCode strips whitespace and hyphens and uppercases the result.
func NormalizeCode(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' {
			return -1
		}
		return unicode.ToUpper(r)
	}, s)
}

// ValidISBN10 reports whether code is nine digits followed by a digit or X
// whose weighted sum Σ d_i·(10−i) is divisible by 11.
func ValidISBN10(code string) bool {
	if len(code) != 10 {
		return false
	}
	sum := 0
	for i := 0; i < 10; i++ {
		ch := code[i]
		var d int
		switch {
		case ch >= '0' && ch <= '9':
			d = int(ch - '0')
		case i == 9 && (ch == 'X' || ch == 'x'):
			d = 10
		default:
			return false
		}
		sum += d * (10 - i)
	}
	return sum%11 == 0
}

// ValidEAN13 reports whether code is thirteen digits whose last digit equals
// (10 − Σ d_i·w_i mod 10) mod 10, with weights alternating 1,3 from index 0.
// ISBN-13 codes use the same formula.
func ValidEAN13(code string) bool {
	if len(code) != 13 {
		return false
	}
	checksum := 0
	for i := 0; i < 13; i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
		if i == 12 {
			break
		}
		d := int(code[i] - '0')
		if i%2 == 1 {
			d *= 3
		}
		checksum += d
	}
	check := (10 - checksum%10) % 10
	return check == int(code[12]-'0')
}

// digitsOnly drops every non-digit rune.
func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
