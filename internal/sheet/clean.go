package sheet

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/JonMunkholm/bookimport/internal/catalog"
)

// numericRegex matches integers, decimals and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// CleanCell removes common CSV artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.Trim(s, `"'`)
}

// textCell types a cleaned CSV value. Numbers with a leading zero
// (ISBN-10 codes, zip codes) stay text so no digits are lost.
func textCell(s string) catalog.Cell {
	if s == "" {
		return catalog.Empty()
	}
	if numericRegex.MatchString(s) && !hasLeadingZero(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return catalog.Number(f)
		}
	}
	switch strings.ToLower(s) {
	case "true":
		return catalog.Bool(true)
	case "false":
		return catalog.Bool(false)
	}
	return catalog.Text(s)
}

func hasLeadingZero(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) > 1 && s[0] == '0' && s[1] != '.'
}
