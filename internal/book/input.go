package book

import (
	"strconv"
	"strings"
)

// maxNumericInput caps numeric form inputs so absurd values cannot allocate
// huge page or cell arrays.
const maxNumericInput = 10000

// ParseNumericInput applies the digits-only input filter used by every
// count and page field. An empty string is accepted as "empty" (ok, empty
// both true). Anything containing a non-digit is rejected and the field
// must not update.
func ParseNumericInput(s string) (n int, empty bool, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true, true
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false, false
		}
	}
	v, err := strconv.Atoi(s)
	if err != nil || v > maxNumericInput {
		return 0, false, false
	}
	return v, false, true
}
