package geo

import (
	"regexp"
	"strings"
)

// districtRe matches a whole address token naming a gu, e.g. "강남구".
var districtRe = regexp.MustCompile(`^(\p{L}+구),?$`)

// District extracts the gu from a Korean street address, or "" when none is
// present.
func District(address string) string {
	for _, field := range strings.Fields(address) {
		if m := districtRe.FindStringSubmatch(field); m != nil {
			return m[1]
		}
	}
	return ""
}
