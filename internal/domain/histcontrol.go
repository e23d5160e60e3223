package domain

import "strings"

// Control carries the histcontrol filtering flags applied on append and
// flush.
type Control struct {
	IgnoreDups  bool
	IgnoreErr   bool
	IgnoreSpace bool
}

// ParseControl reads a histcontrol option string such as
// "ignoredups,ignorespace". Tokens may be separated by commas or colons;
// unknown tokens are ignored.
func ParseControl(raw string) Control {
	var c Control
	for _, token := range strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ':' || r == ' '
	}) {
		switch strings.ToLower(token) {
		case "ignoredups":
			c.IgnoreDups = true
		case "ignoreerr":
			c.IgnoreErr = true
		case "ignorespace":
			c.IgnoreSpace = true
		}
	}
	return c
}
