package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseControl(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want Control
	}{
		{"", Control{}},
		{"ignoredups", Control{IgnoreDups: true}},
		{"ignoredups,ignoreerr", Control{IgnoreDups: true, IgnoreErr: true}},
		{"ignorespace:ignoredups", Control{IgnoreDups: true, IgnoreSpace: true}},
		{"IGNOREDUPS", Control{IgnoreDups: true}},
		{"bogus,ignoreerr", Control{IgnoreErr: true}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseControl(tc.raw), tc.raw)
	}
}
