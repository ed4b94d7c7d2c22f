package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	s := String("wmreport")

	if !strings.HasPrefix(s, "wmreport "+Version) {
		t.Errorf("String() = %q, want program and version prefix", s)
	}
	if !strings.Contains(s, GitSHA) {
		t.Errorf("String() = %q, missing git sha", s)
	}
}
