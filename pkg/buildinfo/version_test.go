package buildinfo

import (
	"strings"
	"testing"
)

func TestCurrent(t *testing.T) {
	defer func(v, c, d string) { Version, Commit, Date = v, c, d }(Version, Commit, Date)
	Version, Commit, Date = "v1.2.3", "abc123", "2026-01-01"

	info := Current()
	if info.Version != "v1.2.3" || info.Commit != "abc123" || info.Date != "2026-01-01" {
		t.Errorf("Current() = %+v", info)
	}
	if got := ServerHeader(); got != "stitchgrid/v1.2.3" {
		t.Errorf("ServerHeader() = %q", got)
	}
	if !strings.Contains(Template(), "v1.2.3") || !strings.Contains(String(), "abc123") {
		t.Error("templates should include build metadata")
	}
}
