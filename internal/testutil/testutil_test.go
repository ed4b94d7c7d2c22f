package testutil

import (
	"strings"
	"testing"

	"github.com/banshee-data/wafermap/internal/fsutil"
)

func TestSampleMask_String(t *testing.T) {
	t.Parallel()

	out := SampleMask().String()

	for _, want := range []string{
		"[Mask]\n",
		`Mask = "` + FixtureCenterKey + `"`,
		"Die X = 5.0\n",
		"[150mm]\n",
		"Home Row = 3\n",
		`Every = "1,1; 1,5; 5,1; 5,5"`,
		"[Devices]\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("fixture missing %q:\n%s", want, out)
		}
	}
}

func TestMaskFile_Edits(t *testing.T) {
	t.Parallel()

	m := SampleMask().
		Delete("Mask", "Die X").
		Set("Mask", "Die Y", "9.5").
		Set("Extra", "Key", "v").
		RenameSection("150mm", "100mm").
		DeleteSection("Devices")

	out := m.String()
	if strings.Contains(out, "Die X") {
		t.Error("expected Die X to be deleted")
	}
	if !strings.Contains(out, "Die Y = 9.5") {
		t.Error("expected Die Y to be replaced")
	}
	if !strings.Contains(out, "[Extra]\nKey = v") {
		t.Error("expected new section")
	}
	if strings.Contains(out, "[150mm]") || !strings.Contains(out, "[100mm]") {
		t.Error("expected 150mm renamed to 100mm")
	}
	if strings.Contains(out, "[Devices]") {
		t.Error("expected Devices removed")
	}
}

func TestCenterOnlyExclusions(t *testing.T) {
	t.Parallel()

	if strings.Contains(centerOnlyExclusions, "3,3") {
		t.Error("centre die must not be excluded")
	}
	if got := strings.Count(centerOnlyExclusions, ";"); got != 23 {
		t.Errorf("expected 24 exclusions (23 separators), got %d separators", got)
	}
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	c, err := Registry().Resolve(`"` + FixtureCenterKey + `"`)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if c != FixtureCenter {
		t.Errorf("expected %v, got %v", FixtureCenter, c)
	}
}

func TestWriteMask(t *testing.T) {
	t.Parallel()

	mfs := fsutil.NewMemoryFileSystem()
	path := WriteMask(t, mfs, "/masks", "A", "[Mask]\n")

	if path != "/masks/A.ini" {
		t.Errorf("unexpected path %q", path)
	}
	if !mfs.Exists(path) {
		t.Error("expected mask file to exist")
	}
}
