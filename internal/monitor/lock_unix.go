//go:build unix

package monitor

import (
	"os/exec"
	"strings"
)

// lsofProbe asks lsof for the access modes of open file handles on a path.
// An "a" field of "w" or "u" means some process has the file open writable.
type lsofProbe struct {
	binary string
}

// newWriterProbe selects the platform probe once at startup. When lsof is not
// on PATH the gate degrades to the no-op probe.
func newWriterProbe() WriterProbe {
	bin, err := exec.LookPath("lsof")
	if err != nil {
		return noopProbe{}
	}
	return &lsofProbe{binary: bin}
}

func (p *lsofProbe) OpenForWrite(path string) bool {
	// -F a limits output to access-mode fields, one "a<mode>" line per handle.
	out, err := exec.Command(p.binary, "-F", "a", "--", path).Output()
	if err != nil {
		// lsof exits non-zero when nothing has the file open.
		return false
	}
	for _, line := range strings.Split(string(out), "\n") {
		if line == "aw" || line == "au" {
			return true
		}
	}
	return false
}
