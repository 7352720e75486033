package monitor

import (
	"crypto/md5"
	"encoding/hex"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Fingerprint digests the (mtime, path) pairs of a file set into a change
// token. Equal sets with equal modification times produce equal tokens; any
// membership or mtime change produces a different one. MD5 is used purely as
// a fast 128-bit digest, not for security.
func Fingerprint(files []string) string {
	lines := make([]string, 0, len(files))
	for _, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			// A file that vanished between discovery and stat still has to
			// perturb the token, otherwise its disappearance goes unnoticed.
			lines = append(lines, "gone "+path)
			continue
		}
		lines = append(lines, strconv.FormatInt(info.ModTime().UnixNano(), 10)+" "+path)
	}
	sort.Strings(lines)

	sum := md5.Sum([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(sum[:])
}
