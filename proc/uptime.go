package proc

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
)

// readTicks returns the number of clock ticks since boot.
func readTicks(dir string) (int64, error) {
	file := filepath.Join(dir, procUptime)
	buf, err := os.ReadFile(file)
	if err != nil {
		return 0, errors.Wrapf(err, "read %s", file)
	}
	str, _, _ := bytes.Cut(bytes.TrimSpace(buf), []byte{0x20})
	sec, err := strconv.ParseFloat(string(str), 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parse %s", file)
	}
	return int64(sec * UserHZ), nil
}
