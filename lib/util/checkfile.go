package util

import (
	"os"
)

// CheckFileExists reports whether fpath names an existing regular file.
func CheckFileExists(fpath string) bool {
	info, err := os.Stat(fpath)
	return err == nil && info.Mode().IsRegular()
}
