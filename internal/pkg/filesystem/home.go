package filesystem

import (
	"os"
	"path/filepath"
	"strings"
)

// DataDirName is the per-user directory holding config, rules and history.
const DataDirName = ".voicectl"

// UserHomeDir returns the current user's home directory, or "." when it
// cannot be determined.
func UserHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

// DataPath joins name onto ~/.voicectl.
func DataPath(name string) string {
	return filepath.Join(UserHomeDir(), DataDirName, name)
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if path == "~" {
		return UserHomeDir()
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(UserHomeDir(), path[2:])
	}
	return path
}
