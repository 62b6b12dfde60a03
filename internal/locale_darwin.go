//go:build darwin

package internal

import (
	"os/exec"
	"strings"
)

// detectSystemLocale checks the environment first, since a terminal may override
// the system setting, then falls back to the AppleLocale preference
func detectSystemLocale() string {
	if locale := localeFromEnv(); locale != "" {
		return locale
	}

	out, err := exec.Command("defaults", "read", "-g", "AppleLocale").Output()
	if err != nil {
		return ""
	}
	// AppleLocale looks like "en_US" or "sv_SE"
	return strings.TrimSpace(string(out))
}
