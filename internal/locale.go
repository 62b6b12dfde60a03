package internal

import "os"

// localeEnvVars are checked in order. LC_MONETARY is the most specific for money.
var localeEnvVars = []string{"LC_MONETARY", "LC_ALL", "LANG"}

func localeFromEnv() string {
	for _, name := range localeEnvVars {
		if v := os.Getenv(name); v != "" && v != "C" && v != "POSIX" && v != "C.UTF-8" {
			return v
		}
	}
	return ""
}
