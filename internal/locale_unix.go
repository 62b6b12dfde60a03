//go:build !windows && !darwin

package internal

// detectSystemLocale returns the locale from the environment on Unix-like systems
func detectSystemLocale() string {
	return localeFromEnv()
}
