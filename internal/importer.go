package internal

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Importer reads subscriptions from a file. Rows come back as raw form fields
// and are validated by the caller like any other input.
type Importer interface {
	Import(path string) ([]InputFields, error)
}

// ImporterFunc is a function that implements Importer
type ImporterFunc func(path string) ([]InputFields, error)

func (f ImporterFunc) Import(path string) ([]InputFields, error) {
	return f(path)
}

// importers is the registry of available import formats
var importers = map[string]Importer{}

// RegisterImporter registers an importer with the given format name
func RegisterImporter(name string, imp Importer) {
	importers[name] = imp
}

// GetImporter returns the importer for the given format
func GetImporter(format string) (Importer, error) {
	imp, ok := importers[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %v)", ErrUnknownFormat, format, AvailableFormats())
	}
	return imp, nil
}

// AvailableFormats returns the registered format names, sorted
func AvailableFormats() []string {
	var formats []string
	for name := range importers {
		formats = append(formats, name)
	}
	sort.Strings(formats)
	return formats
}

// IsKnownFormat returns true if the name is a registered format
func IsKnownFormat(name string) bool {
	_, ok := importers[name]
	return ok
}

// ParseFileArg parses a file argument that may have a format prefix.
// Returns (format, path). If no valid prefix, format is empty.
// Example: "simple-json:data.json" → ("simple-json", "data.json")
// Example: "C:\path\file.xlsx" → ("", "C:\path\file.xlsx") // Windows path
func ParseFileArg(arg string) (format, path string) {
	idx := strings.Index(arg, ":")
	if idx == -1 {
		return "", arg
	}
	prefix := arg[:idx]
	if IsKnownFormat(prefix) {
		return prefix, arg[idx+1:]
	}
	return "", arg
}

// InferFormat guesses the format from the file extension, or returns ""
func InferFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "simple-json"
	case ".xlsx":
		return "xlsx"
	default:
		return ""
	}
}

// ResolveImport picks the importer for a file argument: explicit prefix first,
// then the fallback format, then the file extension
func ResolveImport(arg, fallback string) (Importer, string, error) {
	format, path := ParseFileArg(arg)
	if format == "" {
		format = fallback
	}
	if format == "" {
		format = InferFormat(path)
	}
	if format == "" {
		return nil, path, fmt.Errorf("%w: cannot tell the format of %s, use format:path (available: %v)",
			ErrUnknownFormat, path, AvailableFormats())
	}
	imp, err := GetImporter(format)
	if err != nil {
		return nil, path, err
	}
	return imp, path, nil
}
