package parser

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnknownLanguage is returned when a file extension or language name does
// not map to a supported grammar.
var ErrUnknownLanguage = errors.New("unknown language")

// Language represents a supported source language.
type Language int

const (
	// LanguageTypeScript covers .ts and .tsx sources (TSX selects the JSX-aware grammar).
	LanguageTypeScript Language = iota
	// LanguageJavaScript covers .js and .jsx sources; the grammar accepts JSX natively.
	LanguageJavaScript
	// LanguageUnknown represents an unsupported language
	LanguageUnknown
)

// String returns the string representation of the language.
func (l Language) String() string {
	switch l {
	case LanguageTypeScript:
		return "typescript"
	case LanguageJavaScript:
		return "javascript"
	default:
		return "unknown"
	}
}

// Dialect is a language plus the TSX switch. It is the unit the parser pools,
// the query cache and the transform options are keyed on.
type Dialect struct {
	Language Language
	TSX      bool
}

// String returns the short dialect name ("js", "ts" or "tsx").
func (d Dialect) String() string {
	switch {
	case d.Language == LanguageTypeScript && d.TSX:
		return "tsx"
	case d.Language == LanguageTypeScript:
		return "ts"
	case d.Language == LanguageJavaScript:
		return "js"
	default:
		return "unknown"
	}
}

// DetectLanguage detects the programming language from a file path.
// Returns LanguageUnknown if the file extension is not recognized.
func DetectLanguage(filePath string) Language {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".ts", ".mts", ".cts", ".tsx":
		return LanguageTypeScript
	case ".js", ".jsx", ".mjs", ".cjs":
		return LanguageJavaScript
	default:
		return LanguageUnknown
	}
}

// DetectDialect resolves the dialect of a file from its extension.
func DetectDialect(filePath string) (Dialect, error) {
	lang := DetectLanguage(filePath)
	if lang == LanguageUnknown {
		return Dialect{Language: LanguageUnknown}, fmt.Errorf("%w: %s", ErrUnknownLanguage, filePath)
	}
	return Dialect{Language: lang, TSX: IsTSXFile(filePath)}, nil
}

// IsTSXFile checks if a file path represents a TSX file.
func IsTSXFile(filePath string) bool {
	return strings.ToLower(filepath.Ext(filePath)) == ".tsx"
}

// IsJSXFile checks if a file path represents a JSX file.
func IsJSXFile(filePath string) bool {
	return strings.ToLower(filepath.Ext(filePath)) == ".jsx"
}

// ParseLanguageString converts a language string to a Language type.
// Returns LanguageUnknown if the string is not recognized.
func ParseLanguageString(lang string) Language {
	d, err := ParseDialect(lang)
	if err != nil {
		return LanguageUnknown
	}
	return d.Language
}

// ParseDialect maps a user-facing language name to a dialect. The empty
// string selects JavaScript, which also accepts JSX.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "javascript", "js", "jsx", "mjs", "cjs":
		return Dialect{Language: LanguageJavaScript}, nil
	case "typescript", "ts", "mts", "cts":
		return Dialect{Language: LanguageTypeScript}, nil
	case "tsx":
		return Dialect{Language: LanguageTypeScript, TSX: true}, nil
	default:
		return Dialect{Language: LanguageUnknown}, fmt.Errorf("%w: %q", ErrUnknownLanguage, name)
	}
}

// SupportedLanguages returns a list of all supported languages.
func SupportedLanguages() []Language {
	return []Language{
		LanguageTypeScript,
		LanguageJavaScript,
	}
}

// SupportedDialectNames lists the names accepted by ParseDialect, for flag help.
func SupportedDialectNames() []string {
	return []string{"js", "jsx", "ts", "tsx"}
}
