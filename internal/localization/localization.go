// Package localization provides functionality for internationalization (i18n).
// It loads translation strings from JSON files and picks the localized
// names of wards and problem categories.
package localization

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/nagarajgmcs24/fwdproject/internal/models"
)

// DefaultLanguage is used for unknown languages and missing keys.
const DefaultLanguage = "en"

// Message keys.
const (
	KeyRequiredField  = "requiredField"
	KeyErrorMessage   = "errorMessage"
	KeySuccessMessage = "successMessage"
	KeyNotFound       = "notFound"
	KeyUnauthorized   = "unauthorized"
	KeyFileTooLarge   = "fileTooLarge"
)

//go:embed locales/*.json
var embedded embed.FS

// Localizer manages the translations for the application.
// It holds a map of languages, each with its own map of translation keys and values.
type Localizer struct {
	translations map[string]map[string]string
	mu           sync.RWMutex
}

// NewLocalizer loads the translations bundled with the binary.
func NewLocalizer() (*Localizer, error) {
	sub, err := fs.Sub(embedded, "locales")
	if err != nil {
		return nil, err
	}
	return NewLocalizerFS(sub)
}

// NewLocalizerFS loads all translations from the root of fsys. Each JSON file
// is named after its language code (e.g. "en.json").
func NewLocalizerFS(fsys fs.FS) (*Localizer, error) {
	l := &Localizer{
		translations: make(map[string]map[string]string),
	}

	files, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read localization directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}

		lang := strings.TrimSuffix(file.Name(), ".json")
		data, err := fs.ReadFile(fsys, file.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read localization file %s: %w", file.Name(), err)
		}

		var translations map[string]string
		if err := json.Unmarshal(data, &translations); err != nil {
			return nil, fmt.Errorf("failed to parse localization file %s: %w", file.Name(), err)
		}

		l.translations[lang] = translations
	}

	return l, nil
}

// Languages returns the loaded language codes.
func (l *Localizer) Languages() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	langs := make([]string, 0, len(l.translations))
	for lang := range l.translations {
		langs = append(langs, lang)
	}
	return langs
}

// GetString returns the localized string for a given key and language.
// If the language or the key is not found, it returns the key itself as a fallback.
func (l *Localizer) GetString(lang, key string) string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if langTranslations, ok := l.translations[lang]; ok {
		if value, ok := langTranslations[key]; ok {
			return value
		}
	}

	// Fallback to a default language if the key is not found in the specified language
	if lang != DefaultLanguage {
		if enTranslations, ok := l.translations[DefaultLanguage]; ok {
			if value, ok := enTranslations[key]; ok {
				return value
			}
		}
	}

	return key
}

// Normalize maps a requested language ("hi", "kn-IN", "EN") to a supported
// code, falling back to DefaultLanguage.
func Normalize(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	switch lang {
	case "en", "hi", "kn":
		return lang
	}
	return DefaultLanguage
}

// WardName returns the ward name in lang, or the English name when no
// translation is stored.
func WardName(w models.Ward, lang string) string {
	return pick(lang, w.WardNameEn, w.WardNameHi, w.WardNameKn)
}

// CategoryName returns the category name in lang, or the English name when
// no translation is stored.
func CategoryName(c models.ProblemCategory, lang string) string {
	return pick(lang, c.NameEn, c.NameHi, c.NameKn)
}

func pick(lang, en, hi, kn string) string {
	switch Normalize(lang) {
	case "hi":
		if hi != "" {
			return hi
		}
	case "kn":
		if kn != "" {
			return kn
		}
	}
	return en
}
