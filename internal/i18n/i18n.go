// Package i18n serves the bot's localized texts from embedded YAML catalogs.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var embedded embed.FS

const localesDir = "locales"

// Translator resolves localized strings using dot-separated keys.
type Translator interface {
	// T formats the message with args when any are given.
	T(key string, args ...any) string
	Lang() string
}

// Manager stores all available catalogs.
type Manager struct {
	translations map[string]map[string]string
	defaultLang  string
}

// Load reads the catalogs compiled into the binary.
func Load(defaultLang string) (*Manager, error) {
	return LoadFS(embedded, localesDir, defaultLang)
}

// LoadFS reads every YAML catalog in dir of fsys.
func LoadFS(fsys fs.FS, dir, defaultLang string) (*Manager, error) {
	catalog, err := parseDir(fsys, dir)
	if err != nil {
		return nil, err
	}

	if defaultLang == "" {
		defaultLang = "en"
	}

	if _, ok := catalog[defaultLang]; !ok {
		return nil, fmt.Errorf("i18n: default language %q is missing", defaultLang)
	}

	return &Manager{translations: catalog, defaultLang: defaultLang}, nil
}

// Translator returns a translator for a Telegram language code such as
// "pt-br", falling back to the default language.
func (m *Manager) Translator(languageCode string) Translator {
	if m == nil {
		return translator{}
	}

	lang := strings.ToLower(strings.TrimSpace(languageCode))
	if base, _, ok := strings.Cut(lang, "-"); ok {
		lang = base
	}
	if m.translations[lang] == nil {
		lang = m.defaultLang
	}

	return translator{
		lang:         lang,
		fallback:     m.defaultLang,
		translations: m.translations,
	}
}

// Languages returns the loaded languages, sorted.
func (m *Manager) Languages() []string {
	if m == nil {
		return nil
	}

	languages := make([]string, 0, len(m.translations))
	for lang := range m.translations {
		languages = append(languages, lang)
	}
	sort.Strings(languages)
	return languages
}

type translator struct {
	lang         string
	fallback     string
	translations map[string]map[string]string
}

func (t translator) Lang() string {
	return t.lang
}

// T returns the key itself when no catalog knows it.
func (t translator) T(key string, args ...any) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}

	value := t.lookup(t.lang, key)
	if value == "" {
		value = t.lookup(t.fallback, key)
	}
	if value == "" {
		return key
	}

	if len(args) > 0 {
		return fmt.Sprintf(value, args...)
	}
	return value
}

func (t translator) lookup(lang, key string) string {
	if lang == "" || t.translations == nil {
		return ""
	}
	return t.translations[lang][key]
}

func parseDir(fsys fs.FS, dir string) (map[string]map[string]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("i18n: read dir %s: %w", dir, err)
	}

	catalog := make(map[string]map[string]string)
	var processed bool

	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}
		processed = true

		file := path.Join(dir, entry.Name())
		fileCatalog, err := parseFile(fsys, file)
		if err != nil {
			return nil, err
		}

		for lang, translations := range fileCatalog {
			if _, ok := catalog[lang]; !ok {
				catalog[lang] = make(map[string]string)
			}
			for key, value := range translations {
				catalog[lang][key] = value
			}
		}
	}

	if !processed {
		return nil, fmt.Errorf("i18n: no yaml files found in %s", dir)
	}

	return catalog, nil
}

func isYAML(name string) bool {
	name = strings.ToLower(name)
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}

// parseFile reads a catalog whose top-level keys are language codes.
func parseFile(fsys fs.FS, file string) (map[string]map[string]string, error) {
	data, err := fs.ReadFile(fsys, file)
	if err != nil {
		return nil, fmt.Errorf("i18n: read file %s: %w", file, err)
	}

	var raw map[string]map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("i18n: parse file %s: %w", file, err)
	}

	catalog := make(map[string]map[string]string, len(raw))
	for lang, tree := range raw {
		lang = strings.ToLower(strings.TrimSpace(lang))
		if lang == "" || len(tree) == 0 {
			continue
		}

		flattened := make(map[string]string)
		flatten("", tree, flattened)
		catalog[lang] = flattened
	}

	return catalog, nil
}

func flatten(prefix string, in map[string]any, out map[string]string) {
	for key, value := range in {
		if key == "" {
			continue
		}

		next := key
		if prefix != "" {
			next = prefix + "." + key
		}

		switch v := value.(type) {
		case string:
			out[next] = v
		case map[string]any:
			flatten(next, v, out)
		}
	}
}
