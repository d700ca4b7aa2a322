package i18n

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Catalog holds the per-locale key→string trees and the process-wide
// current locale. Lookups fall back from the requested locale to the
// default locale to the literal key; a lookup never fails.
type Catalog struct {
	registry *Registry
	dir      string
	logger   *logrus.Logger

	mu            sync.RWMutex
	translations  map[string]map[string]interface{}
	currentLocale string
}

// NewCatalog creates a catalog rooted at dir and loads every supported
// locale's document. Missing documents are created empty.
func NewCatalog(registry *Registry, dir string, logger *logrus.Logger) (*Catalog, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create locales directory: %w", err)
	}

	c := &Catalog{
		registry:      registry,
		dir:           dir,
		logger:        logger,
		translations:  make(map[string]map[string]interface{}),
		currentLocale: registry.DefaultLocale(),
	}

	for _, locale := range registry.SupportedLocales() {
		if err := c.loadLocale(locale); err != nil {
			// One broken document must not take the catalog down
			logger.WithError(err).WithField("locale", locale).Warn("Failed to load translation catalog")
			c.mu.Lock()
			c.translations[locale] = map[string]interface{}{}
			c.mu.Unlock()
		}
	}

	return c, nil
}

// CurrentLocale returns the process-wide active locale.
func (c *Catalog) CurrentLocale() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentLocale
}

// SetLocale sets the process-wide active locale. Unsupported codes are
// rejected.
func (c *Catalog) SetLocale(locale string) bool {
	if !c.registry.Supported(locale) {
		return false
	}
	c.mu.Lock()
	c.currentLocale = locale
	c.mu.Unlock()
	return true
}

// Get resolves a dotted key path ("welcome.title") in the given
// locale's tree. A miss falls back to the default locale, then to the
// key itself. An empty locale means the current locale.
func (c *Catalog) Get(key, locale string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if locale == "" {
		locale = c.currentLocale
	}
	if !c.registry.Supported(locale) {
		locale = c.registry.DefaultLocale()
	}

	if val, ok := nestedLookup(c.translations[locale], key); ok {
		return val
	}
	if val, ok := nestedLookup(c.translations[c.registry.DefaultLocale()], key); ok {
		return val
	}
	return key
}

// Set writes a single key in the locale's tree, creating intermediate
// nodes as needed, and persists the document.
func (c *Catalog) Set(key, value, locale string) error {
	if !c.registry.Supported(locale) {
		return fmt.Errorf("locale %s is not supported", locale)
	}

	c.mu.Lock()
	tree := c.translations[locale]
	if tree == nil {
		tree = map[string]interface{}{}
		c.translations[locale] = tree
	}
	nestedSet(tree, key, value)
	c.mu.Unlock()

	return c.saveLocale(locale)
}

// Import replaces the locale's full tree and persists it.
func (c *Catalog) Import(locale string, data map[string]interface{}) error {
	if !c.registry.Supported(locale) {
		return fmt.Errorf("locale %s is not supported", locale)
	}

	c.mu.Lock()
	c.translations[locale] = data
	c.mu.Unlock()

	return c.saveLocale(locale)
}

// Export returns a deep copy of the locale's full tree.
func (c *Catalog) Export(locale string) (map[string]interface{}, error) {
	if !c.registry.Supported(locale) {
		return nil, fmt.Errorf("locale %s is not supported", locale)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return deepCopy(c.translations[locale]), nil
}

// KeyCount reports the number of leaf strings in the locale's tree.
func (c *Catalog) KeyCount(locale string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return countLeaves(c.translations[locale])
}

// ReloadAll re-reads every supported locale's document from disk. Each
// locale is swapped atomically; a parse failure leaves that locale's
// previously loaded tree intact and is reported in the returned error.
func (c *Catalog) ReloadAll() error {
	var failed []string
	for _, locale := range c.registry.SupportedLocales() {
		if err := c.loadLocale(locale); err != nil {
			c.logger.WithError(err).WithField("locale", locale).Error("Failed to reload translation catalog")
			failed = append(failed, locale)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("failed to reload locales: %s", strings.Join(failed, ", "))
	}
	return nil
}

// LanguageName returns the catalog's own name for a locale
// ("language_name.fr" in fr.json), falling back to the x/text display
// name when the catalog has no entry.
func (c *Catalog) LanguageName(locale string) string {
	key := "language_name." + locale
	if name := c.Get(key, locale); name != key {
		return name
	}
	return displayName(locale)
}

func (c *Catalog) loadLocale(locale string) error {
	path := c.localePath(locale)

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		c.mu.Lock()
		c.translations[locale] = map[string]interface{}{}
		c.mu.Unlock()
		return c.saveLocale(locale)
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var tree map[string]interface{}
	if err := json.Unmarshal(raw, &tree); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	c.mu.Lock()
	c.translations[locale] = tree
	c.mu.Unlock()
	return nil
}

func (c *Catalog) saveLocale(locale string) error {
	c.mu.RLock()
	raw, err := json.MarshalIndent(c.translations[locale], "", "  ")
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal catalog for %s: %w", locale, err)
	}

	if err := os.WriteFile(c.localePath(locale), raw, 0644); err != nil {
		return fmt.Errorf("failed to write catalog for %s: %w", locale, err)
	}
	return nil
}

func (c *Catalog) localePath(locale string) string {
	return filepath.Join(c.dir, locale+".json")
}

// nestedLookup walks a dotted path through nested maps. Only leaf
// strings count as hits; landing on an intermediate node is a miss.
func nestedLookup(tree map[string]interface{}, key string) (string, bool) {
	var current interface{} = tree
	for _, part := range strings.Split(key, ".") {
		node, ok := current.(map[string]interface{})
		if !ok {
			return "", false
		}
		current, ok = node[part]
		if !ok {
			return "", false
		}
	}
	if s, ok := current.(string); ok {
		return s, true
	}
	return "", false
}

func nestedSet(tree map[string]interface{}, key, value string) {
	parts := strings.Split(key, ".")
	current := tree
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]interface{})
		if !ok {
			next = map[string]interface{}{}
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}

func deepCopy(tree map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(tree))
	for k, v := range tree {
		if nested, ok := v.(map[string]interface{}); ok {
			out[k] = deepCopy(nested)
		} else {
			out[k] = v
		}
	}
	return out
}

func countLeaves(tree map[string]interface{}) int {
	n := 0
	for _, v := range tree {
		if nested, ok := v.(map[string]interface{}); ok {
			n += countLeaves(nested)
		} else {
			n++
		}
	}
	return n
}
