package language

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
)

//go:embed languages.json
var embeddedLanguages []byte

// Record is one entry of the language reference data.
type Record struct {
	ID         int    `json:"id"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"nativeName"`
	Flag       string `json:"flag"`
}

// PopularCodes are the languages surfaced first in language pickers.
var PopularCodes = []string{"en", "hi", "es", "fr", "de", "zh"}

// Catalog is the read-only language list. It is built once and never mutated;
// every accessor returns copies.
type Catalog struct {
	records []Record
	byCode  map[string]int
	byID    map[int]int
}

// NewCatalog validates records and builds a catalog from them.
// Codes and ids must be unique and non-empty.
func NewCatalog(records []Record) (*Catalog, error) {
	c := &Catalog{
		records: make([]Record, 0, len(records)),
		byCode:  make(map[string]int, len(records)),
		byID:    make(map[int]int, len(records)),
	}
	for _, r := range records {
		if r.Code == "" {
			return nil, fmt.Errorf("language %d: empty code", r.ID)
		}
		if _, dup := c.byCode[r.Code]; dup {
			return nil, fmt.Errorf("duplicate language code %q", r.Code)
		}
		if _, dup := c.byID[r.ID]; dup {
			return nil, fmt.Errorf("duplicate language id %d", r.ID)
		}
		c.byCode[r.Code] = len(c.records)
		c.byID[r.ID] = len(c.records)
		c.records = append(c.records, r)
	}
	return c, nil
}

// ParseCatalog decodes a JSON array of records.
func ParseCatalog(data []byte) (*Catalog, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode languages: %w", err)
	}
	return NewCatalog(records)
}

// LoadCatalogFile reads a JSON language list from path.
func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read languages file: %w", err)
	}
	return ParseCatalog(data)
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// DefaultCatalog returns the embedded language list. It is parsed on first use.
func DefaultCatalog() *Catalog {
	defaultOnce.Do(func() {
		c, err := ParseCatalog(embeddedLanguages)
		if err != nil {
			panic(fmt.Sprintf("embedded languages.json is invalid: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// All returns every record in catalog order.
func (c *Catalog) All() []Record {
	out := make([]Record, len(c.records))
	copy(out, c.records)
	return out
}

// Len is the number of languages.
func (c *Catalog) Len() int { return len(c.records) }

// ByCode looks a record up by its code.
func (c *Catalog) ByCode(code string) (Record, bool) {
	i, ok := c.byCode[code]
	if !ok {
		return Record{}, false
	}
	return c.records[i], true
}

// ByID looks a record up by its id.
func (c *Catalog) ByID(id int) (Record, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Record{}, false
	}
	return c.records[i], true
}

// Valid reports whether code is a known language code.
func (c *Catalog) Valid(code string) bool {
	_, ok := c.byCode[code]
	return ok
}

// Popular returns the popular languages present in the catalog, in catalog order.
func (c *Catalog) Popular() []Record {
	out := make([]Record, 0, len(PopularCodes))
	for _, r := range c.records {
		for _, code := range PopularCodes {
			if r.Code == code {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// Search matches query case-insensitively against name, native name and code.
func (c *Catalog) Search(query string) []Record {
	q := strings.ToLower(query)
	out := make([]Record, 0)
	for _, r := range c.records {
		if strings.Contains(strings.ToLower(r.Name), q) ||
			strings.Contains(strings.ToLower(r.NativeName), q) ||
			strings.Contains(strings.ToLower(r.Code), q) {
			out = append(out, r)
		}
	}
	return out
}
