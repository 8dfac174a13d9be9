package interview

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/go-playground/validator/v10"
)

// DefaultProcessContext is used for process types without a configured context.
const DefaultProcessContext = "Handcrafted business process"

var (
	ErrEmptyCatalog  = errors.New("topic catalog is empty")
	ErrDuplicateKey  = errors.New("duplicate topic key")
	ErrInvalidConfig = errors.New("invalid interview configuration")
)

var validate = validator.New()

// Topic is one thematic slice of the interview.
type Topic struct {
	Key   string `json:"key" validate:"required"`
	Title string `json:"title" validate:"required"`
}

// Catalog is the fixed, ordered list of topics. It is immutable once built.
type Catalog struct {
	topics []Topic
	index  map[string]int
}

func NewCatalog(topics []Topic) (*Catalog, error) {
	if len(topics) == 0 {
		return nil, ErrEmptyCatalog
	}
	c := &Catalog{
		topics: make([]Topic, len(topics)),
		index:  make(map[string]int, len(topics)),
	}
	for i, t := range topics {
		if err := validate.Struct(t); err != nil {
			return nil, fmt.Errorf("%w: topic %d: %v", ErrInvalidConfig, i, err)
		}
		if _, dup := c.index[t.Key]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateKey, t.Key)
		}
		c.topics[i] = t
		c.index[t.Key] = i
	}
	return c, nil
}

// LoadCatalog reads a {"topics": [{key, title}, ...]} file.
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read topic catalog: %w", err)
	}
	var file struct {
		Topics []Topic `json:"topics"`
	}
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	return NewCatalog(file.Topics)
}

func (c *Catalog) Len() int {
	return len(c.topics)
}

// Topics returns a copy of the catalog in order.
func (c *Catalog) Topics() []Topic {
	out := make([]Topic, len(c.topics))
	copy(out, c.topics)
	return out
}

func (c *Catalog) First() Topic {
	return c.topics[0]
}

func (c *Catalog) Get(key string) (Topic, bool) {
	i, ok := c.index[key]
	if !ok {
		return Topic{}, false
	}
	return c.topics[i], true
}

// Title returns the title for key, or fallback when key is unknown.
func (c *Catalog) Title(key, fallback string) string {
	if t, ok := c.Get(key); ok {
		return t.Title
	}
	return fallback
}

// Remaining lists the topics not yet in completed, in catalog order.
func (c *Catalog) Remaining(completed []string) []Topic {
	done := make(map[string]struct{}, len(completed))
	for _, k := range completed {
		done[k] = struct{}{}
	}
	var out []Topic
	for _, t := range c.topics {
		if _, ok := done[t.Key]; !ok {
			out = append(out, t)
		}
	}
	return out
}

// ProcessInfo describes one selectable process type.
type ProcessInfo struct {
	Context string `json:"context" validate:"required"`
}

// ProcessTypes maps a process type name to its context string.
type ProcessTypes struct {
	entries map[string]ProcessInfo
}

func NewProcessTypes(entries map[string]ProcessInfo) (*ProcessTypes, error) {
	p := &ProcessTypes{entries: make(map[string]ProcessInfo, len(entries))}
	for name, info := range entries {
		if err := validate.Struct(info); err != nil {
			return nil, fmt.Errorf("%w: process type %q: %v", ErrInvalidConfig, name, err)
		}
		p.entries[name] = info
	}
	return p, nil
}

// LoadProcessTypes reads a {"<name>": {"context": "..."}} file.
func LoadProcessTypes(path string) (*ProcessTypes, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read process types: %w", err)
	}
	var entries map[string]ProcessInfo
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	return NewProcessTypes(entries)
}

// Context returns the configured context for name or DefaultProcessContext.
func (p *ProcessTypes) Context(name string) string {
	if info, ok := p.entries[name]; ok && info.Context != "" {
		return info.Context
	}
	return DefaultProcessContext
}

func (p *ProcessTypes) Has(name string) bool {
	_, ok := p.entries[name]
	return ok
}

// Names returns the configured process types sorted by name.
func (p *ProcessTypes) Names() []string {
	names := make([]string, 0, len(p.entries))
	for name := range p.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
