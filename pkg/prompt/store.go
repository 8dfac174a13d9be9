package prompt

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/patrickmn/go-cache"
)

// Template names shipped in the prompts directory.
const (
	CoT             = "cot_prompt"
	Improvement     = "improvement_prompt"
	DIGeneration    = "di_generation_prompt"
	SecurityAgent   = "security_agent_prompt"
	SummaryAgent    = "summary_agent_prompt"
	ProbingAgent    = "probing_agent_prompt"
	SummarizeAnswer = "summarize_answer_prompt"
	TopicManager    = "topic_manager_prompt"
)

var ErrTemplateNotFound = errors.New("prompt template not found")

// Store loads prompt templates from a directory of .txt files.
// Templates are immutable for the process lifetime, so each one is read
// from disk at most once.
type Store struct {
	dir   string
	cache *cache.Cache
}

func NewStore(dir string) *Store {
	return &Store{
		dir:   dir,
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func (s *Store) Dir() string {
	return s.dir
}

// Load returns the raw template text for name.
func (s *Store) Load(name string) (string, error) {
	if x, found := s.cache.Get(name); found {
		return x.(string), nil
	}

	path := filepath.Join(s.dir, name+".txt")
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s (%s)", ErrTemplateNotFound, name, path)
		}
		return "", fmt.Errorf("read prompt %s: %w", name, err)
	}

	text := string(raw)
	s.cache.Set(name, text, cache.NoExpiration)
	return text, nil
}

// Format loads name and replaces every {key} placeholder for the given
// bindings. Placeholders without a binding stay literal.
func (s *Store) Format(name string, bindings map[string]any) (string, error) {
	tmpl, err := s.Load(name)
	if err != nil {
		return "", err
	}
	return Render(tmpl, bindings), nil
}

// Render performs placeholder substitution on an already loaded template.
func Render(tmpl string, bindings map[string]any) string {
	result := tmpl
	for key, value := range bindings {
		result = strings.ReplaceAll(result, "{"+key+"}", stringify(value))
	}
	return result
}

// List returns the names of all templates available on disk.
func (s *Store) List() []string {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*.txt"))
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(filepath.Base(m), ".txt"))
	}
	sort.Strings(names)
	return names
}

// stringify renders a binding value. Nil, empty and zero values (false, 0)
// become "".
func stringify(value any) string {
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case []byte:
		return string(v)
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return ""
		}
	case reflect.Slice, reflect.Map:
		if rv.IsNil() || rv.Len() == 0 {
			return ""
		}
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		if rv.IsZero() {
			return ""
		}
		return fmt.Sprint(value)
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprint(value)
	}
	return string(encoded)
}
