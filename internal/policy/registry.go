package policy

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// File is the on-disk policy document.
type File struct {
	Filters []WordFilter     `json:"filters"`
	Rules   []ModerationRule `json:"rules"`
}

// Registry holds the live word filter and moderation rule configuration.
// Reads take a snapshot under RLock, so the pipeline tolerates filter and
// rule changes between evaluations without a restart.
type Registry struct {
	mu      sync.RWMutex
	filters map[string]*WordFilter
	rules   map[string]*ModerationRule
}

func NewRegistry() *Registry {
	return &Registry{
		filters: make(map[string]*WordFilter),
		rules:   make(map[string]*ModerationRule),
	}
}

// LoadFromFile builds a registry from a policy JSON file. Built-in default
// filters are seeded first and may be overridden by entries with the same id.
func LoadFromFile(path string) (*Registry, error) {
	filters, rules, err := readPolicy(path)
	if err != nil {
		return nil, err
	}
	registry := NewRegistry()
	registry.filters = filters
	registry.rules = rules
	return registry, nil
}

// readPolicy parses the policy file into fresh maps, defaults included.
func readPolicy(path string) (map[string]*WordFilter, map[string]*ModerationRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read policy file: %w", err)
	}
	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, nil, fmt.Errorf("failed to parse policy file: %w", err)
	}

	filters := make(map[string]*WordFilter, len(DefaultFilters)+len(file.Filters))
	for i := range DefaultFilters {
		f := DefaultFilters[i]
		filters[f.ID] = &f
	}
	for i := range file.Filters {
		f := file.Filters[i]
		filters[f.ID] = &f
	}
	rules := make(map[string]*ModerationRule, len(file.Rules))
	for i := range file.Rules {
		rule := file.Rules[i]
		rules[rule.ID] = &rule
	}
	return filters, rules, nil
}

// Reload replaces the registry contents from the policy file, keeping the
// old configuration when the file is unreadable. The new maps are built off
// to the side and swapped in under one lock, so concurrent readers always
// see either the full old or the full new configuration.
func (r *Registry) Reload(path string) error {
	filters, rules, err := readPolicy(path)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.filters = filters
	r.rules = rules
	r.mu.Unlock()
	return nil
}

// Watch reloads the registry whenever the policy file changes. It returns a
// stop function that closes the watcher.
func (r *Registry) Watch(path string) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create policy watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch policy file: %w", err)
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) {
					if err := r.Reload(path); err != nil {
						slog.Error("policy reload failed", "path", path, "error", err)
					} else {
						slog.Info("policy reloaded", "path", path)
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Error("policy watcher error", "error", err)
			}
		}
	}()

	return func() { watcher.Close() }, nil
}

// Filters returns a snapshot of the current word filters.
func (r *Registry) Filters() []WordFilter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]WordFilter, 0, len(r.filters))
	for _, f := range r.filters {
		result = append(result, *f)
	}
	return result
}

// Rules returns a snapshot of the current moderation rules.
func (r *Registry) Rules() []ModerationRule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]ModerationRule, 0, len(r.rules))
	for _, rule := range r.rules {
		result = append(result, *rule)
	}
	return result
}

func (r *Registry) GetFilter(id string) (WordFilter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.filters[id]
	if !ok {
		return WordFilter{}, false
	}
	return *f, true
}

func (r *Registry) GetRule(id string) (ModerationRule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.rules[id]
	if !ok {
		return ModerationRule{}, false
	}
	return *rule, true
}

// UpsertFilter validates and stores a word filter.
func (r *Registry) UpsertFilter(f WordFilter) error {
	if f.ID == "" {
		return fmt.Errorf("filter id is required")
	}
	if len(f.Words) == 0 {
		return fmt.Errorf("filter %q has no words", f.ID)
	}
	if f.Severity.Rank() == 0 {
		return fmt.Errorf("filter %q has invalid severity %q", f.ID, f.Severity)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filters[f.ID] = &f
	return nil
}

// UpsertRule validates and stores a moderation rule.
func (r *Registry) UpsertRule(rule ModerationRule) error {
	if rule.ID == "" {
		return fmt.Errorf("rule id is required")
	}
	if rule.Name == "" {
		return fmt.Errorf("rule %q has no name", rule.ID)
	}
	if len(rule.Conditions) == 0 {
		return fmt.Errorf("rule %q has no conditions", rule.ID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[rule.ID] = &rule
	return nil
}

func (r *Registry) DeleteFilter(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.filters[id]
	delete(r.filters, id)
	return ok
}

func (r *Registry) DeleteRule(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.rules[id]
	delete(r.rules, id)
	return ok
}
