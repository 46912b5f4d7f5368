package data

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// ErrDuplicatePrototypeID is returned when two prototypes in one load share an id.
var ErrDuplicatePrototypeID = errors.New("duplicate prototype id")

// ErrInvalidPrototypeText is returned for an id or name that is not valid
// UTF-8 or contains NUL. Such names cannot be sent in state-sync packets.
var ErrInvalidPrototypeText = errors.New("invalid prototype text")

// ReloadEvent describes a completed template reload.
type ReloadEvent struct {
	// Modified lists ids that were added or changed, in load order.
	Modified []string
	// Removed lists ids that disappeared, sorted.
	Removed []string
}

// ReloadHandler is notified synchronously after every successful reload.
type ReloadHandler func(ReloadEvent)

// TemplateSource is the read side of the prototype manager that the skill
// registry depends on.
type TemplateSource interface {
	EnumerateSkills() []*SkillTemplate
	SubscribeReloaded(fn ReloadHandler) (unsubscribe func())
}

type reloadSubscriber struct {
	id int
	fn ReloadHandler
}

// PrototypeManager loads skill prototypes from YAML files in a directory
// and notifies subscribers when they are reloaded.
type PrototypeManager struct {
	dir string

	mu        sync.RWMutex
	templates []*SkillTemplate

	subMu  sync.Mutex
	subs   []reloadSubscriber
	nextID int
}

// NewPrototypeManager создаёт менеджер для директории с YAML-прототипами.
// dir может быть пустым: тогда шаблоны задаются через SetTemplates.
func NewPrototypeManager(dir string) *PrototypeManager {
	return &PrototypeManager{dir: dir}
}

// Dir returns the prototype directory.
func (m *PrototypeManager) Dir() string {
	return m.dir
}

// Load parses the prototype directory for the first time.
// Subscribers are notified as on any other reload.
func (m *PrototypeManager) Load(ctx context.Context) error {
	return m.Reload(ctx)
}

// Reload reparses the prototype directory. On error the current template
// set is kept and nobody is notified.
func (m *PrototypeManager) Reload(ctx context.Context) error {
	templates, err := LoadSkillPrototypes(ctx, m.dir)
	if err != nil {
		return fmt.Errorf("reloading prototypes from %s: %w", m.dir, err)
	}

	slog.Info("loaded skill prototypes", "dir", m.dir, "count", len(templates))
	m.SetTemplates(templates)
	return nil
}

// SetTemplates replaces the template set in memory and notifies subscribers.
func (m *PrototypeManager) SetTemplates(templates []*SkillTemplate) {
	m.mu.Lock()
	ev := diffTemplates(m.templates, templates)
	m.templates = slices.Clone(templates)
	m.mu.Unlock()

	m.notify(ev)
}

// EnumerateSkills returns the current templates in load order.
// The slice is a copy; the templates themselves are shared and must not be modified.
func (m *PrototypeManager) EnumerateSkills() []*SkillTemplate {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.templates)
}

// SubscribeReloaded registers fn for reload notifications.
// Handlers run in subscription order on the goroutine that triggered the reload.
func (m *PrototypeManager) SubscribeReloaded(fn ReloadHandler) (unsubscribe func()) {
	m.subMu.Lock()
	id := m.nextID
	m.nextID++
	m.subs = append(m.subs, reloadSubscriber{id: id, fn: fn})
	m.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.subMu.Lock()
			defer m.subMu.Unlock()
			m.subs = slices.DeleteFunc(m.subs, func(s reloadSubscriber) bool {
				return s.id == id
			})
		})
	}
}

func (m *PrototypeManager) notify(ev ReloadEvent) {
	m.subMu.Lock()
	subs := slices.Clone(m.subs)
	m.subMu.Unlock()

	for _, s := range subs {
		s.fn(ev)
	}
}

// diffTemplates сравнивает наборы по id.
func diffTemplates(prev, next []*SkillTemplate) ReloadEvent {
	old := make(map[string]SkillTemplate, len(prev))
	for _, t := range prev {
		old[t.ID] = *t
	}

	var ev ReloadEvent
	for _, t := range next {
		if o, ok := old[t.ID]; !ok || o != *t {
			ev.Modified = append(ev.Modified, t.ID)
		}
		delete(old, t.ID)
	}
	for id := range old {
		ev.Removed = append(ev.Removed, id)
	}
	slices.Sort(ev.Removed)
	return ev
}

// IsPrototypeFile reports whether path looks like a prototype file.
func IsPrototypeFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yml" || ext == ".yaml"
}

// LoadSkillPrototypes parses every YAML file under dir (recursively, in
// lexical order) and returns skill prototypes in file and document order.
// Prototypes of other kinds are skipped. Duplicate ids are an error;
// duplicate names are not, the registry deals with those.
func LoadSkillPrototypes(ctx context.Context, dir string) ([]*SkillTemplate, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsPrototypeFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	slices.Sort(files)

	var templates []*SkillTemplate
	seen := make(map[string]string, 64)
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		parsed, err := parsePrototypeFile(path)
		if err != nil {
			return nil, err
		}
		for _, t := range parsed {
			if prev, ok := seen[t.ID]; ok {
				return nil, fmt.Errorf("%w %q in %s (first defined in %s)", ErrDuplicatePrototypeID, t.ID, path, prev)
			}
			seen[t.ID] = path
			templates = append(templates, t)
		}
	}

	return templates, nil
}

func parsePrototypeFile(path string) ([]*SkillTemplate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	templates, err := ParseSkillPrototypes(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return templates, nil
}

// ParseSkillPrototypes decodes a YAML stream of prototype lists.
// A stream may hold several documents separated by `---`.
func ParseSkillPrototypes(r io.Reader) ([]*SkillTemplate, error) {
	dec := yaml.NewDecoder(r)

	var templates []*SkillTemplate
	for doc := 0; ; doc++ {
		var entries []skillPrototypeDoc
		if err := dec.Decode(&entries); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("document %d: %w", doc, err)
		}

		for i := range entries {
			e := &entries[i]
			if e.Type != PrototypeKindSkillData {
				continue
			}
			if e.ID == "" {
				return nil, fmt.Errorf("document %d entry %d: skill prototype without id", doc, i)
			}
			if err := checkPrototypeText("id", e.ID); err != nil {
				return nil, fmt.Errorf("document %d entry %d: %w", doc, i, err)
			}
			if err := checkPrototypeText("name", e.Name); err != nil {
				return nil, fmt.Errorf("document %d entry %d (%s): %w", doc, i, e.ID, err)
			}
			templates = append(templates, e.toTemplate())
		}
	}

	return templates, nil
}

func checkPrototypeText(field, s string) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("%s %q is not valid UTF-8: %w", field, s, ErrInvalidPrototypeText)
	}
	if strings.IndexByte(s, 0) >= 0 {
		return fmt.Errorf("%s %q contains NUL: %w", field, s, ErrInvalidPrototypeText)
	}
	return nil
}
