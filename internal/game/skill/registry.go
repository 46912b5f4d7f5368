package skill

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/crypto/blake2b"

	"github.com/udisondev/skillsys/internal/data"
)

var (
	// ErrDuplicateTemplate marks a template rejected because its name was already registered.
	ErrDuplicateTemplate = errors.New("duplicate skill template name")
	// ErrTemplateNotFound is returned by MustLookup for unknown names.
	ErrTemplateNotFound = errors.New("skill template not found")
)

// Registry maps skill names to templates and keeps the ordered list of
// public (displayed) skill names.
//
// Registry is not safe for concurrent use: it is owned by the System that
// created it and is only touched from the server event loop.
type Registry struct {
	source data.TemplateSource
	log    *slog.Logger

	byName map[string]*data.SkillTemplate
	order  []string // registration order
	public []string
	digest string

	rejected []string
}

// NewRegistry creates an empty registry over source. Call Load to populate it.
func NewRegistry(source data.TemplateSource) *Registry {
	return &Registry{
		source: source,
		log:    slog.Default().With("component", "skills"),
		byName: make(map[string]*data.SkillTemplate),
	}
}

// SetLogger replaces the registry logger.
func (r *Registry) SetLogger(l *slog.Logger) {
	r.log = l.With("component", "skills")
}

// Load rebuilds the registry from scratch.
// The first template with a given name wins; later ones are logged and skipped.
func (r *Registry) Load() {
	clear(r.byName)
	r.order = r.order[:0]
	r.public = r.public[:0]
	r.rejected = r.rejected[:0]

	for _, t := range r.source.EnumerateSkills() {
		if _, ok := r.byName[t.Name]; ok {
			r.log.Error("found skill with duplicate prototype name, all skills must have a unique name; skipping",
				"name", t.Name, "id", t.ID, "error", ErrDuplicateTemplate)
			r.rejected = append(r.rejected, t.ID)
			continue
		}

		r.log.Info("added skill prototype", "name", t.Name)
		r.byName[t.Name] = t
		r.order = append(r.order, t.Name)
		if t.DisplayInSkills {
			r.public = append(r.public, t.Name)
		}
	}

	r.digest = r.computeDigest()
	r.log.Debug("skill registry loaded",
		"skills", len(r.byName), "public", len(r.public), "rejected", len(r.rejected), "digest", r.digest)
}

// HandlePrototypesReloaded rebuilds the registry on every reload notification.
func (r *Registry) HandlePrototypesReloaded(ev data.ReloadEvent) {
	r.log.Info("skill prototypes reloaded", "modified", len(ev.Modified), "removed", len(ev.Removed))
	r.Load()
}

// Lookup returns the template registered under name.
func (r *Registry) Lookup(name string) (*data.SkillTemplate, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// MustLookup is Lookup with an error result for callers that propagate errors.
func (r *Registry) MustLookup(name string) (*data.SkillTemplate, error) {
	t, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}
	return t, nil
}

// PublicSkills returns a copy of the public skill names in registration order.
func (r *Registry) PublicSkills() []string {
	return slices.Clone(r.public)
}

// Names returns every registered name in registration order.
func (r *Registry) Names() []string {
	return slices.Clone(r.order)
}

// Rejected returns the ids of templates skipped as duplicates during the last Load.
func (r *Registry) Rejected() []string {
	return slices.Clone(r.rejected)
}

// Len returns the number of registered templates.
func (r *Registry) Len() int {
	return len(r.byName)
}

// Digest returns a fingerprint of the registry contents after the last Load.
// Two loads of the same template set produce the same digest.
func (r *Registry) Digest() string {
	return r.digest
}

func (r *Registry) computeDigest() string {
	h, _ := blake2b.New256(nil)

	var buf [2]byte
	for _, name := range r.order {
		t := r.byName[name]
		h.Write([]byte(t.Name))
		h.Write([]byte{0})
		for _, v := range []uint16{t.DefaultLevel, t.MaxLevel, t.DefaultXP, t.MaxExperience} {
			binary.LittleEndian.PutUint16(buf[:], v)
			h.Write(buf[:])
		}
		if t.DisplayInSkills {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
