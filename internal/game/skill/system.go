package skill

import (
	"github.com/udisondev/skillsys/internal/data"
	"github.com/udisondev/skillsys/internal/ecs"
)

// System wires the skill registry into the ECS: it fills SkillsComponent on
// ComponentInit and rebuilds the registry when prototypes are reloaded.
type System struct {
	source   data.TemplateSource
	bus      ecs.Bus
	registry *Registry

	unsubscribeInit   func()
	unsubscribeReload func()
}

// NewSystem creates a skill system. Initialize must be called before use.
func NewSystem(source data.TemplateSource, bus ecs.Bus) *System {
	return &System{
		source:   source,
		bus:      bus,
		registry: NewRegistry(source),
	}
}

// Registry returns the registry owned by the system.
func (s *System) Registry() *Registry {
	return s.registry
}

// Initialize subscribes to ComponentInit, loads the registry and subscribes
// to prototype reloads. Calling it twice is a no-op.
func (s *System) Initialize() {
	if s.unsubscribeInit != nil {
		return
	}

	s.unsubscribeInit = ecs.SubscribeComponentInit(s.bus, s.OnComponentInit)
	s.registry.Load()
	s.unsubscribeReload = s.source.SubscribeReloaded(s.registry.HandlePrototypesReloaded)
}

// Shutdown drops both subscriptions. The registry keeps its last contents.
func (s *System) Shutdown() {
	if s.unsubscribeInit == nil {
		return
	}
	s.unsubscribeInit()
	s.unsubscribeReload()
	s.unsubscribeInit = nil
	s.unsubscribeReload = nil
}

// OnComponentInit replaces the component's skills with fresh snapshots of
// every public skill. Re-running it yields the same list, so repeated
// initialization of one component is harmless.
func (s *System) OnComponentInit(_ ecs.EntityID, component *SkillsComponent) {
	component.Skills = make([]SkillState, 0, len(s.registry.public))

	for _, name := range s.registry.public {
		t, ok := s.registry.Lookup(name)
		if !ok {
			continue
		}

		component.Skills = append(component.Skills, SkillState{
			Name:          name,
			DisplayInMenu: t.DisplayInSkills,
			Level:         t.DefaultLevel,
			MaxLevel:      t.MaxLevel,
			Experience:    t.DefaultXP,
			MaxExperience: t.MaxExperience,
		})
	}
}
