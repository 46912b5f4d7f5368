package skill

// SkillState is one entity's copy of a skill: current progress plus the
// limits taken from the template at initialization time.
// It is a value type; copies never share state.
type SkillState struct {
	Name          string
	DisplayInMenu bool
	Level         uint16
	MaxLevel      uint16
	Experience    uint16
	MaxExperience uint16
}

// SkillsComponent holds the ordered skill states of one entity.
type SkillsComponent struct {
	Skills []SkillState
}

// Find returns the state for name.
func (c *SkillsComponent) Find(name string) (SkillState, bool) {
	for _, s := range c.Skills {
		if s.Name == name {
			return s, true
		}
	}
	return SkillState{}, false
}
