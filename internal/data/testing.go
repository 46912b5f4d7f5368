package data

// NewTestSkillTemplate builds a SkillTemplate for tests in other packages.
// The id is derived from the name.
func NewTestSkillTemplate(name string, level, maxLevel, xp, maxXP uint16, visible bool) *SkillTemplate {
	return &SkillTemplate{
		ID:              "Skill" + name,
		Name:            name,
		DefaultLevel:    level,
		MaxLevel:        maxLevel,
		DefaultXP:       xp,
		MaxExperience:   maxXP,
		DisplayInSkills: visible,
	}
}
