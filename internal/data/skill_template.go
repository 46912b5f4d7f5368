package data

// PrototypeKindSkillData — значение поля `type` у skill-прототипов в YAML.
const PrototypeKindSkillData = "skillData"

// Defaults applied when a prototype omits the field.
const (
	DefaultMaxLevel      uint16 = 1
	DefaultMaxExperience uint16 = 100
)

// SkillTemplate is a data-driven skill definition (skill data prototype).
// Templates are read-only once loaded: the registry and entity snapshots copy
// values out of them and never write back.
type SkillTemplate struct {
	// ID is the prototype id, unique within one load.
	ID string `yaml:"id"`
	// Name is the registry key. Several prototypes may share a name;
	// the registry keeps the first one it sees.
	Name string `yaml:"name"`

	DefaultLevel  uint16 `yaml:"defaultLevel"`
	MaxLevel      uint16 `yaml:"maxLevel"`
	DefaultXP     uint16 `yaml:"defaultXP"`
	MaxExperience uint16 `yaml:"maxExperience"`

	// DisplayInSkills marks the skill as public: every new entity gets a snapshot of it.
	DisplayInSkills bool `yaml:"displayInSkills"`
}

// skillPrototypeDoc is the on-disk shape of one prototype entry.
// Pointers distinguish "omitted" from explicit zero values.
type skillPrototypeDoc struct {
	Type            string  `yaml:"type"`
	ID              string  `yaml:"id"`
	Name            string  `yaml:"name"`
	DefaultLevel    uint16  `yaml:"defaultLevel"`
	MaxLevel        *uint16 `yaml:"maxLevel"`
	DefaultXP       uint16  `yaml:"defaultXP"`
	MaxExperience   *uint16 `yaml:"maxExperience"`
	DisplayInSkills bool    `yaml:"displayInSkills"`
}

// toTemplate конвертирует skillPrototypeDoc → SkillTemplate с применением defaults.
func (d *skillPrototypeDoc) toTemplate() *SkillTemplate {
	t := &SkillTemplate{
		ID:              d.ID,
		Name:            d.Name,
		DefaultLevel:    d.DefaultLevel,
		MaxLevel:        DefaultMaxLevel,
		DefaultXP:       d.DefaultXP,
		MaxExperience:   DefaultMaxExperience,
		DisplayInSkills: d.DisplayInSkills,
	}
	if t.Name == "" {
		t.Name = d.ID
	}
	if d.MaxLevel != nil {
		t.MaxLevel = *d.MaxLevel
	}
	if d.MaxExperience != nil {
		t.MaxExperience = *d.MaxExperience
	}
	return t
}
