package skill

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/udisondev/skillsys/internal/data"
	"github.com/udisondev/skillsys/internal/ecs"
)

var propertyNames = []string{"Mining", "Stealth", "Combat", "Cooking", "Fishing", "Smithing"}

// drawTemplates generates a template list; names come from a small pool so duplicates are common.
func drawTemplates(t *rapid.T) []*data.SkillTemplate {
	n := rapid.IntRange(0, 16).Draw(t, "count")
	templates := make([]*data.SkillTemplate, 0, n)
	for i := range n {
		templates = append(templates, &data.SkillTemplate{
			ID:              fmt.Sprintf("Proto%d", i),
			Name:            rapid.SampledFrom(propertyNames).Draw(t, "name"),
			DefaultLevel:    rapid.Uint16().Draw(t, "level"),
			MaxLevel:        rapid.Uint16().Draw(t, "maxLevel"),
			DefaultXP:       rapid.Uint16().Draw(t, "xp"),
			MaxExperience:   rapid.Uint16().Draw(t, "maxXP"),
			DisplayInSkills: rapid.Bool().Draw(t, "visible"),
		})
	}
	return templates
}

func loadedRegistry(templates []*data.SkillTemplate) *Registry {
	protos := data.NewPrototypeManager("")
	protos.SetTemplates(templates)
	reg := NewRegistry(protos)
	reg.Load()
	return reg
}

// firstByName — эталон: первый шаблон для каждого имени и порядок первых вхождений.
func firstByName(templates []*data.SkillTemplate) (map[string]*data.SkillTemplate, []string) {
	first := make(map[string]*data.SkillTemplate)
	var order []string
	for _, tmpl := range templates {
		if _, ok := first[tmpl.Name]; ok {
			continue
		}
		first[tmpl.Name] = tmpl
		order = append(order, tmpl.Name)
	}
	return first, order
}

func TestRegistry_FirstTemplateWinsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		templates := drawTemplates(t)
		reg := loadedRegistry(templates)
		first, _ := firstByName(templates)

		if reg.Len() != len(first) {
			t.Fatalf("registry size %d, want %d", reg.Len(), len(first))
		}
		for name, want := range first {
			got, ok := reg.Lookup(name)
			if !ok {
				t.Fatalf("%q missing", name)
			}
			if got != want {
				t.Fatalf("%q: registry holds %s, want first occurrence %s", name, got.ID, want.ID)
			}
		}
		if len(reg.Rejected()) != len(templates)-len(first) {
			t.Fatalf("rejected %d, want %d", len(reg.Rejected()), len(templates)-len(first))
		}
	})
}

func TestRegistry_ReloadIdempotentProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		templates := drawTemplates(t)
		reg := loadedRegistry(templates)

		names, public, digest := reg.Names(), reg.PublicSkills(), reg.Digest()
		reg.Load()

		if fmt.Sprint(names) != fmt.Sprint(reg.Names()) {
			t.Fatalf("names changed: %v -> %v", names, reg.Names())
		}
		if fmt.Sprint(public) != fmt.Sprint(reg.PublicSkills()) {
			t.Fatalf("public changed: %v -> %v", public, reg.PublicSkills())
		}
		if digest != reg.Digest() {
			t.Fatal("digest changed on identical reload")
		}
	})
}

func TestRegistry_PublicSubsetProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		templates := drawTemplates(t)
		reg := loadedRegistry(templates)
		first, order := firstByName(templates)

		var want []string
		for _, name := range order {
			if first[name].DisplayInSkills {
				want = append(want, name)
			}
		}

		got := reg.PublicSkills()
		if fmt.Sprint(got) != fmt.Sprint(want) {
			t.Fatalf("public list %v, want %v", got, want)
		}
		for _, name := range got {
			tmpl, _ := reg.Lookup(name)
			if !tmpl.DisplayInSkills {
				t.Fatalf("%q is public but not displayed", name)
			}
		}
	})
}

func TestSystem_SnapshotCompletenessProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		protos := data.NewPrototypeManager("")
		protos.SetTemplates(drawTemplates(t))
		world := ecs.NewWorld()
		sys := NewSystem(protos, world)
		sys.Initialize()
		defer sys.Shutdown()

		uid := world.NewEntity()
		comp := &SkillsComponent{}
		if err := ecs.AddComponent(world, uid, comp); err != nil {
			t.Fatalf("AddComponent: %v", err)
		}

		public := sys.Registry().PublicSkills()
		if len(comp.Skills) != len(public) {
			t.Fatalf("snapshots %d, public %d", len(comp.Skills), len(public))
		}
		for i, st := range comp.Skills {
			tmpl, _ := sys.Registry().Lookup(public[i])
			if st.Name != tmpl.Name || st.Level != tmpl.DefaultLevel || st.Experience != tmpl.DefaultXP ||
				st.MaxLevel != tmpl.MaxLevel || st.MaxExperience != tmpl.MaxExperience || !st.DisplayInMenu {
				t.Fatalf("snapshot %d = %+v does not match template %+v", i, st, *tmpl)
			}
		}

		before := append([]SkillState(nil), comp.Skills...)
		if err := ecs.InitComponent[SkillsComponent](world, uid); err != nil {
			t.Fatalf("InitComponent: %v", err)
		}
		if fmt.Sprint(before) != fmt.Sprint(comp.Skills) {
			t.Fatalf("second init changed snapshots: %v -> %v", before, comp.Skills)
		}
	})
}
