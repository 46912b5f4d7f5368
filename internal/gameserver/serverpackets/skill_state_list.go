package serverpackets

import (
	"bytes"
	"fmt"

	"github.com/udisondev/skillsys/internal/ecs"
	"github.com/udisondev/skillsys/internal/game/skill"
	"github.com/udisondev/skillsys/internal/gameserver/packet"
)

const (
	// OpcodeSkillStateList is the opcode for SkillStateList packet (S2C 0x5F).
	OpcodeSkillStateList = 0x5F

	// skillStateFixedSize — display(1) + level(2) + maxLevel(2) + xp(2) + maxXp(2).
	skillStateFixedSize = 9
)

// SkillStateList packet (S2C 0x5F) syncs one entity's skill snapshots to the client.
// Sent after the skills component is initialized and whenever it is reinitialized.
type SkillStateList struct {
	EntityID ecs.EntityID
	Skills   []skill.SkillState
}

// NewSkillStateList creates the packet. Skills is not copied.
func NewSkillStateList(uid ecs.EntityID, skills []skill.SkillState) *SkillStateList {
	return &SkillStateList{EntityID: uid, Skills: skills}
}

// Write serializes the packet into a pooled writer and returns a copy of the bytes.
// Format: opcode(1) + entity(4) + count(4) + [name(UTF-16LE, NUL) + display(1) + level(2) + maxLevel(2) + xp(2) + maxXp(2)] per skill.
// A name that cannot be encoded losslessly fails the whole packet.
func (p *SkillStateList) Write() ([]byte, error) {
	for i, s := range p.Skills {
		if err := packet.CheckString(s.Name); err != nil {
			return nil, fmt.Errorf("skill %d name: %w", i, err)
		}
	}

	w := packet.Get()
	defer w.Put()

	_ = w.WriteByte(OpcodeSkillStateList)
	w.WriteUint32(uint32(p.EntityID))
	w.WriteUint32(uint32(len(p.Skills)))

	for _, s := range p.Skills {
		w.WriteString(s.Name)
		w.WriteBool(s.DisplayInMenu)
		w.WriteUint16(s.Level)
		w.WriteUint16(s.MaxLevel)
		w.WriteUint16(s.Experience)
		w.WriteUint16(s.MaxExperience)
	}

	// Буфер вернётся в пул, наружу отдаём копию.
	return bytes.Clone(w.Bytes()), nil
}

// ParseSkillStateList decodes a SkillStateList packet (opcode included).
func ParseSkillStateList(data []byte) (*SkillStateList, error) {
	r := packet.NewReader(data)

	opcode, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("reading opcode: %w", err)
	}
	if opcode != OpcodeSkillStateList {
		return nil, fmt.Errorf("unexpected opcode 0x%02X, want 0x%02X", opcode, OpcodeSkillStateList)
	}

	uid, err := r.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("reading entity id: %w", err)
	}
	count, err := r.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("reading skill count: %w", err)
	}
	// Каждая запись занимает минимум NUL + фиксированная часть.
	if int(count) > r.Remaining()/(2+skillStateFixedSize) {
		return nil, fmt.Errorf("skill count %d exceeds packet size %d", count, len(data))
	}

	p := &SkillStateList{
		EntityID: ecs.EntityID(uid),
		Skills:   make([]skill.SkillState, 0, count),
	}
	for i := range count {
		s, err := readSkillState(r)
		if err != nil {
			return nil, fmt.Errorf("reading skill %d: %w", i, err)
		}
		p.Skills = append(p.Skills, s)
	}

	return p, nil
}

func readSkillState(r *packet.Reader) (skill.SkillState, error) {
	var (
		s   skill.SkillState
		err error
	)
	if s.Name, err = r.ReadString(); err != nil {
		return s, err
	}
	if s.DisplayInMenu, err = r.ReadBool(); err != nil {
		return s, err
	}
	for _, dst := range []*uint16{&s.Level, &s.MaxLevel, &s.Experience, &s.MaxExperience} {
		if *dst, err = r.ReadUint16(); err != nil {
			return s, err
		}
	}
	return s, nil
}
