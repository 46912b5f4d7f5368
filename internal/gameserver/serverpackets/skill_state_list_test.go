package serverpackets

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/skillsys/internal/game/skill"
	"github.com/udisondev/skillsys/internal/gameserver/packet"
	"github.com/udisondev/skillsys/internal/testutil"
)

func TestSkillStateList_Write(t *testing.T) {
	pkt := NewSkillStateList(7, []skill.SkillState{
		{Name: "Mining", DisplayInMenu: true, Level: 0, MaxLevel: 10, Experience: 0, MaxExperience: 100},
	})

	data, err := pkt.Write()
	require.NoError(t, err)

	testutil.AssertPacketOpcode(t, OpcodeSkillStateList, data)
	testutil.AssertUint32LE(t, 7, data, 1)
	testutil.AssertUint32LE(t, 1, data, 5)

	r := packet.NewReader(data[9:])
	name, _ := r.ReadString()
	assert.Equal(t, "Mining", name)
	display, _ := r.ReadBool()
	assert.True(t, display)
	level, _ := r.ReadUint16()
	maxLevel, _ := r.ReadUint16()
	xp, _ := r.ReadUint16()
	maxXP, _ := r.ReadUint16()
	assert.Equal(t, []uint16{0, 10, 0, 100}, []uint16{level, maxLevel, xp, maxXP})
	assert.Zero(t, r.Remaining())
}

func TestSkillStateList_RoundTrip(t *testing.T) {
	want := NewSkillStateList(42, []skill.SkillState{
		{Name: "Mining", DisplayInMenu: true, Level: 3, MaxLevel: 10, Experience: 55, MaxExperience: 100},
		{Name: "Скрытность", DisplayInMenu: false, Level: 1, MaxLevel: 5, Experience: 20, MaxExperience: 50},
	})

	data, err := want.Write()
	require.NoError(t, err)

	got, err := ParseSkillStateList(data)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSkillStateList_RejectsUnencodableName(t *testing.T) {
	tests := []struct {
		name  string
		skill string
	}{
		{name: "embedded NUL", skill: "Mi\x00ning"},
		{name: "invalid UTF-8", skill: "Mi\xffning"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkt := NewSkillStateList(42, []skill.SkillState{
				{Name: "Stealth", Level: 1, MaxLevel: 5, Experience: 20, MaxExperience: 50},
				{Name: tt.skill, DisplayInMenu: true, MaxLevel: 10, MaxExperience: 100},
			})

			data, err := pkt.Write()
			require.ErrorIs(t, err, packet.ErrInvalidString)
			assert.Nil(t, data)
		})
	}
}

func TestSkillStateList_WriteDoesNotAliasPooledBuffer(t *testing.T) {
	first, err := NewSkillStateList(1, []skill.SkillState{{Name: "Mining", MaxLevel: 10}}).Write()
	require.NoError(t, err)
	snapshot := bytes.Clone(first)

	for range 8 {
		_, err := NewSkillStateList(2, []skill.SkillState{{Name: "Combat", MaxLevel: 20}}).Write()
		require.NoError(t, err)
	}

	assert.Equal(t, snapshot, first)
	got, err := ParseSkillStateList(first)
	require.NoError(t, err)
	assert.Equal(t, "Mining", got.Skills[0].Name)
}

func TestSkillStateList_Empty(t *testing.T) {
	data, err := NewSkillStateList(1, nil).Write()
	require.NoError(t, err)
	assert.Len(t, data, 9)

	got, err := ParseSkillStateList(data)
	require.NoError(t, err)
	assert.Empty(t, got.Skills)
}

func TestParseSkillStateList_Errors(t *testing.T) {
	valid, err := NewSkillStateList(1, []skill.SkillState{{Name: "Mining", MaxLevel: 10}}).Write()
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "wrong opcode", data: append([]byte{0x58}, valid[1:]...)},
		{name: "truncated", data: valid[:len(valid)-1]},
		{name: "count too large", data: []byte{OpcodeSkillStateList, 1, 0, 0, 0, 0xFF, 0xFF, 0xFF, 0xFF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSkillStateList(tt.data)
			assert.Error(t, err)
		})
	}
}
