package ecs

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type health struct {
	Current int
	Max     int
}

type tag struct{}

func TestWorld_NewEntity(t *testing.T) {
	w := NewWorld()

	a := w.NewEntity()
	b := w.NewEntity()

	assert.NotZero(t, a)
	assert.NotEqual(t, a, b)
	assert.True(t, w.Exists(a))
	assert.Equal(t, 2, w.EntityCount())
}

func TestAddComponent_FiresInitInOrder(t *testing.T) {
	w := NewWorld()
	uid := w.NewEntity()

	var calls []string
	SubscribeComponentInit(w, func(got EntityID, h *health) {
		assert.Equal(t, uid, got)
		calls = append(calls, "first")
		h.Current = h.Max
	})
	SubscribeComponentInit(w, func(EntityID, *health) {
		calls = append(calls, "second")
	})
	SubscribeComponentInit(w, func(EntityID, *tag) {
		calls = append(calls, "tag")
	})

	require.NoError(t, AddComponent(w, uid, &health{Max: 100}))

	assert.Equal(t, []string{"first", "second"}, calls)
	h, ok := GetComponent[health](w, uid)
	require.True(t, ok)
	assert.Equal(t, 100, h.Current)
}

func TestAddComponent_UnknownEntity(t *testing.T) {
	w := NewWorld()

	err := AddComponent(w, 42, &health{})
	assert.ErrorIs(t, err, ErrNoEntity)
	assert.Zero(t, ComponentCount[health](w))
}

func TestInitComponent_Refires(t *testing.T) {
	w := NewWorld()
	uid := w.NewEntity()

	calls := 0
	SubscribeComponentInit(w, func(EntityID, *health) { calls++ })

	require.NoError(t, AddComponent(w, uid, &health{}))
	require.NoError(t, InitComponent[health](w, uid))
	assert.Equal(t, 2, calls)

	assert.ErrorIs(t, InitComponent[tag](w, uid), ErrNoEntity)
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	w := NewWorld()
	uid := w.NewEntity()

	calls := 0
	unsubscribe := SubscribeComponentInit(w, func(EntityID, *health) { calls++ })
	assert.Equal(t, 1, w.SubscriberCount(reflect.TypeFor[health]()))

	unsubscribe()
	unsubscribe()
	assert.Zero(t, w.SubscriberCount(reflect.TypeFor[health]()))

	require.NoError(t, AddComponent(w, uid, &health{}))
	assert.Zero(t, calls)
}

func TestRemoveEntity_DropsComponents(t *testing.T) {
	w := NewWorld()
	uid := w.NewEntity()
	other := w.NewEntity()

	require.NoError(t, AddComponent(w, uid, &health{Max: 1}))
	require.NoError(t, AddComponent(w, uid, &tag{}))
	require.NoError(t, AddComponent(w, other, &health{Max: 2}))

	w.RemoveEntity(uid)

	assert.False(t, w.Exists(uid))
	_, ok := GetComponent[health](w, uid)
	assert.False(t, ok)
	assert.Equal(t, 1, ComponentCount[health](w))
	assert.Zero(t, ComponentCount[tag](w))
}
