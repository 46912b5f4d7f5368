package gameserver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/udisondev/skillsys/internal/data"
	"github.com/udisondev/skillsys/internal/ecs"
	"github.com/udisondev/skillsys/internal/game/skill"
	"github.com/udisondev/skillsys/internal/gameserver/serverpackets"
)

// SkillStateStore persists entity skill snapshots.
type SkillStateStore interface {
	Save(ctx context.Context, uid ecs.EntityID, states []skill.SkillState) error
	DeleteByEntity(ctx context.Context, uid ecs.EntityID) error
}

// PacketSink receives encoded state-sync packets for an entity.
type PacketSink func(uid ecs.EntityID, data []byte)

// Server owns the ECS world and the skill system and runs the event loop
// that serializes reloads, entity spawns and despawns.
type Server struct {
	protos *data.PrototypeManager
	world  *ecs.World
	skills *skill.System

	store SkillStateStore // optional
	sink  PacketSink      // optional

	spawnCh   chan chan ecs.EntityID
	despawnCh chan despawnRequest

	unsubscribeSync func()
}

type despawnRequest struct {
	uid   ecs.EntityID
	reply chan error
}

// saveTimeout bounds one snapshot write or delete.
const saveTimeout = 5 * time.Second

// NewServer wires the skill system into a fresh world.
// store and sink may be nil.
func NewServer(protos *data.PrototypeManager, store SkillStateStore, sink PacketSink) *Server {
	world := ecs.NewWorld()
	return &Server{
		protos:    protos,
		world:     world,
		skills:    skill.NewSystem(protos, world),
		store:     store,
		sink:      sink,
		spawnCh:   make(chan chan ecs.EntityID),
		despawnCh: make(chan despawnRequest),
	}
}

// World returns the server's ECS world.
func (s *Server) World() *ecs.World {
	return s.world
}

// Skills returns the skill system.
func (s *Server) Skills() *skill.System {
	return s.skills
}

// Initialize subscribes the skill system, then the sync handler, so the
// sync handler always sees freshly initialized components.
func (s *Server) Initialize() {
	s.skills.Initialize()
	s.unsubscribeSync = ecs.SubscribeComponentInit(s.world, s.syncSkills)

	reg := s.skills.Registry()
	slog.Info("skill system initialized",
		"skills", reg.Len(), "public", len(reg.PublicSkills()), "digest", reg.Digest())
}

// Shutdown drops all subscriptions.
func (s *Server) Shutdown() {
	if s.unsubscribeSync != nil {
		s.unsubscribeSync()
		s.unsubscribeSync = nil
	}
	s.skills.Shutdown()
}

// SpawnEntity creates an entity with a skills component on the event loop
// and returns its id. Blocks until Run handles the request or ctx ends.
func (s *Server) SpawnEntity(ctx context.Context) (ecs.EntityID, error) {
	reply := make(chan ecs.EntityID, 1)
	select {
	case s.spawnCh <- reply:
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	select {
	case uid := <-reply:
		return uid, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// DespawnEntity removes uid from the world on the event loop and deletes its
// persisted snapshots. Returns ecs.ErrNoEntity for an unknown entity.
func (s *Server) DespawnEntity(ctx context.Context, uid ecs.EntityID) error {
	req := despawnRequest{uid: uid, reply: make(chan error, 1)}
	select {
	case s.despawnCh <- req:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run is the event loop. Each signal on changes reloads prototypes once;
// a failed reload is logged and the previous templates stay active.
func (s *Server) Run(ctx context.Context, changes <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case <-changes:
			if err := s.protos.Reload(ctx); err != nil {
				slog.Error("prototype reload failed, keeping previous templates", "error", err)
				continue
			}
			reg := s.skills.Registry()
			slog.Info("skill registry rebuilt",
				"skills", reg.Len(), "public", len(reg.PublicSkills()), "digest", reg.Digest())

		case reply := <-s.spawnCh:
			uid, err := s.spawn()
			if err != nil {
				return fmt.Errorf("spawning entity: %w", err)
			}
			reply <- uid

		case req := <-s.despawnCh:
			req.reply <- s.despawn(req.uid)
		}
	}
}

func (s *Server) spawn() (ecs.EntityID, error) {
	uid := s.world.NewEntity()
	if err := ecs.AddComponent(s.world, uid, &skill.SkillsComponent{}); err != nil {
		return 0, err
	}
	return uid, nil
}

func (s *Server) despawn(uid ecs.EntityID) error {
	if !s.world.Exists(uid) {
		return fmt.Errorf("despawning %d: %w", uid, ecs.ErrNoEntity)
	}
	s.world.RemoveEntity(uid)

	// Сущность уже удалена из мира: ошибка хранилища только логируется.
	if s.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		if err := s.store.DeleteByEntity(ctx, uid); err != nil {
			slog.Error("deleting skill states", "entity", uid, "error", err)
		}
	}
	return nil
}

// syncSkills encodes and persists the component after skill initialization.
// Failures are logged: a sync problem must not break entity creation.
func (s *Server) syncSkills(uid ecs.EntityID, comp *skill.SkillsComponent) {
	slog.Debug("skills component initialized", "entity", uid, "skills", len(comp.Skills))

	if s.sink != nil {
		pkt, err := serverpackets.NewSkillStateList(uid, comp.Skills).Write()
		if err != nil {
			slog.Error("encoding skill state list", "entity", uid, "error", err)
		} else {
			s.sink(uid, pkt)
		}
	}

	if s.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		if err := s.store.Save(ctx, uid, comp.Skills); err != nil {
			slog.Error("saving skill states", "entity", uid, "error", err)
		}
	}
}
