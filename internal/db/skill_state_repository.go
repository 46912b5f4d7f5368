package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/skillsys/internal/ecs"
	"github.com/udisondev/skillsys/internal/game/skill"
)

// SkillStateRepository хранит снапшоты скиллов сущностей.
// Порядок скиллов сохраняется через колонку slot.
type SkillStateRepository struct {
	db *pgxpool.Pool
}

// NewSkillStateRepository создаёт новый SkillStateRepository.
func NewSkillStateRepository(db *pgxpool.Pool) *SkillStateRepository {
	return &SkillStateRepository{db: db}
}

// LoadByEntity загружает снапшоты сущности в порядке slot.
// Returns an empty slice for unknown entities.
func (r *SkillStateRepository) LoadByEntity(ctx context.Context, uid ecs.EntityID) ([]skill.SkillState, error) {
	query := `
		SELECT skill_name, display, level, max_level, experience, max_experience
		FROM entity_skills
		WHERE entity_id = $1
		ORDER BY slot
	`

	rows, err := r.db.Query(ctx, query, int64(uid))
	if err != nil {
		return nil, fmt.Errorf("querying skills for entity %d: %w", uid, err)
	}
	defer rows.Close()

	states := make([]skill.SkillState, 0, 8)
	for rows.Next() {
		var (
			s                                   skill.SkillState
			level, maxLevel, exp, maxExperience int32
		)
		if err := rows.Scan(&s.Name, &s.DisplayInMenu, &level, &maxLevel, &exp, &maxExperience); err != nil {
			return nil, fmt.Errorf("scanning skill row: %w", err)
		}
		s.Level = uint16(level)
		s.MaxLevel = uint16(maxLevel)
		s.Experience = uint16(exp)
		s.MaxExperience = uint16(maxExperience)
		states = append(states, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating skill rows: %w", err)
	}

	return states, nil
}

// Save сохраняет все снапшоты сущности (полная перезапись в одной транзакции).
func (r *SkillStateRepository) Save(ctx context.Context, uid ecs.EntityID, states []skill.SkillState) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	// Rollback after Commit returns ErrTxClosed; nothing to report.
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM entity_skills WHERE entity_id = $1`, int64(uid)); err != nil {
		return fmt.Errorf("deleting existing skills: %w", err)
	}

	for slot, s := range states {
		if _, err := tx.Exec(ctx,
			`INSERT INTO entity_skills (entity_id, slot, skill_name, display, level, max_level, experience, max_experience)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			int64(uid), int32(slot), s.Name, s.DisplayInMenu,
			int32(s.Level), int32(s.MaxLevel), int32(s.Experience), int32(s.MaxExperience),
		); err != nil {
			return fmt.Errorf("inserting skill %q: %w", s.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing skills save: %w", err)
	}

	return nil
}

// DeleteByEntity удаляет все снапшоты сущности.
func (r *SkillStateRepository) DeleteByEntity(ctx context.Context, uid ecs.EntityID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM entity_skills WHERE entity_id = $1`, int64(uid)); err != nil {
		return fmt.Errorf("deleting skills for entity %d: %w", uid, err)
	}
	return nil
}
