package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/classroom-booking-backend/internal/timerange"
)

type Repository interface {
	Create(ctx context.Context, slot *Slot) error
	// ListActiveByRoom returns active slots of the room ordered by weekday and start.
	ListActiveByRoom(ctx context.Context, roomID string) ([]*Slot, error)
	Deactivate(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Create(ctx context.Context, s *Slot) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.recurring_slots").
		Columns("room_id", "weekday", "start_minute", "end_minute", "owner_ref", "label", "is_active").
		Values(s.RoomID, int16(s.Weekday), int16(s.Start), int16(s.End), s.OwnerRef, s.Label, s.Active).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create recurring slot query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&s.ID, &s.CreatedAt); err != nil {
		return fmt.Errorf("create recurring slot failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) ListActiveByRoom(ctx context.Context, roomID string) ([]*Slot, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(
		"id", "room_id", "weekday", "start_minute", "end_minute", "owner_ref", "label", "is_active", "created_at",
	).
		From("public.recurring_slots").
		Where(squirrel.Eq{"room_id": roomID, "is_active": true}).
		OrderBy("weekday ASC", "start_minute ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list recurring slots query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list recurring slots failed: %w", err)
	}
	defer rows.Close()

	var slots []*Slot
	for rows.Next() {
		var (
			s                Slot
			weekday          int16
			startMin, endMin int16
		)
		if err := rows.Scan(
			&s.ID, &s.RoomID, &weekday, &startMin, &endMin, &s.OwnerRef, &s.Label, &s.Active, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan recurring slot failed: %w", err)
		}
		s.Weekday = time.Weekday(weekday)
		s.Start = timerange.ClockTime(startMin)
		s.End = timerange.ClockTime(endMin)
		slots = append(slots, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recurring slots failed: %w", err)
	}
	return slots, nil
}

func (r *pgxRepository) Deactivate(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.recurring_slots").
		Set("is_active", false).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build deactivate recurring slot query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("deactivate recurring slot failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
