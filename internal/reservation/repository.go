package reservation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/classroom-booking-backend/internal/timerange"
	"github.com/nekogravitycat/classroom-booking-backend/internal/workflow"
)

// querier is satisfied by both the pool and an open transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgxStore struct {
	pool *pgxpool.Pool
}

func NewPgxStore(pool *pgxpool.Pool) Store {
	return &pgxStore{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var reservationColumns = []string{
	"id", "room_id", "requested_by", "activity_id", "start_time", "end_time", "attendees",
	"status", "observations", "motive", "version", "reactivated_from", "created_at", "updated_at",
}

func occupyingStatuses() []string {
	var out []string
	for _, s := range workflow.OccupyingStatuses() {
		out = append(out, string(s))
	}
	return out
}

func (s *pgxStore) ListActive(ctx context.Context, roomID string, window timerange.Range, excludeID string) ([]*Reservation, error) {
	return listActive(ctx, s.pool, roomID, window, excludeID)
}

func listActive(ctx context.Context, q querier, roomID string, window timerange.Range, excludeID string) ([]*Reservation, error) {
	// Overlap: existing.start < window.end AND existing.end > window.start
	query := psql.Select(reservationColumns...).
		From("public.reservations").
		Where(squirrel.Eq{"room_id": roomID}).
		Where(squirrel.Eq{"status": occupyingStatuses()}).
		Where(squirrel.Lt{"start_time": window.End}).
		Where(squirrel.Gt{"end_time": window.Start}).
		OrderBy("start_time ASC")
	if excludeID != "" {
		query = query.Where(squirrel.NotEq{"id": excludeID})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list active reservations query failed: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list active reservations failed: %w", err)
	}
	defer rows.Close()

	var out []*Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation failed: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservations failed: %w", err)
	}
	return out, nil
}

func (s *pgxStore) GetByID(ctx context.Context, id string) (*Reservation, error) {
	r, err := getByID(ctx, s.pool, id)
	if err != nil {
		return nil, err
	}
	if r.History, err = history(ctx, s.pool, id); err != nil {
		return nil, err
	}
	return r, nil
}

func getByID(ctx context.Context, q querier, id string) (*Reservation, error) {
	sql, args, err := psql.Select(reservationColumns...).
		From("public.reservations").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get reservation query failed: %w", err)
	}

	r, err := scanReservation(q.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get reservation failed: %w", err)
	}
	return r, nil
}

func history(ctx context.Context, q querier, id string) ([]workflow.Entry, error) {
	sql, args, err := psql.Select("actor", "from_status", "to_status", "motive", "observations", "created_at").
		From("public.reservation_status_history").
		Where(squirrel.Eq{"reservation_id": id}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build reservation history query failed: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list reservation history failed: %w", err)
	}
	defer rows.Close()

	var entries []workflow.Entry
	for rows.Next() {
		var e workflow.Entry
		if err := rows.Scan(&e.Actor, &e.From, &e.To, &e.Motive, &e.Observations, &e.At); err != nil {
			return nil, fmt.Errorf("scan history entry failed: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservation history failed: %w", err)
	}
	return entries, nil
}

func (s *pgxStore) List(ctx context.Context, filter Filter) ([]*Reservation, int, error) {
	query := psql.Select(append(reservationColumns, "count(*) OVER() AS total_count")...).
		From("public.reservations")

	if filter.RoomID != "" {
		query = query.Where(squirrel.Eq{"room_id": filter.RoomID})
	}
	if filter.RequestedBy != "" {
		query = query.Where(squirrel.Eq{"requested_by": filter.RequestedBy})
	}
	if filter.ActivityID != "" {
		query = query.Where(squirrel.Eq{"activity_id": filter.ActivityID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": string(filter.Status)})
	}
	// Intersection with [From, To)
	if filter.From != nil {
		query = query.Where(squirrel.Gt{"end_time": *filter.From})
	}
	if filter.To != nil {
		query = query.Where(squirrel.Lt{"start_time": *filter.To})
	}

	orderDir := "ASC"
	if filter.SortOrder == "DESC" {
		orderDir = "DESC"
	}
	query = query.OrderBy("start_time " + orderDir)

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list reservations query failed: %w", err)
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list reservations failed: %w", err)
	}
	defer rows.Close()

	var (
		out   []*Reservation
		total int
	)
	for rows.Next() {
		r, err := scanReservation(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan reservation failed: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate reservations failed: %w", err)
	}
	return out, total, nil
}

func (s *pgxStore) ApplyTransition(ctx context.Context, id string, expectedVersion int, entry workflow.Entry) (*Reservation, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transition failed: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	update := psql.Update("public.reservations").
		Set("status", string(entry.To)).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", entry.At).
		Where(squirrel.Eq{"id": id, "version": expectedVersion, "status": string(entry.From)}).
		Suffix("RETURNING " + strings.Join(reservationColumns, ", "))
	if entry.Motive != "" {
		update = update.Set("motive", entry.Motive)
	}
	if entry.Observations != "" {
		update = update.Set("observations", entry.Observations)
	}

	sql, args, err := update.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build transition query failed: %w", err)
	}

	r, err := scanReservation(tx.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Either the row is gone or someone else moved it first.
			if _, getErr := getByID(ctx, tx, id); getErr != nil {
				return nil, getErr
			}
			return nil, ErrConcurrentModification
		}
		return nil, mapWriteError(err, "apply transition failed")
	}

	sql, args, err = psql.Insert("public.reservation_status_history").
		Columns("reservation_id", "actor", "from_status", "to_status", "motive", "observations", "created_at").
		Values(id, entry.Actor, string(entry.From), string(entry.To), entry.Motive, entry.Observations, entry.At).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build history insert failed: %w", err)
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return nil, mapWriteError(err, "append history failed")
	}

	if r.History, err = history(ctx, tx, id); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, mapWriteError(err, "commit transition failed")
	}
	return r, nil
}

func (s *pgxStore) WithResourceLock(ctx context.Context, roomID string, fn func(ctx context.Context, tx LockedStore) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin booking transaction failed: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	// Held until commit or rollback; serializes every commit for the room.
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", roomID); err != nil {
		return fmt.Errorf("acquire room lock failed: %w", err)
	}

	if err := fn(ctx, &pgxLockedStore{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return mapWriteError(err, "commit booking transaction failed")
	}
	return nil
}

type pgxLockedStore struct {
	tx pgx.Tx
}

func (l *pgxLockedStore) ListActive(ctx context.Context, roomID string, window timerange.Range, excludeID string) ([]*Reservation, error) {
	return listActive(ctx, l.tx, roomID, window, excludeID)
}

func (l *pgxLockedStore) Insert(ctx context.Context, r *Reservation) error {
	sql, args, err := psql.Insert("public.reservations").
		Columns(
			"room_id", "requested_by", "activity_id", "start_time", "end_time", "attendees",
			"status", "observations", "motive", "reactivated_from",
		).
		Values(
			r.RoomID, r.RequestedBy, r.ActivityID, r.Range.Start, r.Range.End, r.Attendees,
			string(r.Status), r.Observations, r.Motive, r.ReactivatedFrom,
		).
		Suffix("RETURNING id, version, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert reservation query failed: %w", err)
	}

	if err := l.tx.QueryRow(ctx, sql, args...).Scan(&r.ID, &r.Version, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return mapWriteError(err, "insert reservation failed")
	}
	return nil
}

func (l *pgxLockedStore) UpdateRange(ctx context.Context, r *Reservation, expectedVersion int) error {
	sql, args, err := psql.Update("public.reservations").
		Set("start_time", r.Range.Start).
		Set("end_time", r.Range.End).
		Set("attendees", r.Attendees).
		Set("activity_id", r.ActivityID).
		Set("observations", r.Observations).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": r.ID, "version": expectedVersion}).
		Suffix("RETURNING version, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update reservation query failed: %w", err)
	}

	if err := l.tx.QueryRow(ctx, sql, args...).Scan(&r.Version, &r.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, getErr := getByID(ctx, l.tx, r.ID); getErr != nil {
				return getErr
			}
			return ErrConcurrentModification
		}
		return mapWriteError(err, "update reservation failed")
	}
	return nil
}

// mapWriteError turns constraint and serialization failures into ErrConcurrentModification.
// The exclusion constraint only fires when two commits raced past the room lock.
func mapWriteError(err error, msg string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.ExclusionViolation, pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
			return ErrConcurrentModification.WithCause(err)
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func scanReservation(row pgx.Row, extra ...any) (*Reservation, error) {
	var (
		r      Reservation
		status string
	)
	dest := []any{
		&r.ID, &r.RoomID, &r.RequestedBy, &r.ActivityID, &r.Range.Start, &r.Range.End, &r.Attendees,
		&status, &r.Observations, &r.Motive, &r.Version, &r.ReactivatedFrom, &r.CreatedAt, &r.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	r.Status = workflow.Status(status)
	return &r, nil
}

