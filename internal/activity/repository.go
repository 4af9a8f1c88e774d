package activity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, a *Activity) error
	GetByID(ctx context.Context, id string) (*Activity, error)
	// AddEnrollments increments the enrolled count only while it stays within the maximum.
	// It returns ErrEnrollmentFull when the increment would exceed it.
	AddEnrollments(ctx context.Context, id string, additions int) (*Activity, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var activityColumns = []string{"id", "name", "max_participants", "enrolled_count", "is_active", "created_at"}

func (r *pgxRepository) Create(ctx context.Context, a *Activity) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.activities").
		Columns("name", "max_participants", "enrolled_count", "is_active").
		Values(a.Name, a.MaxParticipants, a.EnrolledCount, a.Active).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create activity query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&a.ID, &a.CreatedAt); err != nil {
		return fmt.Errorf("create activity failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Activity, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(activityColumns...).
		From("public.activities").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get activity query failed: %w", err)
	}

	a, err := scanActivity(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get activity failed: %w", err)
	}
	return a, nil
}

func (r *pgxRepository) AddEnrollments(ctx context.Context, id string, additions int) (*Activity, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.activities").
		Set("enrolled_count", squirrel.Expr("enrolled_count + ?", additions)).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Or{
			squirrel.Eq{"max_participants": nil},
			squirrel.Expr("enrolled_count + ? <= max_participants", additions),
		}).
		Suffix("RETURNING " + strings.Join(activityColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build add enrollments query failed: %w", err)
	}

	a, err := scanActivity(r.pool.QueryRow(ctx, query, args...))
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("add enrollments failed: %w", err)
	}

	// No row updated: either the activity is missing or it is full.
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, ErrEnrollmentFull
}

func scanActivity(row pgx.Row) (*Activity, error) {
	var a Activity
	if err := row.Scan(&a.ID, &a.Name, &a.MaxParticipants, &a.EnrolledCount, &a.Active, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}
