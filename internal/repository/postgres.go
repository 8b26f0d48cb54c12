// Package repository содержит реализацию доступа к данным в PostgreSQL.
package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNotFound возвращается, если сущность отсутствует или принадлежит другой семье.
var (
	ErrNotFound = errors.New("not found")
	// ErrInvalidTransition возвращается при попытке повторно рассчитать завершённое назначение.
	ErrInvalidTransition = errors.New("assignment already settled")
	// ErrInsufficientBalance возвращается, если баллов ребёнка не хватает на награду.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrParentExists возвращается при регистрации родителя с уже занятым email.
	ErrParentExists = errors.New("parent already exists")
)

// InsufficientBalanceError содержит баланс и стоимость отклонённого обмена.
type InsufficientBalanceError struct {
	Balance int64
	Cost    int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("%s: have %d, need %d", ErrInsufficientBalance, e.Balance, e.Cost)
}

// Is позволяет сравнивать ошибку с ErrInsufficientBalance через errors.Is.
func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// Needed возвращает число недостающих баллов.
func (e *InsufficientBalanceError) Needed() int64 {
	return e.Cost - e.Balance
}

// dbPool описывает подмножество методов *pgxpool.Pool, используемых репозиторием.
type dbPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresRepository предоставляет доступ к хранилищу данных в PostgreSQL.
type PostgresRepository struct {
	db  dbPool
	now func() time.Time
}

// NewPostgresRepository создаёт новый репозиторий и инициализирует схему БД через миграции.
func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return newRepository(pool), nil
}

func newRepository(db dbPool) *PostgresRepository {
	return &PostgresRepository{
		db:  db,
		now: time.Now,
	}
}

func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// Close закрывает пул соединений с БД.
func (r *PostgresRepository) Close() error {
	r.db.Close()
	return nil
}

// Ping проверяет доступность БД.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

// mapError переводит ошибки pgx и коды PostgreSQL в доменные ошибки.
// Ошибки контекста возвращаются без изменений.
func mapError(err error, op string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			if pgErr.ConstraintName == "parents_email_key" {
				return fmt.Errorf("%s: %w", op, ErrParentExists)
			}
		case pgerrcode.ForeignKeyViolation:
			return ErrNotFound
		case pgerrcode.CheckViolation:
			if pgErr.ConstraintName == "kids_points_check" {
				return ErrInsufficientBalance
			}
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}
