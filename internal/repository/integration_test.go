package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mmeshcher/choreledger/internal/model"
)

var (
	pgOnce      sync.Once
	pgContainer testcontainers.Container
	pgDSN       string
	pgInitErr   error
)

func TestMain(m *testing.M) {
	code := m.Run()

	if pgContainer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := pgContainer.Terminate(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "terminate postgres container: %v\n", err)
		}
		cancel()
	}

	os.Exit(code)
}

// setupPostgres поднимает общий контейнер PostgreSQL на весь прогон и
// возвращает репозиторий с применёнными миграциями.
func setupPostgres(t *testing.T) *PostgresRepository {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping PostgreSQL integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	pgOnce.Do(func() {
		pgDSN, pgInitErr = startPostgres()
	})
	if pgInitErr != nil {
		t.Skipf("postgres container unavailable: %v", pgInitErr)
	}

	repo, err := NewPostgresRepository(pgDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	return repo
}

func startPostgres() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:17-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "ledger",
				"POSTGRES_PASSWORD": "ledger",
				"POSTGRES_DB":       "choreledger",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if container != nil {
		pgContainer = container
	}
	if err != nil {
		return "", fmt.Errorf("start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return "", fmt.Errorf("get mapped port: %w", err)
	}

	return fmt.Sprintf("postgres://ledger:ledger@%s:%s/choreledger?sslmode=disable", host, port.Port()), nil
}

type fixture struct {
	familyID string
	kid      *model.Kid
}

func newFixture(t *testing.T, repo *PostgresRepository, points int64) fixture {
	t.Helper()
	ctx := context.Background()

	parent, err := repo.CreateFamily(ctx, "Family", model.Parent{
		Email:        uuid.NewString() + "@example.com",
		Name:         "Parent",
		PasswordHash: []byte("hash"),
	})
	require.NoError(t, err)

	kid, err := repo.CreateKid(ctx, parent.FamilyID, model.KidProfile{
		Name: "Emma", Age: 8, AvatarID: "default", ThemeMode: model.ThemeNeutral,
		PrimaryColor: "#6366f1", SecondaryColor: "#8b5cf6",
	})
	require.NoError(t, err)

	if points > 0 {
		_, err = repo.db.Exec(ctx, `UPDATE kids SET points = $2 WHERE id = $1`, kid.ID, points)
		require.NoError(t, err)
		kid.Points = points
	}

	return fixture{familyID: parent.FamilyID, kid: kid}
}

func (f fixture) chore(t *testing.T, repo *PostgresRepository, basePoints int64) *model.Chore {
	t.Helper()

	c, err := repo.CreateChore(context.Background(), model.Chore{
		FamilyID: f.familyID, Title: "Make bed", Icon: "star",
		Difficulty: model.DifficultyEasy, BasePoints: basePoints, Active: true,
	})
	require.NoError(t, err)
	return c
}

func (f fixture) assignment(t *testing.T, repo *PostgresRepository, choreID string) *model.ChoreAssignment {
	t.Helper()

	a, err := repo.CreateAssignment(context.Background(), f.familyID, choreID, f.kid.ID, time.Now())
	require.NoError(t, err)
	return a
}

func (f fixture) reward(t *testing.T, repo *PostgresRepository, cost int64) *model.Reward {
	t.Helper()

	rw, err := repo.CreateReward(context.Background(), model.Reward{
		FamilyID: f.familyID, Title: "Movie night", Icon: "gift", Cost: cost, Active: true,
	})
	require.NoError(t, err)
	return rw
}

func TestIntegration_CompleteCreditsKidAndRecomputesLevel(t *testing.T) {
	repo := setupPostgres(t)
	ctx := context.Background()

	f := newFixture(t, repo, 0)
	_, err := repo.db.Exec(ctx, `UPDATE kids SET total_points = 190 WHERE id = $1`, f.kid.ID)
	require.NoError(t, err)

	chore := f.chore(t, repo, 15)
	a := f.assignment(t, repo, chore.ID)

	res, err := repo.SettleAssignment(ctx, f.familyID, a.ID, model.AssignmentCompleted)
	require.NoError(t, err)

	assert.Equal(t, model.AssignmentCompleted, res.Assignment.Status)
	assert.Equal(t, int64(15), res.Assignment.PointsEarned)
	assert.NotNil(t, res.Assignment.CompletedAt)

	kid, err := repo.GetKid(ctx, f.familyID, f.kid.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(15), kid.Points)
	assert.Equal(t, int64(205), kid.TotalPoints)
	assert.Equal(t, int64(15), kid.Experience)
	assert.Equal(t, 2, kid.Level)
	assert.Equal(t, 1, kid.StreakDays)

	_, err = repo.SettleAssignment(ctx, f.familyID, a.ID, model.AssignmentSkipped)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	again, err := repo.GetKid(ctx, f.familyID, f.kid.ID)
	require.NoError(t, err)
	assert.Equal(t, kid.Points, again.Points)
}

func TestIntegration_ConcurrentDoubleSettle(t *testing.T) {
	repo := setupPostgres(t)
	ctx := context.Background()

	f := newFixture(t, repo, 0)
	chore := f.chore(t, repo, 20)
	a := f.assignment(t, repo, chore.ID)

	const attempts = 8
	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		rejected  atomic.Int32
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.SettleAssignment(ctx, f.familyID, a.ID, model.AssignmentCompleted)
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, ErrInvalidTransition):
				rejected.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), succeeded.Load())
	assert.Equal(t, int32(attempts-1), rejected.Load())

	kid, err := repo.GetKid(ctx, f.familyID, f.kid.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(20), kid.Points)
	assert.Equal(t, int64(20), kid.TotalPoints)
}

func TestIntegration_ConcurrentSettlementsSameKidNoLostUpdate(t *testing.T) {
	repo := setupPostgres(t)
	ctx := context.Background()

	f := newFixture(t, repo, 0)
	chore := f.chore(t, repo, 10)

	const n = 10
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		ids = append(ids, f.assignment(t, repo, chore.ID).ID)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := repo.SettleAssignment(ctx, f.familyID, id, model.AssignmentCompleted)
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	kid, err := repo.GetKid(ctx, f.familyID, f.kid.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(n*10), kid.Points)
	assert.Equal(t, int64(n*10), kid.TotalPoints)
	assert.Equal(t, int64(n*10), kid.Experience)
}

func TestIntegration_ConcurrentRedemptionsNeverOverspend(t *testing.T) {
	repo := setupPostgres(t)
	ctx := context.Background()

	f := newFixture(t, repo, 350)
	rw := f.reward(t, repo, 100)

	const attempts = 10
	var (
		wg           sync.WaitGroup
		succeeded    atomic.Int32
		insufficient atomic.Int32
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.RedeemReward(ctx, f.familyID, rw.ID, f.kid.ID)
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, ErrInsufficientBalance):
				insufficient.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(3), succeeded.Load())
	assert.Equal(t, int32(attempts-3), insufficient.Load())

	kid, err := repo.GetKid(ctx, f.familyID, f.kid.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50), kid.Points)

	history, err := repo.ListRedemptions(ctx, f.familyID, f.kid.ID)
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestIntegration_RedeemScenario(t *testing.T) {
	repo := setupPostgres(t)
	ctx := context.Background()

	f := newFixture(t, repo, 850)
	cheap := f.reward(t, repo, 100)
	pricey := f.reward(t, repo, 1000)

	rec, err := repo.RedeemReward(ctx, f.familyID, cheap.ID, f.kid.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), rec.PointsSpent)

	_, err = repo.RedeemReward(ctx, f.familyID, pricey.ID, f.kid.ID)
	require.ErrorIs(t, err, ErrInsufficientBalance)

	var ib *InsufficientBalanceError
	require.ErrorAs(t, err, &ib)
	assert.Equal(t, int64(250), ib.Needed())

	kid, err := repo.GetKid(ctx, f.familyID, f.kid.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(750), kid.Points)
	assert.Equal(t, int64(0), kid.TotalPoints)
	assert.Equal(t, int64(0), kid.Experience)
}

func TestIntegration_PointsEarnedIsSnapshot(t *testing.T) {
	repo := setupPostgres(t)
	ctx := context.Background()

	f := newFixture(t, repo, 0)
	chore := f.chore(t, repo, 15)
	a := f.assignment(t, repo, chore.ID)

	_, err := repo.SettleAssignment(ctx, f.familyID, a.ID, model.AssignmentCompleted)
	require.NoError(t, err)

	_, err = repo.db.Exec(ctx, `UPDATE chores SET base_points = 99 WHERE id = $1`, chore.ID)
	require.NoError(t, err)

	list, err := repo.ListAssignments(ctx, f.familyID, model.AssignmentFilter{KidID: f.kid.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(15), list[0].PointsEarned)
}

func TestIntegration_CrossFamilyIsNotFound(t *testing.T) {
	repo := setupPostgres(t)
	ctx := context.Background()

	owner := newFixture(t, repo, 500)
	intruder := newFixture(t, repo, 0)

	chore := owner.chore(t, repo, 15)
	a := owner.assignment(t, repo, chore.ID)
	rw := owner.reward(t, repo, 100)

	_, err := repo.SettleAssignment(ctx, intruder.familyID, a.ID, model.AssignmentCompleted)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.RedeemReward(ctx, intruder.familyID, rw.ID, owner.kid.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.RedeemReward(ctx, owner.familyID, rw.ID, intruder.kid.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.GetKid(ctx, intruder.familyID, owner.kid.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.CreateAssignment(ctx, owner.familyID, chore.ID, intruder.kid.ID, time.Now())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.ListRedemptions(ctx, intruder.familyID, owner.kid.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.ListRedemptions(ctx, owner.familyID, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)

	kid, err := repo.GetKid(ctx, owner.familyID, owner.kid.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), kid.Points)
}

func TestIntegration_DuplicateParentEmail(t *testing.T) {
	repo := setupPostgres(t)
	ctx := context.Background()

	email := uuid.NewString() + "@example.com"
	parent := model.Parent{Email: email, Name: "Parent", PasswordHash: []byte("hash")}

	_, err := repo.CreateFamily(ctx, "First", parent)
	require.NoError(t, err)

	_, err = repo.CreateFamily(ctx, "Second", parent)
	assert.ErrorIs(t, err, ErrParentExists)
}

func TestIntegration_DeleteKidCascades(t *testing.T) {
	repo := setupPostgres(t)
	ctx := context.Background()

	f := newFixture(t, repo, 200)
	chore := f.chore(t, repo, 10)
	f.assignment(t, repo, chore.ID)
	rw := f.reward(t, repo, 50)
	_, err := repo.RedeemReward(ctx, f.familyID, rw.ID, f.kid.ID)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteKid(ctx, f.familyID, f.kid.ID))
	assert.ErrorIs(t, repo.DeleteKid(ctx, f.familyID, f.kid.ID), ErrNotFound)

	list, err := repo.ListAssignments(ctx, f.familyID, model.AssignmentFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestIntegration_CatalogDeleteKeepsHistory(t *testing.T) {
	repo := setupPostgres(t)
	ctx := context.Background()

	f := newFixture(t, repo, 200)
	chore := f.chore(t, repo, 10)
	a := f.assignment(t, repo, chore.ID)
	_, err := repo.SettleAssignment(ctx, f.familyID, a.ID, model.AssignmentCompleted)
	require.NoError(t, err)

	rw := f.reward(t, repo, 50)
	_, err = repo.RedeemReward(ctx, f.familyID, rw.ID, f.kid.ID)
	require.NoError(t, err)

	var pgErr *pgconn.PgError

	_, err = repo.db.Exec(ctx, `DELETE FROM chores WHERE id = $1`, chore.ID)
	require.ErrorAs(t, err, &pgErr)
	assert.Equal(t, pgerrcode.ForeignKeyViolation, pgErr.Code)

	_, err = repo.db.Exec(ctx, `DELETE FROM rewards WHERE id = $1`, rw.ID)
	require.ErrorAs(t, err, &pgErr)
	assert.Equal(t, pgerrcode.ForeignKeyViolation, pgErr.Code)

	list, err := repo.ListAssignments(ctx, f.familyID, model.AssignmentFilter{KidID: f.kid.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(10), list[0].PointsEarned)

	history, err := repo.ListRedemptions(ctx, f.familyID, f.kid.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}
