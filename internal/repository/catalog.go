package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/mmeshcher/choreledger/internal/model"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// rowScanner описывает общий метод Scan у pgx.Row и pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

const kidCols = `id, family_id, name, age, avatar_id, theme_mode, primary_color, secondary_color,
	points, total_points, streak_days, level, experience, last_active_at, created_at`

func scanKid(row rowScanner) (*model.Kid, error) {
	var k model.Kid
	var theme string
	err := row.Scan(
		&k.ID, &k.FamilyID, &k.Name, &k.Age, &k.AvatarID, &theme, &k.PrimaryColor, &k.SecondaryColor,
		&k.Points, &k.TotalPoints, &k.StreakDays, &k.Level, &k.Experience, &k.LastActiveAt, &k.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	k.ThemeMode = model.ThemeMode(theme)
	return &k, nil
}

// CreateFamily создаёт семью вместе с первым родителем в одной транзакции.
func (r *PostgresRepository) CreateFamily(ctx context.Context, familyName string, parent model.Parent) (*model.Parent, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	now := r.now()
	parent.ID = uuid.NewString()
	parent.FamilyID = uuid.NewString()
	parent.CreatedAt = now

	_, err = tx.Exec(ctx,
		`INSERT INTO families (id, name, created_at) VALUES ($1, $2, $3)`,
		parent.FamilyID, familyName, now,
	)
	if err != nil {
		return nil, mapError(err, "insert family")
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO parents (id, family_id, email, name, password_hash, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		parent.ID, parent.FamilyID, parent.Email, parent.Name, parent.PasswordHash, now,
	)
	if err != nil {
		return nil, mapError(err, "insert parent")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &parent, nil
}

// GetParentByEmail возвращает родителя по email.
func (r *PostgresRepository) GetParentByEmail(ctx context.Context, email string) (*model.Parent, error) {
	var p model.Parent
	err := r.db.QueryRow(ctx,
		`SELECT id, family_id, email, name, password_hash, created_at FROM parents WHERE email = $1`,
		email,
	).Scan(&p.ID, &p.FamilyID, &p.Email, &p.Name, &p.PasswordHash, &p.CreatedAt)
	if err != nil {
		return nil, mapError(err, "get parent")
	}
	return &p, nil
}

// CreateKid создаёт профиль ребёнка с нулевым счётом.
func (r *PostgresRepository) CreateKid(ctx context.Context, familyID string, p model.KidProfile) (*model.Kid, error) {
	now := r.now()
	row := r.db.QueryRow(ctx,
		`INSERT INTO kids (id, family_id, name, age, avatar_id, theme_mode, primary_color, secondary_color, last_active_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		 RETURNING `+kidCols,
		uuid.NewString(), familyID, p.Name, p.Age, p.AvatarID, string(p.ThemeMode), p.PrimaryColor, p.SecondaryColor, now,
	)

	kid, err := scanKid(row)
	if err != nil {
		return nil, mapError(err, "insert kid")
	}
	return kid, nil
}

// GetKid возвращает ребёнка семьи по идентификатору.
func (r *PostgresRepository) GetKid(ctx context.Context, familyID, kidID string) (*model.Kid, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+kidCols+` FROM kids WHERE id = $1 AND family_id = $2`,
		kidID, familyID,
	)

	kid, err := scanKid(row)
	if err != nil {
		return nil, mapError(err, "get kid")
	}
	return kid, nil
}

// ListKids возвращает детей семьи в порядке добавления.
func (r *PostgresRepository) ListKids(ctx context.Context, familyID string) ([]model.Kid, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+kidCols+` FROM kids WHERE family_id = $1 ORDER BY created_at ASC`,
		familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("select kids: %w", err)
	}
	defer rows.Close()

	var kids []model.Kid
	for rows.Next() {
		k, err := scanKid(rows)
		if err != nil {
			return nil, fmt.Errorf("scan kid: %w", err)
		}
		kids = append(kids, *k)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return kids, nil
}

// UpdateKidProfile изменяет поля профиля. Поля счёта не затрагиваются.
func (r *PostgresRepository) UpdateKidProfile(ctx context.Context, familyID, kidID string, p model.KidProfile) (*model.Kid, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE kids
		 SET name = $3, age = $4, avatar_id = $5, theme_mode = $6, primary_color = $7, secondary_color = $8
		 WHERE id = $1 AND family_id = $2
		 RETURNING `+kidCols,
		kidID, familyID, p.Name, p.Age, p.AvatarID, string(p.ThemeMode), p.PrimaryColor, p.SecondaryColor,
	)

	kid, err := scanKid(row)
	if err != nil {
		return nil, mapError(err, "update kid")
	}
	return kid, nil
}

// DeleteKid удаляет ребёнка вместе с его назначениями и обменами.
func (r *PostgresRepository) DeleteKid(ctx context.Context, familyID, kidID string) error {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM kids WHERE id = $1 AND family_id = $2`,
		kidID, familyID,
	)
	if err != nil {
		return mapError(err, "delete kid")
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const choreCols = `id, family_id, title, description, icon, difficulty, base_points, recurring, active, created_at`

func scanChore(row rowScanner) (*model.Chore, error) {
	var c model.Chore
	var difficulty, recurring string
	err := row.Scan(&c.ID, &c.FamilyID, &c.Title, &c.Description, &c.Icon, &difficulty, &c.BasePoints, &recurring, &c.Active, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	c.Difficulty = model.Difficulty(difficulty)
	c.Recurring = model.Recurrence(recurring)
	return &c, nil
}

// CreateChore добавляет обязанность в каталог семьи.
func (r *PostgresRepository) CreateChore(ctx context.Context, c model.Chore) (*model.Chore, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO chores (id, family_id, title, description, icon, difficulty, base_points, recurring, active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING `+choreCols,
		uuid.NewString(), c.FamilyID, c.Title, c.Description, c.Icon, string(c.Difficulty), c.BasePoints, string(c.Recurring), c.Active, r.now(),
	)

	chore, err := scanChore(row)
	if err != nil {
		return nil, mapError(err, "insert chore")
	}
	return chore, nil
}

// ListChores возвращает обязанности семьи в порядке добавления.
func (r *PostgresRepository) ListChores(ctx context.Context, familyID string) ([]model.Chore, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+choreCols+` FROM chores WHERE family_id = $1 ORDER BY created_at ASC`,
		familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("select chores: %w", err)
	}
	defer rows.Close()

	var chores []model.Chore
	for rows.Next() {
		c, err := scanChore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chore: %w", err)
		}
		chores = append(chores, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return chores, nil
}

const rewardCols = `id, family_id, title, description, cost, icon, active, created_at`

func scanReward(row rowScanner) (*model.Reward, error) {
	var rw model.Reward
	err := row.Scan(&rw.ID, &rw.FamilyID, &rw.Title, &rw.Description, &rw.Cost, &rw.Icon, &rw.Active, &rw.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rw, nil
}

// CreateReward добавляет награду в каталог семьи.
func (r *PostgresRepository) CreateReward(ctx context.Context, rw model.Reward) (*model.Reward, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO rewards (id, family_id, title, description, cost, icon, active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+rewardCols,
		uuid.NewString(), rw.FamilyID, rw.Title, rw.Description, rw.Cost, rw.Icon, rw.Active, r.now(),
	)

	reward, err := scanReward(row)
	if err != nil {
		return nil, mapError(err, "insert reward")
	}
	return reward, nil
}

// ListRewards возвращает награды семьи: сначала активные, затем по стоимости.
func (r *PostgresRepository) ListRewards(ctx context.Context, familyID string) ([]model.Reward, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+rewardCols+` FROM rewards WHERE family_id = $1 ORDER BY active DESC, cost ASC`,
		familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("select rewards: %w", err)
	}
	defer rows.Close()

	var rewards []model.Reward
	for rows.Next() {
		rw, err := scanReward(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reward: %w", err)
		}
		rewards = append(rewards, *rw)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return rewards, nil
}

// CreateAssignment назначает обязанность ребёнку. Обязанность и ребёнок должны
// принадлежать семье, иначе возвращается ErrNotFound.
func (r *PostgresRepository) CreateAssignment(ctx context.Context, familyID, choreID, kidID string, dueDate time.Time) (*model.ChoreAssignment, error) {
	a := model.ChoreAssignment{
		ID:        uuid.NewString(),
		ChoreID:   choreID,
		KidID:     kidID,
		DueDate:   dueDate,
		Status:    model.AssignmentPending,
		CreatedAt: r.now(),
	}

	cmdTag, err := r.db.Exec(ctx,
		`INSERT INTO chore_assignments (id, chore_id, kid_id, due_date, status, created_at)
		 SELECT $1::uuid, c.id, k.id, $5::timestamptz, $6::text, $7::timestamptz
		 FROM chores c
		 JOIN kids k ON k.id = $4 AND k.family_id = c.family_id
		 WHERE c.id = $3 AND c.family_id = $2`,
		a.ID, familyID, choreID, kidID, dueDate, string(a.Status), a.CreatedAt,
	)
	if err != nil {
		return nil, mapError(err, "insert assignment")
	}
	if cmdTag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	return &a, nil
}

// ListAssignments возвращает назначения семьи с учётом необязательного фильтра.
func (r *PostgresRepository) ListAssignments(ctx context.Context, familyID string, f model.AssignmentFilter) ([]model.ChoreAssignment, error) {
	q := psql.
		Select("a.id", "a.chore_id", "a.kid_id", "a.due_date", "a.status", "a.completed_at", "a.points_earned", "a.created_at").
		From("chore_assignments a").
		Join("chores c ON c.id = a.chore_id").
		Where(squirrel.Eq{"c.family_id": familyID}).
		OrderBy("a.due_date ASC", "a.created_at ASC")

	if f.KidID != "" {
		q = q.Where(squirrel.Eq{"a.kid_id": f.KidID})
	}
	if f.From != nil {
		q = q.Where(squirrel.GtOrEq{"a.due_date": *f.From})
	}
	if f.To != nil {
		q = q.Where(squirrel.Lt{"a.due_date": *f.To})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build assignments query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("select assignments: %w", err)
	}
	defer rows.Close()

	var res []model.ChoreAssignment
	for rows.Next() {
		var a model.ChoreAssignment
		var status string
		if err := rows.Scan(&a.ID, &a.ChoreID, &a.KidID, &a.DueDate, &status, &a.CompletedAt, &a.PointsEarned, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		a.Status = model.AssignmentStatus(status)
		res = append(res, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// ListRedemptions возвращает историю обменов ребёнка, начиная с последних.
// Для ребёнка чужой или несуществующей семьи возвращается ErrNotFound.
func (r *PostgresRepository) ListRedemptions(ctx context.Context, familyID, kidID string) ([]model.RedeemedReward, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM kids WHERE id = $1 AND family_id = $2)`,
		kidID, familyID,
	).Scan(&exists)
	if err != nil {
		return nil, mapError(err, "check kid")
	}
	if !exists {
		return nil, ErrNotFound
	}

	sql, args, err := psql.
		Select("rr.id", "rr.reward_id", "rr.kid_id", "rr.points_spent", "rr.redeemed_at").
		From("redeemed_rewards rr").
		Join("kids k ON k.id = rr.kid_id").
		Where(squirrel.Eq{"rr.kid_id": kidID, "k.family_id": familyID}).
		OrderBy("rr.redeemed_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build redemptions query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("select redemptions: %w", err)
	}
	defer rows.Close()

	var res []model.RedeemedReward
	for rows.Next() {
		var rr model.RedeemedReward
		if err := rows.Scan(&rr.ID, &rr.RewardID, &rr.KidID, &rr.PointsSpent, &rr.RedeemedAt); err != nil {
			return nil, fmt.Errorf("scan redemption: %w", err)
		}
		res = append(res, rr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}
