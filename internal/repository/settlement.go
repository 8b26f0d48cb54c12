package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/choreledger/internal/leveling"
	"github.com/mmeshcher/choreledger/internal/model"
	"github.com/mmeshcher/choreledger/internal/streak"
)

// SettleAssignment переводит назначение из PENDING в конечный статус и, если обязанность
// выполнена, начисляет ребёнку баллы в той же транзакции.
//
// Строка назначения блокируется до проверки статуса, поэтому из двух параллельных
// расчётов одного назначения успешен только один, второй получает ErrInvalidTransition.
func (r *PostgresRepository) SettleAssignment(ctx context.Context, familyID, assignmentID string, status model.AssignmentStatus) (*model.Settlement, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		a          model.ChoreAssignment
		current    string
		basePoints int64
	)
	err = tx.QueryRow(ctx,
		`SELECT a.id, a.chore_id, a.kid_id, a.due_date, a.status, a.created_at, c.base_points
		 FROM chore_assignments a
		 JOIN chores c ON c.id = a.chore_id
		 WHERE a.id = $1 AND c.family_id = $2
		 FOR UPDATE OF a`,
		assignmentID, familyID,
	).Scan(&a.ID, &a.ChoreID, &a.KidID, &a.DueDate, &current, &a.CreatedAt, &basePoints)
	if err != nil {
		return nil, mapError(err, "select assignment")
	}

	if model.AssignmentStatus(current) != model.AssignmentPending {
		return nil, ErrInvalidTransition
	}

	now := r.now()

	var completedAt *time.Time
	var pointsEarned int64
	if status == model.AssignmentCompleted {
		completedAt = &now
		pointsEarned = basePoints
	}

	cmdTag, err := tx.Exec(ctx,
		`UPDATE chore_assignments
		 SET status = $3, completed_at = $4, points_earned = $5
		 WHERE id = $1 AND status = $2`,
		a.ID, string(model.AssignmentPending), string(status), completedAt, pointsEarned,
	)
	if err != nil {
		return nil, mapError(err, "update assignment")
	}
	if cmdTag.RowsAffected() != 1 {
		return nil, ErrInvalidTransition
	}

	a.Status = status
	a.CompletedAt = completedAt
	a.PointsEarned = pointsEarned

	res := &model.Settlement{Assignment: a}

	if status == model.AssignmentCompleted {
		kid, err := creditKid(ctx, tx, a.KidID, pointsEarned, now)
		if err != nil {
			return nil, err
		}
		res.Kid = kid
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return res, nil
}

// creditKid начисляет баллы и опыт, пересчитывает уровень и серию дней.
// Строка ребёнка блокируется, чтобы параллельные начисления не терялись.
func creditKid(ctx context.Context, tx pgx.Tx, kidID string, points int64, now time.Time) (*model.Kid, error) {
	var (
		totalPoints  int64
		streakDays   int
		lastActiveAt time.Time
	)
	err := tx.QueryRow(ctx,
		`SELECT total_points, streak_days, last_active_at FROM kids WHERE id = $1 FOR UPDATE`,
		kidID,
	).Scan(&totalPoints, &streakDays, &lastActiveAt)
	if err != nil {
		return nil, mapError(err, "lock kid for update")
	}

	newTotal := totalPoints + points

	row := tx.QueryRow(ctx,
		`UPDATE kids
		 SET points = points + $2,
		     total_points = $3,
		     experience = experience + $2,
		     level = $4,
		     streak_days = $5,
		     last_active_at = $6
		 WHERE id = $1
		 RETURNING `+kidCols,
		kidID, points, newTotal, leveling.For(newTotal), streak.Next(streakDays, lastActiveAt, now), now,
	)

	kid, err := scanKid(row)
	if err != nil {
		return nil, mapError(err, "credit kid")
	}
	return kid, nil
}

// RedeemReward списывает стоимость награды с баланса ребёнка и сохраняет запись об обмене.
//
// Проверки выполняются по порядку: награда в семье, ребёнок в семье, достаточность баланса.
// Строка ребёнка блокируется на время проверки и списания.
func (r *PostgresRepository) RedeemReward(ctx context.Context, familyID, rewardID, kidID string) (*model.RedeemedReward, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var cost int64
	err = tx.QueryRow(ctx,
		`SELECT cost FROM rewards WHERE id = $1 AND family_id = $2`,
		rewardID, familyID,
	).Scan(&cost)
	if err != nil {
		return nil, mapError(err, "select reward")
	}

	var points int64
	err = tx.QueryRow(ctx,
		`SELECT points FROM kids WHERE id = $1 AND family_id = $2 FOR UPDATE`,
		kidID, familyID,
	).Scan(&points)
	if err != nil {
		return nil, mapError(err, "lock kid for update")
	}

	if points < cost {
		return nil, &InsufficientBalanceError{Balance: points, Cost: cost}
	}

	cmdTag, err := tx.Exec(ctx,
		`UPDATE kids SET points = points - $2 WHERE id = $1 AND points >= $2`,
		kidID, cost,
	)
	if err != nil {
		return nil, mapError(err, "debit kid")
	}
	if cmdTag.RowsAffected() != 1 {
		return nil, &InsufficientBalanceError{Balance: points, Cost: cost}
	}

	rec := &model.RedeemedReward{
		ID:          uuid.NewString(),
		RewardID:    rewardID,
		KidID:       kidID,
		PointsSpent: cost,
		RedeemedAt:  r.now(),
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO redeemed_rewards (id, reward_id, kid_id, points_spent, redeemed_at) VALUES ($1, $2, $3, $4, $5)`,
		rec.ID, rec.RewardID, rec.KidID, rec.PointsSpent, rec.RedeemedAt,
	)
	if err != nil {
		return nil, mapError(err, "insert redemption")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return rec, nil
}

// ResetStreaks обнуляет серии детей, не проявлявших активности с момента cutoff.
func (r *PostgresRepository) ResetStreaks(ctx context.Context, cutoff time.Time) (int64, error) {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE kids SET streak_days = 0 WHERE streak_days > 0 AND last_active_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, mapError(err, "reset streaks")
	}
	return cmdTag.RowsAffected(), nil
}
