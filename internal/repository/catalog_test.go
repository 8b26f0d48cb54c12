package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	kidExistsSQL         = regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM kids WHERE id = $1 AND family_id = $2)`)
	selectRedemptionsSQL = regexp.QuoteMeta(`FROM redeemed_rewards rr`)
)

func TestListRedemptions_UnknownKidIsNotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(kidExistsSQL).
		WithArgs(kidID, familyID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	_, err := repo.ListRedemptions(context.Background(), familyID, kidID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRedemptions(t *testing.T) {
	repo, mock := newMockRepository(t)
	redeemedAt := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(kidExistsSQL).
		WithArgs(kidID, familyID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(selectRedemptionsSQL).
		WillReturnRows(pgxmock.NewRows([]string{"id", "reward_id", "kid_id", "points_spent", "redeemed_at"}).
			AddRow("r-1", rewardID, kidID, int64(100), redeemedAt))

	list, err := repo.ListRedemptions(context.Background(), familyID, kidID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(100), list[0].PointsSpent)
	assert.Equal(t, rewardID, list[0].RewardID)

	assert.NoError(t, mock.ExpectationsWereMet())
}
