package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/choreledger/internal/model"
)

func TestParseSettlementStatus(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    model.AssignmentStatus
		wantErr bool
	}{
		{name: "completed", input: "COMPLETED", want: model.AssignmentCompleted},
		{name: "skipped", input: "SKIPPED", want: model.AssignmentSkipped},
		{name: "pending is not a target", input: "PENDING", wantErr: true},
		{name: "lower case", input: "completed", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSettlementStatus(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanonicalID(t *testing.T) {
	const want = "6f1c2b7e-6a4e-4d7b-9a53-0d5e4a1f9c11"

	for _, in := range []string{
		want,
		"6F1C2B7E-6A4E-4D7B-9A53-0D5E4A1F9C11",
		"{6f1c2b7e-6a4e-4d7b-9a53-0d5e4a1f9c11}",
		"urn:uuid:6f1c2b7e-6a4e-4d7b-9a53-0d5e4a1f9c11",
		"6f1c2b7e6a4e4d7b9a530d5e4a1f9c11",
	} {
		id, ok := CanonicalID(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, id, in)
	}

	_, ok := CanonicalID("cku12345")
	assert.False(t, ok)
	_, ok = CanonicalID("")
	assert.False(t, ok)
}

func TestParseDate(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)

	d, err := ParseDate("2026-03-10", loc)
	require.NoError(t, err)
	assert.True(t, d.Equal(time.Date(2026, 3, 10, 0, 0, 0, 0, loc)))
	assert.Equal(t, loc, d.Location())

	ts, err := ParseDate("2026-03-10T08:30:00Z", loc)
	require.NoError(t, err)
	assert.True(t, ts.Equal(time.Date(2026, 3, 10, 8, 30, 0, 0, time.UTC)))

	_, err = ParseDate("10.03.2026", loc)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestKidProfile_Defaults(t *testing.T) {
	p := model.KidProfile{Name: "  Emma ", Age: 8}

	require.NoError(t, KidProfile(&p))
	assert.Equal(t, "Emma", p.Name)
	assert.Equal(t, "default", p.AvatarID)
	assert.Equal(t, model.ThemeNeutral, p.ThemeMode)
	assert.Equal(t, "#6366f1", p.PrimaryColor)
	assert.Equal(t, "#8b5cf6", p.SecondaryColor)
}

func TestKidProfile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		p    model.KidProfile
	}{
		{name: "missing name", p: model.KidProfile{Age: 6}},
		{name: "missing age", p: model.KidProfile{Name: "Noah"}},
		{name: "unknown theme", p: model.KidProfile{Name: "Noah", Age: 6, ThemeMode: "DARK"}},
		{name: "bad color", p: model.KidProfile{Name: "Noah", Age: 6, PrimaryColor: "blue"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, KidProfile(&tt.p), ErrInvalid)
		})
	}
}

func TestChore(t *testing.T) {
	c := model.Chore{Title: "Make bed", BasePoints: 15}
	require.NoError(t, Chore(&c))
	assert.Equal(t, "star", c.Icon)
	assert.Equal(t, model.DifficultyEasy, c.Difficulty)

	assert.ErrorIs(t, Chore(&model.Chore{}), ErrInvalid)
	assert.ErrorIs(t, Chore(&model.Chore{Title: "x", BasePoints: -1}), ErrInvalid)
	assert.ErrorIs(t, Chore(&model.Chore{Title: "x", Difficulty: "EPIC"}), ErrInvalid)
	assert.ErrorIs(t, Chore(&model.Chore{Title: "x", Recurring: "monthly"}), ErrInvalid)
}

func TestReward(t *testing.T) {
	r := model.Reward{Title: "Movie night", Cost: 100}
	require.NoError(t, Reward(&r))
	assert.Equal(t, "gift", r.Icon)

	assert.ErrorIs(t, Reward(&model.Reward{Cost: 5}), ErrInvalid)
	assert.ErrorIs(t, Reward(&model.Reward{Title: "x", Cost: -5}), ErrInvalid)
}

func TestCredentials(t *testing.T) {
	assert.NoError(t, Credentials("parent@example.com", "secret"))
	assert.ErrorIs(t, Credentials("", "secret"), ErrInvalid)
	assert.ErrorIs(t, Credentials("parent@example.com", ""), ErrInvalid)
	assert.ErrorIs(t, Credentials("parent", "secret"), ErrInvalid)
}
