package handler

import (
	"time"

	"github.com/mmeshcher/choreledger/internal/leveling"
	"github.com/mmeshcher/choreledger/internal/model"
)

type kidResponse struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Age               int       `json:"age"`
	AvatarID          string    `json:"avatarId"`
	ThemeMode         string    `json:"themeMode"`
	PrimaryColor      string    `json:"primaryColor"`
	SecondaryColor    string    `json:"secondaryColor"`
	Points            int64     `json:"points"`
	TotalPoints       int64     `json:"totalPoints"`
	StreakDays        int       `json:"streakDays"`
	Level             int       `json:"level"`
	Experience        int64     `json:"experience"`
	NextLevelAt       int64     `json:"nextLevelAt"`
	PointsToNextLevel int64     `json:"pointsToNextLevel"`
	LastActiveAt      time.Time `json:"lastActiveAt"`
	CreatedAt         time.Time `json:"createdAt"`
}

func newKidResponse(k *model.Kid) kidResponse {
	p := leveling.ProgressFor(k.TotalPoints)
	return kidResponse{
		ID:                k.ID,
		Name:              k.Name,
		Age:               k.Age,
		AvatarID:          k.AvatarID,
		ThemeMode:         string(k.ThemeMode),
		PrimaryColor:      k.PrimaryColor,
		SecondaryColor:    k.SecondaryColor,
		Points:            k.Points,
		TotalPoints:       k.TotalPoints,
		StreakDays:        k.StreakDays,
		Level:             k.Level,
		Experience:        k.Experience,
		NextLevelAt:       p.NextLevelAt,
		PointsToNextLevel: p.ToNextLevel,
		LastActiveAt:      k.LastActiveAt,
		CreatedAt:         k.CreatedAt,
	}
}

type choreResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Difficulty  string    `json:"difficulty"`
	BasePoints  int64     `json:"basePoints"`
	Recurring   string    `json:"recurring,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
}

func newChoreResponse(c *model.Chore) choreResponse {
	return choreResponse{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Icon:        c.Icon,
		Difficulty:  string(c.Difficulty),
		BasePoints:  c.BasePoints,
		Recurring:   string(c.Recurring),
		Active:      c.Active,
		CreatedAt:   c.CreatedAt,
	}
}

type rewardResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Cost        int64     `json:"cost"`
	Icon        string    `json:"icon"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
}

func newRewardResponse(r *model.Reward) rewardResponse {
	return rewardResponse{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Cost:        r.Cost,
		Icon:        r.Icon,
		Active:      r.Active,
		CreatedAt:   r.CreatedAt,
	}
}

type assignmentResponse struct {
	ID           string       `json:"id"`
	ChoreID      string       `json:"choreId"`
	KidID        string       `json:"kidId"`
	DueDate      time.Time    `json:"dueDate"`
	Status       string       `json:"status"`
	CompletedAt  *time.Time   `json:"completedAt"`
	PointsEarned int64        `json:"pointsEarned"`
	CreatedAt    time.Time    `json:"createdAt"`
	Kid          *kidResponse `json:"kid,omitempty"`
}

func newAssignmentResponse(a *model.ChoreAssignment) assignmentResponse {
	return assignmentResponse{
		ID:           a.ID,
		ChoreID:      a.ChoreID,
		KidID:        a.KidID,
		DueDate:      a.DueDate,
		Status:       string(a.Status),
		CompletedAt:  a.CompletedAt,
		PointsEarned: a.PointsEarned,
		CreatedAt:    a.CreatedAt,
	}
}

type redemptionResponse struct {
	ID          string    `json:"id"`
	PointsSpent int64     `json:"pointsSpent"`
	RewardID    string    `json:"rewardId"`
	KidID       string    `json:"kidId"`
	Timestamp   time.Time `json:"timestamp"`
}

func newRedemptionResponse(r *model.RedeemedReward) redemptionResponse {
	return redemptionResponse{
		ID:          r.ID,
		PointsSpent: r.PointsSpent,
		RewardID:    r.RewardID,
		KidID:       r.KidID,
		Timestamp:   r.RedeemedAt,
	}
}
