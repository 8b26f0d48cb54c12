// Package model содержит доменные сущности семейного трекера обязанностей.
package model

import "time"

// Family объединяет родителей и данные их детей. Единица разграничения доступа.
type Family struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Parent представляет зарегистрированного родителя, владеющего семьёй.
type Parent struct {
	ID           string
	FamilyID     string
	Email        string
	Name         string
	PasswordHash []byte
	CreatedAt    time.Time
}

// ThemeMode описывает оформление профиля ребёнка.
type ThemeMode string

const (
	ThemeGirl    ThemeMode = "GIRL"
	ThemeBoy     ThemeMode = "BOY"
	ThemeNeutral ThemeMode = "NEUTRAL"
)

// Kid описывает ребёнка и его счёт баллов.
//
// Поля Points, TotalPoints, Experience и Level изменяются только при
// расчёте выполнения задания и при обмене баллов на награду.
type Kid struct {
	ID             string
	FamilyID       string
	Name           string
	Age            int
	AvatarID       string
	ThemeMode      ThemeMode
	PrimaryColor   string
	SecondaryColor string
	Points         int64
	TotalPoints    int64
	StreakDays     int
	Level          int
	Experience     int64
	LastActiveAt   time.Time
	CreatedAt      time.Time
}

// KidProfile содержит редактируемые поля профиля ребёнка без полей счёта.
type KidProfile struct {
	Name           string
	Age            int
	AvatarID       string
	ThemeMode      ThemeMode
	PrimaryColor   string
	SecondaryColor string
}

// Difficulty описывает сложность обязанности.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// Recurrence описывает правило повторения обязанности.
type Recurrence string

const (
	RecurrenceNone     Recurrence = ""
	RecurrenceDaily    Recurrence = "daily"
	RecurrenceWeekly   Recurrence = "weekly"
	RecurrenceWeekdays Recurrence = "weekdays"
)

// Chore описывает шаблон обязанности семьи.
type Chore struct {
	ID          string
	FamilyID    string
	Title       string
	Description string
	Icon        string
	Difficulty  Difficulty
	BasePoints  int64
	Recurring   Recurrence
	Active      bool
	CreatedAt   time.Time
}

// AssignmentStatus описывает статус назначенной обязанности.
type AssignmentStatus string

const (
	AssignmentPending   AssignmentStatus = "PENDING"
	AssignmentCompleted AssignmentStatus = "COMPLETED"
	AssignmentSkipped   AssignmentStatus = "SKIPPED"
)

// ChoreAssignment описывает один экземпляр обязанности для ребёнка на конкретную дату.
type ChoreAssignment struct {
	ID           string
	ChoreID      string
	KidID        string
	DueDate      time.Time
	Status       AssignmentStatus
	CompletedAt  *time.Time
	PointsEarned int64
	CreatedAt    time.Time
}

// AssignmentFilter задаёт необязательные условия выборки назначений.
type AssignmentFilter struct {
	KidID string
	From  *time.Time
	To    *time.Time
}

// Settlement содержит результат расчёта назначения. Kid заполнен только при выполнении.
type Settlement struct {
	Assignment ChoreAssignment
	Kid        *Kid
}

// Reward описывает награду из каталога семьи.
type Reward struct {
	ID          string
	FamilyID    string
	Title       string
	Description string
	Cost        int64
	Icon        string
	Active      bool
	CreatedAt   time.Time
}

// RedeemedReward хранит запись о единичном обмене баллов на награду.
type RedeemedReward struct {
	ID          string
	RewardID    string
	KidID       string
	PointsSpent int64
	RedeemedAt  time.Time
}
