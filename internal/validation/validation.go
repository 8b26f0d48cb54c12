// Package validation содержит функции валидации входных данных.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmeshcher/choreledger/internal/model"
)

// ErrInvalid оборачивает все ошибки некорректных входных данных.
var ErrInvalid = errors.New("validation failed")

const dateLayout = "2006-01-02"

var colorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// CanonicalID разбирает UUID в любой допустимой записи и возвращает его
// каноническую форму в нижнем регистре.
func CanonicalID(id string) (string, bool) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return u.String(), true
}

// ParseSettlementStatus разбирает целевой статус расчёта назначения.
// Допустимы только конечные статусы COMPLETED и SKIPPED.
func ParseSettlementStatus(s string) (model.AssignmentStatus, error) {
	switch st := model.AssignmentStatus(s); st {
	case model.AssignmentCompleted, model.AssignmentSkipped:
		return st, nil
	default:
		return "", invalid("status must be COMPLETED or SKIPPED")
	}
}

// ParseDate разбирает календарную дату YYYY-MM-DD или метку времени RFC 3339.
// Дата без времени трактуется как полночь в часовом поясе loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation(dateLayout, s, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, invalid("date %q must be YYYY-MM-DD or RFC 3339", s)
}

// Credentials проверяет данные для входа.
func Credentials(email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return invalid("email and password are required")
	}
	if !strings.Contains(email, "@") {
		return invalid("email is malformed")
	}
	return nil
}

// KidProfile проверяет профиль ребёнка и заполняет значения по умолчанию.
func KidProfile(p *model.KidProfile) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" || p.Age <= 0 {
		return invalid("name and age are required")
	}
	if p.Age > 120 {
		return invalid("age %d is out of range", p.Age)
	}

	if p.AvatarID == "" {
		p.AvatarID = "default"
	}
	if p.ThemeMode == "" {
		p.ThemeMode = model.ThemeNeutral
	}
	if p.PrimaryColor == "" {
		p.PrimaryColor = "#6366f1"
	}
	if p.SecondaryColor == "" {
		p.SecondaryColor = "#8b5cf6"
	}

	switch p.ThemeMode {
	case model.ThemeGirl, model.ThemeBoy, model.ThemeNeutral:
	default:
		return invalid("unknown theme mode %q", p.ThemeMode)
	}
	if !colorRe.MatchString(p.PrimaryColor) || !colorRe.MatchString(p.SecondaryColor) {
		return invalid("colors must be #rrggbb")
	}

	return nil
}

// Chore проверяет обязанность и заполняет значения по умолчанию.
func Chore(c *model.Chore) error {
	c.Title = strings.TrimSpace(c.Title)
	if c.Title == "" {
		return invalid("title is required")
	}
	if c.BasePoints < 0 {
		return invalid("base points must not be negative")
	}

	if c.Icon == "" {
		c.Icon = "star"
	}
	if c.Difficulty == "" {
		c.Difficulty = model.DifficultyEasy
	}

	switch c.Difficulty {
	case model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard:
	default:
		return invalid("unknown difficulty %q", c.Difficulty)
	}

	switch c.Recurring {
	case model.RecurrenceNone, model.RecurrenceDaily, model.RecurrenceWeekly, model.RecurrenceWeekdays:
	default:
		return invalid("unknown recurrence %q", c.Recurring)
	}

	return nil
}

// Reward проверяет награду и заполняет значения по умолчанию.
func Reward(r *model.Reward) error {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return invalid("title is required")
	}
	if r.Cost < 0 {
		return invalid("cost must not be negative")
	}
	if r.Icon == "" {
		r.Icon = "gift"
	}
	return nil
}
