// Package service реализует бизнес-логику учёта баллов за домашние обязанности.
//
// Баланс ребёнка (баллы, опыт, уровень) изменяется только двумя методами:
// SettleAssignment и RedeemReward.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmeshcher/choreledger/internal/metrics"
	"github.com/mmeshcher/choreledger/internal/model"
	"github.com/mmeshcher/choreledger/internal/repository"
	"github.com/mmeshcher/choreledger/internal/streak"
	"github.com/mmeshcher/choreledger/internal/validation"
)

// ErrInvalidCredentials возвращается при неверном email или пароле.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error
	Ping(ctx context.Context) error

	CreateFamily(ctx context.Context, familyName string, parent model.Parent) (*model.Parent, error)
	GetParentByEmail(ctx context.Context, email string) (*model.Parent, error)

	CreateKid(ctx context.Context, familyID string, p model.KidProfile) (*model.Kid, error)
	GetKid(ctx context.Context, familyID, kidID string) (*model.Kid, error)
	ListKids(ctx context.Context, familyID string) ([]model.Kid, error)
	UpdateKidProfile(ctx context.Context, familyID, kidID string, p model.KidProfile) (*model.Kid, error)
	DeleteKid(ctx context.Context, familyID, kidID string) error

	CreateChore(ctx context.Context, c model.Chore) (*model.Chore, error)
	ListChores(ctx context.Context, familyID string) ([]model.Chore, error)
	CreateReward(ctx context.Context, r model.Reward) (*model.Reward, error)
	ListRewards(ctx context.Context, familyID string) ([]model.Reward, error)

	CreateAssignment(ctx context.Context, familyID, choreID, kidID string, dueDate time.Time) (*model.ChoreAssignment, error)
	ListAssignments(ctx context.Context, familyID string, f model.AssignmentFilter) ([]model.ChoreAssignment, error)
	ListRedemptions(ctx context.Context, familyID, kidID string) ([]model.RedeemedReward, error)

	SettleAssignment(ctx context.Context, familyID, assignmentID string, status model.AssignmentStatus) (*model.Settlement, error)
	RedeemReward(ctx context.Context, familyID, rewardID, kidID string) (*model.RedeemedReward, error)
	ResetStreaks(ctx context.Context, cutoff time.Time) (int64, error)
}

// Service содержит бизнес-логику сервиса.
type Service struct {
	repo Repository
	kids *kidCache
	now  func() time.Time
}

// NewService создаёт сервис с указанным репозиторием и параметрами кэша детей.
// При cacheSize <= 0 кэш отключён.
func NewService(repo Repository, cacheSize int, cacheTTL time.Duration) *Service {
	return &Service{
		repo: repo,
		kids: newKidCache(cacheSize, cacheTTL),
		now:  time.Now,
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// Ping проверяет доступность хранилища.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// RegisterParent создаёт семью и родителя и возвращает идентификатор семьи.
func (s *Service) RegisterParent(ctx context.Context, email, password, name, familyName string) (string, error) {
	if err := validation.Credentials(email, password); err != nil {
		return "", err
	}
	name = strings.TrimSpace(name)
	familyName = strings.TrimSpace(familyName)
	if name == "" || familyName == "" {
		return "", fmt.Errorf("%w: name and family name are required", validation.ErrInvalid)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return "", err
	}

	p, err := s.repo.CreateFamily(ctx, familyName, model.Parent{
		Email:        normalizeEmail(email),
		Name:         name,
		PasswordHash: hash,
	})
	if err != nil {
		return "", err
	}
	return p.FamilyID, nil
}

// Authenticate проверяет email и пароль родителя и возвращает идентификатор его семьи.
func (s *Service) Authenticate(ctx context.Context, email, password string) (string, error) {
	p, err := s.repo.GetParentByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword(p.PasswordHash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return p.FamilyID, nil
}

func hashPassword(password string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: password is too long", validation.ErrInvalid)
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SettleAssignment переводит назначение в статус COMPLETED или SKIPPED.
// При выполнении ребёнку начисляются баллы обязанности.
func (s *Service) SettleAssignment(ctx context.Context, familyID, assignmentID string, status model.AssignmentStatus) (*model.Settlement, error) {
	res, err := s.settle(ctx, familyID, assignmentID, status)
	metrics.SettlementsTotal.WithLabelValues(statusLabel(status), resultLabel(err)).Inc()
	if err != nil {
		return nil, err
	}

	if res.Kid != nil {
		s.kids.invalidate(familyID, res.Kid.ID)
		metrics.PointsAwardedTotal.Add(float64(res.Assignment.PointsEarned))
	}
	return res, nil
}

func (s *Service) settle(ctx context.Context, familyID, assignmentID string, status model.AssignmentStatus) (*model.Settlement, error) {
	if _, err := validation.ParseSettlementStatus(string(status)); err != nil {
		return nil, err
	}
	id, ok := validation.CanonicalID(assignmentID)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s.repo.SettleAssignment(ctx, familyID, id, status)
}

// RedeemReward обменивает баллы ребёнка на награду.
func (s *Service) RedeemReward(ctx context.Context, familyID, rewardID, kidID string) (*model.RedeemedReward, error) {
	rec, err := s.redeem(ctx, familyID, rewardID, kidID)
	metrics.RedemptionsTotal.WithLabelValues(resultLabel(err)).Inc()
	if err != nil {
		return nil, err
	}

	s.kids.invalidate(familyID, rec.KidID)
	metrics.PointsSpentTotal.Add(float64(rec.PointsSpent))
	return rec, nil
}

func (s *Service) redeem(ctx context.Context, familyID, rewardID, kidID string) (*model.RedeemedReward, error) {
	if rewardID == "" || kidID == "" {
		return nil, fmt.Errorf("%w: rewardId and kidId are required", validation.ErrInvalid)
	}
	rid, ok := validation.CanonicalID(rewardID)
	if !ok {
		return nil, repository.ErrNotFound
	}
	kid, ok := validation.CanonicalID(kidID)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s.repo.RedeemReward(ctx, familyID, rid, kid)
}

// ResetStreaks обнуляет серии детей, пропустивших вчерашний день.
func (s *Service) ResetStreaks(ctx context.Context) (int64, error) {
	n, err := s.repo.ResetStreaks(ctx, streak.ResetCutoff(s.now()))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.kids.purge()
		metrics.StreaksResetTotal.Add(float64(n))
	}
	return n, nil
}

// GetKid возвращает ребёнка семьи. Результат кэшируется до ближайшего изменения.
func (s *Service) GetKid(ctx context.Context, familyID, kidID string) (*model.Kid, error) {
	id, ok := validation.CanonicalID(kidID)
	if !ok {
		return nil, repository.ErrNotFound
	}

	if kid, ok := s.kids.get(familyID, id); ok {
		return &kid, nil
	}

	gen := s.kids.generation()
	kid, err := s.repo.GetKid(ctx, familyID, id)
	if err != nil {
		return nil, err
	}
	s.kids.put(*kid, gen)
	return kid, nil
}

// ListKids возвращает детей семьи.
func (s *Service) ListKids(ctx context.Context, familyID string) ([]model.Kid, error) {
	return s.repo.ListKids(ctx, familyID)
}

// CreateKid добавляет ребёнка в семью.
func (s *Service) CreateKid(ctx context.Context, familyID string, p model.KidProfile) (*model.Kid, error) {
	if err := validation.KidProfile(&p); err != nil {
		return nil, err
	}
	return s.repo.CreateKid(ctx, familyID, p)
}

// UpdateKidProfile изменяет профиль ребёнка.
func (s *Service) UpdateKidProfile(ctx context.Context, familyID, kidID string, p model.KidProfile) (*model.Kid, error) {
	id, ok := validation.CanonicalID(kidID)
	if !ok {
		return nil, repository.ErrNotFound
	}
	if err := validation.KidProfile(&p); err != nil {
		return nil, err
	}

	kid, err := s.repo.UpdateKidProfile(ctx, familyID, id, p)
	s.kids.invalidate(familyID, id)
	return kid, err
}

// DeleteKid удаляет ребёнка семьи.
func (s *Service) DeleteKid(ctx context.Context, familyID, kidID string) error {
	id, ok := validation.CanonicalID(kidID)
	if !ok {
		return repository.ErrNotFound
	}

	err := s.repo.DeleteKid(ctx, familyID, id)
	s.kids.invalidate(familyID, id)
	return err
}

// CreateChore добавляет обязанность в каталог семьи.
func (s *Service) CreateChore(ctx context.Context, familyID string, c model.Chore) (*model.Chore, error) {
	c.FamilyID = familyID
	if err := validation.Chore(&c); err != nil {
		return nil, err
	}
	return s.repo.CreateChore(ctx, c)
}

// ListChores возвращает обязанности семьи.
func (s *Service) ListChores(ctx context.Context, familyID string) ([]model.Chore, error) {
	return s.repo.ListChores(ctx, familyID)
}

// CreateReward добавляет награду в каталог семьи.
func (s *Service) CreateReward(ctx context.Context, familyID string, r model.Reward) (*model.Reward, error) {
	r.FamilyID = familyID
	if err := validation.Reward(&r); err != nil {
		return nil, err
	}
	return s.repo.CreateReward(ctx, r)
}

// ListRewards возвращает награды семьи.
func (s *Service) ListRewards(ctx context.Context, familyID string) ([]model.Reward, error) {
	return s.repo.ListRewards(ctx, familyID)
}

// AssignChore создаёт назначение обязанности ребёнку на дату.
func (s *Service) AssignChore(ctx context.Context, familyID, choreID, kidID string, dueDate time.Time) (*model.ChoreAssignment, error) {
	if choreID == "" || kidID == "" || dueDate.IsZero() {
		return nil, fmt.Errorf("%w: choreId, kidId and dueDate are required", validation.ErrInvalid)
	}
	cid, ok := validation.CanonicalID(choreID)
	if !ok {
		return nil, repository.ErrNotFound
	}
	kid, ok := validation.CanonicalID(kidID)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s.repo.CreateAssignment(ctx, familyID, cid, kid, dueDate)
}

// ListAssignments возвращает назначения семьи. Если day задан, выбираются
// назначения только на этот календарный день.
func (s *Service) ListAssignments(ctx context.Context, familyID, kidID string, day *time.Time) ([]model.ChoreAssignment, error) {
	var f model.AssignmentFilter

	if kidID != "" {
		id, ok := validation.CanonicalID(kidID)
		if !ok {
			return nil, nil
		}
		f.KidID = id
	}

	if day != nil {
		from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
		to := from.AddDate(0, 0, 1)
		f.From = &from
		f.To = &to
	}

	return s.repo.ListAssignments(ctx, familyID, f)
}

// ListRedemptions возвращает историю обменов ребёнка.
func (s *Service) ListRedemptions(ctx context.Context, familyID, kidID string) ([]model.RedeemedReward, error) {
	id, ok := validation.CanonicalID(kidID)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s.repo.ListRedemptions(ctx, familyID, id)
}

func statusLabel(status model.AssignmentStatus) string {
	if _, err := validation.ParseSettlementStatus(string(status)); err != nil {
		return "invalid"
	}
	return string(status)
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, repository.ErrNotFound):
		return metrics.ResultNotFound
	case errors.Is(err, repository.ErrInvalidTransition):
		return metrics.ResultInvalidTransition
	case errors.Is(err, repository.ErrInsufficientBalance):
		return metrics.ResultInsufficientBalance
	case errors.Is(err, validation.ErrInvalid):
		return metrics.ResultValidation
	default:
		return metrics.ResultError
	}
}
