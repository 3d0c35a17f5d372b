package mockbackend

import (
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/proposely/internal/models"
)

// DefaultProposalsLimit задаёт лимит генераций бесплатного плана.
const DefaultProposalsLimit = 10

var (
	ErrUserExists         = errors.New("пользователь с таким email уже существует")
	ErrInvalidCredentials = errors.New("неверный email или пароль")
	ErrUserNotFound       = errors.New("пользователь не найден")
)

type account struct {
	user         models.User
	passwordHash []byte
	proposals    int
}

// UserStore хранит пользователей в памяти с bcrypt хэшами паролей.
type UserStore struct {
	mu      sync.RWMutex
	byEmail map[string]*account
	byID    map[uuid.UUID]*account
	cost    int
}

func NewUserStore() *UserStore {
	return &UserStore{
		byEmail: make(map[string]*account),
		byID:    make(map[uuid.UUID]*account),
		cost:    bcrypt.DefaultCost,
	}
}

// Register создаёт пользователя на бесплатном плане.
func (s *UserStore) Register(name, email, password string) (models.User, uuid.UUID, error) {
	email = normalizeEmail(email)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return models.User{}, uuid.Nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[email]; exists {
		return models.User{}, uuid.Nil, ErrUserExists
	}

	id := uuid.New()
	acc := &account{
		user: models.User{
			ID:    id.String(),
			Email: email,
			Name:  strings.TrimSpace(name),
			Plan:  models.PlanFree,
		},
		passwordHash: hash,
	}
	s.byEmail[email] = acc
	s.byID[id] = acc

	return s.snapshot(acc), id, nil
}

// Authenticate проверяет пароль и возвращает ID пользователя.
func (s *UserStore) Authenticate(email, password string) (uuid.UUID, error) {
	s.mu.RLock()
	acc, ok := s.byEmail[normalizeEmail(email)]
	s.mu.RUnlock()
	if !ok {
		return uuid.Nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(password)); err != nil {
		return uuid.Nil, ErrInvalidCredentials
	}
	return uuid.MustParse(acc.user.ID), nil
}

// Get возвращает профиль со счётчиком генераций.
func (s *UserStore) Get(id uuid.UUID) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.byID[id]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return s.snapshot(acc), nil
}

// CountProposal увеличивает счётчик сгенерированных предложений.
func (s *UserStore) CountProposal(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if acc, ok := s.byID[id]; ok {
		acc.proposals++
	}
}

func (s *UserStore) snapshot(acc *account) models.User {
	user := acc.user
	count := acc.proposals
	limit := DefaultProposalsLimit
	user.ProposalsCount = &count
	user.ProposalsLimit = &limit
	return user
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
