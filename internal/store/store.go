package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/proposely/internal/logger"
	"github.com/ignatzorin/proposely/internal/models"
	"github.com/ignatzorin/proposely/internal/pkg/apperror"
)

// Store хранит коллекцию сгенерированных предложений и состояние текущей генерации.
//
// Мутации сериализуются мьютексом и сразу пишутся в Persister.
// Ошибка записи возвращается вызывающему, но изменение в памяти остаётся.
// Флаг загрузки и последняя ошибка не сохраняются.
type Store struct {
	mu        sync.Mutex
	persister Persister

	proposals []models.Proposal
	ids       map[string]struct{}
	current   *models.Proposal
	loading   bool
	lastError string

	now func() time.Time
}

// New загружает сохранённый снимок. Отсутствующий снимок даёт пустой стор,
// повреждённый отбрасывается с предупреждением в лог.
func New(ctx context.Context, persister Persister) (*Store, error) {
	s := &Store{
		persister: persister,
		ids:       make(map[string]struct{}),
		now:       time.Now,
	}

	snap, err := persister.Load(ctx)
	if errors.Is(err, ErrCorruptSnapshot) {
		logger.WithFields(logrus.Fields{"error": err}).Warn("store: снимок повреждён, начинаем с пустой коллекции")
		return s, nil
	}
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeStorage, "не удалось загрузить сохранённые предложения")
	}
	if snap == nil {
		return s, nil
	}

	for _, p := range snap.Proposals {
		if _, dup := s.ids[p.ID]; dup || p.ID == "" {
			logger.WithFields(logrus.Fields{"id": p.ID}).Warn("store: пропущена запись с повторяющимся идентификатором")
			continue
		}
		s.ids[p.ID] = struct{}{}
		s.proposals = append(s.proposals, cloneProposal(p))
	}
	if snap.CurrentProposal != nil {
		cur := cloneProposal(*snap.CurrentProposal)
		s.current = &cur
	}
	return s, nil
}

// AddProposal строит предложение из ответа генерации и исходной формы.
func (s *Store) AddProposal(ctx context.Context, in models.GenerateProposalRequest, resp models.GenerateProposalResponse) (models.Proposal, error) {
	return s.Add(ctx, models.Proposal{
		GenerateProposalResponse: resp,
		ClientName:               in.ClientName,
		ProjectType:              in.ProjectType,
		CompanyName:              in.CompanyName,
	})
}

// Add добавляет предложение в конец коллекции и делает его текущим.
// Пустой или уже занятый ID заменяется новым; дедупликации по содержимому нет.
func (s *Store) Add(ctx context.Context, p models.Proposal) (models.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p = cloneProposal(p)
	if _, taken := s.ids[p.ID]; taken || p.ID == "" {
		if p.ID != "" {
			logger.WithFields(logrus.Fields{"id": p.ID}).Debug("store: идентификатор занят, назначаем новый")
		}
		p.ID = s.newID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now().UTC()
	}

	s.ids[p.ID] = struct{}{}
	s.proposals = append(s.proposals, p)
	cur := cloneProposal(p)
	s.current = &cur

	return cloneProposal(p), s.persistLocked(ctx)
}

// GetByID возвращает копию предложения или false, если его нет.
func (s *Store) GetByID(id string) (models.Proposal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexLocked(id); i >= 0 {
		return cloneProposal(s.proposals[i]), true
	}
	return models.Proposal{}, false
}

// List возвращает копию коллекции в порядке добавления.
func (s *Store) List() []models.Proposal {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Proposal, len(s.proposals))
	for i, p := range s.proposals {
		out[i] = cloneProposal(p)
	}
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.proposals)
}

// Remove удаляет предложение из коллекции.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return apperror.ErrProposalNotFound
	}
	s.proposals = append(s.proposals[:i:i], s.proposals[i+1:]...)
	delete(s.ids, id)
	if s.current != nil && s.current.ID == id {
		s.current = nil
	}
	return s.persistLocked(ctx)
}

// SetCurrent делает текущим существующее предложение.
func (s *Store) SetCurrent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return apperror.ErrProposalNotFound
	}
	cur := cloneProposal(s.proposals[i])
	s.current = &cur
	return s.persistLocked(ctx)
}

// ClearCurrent сбрасывает текущее предложение.
func (s *Store) ClearCurrent(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	return s.persistLocked(ctx)
}

func (s *Store) Current() (models.Proposal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return models.Proposal{}, false
	}
	return cloneProposal(*s.current), true
}

// SetLoading переключает общий флаг загрузки.
// Каждый SetLoading(true) должен завершаться SetLoading(false) при любом исходе.
func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// SetError запоминает последнее сообщение об ошибке; пустая строка сбрасывает его.
func (s *Store) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = msg
}

func (s *Store) ClearError() {
	s.SetError("")
}

// LastError возвращает последнее сообщение об ошибке генерации.
func (s *Store) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// Clear очищает коллекцию и текущее предложение.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.proposals = nil
	s.ids = make(map[string]struct{})
	s.current = nil
	return s.persistLocked(ctx)
}

func (s *Store) indexLocked(id string) int {
	if _, ok := s.ids[id]; !ok {
		return -1
	}
	for i := range s.proposals {
		if s.proposals[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) newID() string {
	for {
		id := uuid.NewString()
		if _, taken := s.ids[id]; !taken {
			return id
		}
	}
}

func (s *Store) persistLocked(ctx context.Context) error {
	snap := &Snapshot{Proposals: make([]models.Proposal, len(s.proposals))}
	copy(snap.Proposals, s.proposals)
	if s.current != nil {
		cur := *s.current
		snap.CurrentProposal = &cur
	}

	if err := s.persister.Save(ctx, snap); err != nil {
		logger.WithFields(logrus.Fields{"error": err}).Warn("store: не удалось сохранить снимок")
		return apperror.Wrap(err, apperror.ErrCodeStorage, "не удалось сохранить предложения")
	}
	return nil
}

// cloneProposal копирует таблицу стоимости, чтобы вызывающие не меняли внутреннее состояние.
func cloneProposal(p models.Proposal) models.Proposal {
	if p.PricingTable != nil {
		table := make([]models.PricingItem, len(p.PricingTable))
		for i, item := range p.PricingTable {
			if item.Amount != nil {
				amount := *item.Amount
				item.Amount = &amount
			}
			table[i] = item
		}
		p.PricingTable = table
	}
	return p
}
