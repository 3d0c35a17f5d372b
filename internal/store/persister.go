package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ignatzorin/proposely/internal/models"
	"github.com/ignatzorin/proposely/internal/storage"
)

// StorageKey задаёт ключ, под которым хранится снимок коллекции.
const StorageKey = "proposely-storage"

// ErrCorruptSnapshot возвращается, если сохранённый снимок не удалось разобрать.
var ErrCorruptSnapshot = errors.New("store: повреждённый снимок")

// Snapshot описывает единственное состояние стора, переживающее перезапуск.
type Snapshot struct {
	Proposals       []models.Proposal `json:"proposals"`
	CurrentProposal *models.Proposal  `json:"current_proposal"`
}

// Persister читает и пишет снимок. Load возвращает nil без ошибки, если снимка нет.
type Persister interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
}

type kvPersister struct {
	kv  storage.KeyValueStore
	key string
}

// NewKVPersister хранит снимок как JSON в KeyValueStore.
func NewKVPersister(kv storage.KeyValueStore) Persister {
	return &kvPersister{kv: kv, key: StorageKey}
}

func (p *kvPersister) Load(ctx context.Context) (*Snapshot, error) {
	data, err := p.kv.Get(ctx, p.key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	return &snap, nil
}

func (p *kvPersister) Save(ctx context.Context, snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("store: сериализация снимка: %w", err)
	}
	return p.kv.Set(ctx, p.key, data)
}
