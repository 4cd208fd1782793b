package game

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"mandisim/internal/snapshot"
)

// ContractStore persists the single player record and the contract
// collection. Every operation reads the full snapshot and overwrites it
// whole; the store's own lock keeps read-modify-write cycles from
// interleaving within a process.
type ContractStore struct {
	store snapshot.Store
	log   *slog.Logger
	mu    sync.Mutex
}

func NewContractStore(store snapshot.Store, logger *slog.Logger) *ContractStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContractStore{store: store, log: logger}
}

// Player loads the player record. ok is false when none has been created.
func (s *ContractStore) Player(ctx context.Context) (Player, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playerLocked(ctx)
}

func (s *ContractStore) playerLocked(ctx context.Context) (Player, bool, error) {
	raw, err := s.store.Load(ctx, snapshot.KeyPlayer)
	if err != nil {
		return Player{}, false, fmt.Errorf("load player: %w", err)
	}
	if len(raw) == 0 {
		return Player{}, false, nil
	}
	var p Player
	if err := json.Unmarshal(raw, &p); err != nil {
		s.log.Warn("player snapshot corrupt, treating as absent", "err", err)
		return Player{}, false, nil
	}
	return p, true, nil
}

// SavePlayer overwrites the player snapshot, stamping last-played time.
func (s *ContractStore) SavePlayer(ctx context.Context, p *Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.savePlayerLocked(ctx, p)
}

func (s *ContractStore) savePlayerLocked(ctx context.Context, p *Player) error {
	p.LastPlayed = time.Now()
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal player: %w", err)
	}
	if err := s.store.Save(ctx, snapshot.KeyPlayer, raw); err != nil {
		return fmt.Errorf("save player: %w", err)
	}
	return nil
}

// CreateNewPlayer seeds a fresh level-1 player with the starter bankroll and
// persists it.
func (s *ContractStore) CreateNewPlayer(ctx context.Context, name string) (Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	p := Player{
		ID:           "player_" + uuid.NewString(),
		Name:         name,
		Balance:      StarterBalance,
		Level:        1,
		XP:           0,
		Achievements: []string{},
		CreatedAt:    now,
		LastPlayed:   now,
	}
	if err := s.savePlayerLocked(ctx, &p); err != nil {
		return Player{}, err
	}
	return p, nil
}

// Contracts returns the full contract collection, oldest first.
func (s *ContractStore) Contracts(ctx context.Context) ([]Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contractsLocked(ctx)
}

func (s *ContractStore) contractsLocked(ctx context.Context) ([]Contract, error) {
	raw, err := s.store.Load(ctx, snapshot.KeyContracts)
	if err != nil {
		return nil, fmt.Errorf("load contracts: %w", err)
	}
	if len(raw) == 0 {
		return []Contract{}, nil
	}
	var out []Contract
	if err := json.Unmarshal(raw, &out); err != nil {
		s.log.Warn("contracts snapshot corrupt, treating as empty", "err", err)
		return []Contract{}, nil
	}
	return out, nil
}

func (s *ContractStore) saveContractsLocked(ctx context.Context, contracts []Contract) error {
	raw, err := json.Marshal(contracts)
	if err != nil {
		return fmt.Errorf("marshal contracts: %w", err)
	}
	if err := s.store.Save(ctx, snapshot.KeyContracts, raw); err != nil {
		return fmt.Errorf("save contracts: %w", err)
	}
	return nil
}

// SaveContract inserts or replaces a contract by id, assigning identity and a
// human-readable contract number to new records.
func (s *ContractStore) SaveContract(ctx context.Context, c *Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	contracts, err := s.contractsLocked(ctx)
	if err != nil {
		return err
	}
	if c.ID == "" {
		c.ID = "contract_" + uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	if c.Unit == "" {
		c.Unit = DefaultUnit
	}
	if c.ContractNumber == "" {
		c.ContractNumber = NewContractNumber(c.CreatedAt, len(contracts)+1)
	}

	for i := range contracts {
		if contracts[i].ID == c.ID {
			contracts[i] = *c
			return s.saveContractsLocked(ctx, contracts)
		}
	}
	contracts = append(contracts, *c)
	return s.saveContractsLocked(ctx, contracts)
}

// Contract looks up one contract by id; ok is false when absent.
func (s *ContractStore) Contract(ctx context.Context, id string) (Contract, bool, error) {
	contracts, err := s.Contracts(ctx)
	if err != nil {
		return Contract{}, false, err
	}
	for _, c := range contracts {
		if c.ID == id {
			return c, true, nil
		}
	}
	return Contract{}, false, nil
}

// DeleteContract removes a contract by id. Deleting an unknown id is a no-op.
func (s *ContractStore) DeleteContract(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	contracts, err := s.contractsLocked(ctx)
	if err != nil {
		return err
	}
	kept := contracts[:0]
	for _, c := range contracts {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	return s.saveContractsLocked(ctx, kept)
}

// ContractsByRole filters the collection by the player's side of the deal.
func (s *ContractStore) ContractsByRole(ctx context.Context, role Role) ([]Contract, error) {
	contracts, err := s.Contracts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Contract, 0, len(contracts))
	for _, c := range contracts {
		if c.PlayerRole == role {
			out = append(out, c)
		}
	}
	return out, nil
}

// PendingAIContracts returns bot-authored, buyer-facing contracts still
// awaiting a decision.
func (s *ContractStore) PendingAIContracts(ctx context.Context) ([]Contract, error) {
	contracts, err := s.Contracts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Contract, 0, len(contracts))
	for _, c := range contracts {
		if c.CreatedBy == AuthorAI && c.PlayerRole == RoleBuyer && c.Status == StatusPending {
			out = append(out, c)
		}
	}
	return out, nil
}

// ResetAll wipes the player and contract snapshots.
func (s *ContractStore) ResetAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Delete(ctx, snapshot.KeyPlayer); err != nil {
		return fmt.Errorf("reset player: %w", err)
	}
	if err := s.store.Delete(ctx, snapshot.KeyContracts); err != nil {
		return fmt.Errorf("reset contracts: %w", err)
	}
	return nil
}
