// Package ledger remembers which events already produced mail so that a
// redelivered message is acknowledged without sending twice.
package ledger

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Ledger interface {
	// Claim records id and reports whether this call recorded it first.
	Claim(ctx context.Context, id, key string) (bool, error)
	// Release forgets id so a later redelivery can try again.
	Release(ctx context.Context, id string) error
}

type ProcessedEvent struct {
	ID          string `gorm:"primaryKey"`
	EventKey    string `gorm:"index"`
	ProcessedAt time.Time
}

func (ProcessedEvent) TableName() string { return "processed_events" }

type Postgres struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Migrate() error {
	return p.db.AutoMigrate(&ProcessedEvent{})
}

func (p *Postgres) Claim(ctx context.Context, id, key string) (bool, error) {
	rec := ProcessedEvent{ID: id, EventKey: key, ProcessedAt: time.Now().UTC()}
	res := p.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rec)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (p *Postgres) Release(ctx context.Context, id string) error {
	return p.db.WithContext(ctx).Delete(&ProcessedEvent{}, "id = ?", id).Error
}

// Memory is a process-local ledger; duplicates across restarts get through.
type Memory struct {
	mu   sync.Mutex
	seen map[string]string
}

func NewMemory() *Memory {
	return &Memory{seen: map[string]string{}}
}

func (m *Memory) Claim(_ context.Context, id, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.seen[id]; ok {
		return false, nil
	}
	m.seen[id] = key
	return true, nil
}

func (m *Memory) Release(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.seen, id)
	return nil
}
