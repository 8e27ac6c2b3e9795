package repomanager

import (
	"context"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
)

// MemoryRepositoryManager keeps everything in process; data is lost on exit.
type MemoryRepositoryManager struct {
	users *users.MemoryRepository
}

func NewMemoryRepositoryManager(now func() time.Time) *MemoryRepositoryManager {
	return &MemoryRepositoryManager{users: users.NewMemoryRepository(now)}
}

func (m *MemoryRepositoryManager) Users() users.Repository { return m.users }

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *MemoryRepositoryManager) Close() error { return nil }
