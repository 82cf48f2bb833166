// Package memory is an in-process implementation of every repository port.
// It backs STORAGE_DRIVER=memory for local runs and the API tests.
package memory

import (
	"sync"

	"github.com/google/uuid"

	"github.com/quotecraft/quoting-system/internal/core/domain"
)

// Store holds all collections behind a single mutex.
type Store struct {
	mu sync.RWMutex

	users      map[string]*domain.User
	tokens     map[string]*domain.RefreshToken
	prompts    map[string]*domain.SystemPrompt
	industries map[string]*domain.Industry
	companies  map[string]*domain.Company
	clients    map[string]*domain.Client
	quotes     map[string]*domain.Quote
}

func NewStore() *Store {
	return &Store{
		users:      make(map[string]*domain.User),
		tokens:     make(map[string]*domain.RefreshToken),
		prompts:    make(map[string]*domain.SystemPrompt),
		industries: make(map[string]*domain.Industry),
		companies:  make(map[string]*domain.Company),
		clients:    make(map[string]*domain.Client),
		quotes:     make(map[string]*domain.Quote),
	}
}

func (s *Store) Users() *UserRepository          { return &UserRepository{s: s} }
func (s *Store) Tokens() *TokenRepository        { return &TokenRepository{s: s} }
func (s *Store) Prompts() *PromptRepository      { return &PromptRepository{s: s} }
func (s *Store) Industries() *IndustryRepository { return &IndustryRepository{s: s} }
func (s *Store) Companies() *CompanyRepository   { return &CompanyRepository{s: s} }
func (s *Store) Clients() *ClientRepository      { return &ClientRepository{s: s} }
func (s *Store) Quotes() *QuoteRepository        { return &QuoteRepository{s: s} }

func newID() string { return uuid.NewString() }
