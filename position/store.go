package position

// Store is the in-memory map of open positions, keyed by symbol. It is the
// single source of truth for "is this symbol currently traded". The engine
// mutates it from one goroutine only; no locking here.
type Store struct {
	bySymbol map[string]*Position
	order    []string // insertion order, for deterministic iteration
}

func NewStore() *Store {
	return &Store{bySymbol: make(map[string]*Position)}
}

// Add registers a new open position. It reports false if the symbol already
// has one; the existing position is left untouched.
func (s *Store) Add(p *Position) bool {
	if _, ok := s.bySymbol[p.Symbol]; ok {
		return false
	}
	s.bySymbol[p.Symbol] = p
	s.order = append(s.order, p.Symbol)
	return true
}

func (s *Store) Get(symbol string) (*Position, bool) {
	p, ok := s.bySymbol[symbol]
	return p, ok
}

// Remove takes the position out of the store. It reports false if the symbol
// has no open position, which callers treat as an idempotent no-op.
func (s *Store) Remove(symbol string) (*Position, bool) {
	p, ok := s.bySymbol[symbol]
	if !ok {
		return nil, false
	}
	delete(s.bySymbol, symbol)
	for i, sym := range s.order {
		if sym == symbol {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return p, true
}

func (s *Store) Count() int { return len(s.bySymbol) }

// Snapshot returns the open positions in insertion order. The slice is a
// copy, so the exit pipeline can iterate it while closes mutate the store.
func (s *Store) Snapshot() []*Position {
	out := make([]*Position, 0, len(s.bySymbol))
	for _, sym := range s.order {
		if p, ok := s.bySymbol[sym]; ok {
			out = append(out, p)
		}
	}
	return out
}
