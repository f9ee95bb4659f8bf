package shared

import (
	"errors"
	"sync"

	"proxymanager/backend/domain"
)

var errReleased = errors.New("prepared options already released")

// MemoryStore is an in-process ProxyStore used for dry runs and tests. Writes behave like
// the OS store: a direct-only write leaves the stored server untouched.
type MemoryStore struct {
	mu       sync.Mutex
	settings map[domain.ConnectionProfile]domain.ProxyOptions
	profiles []domain.ConnectionProfile

	// Failure injection.
	PrepareErr error
	QueryErr   error
	EnumErr    error
	NotifyErr  error
	ApplyErr   map[domain.ConnectionProfile]error

	prepared    int
	released    int
	notified    int
	enumBuffers []int
	applied     []domain.ConnectionProfile
}

func NewMemoryStore(profiles ...domain.ConnectionProfile) *MemoryStore {
	return &MemoryStore{
		settings: make(map[domain.ConnectionProfile]domain.ProxyOptions),
		profiles: append([]domain.ConnectionProfile(nil), profiles...),
		ApplyErr: make(map[domain.ConnectionProfile]error),
	}
}

type memoryPrepared struct {
	store    *MemoryStore
	opts     domain.ProxyOptions
	released bool
}

func (p *memoryPrepared) Release() {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()
	if !p.released {
		p.released = true
		p.store.released++
	}
}

func (s *MemoryStore) Prepare(opts domain.ProxyOptions) (PreparedOptions, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.PrepareErr != nil {
		return nil, s.PrepareErr
	}
	s.prepared++
	return &memoryPrepared{store: s, opts: opts}, nil
}

func (s *MemoryStore) Apply(profile domain.ConnectionProfile, prepared PreparedOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := prepared.(*memoryPrepared)
	if !ok || p.store != s {
		return errors.New("options were not prepared by this store")
	}
	if p.released {
		return errReleased
	}
	if err := s.ApplyErr[profile]; err != nil {
		return err
	}
	current := s.settings[profile]
	current.Flags = p.opts.Flags
	if p.opts.WritesServer() {
		current.Server = p.opts.Server
	}
	s.settings[profile] = current
	s.applied = append(s.applied, profile)
	return nil
}

func (s *MemoryStore) Query(profile domain.ConnectionProfile) (domain.ProxyOptions, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.QueryErr != nil {
		return domain.ProxyOptions{}, s.QueryErr
	}
	opts, ok := s.settings[profile]
	if !ok {
		return domain.DirectOptions(), nil
	}
	return opts, nil
}

func (s *MemoryStore) EnumProfiles(buf []domain.ConnectionProfile) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enumBuffers = append(s.enumBuffers, len(buf))
	if s.EnumErr != nil {
		return 0, s.EnumErr
	}
	if len(s.profiles) > len(buf) {
		return len(s.profiles), ErrBufferTooSmall
	}
	return copy(buf, s.profiles), nil
}

func (s *MemoryStore) Notify() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.NotifyErr != nil {
		return s.NotifyErr
	}
	s.notified++
	return nil
}

// Set overwrites a profile's stored options, as an external writer would.
func (s *MemoryStore) Set(profile domain.ConnectionProfile, opts domain.ProxyOptions) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[profile] = opts
}

// Get returns a profile's stored options.
func (s *MemoryStore) Get(profile domain.ConnectionProfile) (domain.ProxyOptions, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	opts, ok := s.settings[profile]
	return opts, ok
}

// Applied returns the profiles written so far, in order.
func (s *MemoryStore) Applied() []domain.ConnectionProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ConnectionProfile(nil), s.applied...)
}

// EnumBuffers returns the buffer sizes EnumProfiles was called with.
func (s *MemoryStore) EnumBuffers() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.enumBuffers...)
}

// Counters returns how many option buffers were prepared and released and how many
// notifications were sent.
func (s *MemoryStore) Counters() (prepared, released, notified int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prepared, s.released, s.notified
}
