package store

import (
	"context"
	"sync"

	"playfinder/internal/user/models"
	id "playfinder/pkg/domain"
	"playfinder/pkg/platform/sentinel"
)

// InMemory keeps users and their saved places in maps guarded by one mutex.
type InMemory struct {
	mu      sync.RWMutex
	users   map[id.UserID]models.User
	byEmail map[string]id.UserID
	byName  map[string]id.UserID
	byToken map[string]id.UserID
	saved   map[id.UserID][]id.PlaceID
}

var _ Store = (*InMemory)(nil)

func NewInMemory() *InMemory {
	return &InMemory{
		users:   make(map[id.UserID]models.User),
		byEmail: make(map[string]id.UserID),
		byName:  make(map[string]id.UserID),
		byToken: make(map[string]id.UserID),
		saved:   make(map[id.UserID][]id.PlaceID),
	}
}

func (s *InMemory) Insert(_ context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byEmail[user.Email]; taken {
		return sentinel.ErrConflict
	}
	if _, taken := s.byName[user.Name]; taken {
		return sentinel.ErrConflict
	}
	s.users[user.ID] = user
	s.byEmail[user.Email] = user.ID
	s.byName[user.Name] = user.ID
	if user.AccessToken != "" {
		s.byToken[user.AccessToken] = user.ID
	}
	return nil
}

func (s *InMemory) FindByID(_ context.Context, userID id.UserID) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.users[userID]; ok {
		return user, nil
	}
	return models.User{}, sentinel.ErrNotFound
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if userID, ok := s.byEmail[email]; ok {
		return s.users[userID], nil
	}
	return models.User{}, sentinel.ErrNotFound
}

func (s *InMemory) FindByToken(_ context.Context, token string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if userID, ok := s.byToken[token]; ok {
		return s.users[userID], nil
	}
	return models.User{}, sentinel.ErrNotFound
}

func (s *InMemory) SetToken(_ context.Context, userID id.UserID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if user.AccessToken != "" {
		delete(s.byToken, user.AccessToken)
	}
	user.AccessToken = token
	s.users[userID] = user
	if token != "" {
		s.byToken[token] = userID
	}
	return nil
}

func (s *InMemory) SavePlace(_ context.Context, userID id.UserID, placeID id.PlaceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return sentinel.ErrNotFound
	}
	for _, saved := range s.saved[userID] {
		if saved == placeID {
			return nil
		}
	}
	s.saved[userID] = append(s.saved[userID], placeID)
	return nil
}

func (s *InMemory) UnsavePlace(_ context.Context, userID id.UserID, placeID id.PlaceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return sentinel.ErrNotFound
	}
	saved := s.saved[userID]
	for i, got := range saved {
		if got == placeID {
			s.saved[userID] = append(saved[:i], saved[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *InMemory) SavedPlaces(_ context.Context, userID id.UserID) ([]id.PlaceID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.users[userID]; !ok {
		return nil, sentinel.ErrNotFound
	}
	return append([]id.PlaceID(nil), s.saved[userID]...), nil
}

func (s *InMemory) UnsavePlaceForAll(_ context.Context, placeID id.PlaceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for userID, saved := range s.saved {
		for i, got := range saved {
			if got == placeID {
				s.saved[userID] = append(saved[:i], saved[i+1:]...)
				break
			}
		}
	}
	return nil
}
