package auth

import "sync"

// Provider reports the current user and notifies on changes. A nil user
// means signed out.
type Provider interface {
	CurrentUser() *User
	Subscribe(fn func(*User)) (unsubscribe func())
}

// Session is an in-process Provider. Listeners run synchronously, outside
// the session lock, in subscription order.
type Session struct {
	mu        sync.Mutex
	current   *User
	listeners map[int]func(*User)
	order     []int
	nextID    int
}

var _ Provider = (*Session)(nil)

func NewSession() *Session {
	return &Session{listeners: make(map[int]func(*User))}
}

func (s *Session) CurrentUser() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	u := *s.current
	return &u
}

// SignIn replaces the current user. Listeners are only told when the
// owner actually changes.
func (s *Session) SignIn(u User) {
	s.mu.Lock()
	changed := s.current == nil || s.current.ID != u.ID
	s.current = &u
	s.mu.Unlock()
	if changed {
		s.notify(&u)
	}
}

func (s *Session) SignOut() {
	s.mu.Lock()
	was := s.current != nil
	s.current = nil
	s.mu.Unlock()
	if was {
		s.notify(nil)
	}
}

// Subscribe registers fn; the returned function removes it.
func (s *Session) Subscribe(fn func(*User)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.order = append(s.order, id)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.listeners, id)
			for i, v := range s.order {
				if v == id {
					s.order = append(s.order[:i], s.order[i+1:]...)
					break
				}
			}
		})
	}
}

func (s *Session) notify(u *User) {
	s.mu.Lock()
	fns := make([]func(*User), 0, len(s.order))
	for _, id := range s.order {
		fns = append(fns, s.listeners[id])
	}
	s.mu.Unlock()

	for _, fn := range fns {
		if u == nil {
			fn(nil)
			continue
		}
		cp := *u
		fn(&cp)
	}
}
