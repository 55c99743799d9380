package dice

import "sync"

// Scripted is a Source that replays fixed die faces.
//
// Each call to Intn consumes the next face and returns face-1, so a scripted 4
// rolls a 4 on whatever die is asked for. When the script runs out it starts over.
type Scripted struct {
	mu    sync.Mutex
	faces []int
	next  int
}

// NewScripted returns a Source replaying faces in order.
func NewScripted(faces ...int) *Scripted {
	copied := make([]int, len(faces))
	copy(copied, faces)
	return &Scripted{faces: copied}
}

// Intn implements Source.
func (s *Scripted) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.faces) == 0 || n <= 0 {
		return 0
	}
	face := s.faces[s.next%len(s.faces)]
	s.next++
	value := (face - 1) % n
	if value < 0 {
		value += n
	}
	return value
}

// Consumed reports how many faces have been drawn.
func (s *Scripted) Consumed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}
