package shift

import "sync"

// caregiverLocker serializes lifecycle operations per caregiver. Every
// operation is a read-modify-write against the caregiver's latest
// session, so concurrent extend/stop calls for the same caregiver must
// not interleave. Different caregivers proceed in parallel.
type caregiverLocker struct {
	mu    sync.Mutex
	locks map[string]*caregiverLock
}

type caregiverLock struct {
	mu   sync.Mutex
	refs int
}

func newCaregiverLocker() *caregiverLocker {
	return &caregiverLocker{
		locks: make(map[string]*caregiverLock),
	}
}

// Lock acquires the caregiver's lock and returns its unlock function.
// Entries are reference-counted and removed once the last holder
// unlocks, so the map does not grow with every caregiver ever seen.
func (l *caregiverLocker) Lock(caregiverID string) func() {
	l.mu.Lock()
	entry, ok := l.locks[caregiverID]
	if !ok {
		entry = &caregiverLock{}
		l.locks[caregiverID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, caregiverID)
		}
		l.mu.Unlock()
	}
}
