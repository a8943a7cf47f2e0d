package domain

// Watchlist is an append-only, index-addressable registry of user identities.
// Insertion order is the order of first deposit and is preserved so accrual
// and conversion passes iterate deterministically.
type Watchlist struct {
	entries []UserID
	seen    map[UserID]struct{}
}

// NewWatchlist creates an empty watchlist.
func NewWatchlist() *Watchlist {
	return &Watchlist{seen: make(map[UserID]struct{})}
}

// Append adds user if not already present. Returns true on first insertion.
func (w *Watchlist) Append(user UserID) bool {
	if _, ok := w.seen[user]; ok {
		return false
	}
	w.seen[user] = struct{}{}
	w.entries = append(w.entries, user)
	return true
}

// Contains reports membership.
func (w *Watchlist) Contains(user UserID) bool {
	_, ok := w.seen[user]
	return ok
}

// At returns the entry at index i.
func (w *Watchlist) At(i int) (UserID, bool) {
	if i < 0 || i >= len(w.entries) {
		return UserID{}, false
	}
	return w.entries[i], true
}

// Len returns the number of entries.
func (w *Watchlist) Len() int {
	return len(w.entries)
}

// All returns a copy of the entries in insertion order.
func (w *Watchlist) All() []UserID {
	out := make([]UserID, len(w.entries))
	copy(out, w.entries)
	return out
}
