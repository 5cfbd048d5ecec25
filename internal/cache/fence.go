package cache

// Fence hands out monotonically increasing tokens. Only the most recently
// issued token is current; callbacks holding an older token must not touch
// shared state.
//
// Fence is not safe for concurrent use. Guard it with the owner's lock.
type Fence struct {
	last uint64
}

// Issue returns a new token, superseding every token issued before it.
func (f *Fence) Issue() uint64 {
	f.last++
	return f.last
}

// Current reports whether token is the latest one issued.
func (f *Fence) Current(token uint64) bool {
	return token != 0 && token == f.last
}

// Last returns the latest issued token, or zero if none was issued.
func (f *Fence) Last() uint64 {
	return f.last
}
