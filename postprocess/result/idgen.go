package result

import "sync"

// IDGenerator is a struct to hold a counter for generating the next
// incremental ID number, starting from 1
type IDGenerator struct {
	id int64
	sync.Mutex
}

// NewIDGenerator returns a new IDGenerator whose first ID is 1
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

// GetNext returns the next incremental number
func (id *IDGenerator) GetNext() int64 {
	id.Lock()
	defer id.Unlock()
	id.id++
	return id.id
}

// Last returns the most recently issued number, 0 if none was issued
func (id *IDGenerator) Last() int64 {
	id.Lock()
	defer id.Unlock()
	return id.id
}

// Reset restarts the counter so the next number issued is 1
func (id *IDGenerator) Reset() {
	id.Lock()
	defer id.Unlock()
	id.id = 0
}
