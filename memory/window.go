// Package memory provides conversation history management. The sliding
// window strategy keeps the most recent messages and is used both to
// bound in-process conversations and to select the history included in
// prompts.
package memory

import "sync"

// DefaultWindowSize bounds a conversation kept entirely in process.
const DefaultWindowSize = 50

// LastN returns the trailing n messages, or all of them when fewer
// exist. The returned slice aliases the input.
func LastN[M any](messages []M, n int) []M {
	if n <= 0 || len(messages) == 0 {
		return nil
	}
	if len(messages) <= n {
		return messages
	}
	return messages[len(messages)-n:]
}

// SlidingWindowMemory keeps the most recent messages of a conversation,
// discarding the oldest once the window size is exceeded. Safe for
// concurrent use.
type SlidingWindowMemory[M any] struct {
	mu       sync.RWMutex
	size     int
	messages []M
}

// NewSlidingWindowMemory creates a window holding at most size
// messages. A non-positive size falls back to DefaultWindowSize.
func NewSlidingWindowMemory[M any](size int) *SlidingWindowMemory[M] {
	if size <= 0 {
		size = DefaultWindowSize
	}

	return &SlidingWindowMemory[M]{size: size}
}

// Add appends messages, evicting the oldest beyond the window size.
func (m *SlidingWindowMemory[M]) Add(messages ...M) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.messages = append(m.messages, messages...)
	m.trim()
}

// Replace swaps the conversation for the given messages, keeping only
// the most recent window.
func (m *SlidingWindowMemory[M]) Replace(messages []M) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.messages = append(m.messages[:0:0], messages...)
	m.trim()
}

func (m *SlidingWindowMemory[M]) trim() {
	if len(m.messages) > m.size {
		m.messages = m.messages[len(m.messages)-m.size:]
	}
}

// Messages returns a copy of the retained conversation, oldest first.
func (m *SlidingWindowMemory[M]) Messages() []M {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]M, len(m.messages))
	copy(out, m.messages)

	return out
}

// Window returns a copy of the last n retained messages.
func (m *SlidingWindowMemory[M]) Window(n int) []M {
	m.mu.RLock()
	defer m.mu.RUnlock()

	window := LastN(m.messages, n)
	out := make([]M, len(window))
	copy(out, window)

	return out
}

// Len returns the number of retained messages.
func (m *SlidingWindowMemory[M]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.messages)
}

// Clear drops the whole conversation.
func (m *SlidingWindowMemory[M]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.messages = nil
}
