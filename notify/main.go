// Package notify fans values out to any number of subscribed channels.
package notify

import (
	"sync"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

type subscriber[E any] struct {
	ch      chan E
	comment string
}

// Multiplexer delivers each sent value to every subscriber without ever
// blocking the sender. Subscribers should pass buffered channels: a full
// buffer loses its oldest value, so a slow reader skips values but still
// sees them in order and always ends with the latest.
type Multiplexer[E any] struct {
	comment string

	subscribersLock sync.Mutex
	subscribers     []subscriber[E]

	currentLock sync.RWMutex
	current     E
	currentSet  bool
}

func NewMultiplexer[E any](comment string) *Multiplexer[E] {
	return &Multiplexer[E]{comment: comment}
}

func (m *Multiplexer[E]) Subscribe(comment string, c chan E) {
	if cap(c) == 0 {
		zap.S().Warnf("multiplexer %s: subscriber %s is unbuffered and only gets values while waiting", m.comment, comment)
	}
	m.subscribersLock.Lock()
	defer m.subscribersLock.Unlock()
	m.subscribers = append(m.subscribers, subscriber[E]{
		ch:      c,
		comment: comment,
	})
}

// Unsubscribe stops sending to c. It reports false if c was not subscribed.
func (m *Multiplexer[E]) Unsubscribe(c chan E) bool {
	m.subscribersLock.Lock()
	defer m.subscribersLock.Unlock()
	i := slices.IndexFunc(m.subscribers, func(sub subscriber[E]) bool { return sub.ch == c })
	if i == -1 {
		return false
	}
	m.subscribers = slices.Delete(m.subscribers, i, i+1)
	return true
}

// Send records e as the current value and delivers it to every subscriber.
func (m *Multiplexer[E]) Send(e E) {
	m.currentLock.Lock()
	m.current = e
	m.currentSet = true
	m.currentLock.Unlock()

	m.subscribersLock.Lock()
	defer m.subscribersLock.Unlock()
	for _, sub := range m.subscribers {
		if offer(sub.ch, e) {
			continue
		}
		// full: make room by dropping the oldest pending value
		select {
		case <-sub.ch:
		default:
		}
		if !offer(sub.ch, e) {
			zap.S().Debugf("multiplexer %s: subscriber %s skipped a value", m.comment, sub.comment)
		}
	}
}

func offer[E any](c chan E, e E) bool {
	select {
	case c <- e:
		return true
	default:
		return false
	}
}

// Current returns the last value sent, if any.
func (m *Multiplexer[E]) Current() (E, bool) {
	m.currentLock.RLock()
	defer m.currentLock.RUnlock()
	return m.current, m.currentSet
}

func (m *Multiplexer[E]) Len() int {
	m.subscribersLock.Lock()
	defer m.subscribersLock.Unlock()
	return len(m.subscribers)
}
