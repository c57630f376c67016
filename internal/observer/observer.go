// Package observer implements a synchronous publish/subscribe core.
//
// A Publisher holds an ordered set of observers and invokes each of them, in
// registration order, whenever Notify is called. Holder is a Publisher that
// owns a single integer value and broadcasts after every successful Set.
//
// Nothing in this package is safe for concurrent use. Callers that feed a
// Holder from more than one goroutine must serialize access themselves.
package observer

import (
	"errors"
	"fmt"
	"reflect"
	"slices"

	"github.com/zjrosen/observer/internal/log"
)

var (
	// ErrAlreadyRegistered is returned by Add when the observer is already present.
	ErrAlreadyRegistered = errors.New("observer already registered")
	// ErrNotRegistered is returned by Remove when the observer is not present.
	ErrNotRegistered = errors.New("observer not registered")
	// ErrNilObserver is returned by Add when given a nil observer.
	ErrNilObserver = errors.New("nil observer")
	// ErrNotComparable is returned by Add for observers whose dynamic type
	// cannot be compared for identity (funcs, maps, slices).
	ErrNotComparable = errors.New("observer type is not comparable")
)

// Subject is the read-only view of a publisher handed to observers.
type Subject interface {
	Name() string
	Value() int
}

// Observer receives a reference to the publisher on every broadcast.
type Observer[S any] interface {
	Update(subject S)
}

// Publisher keeps an ordered, duplicate-free sequence of observers.
// Observers are compared by interface equality, so pointer observers are
// distinct even when they point at structurally identical values.
// The zero value is ready to use.
type Publisher[S any] struct {
	observers []Observer[S]
}

// Add appends o to the end of the observer sequence.
func (p *Publisher[S]) Add(o Observer[S]) error {
	if o == nil {
		return ErrNilObserver
	}
	if !reflect.TypeOf(o).Comparable() {
		log.Warn(log.CatPublisher, "Rejected non-comparable observer", "observer", describe(o))
		return fmt.Errorf("%w: %s", ErrNotComparable, describe(o))
	}
	if p.Contains(o) {
		log.Warn(log.CatPublisher, "Failed to add observer", "observer", describe(o))
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, describe(o))
	}

	p.observers = append(p.observers, o)
	log.Debug(log.CatPublisher, "Observer added", "observer", describe(o), "count", len(p.observers))
	return nil
}

// Remove deletes o from the observer sequence, keeping the order of the rest.
func (p *Publisher[S]) Remove(o Observer[S]) error {
	i := p.indexOf(o)
	if i < 0 {
		log.Warn(log.CatPublisher, "Failed to remove observer", "observer", describe(o))
		return fmt.Errorf("%w: %s", ErrNotRegistered, describe(o))
	}

	p.observers = slices.Delete(p.observers, i, i+1)
	log.Debug(log.CatPublisher, "Observer removed", "observer", describe(o), "count", len(p.observers))
	return nil
}

// Contains reports whether o is registered.
func (p *Publisher[S]) Contains(o Observer[S]) bool {
	return p.indexOf(o) >= 0
}

// Notify calls Update on every registered observer in registration order.
// The sequence is snapshotted first: observers added or removed from inside
// a callback take effect on the next broadcast.
func (p *Publisher[S]) Notify(subject S) {
	snapshot := slices.Clone(p.observers)
	log.Debug(log.CatPublisher, "Broadcasting", "observers", len(snapshot))
	for _, o := range snapshot {
		o.Update(subject)
	}
}

// Observers returns a copy of the registered observers in notification order.
// The result is never nil.
func (p *Publisher[S]) Observers() []Observer[S] {
	return append([]Observer[S]{}, p.observers...)
}

// Len returns the number of registered observers.
func (p *Publisher[S]) Len() int {
	return len(p.observers)
}

func (p *Publisher[S]) indexOf(o Observer[S]) int {
	if o == nil || !reflect.TypeOf(o).Comparable() {
		return -1
	}
	return slices.Index(p.observers, o)
}

// describe renders an observer for log fields and error messages.
func describe(o any) string {
	if s, ok := o.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", o)
}
