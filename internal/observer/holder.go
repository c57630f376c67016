package observer

import (
	"errors"
	"fmt"

	"github.com/zjrosen/observer/internal/log"
)

var (
	// ErrEmptyName is returned by NewHolder for an empty name.
	ErrEmptyName = errors.New("holder name must not be empty")
	// ErrReentrantSet is returned by Set when called from inside one of the
	// holder's own broadcasts. The value stays fixed for the whole pass.
	ErrReentrantSet = errors.New("value set during broadcast")
)

// Holder is a named publisher owning one integer value.
// Every successful Set is followed by a synchronous broadcast to all
// registered observers.
type Holder struct {
	name         string
	value        int
	pub          Publisher[Subject]
	broadcasting bool
}

// NewHolder creates a holder with value 0 and no observers.
func NewHolder(name string) (*Holder, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	log.Debug(log.CatHolder, "Holder created", "name", name)
	return &Holder{name: name}, nil
}

// Name returns the label given at construction.
func (h *Holder) Name() string {
	return h.name
}

// Value returns the current value.
func (h *Holder) Value() int {
	return h.value
}

// Set coerces input to an integer, stores it and notifies every observer.
// When coercion fails the value is left unchanged, no broadcast happens and
// a *CoercionError describing the cause is returned.
func (h *Holder) Set(input any) error {
	if h.broadcasting {
		log.Warn(log.CatHolder, "Rejected set during broadcast", "name", h.name, "input", input)
		return fmt.Errorf("%w: holder %q", ErrReentrantSet, h.name)
	}

	v, err := Coerce(input)
	if err != nil {
		log.Warn(log.CatHolder, "Rejected value", "name", h.name, "input", input, "error", err)
		return err
	}

	h.value = v
	log.Debug(log.CatHolder, "Value set", "name", h.name, "value", v)
	h.Notify()
	return nil
}

// Add registers o. See Publisher.Add.
func (h *Holder) Add(o Observer[Subject]) error {
	return h.pub.Add(o)
}

// Remove deregisters o. See Publisher.Remove.
func (h *Holder) Remove(o Observer[Subject]) error {
	return h.pub.Remove(o)
}

// Observers returns the registered observers in notification order.
func (h *Holder) Observers() []Observer[Subject] {
	return h.pub.Observers()
}

// Notify broadcasts the current value to every registered observer.
func (h *Holder) Notify() {
	prev := h.broadcasting
	h.broadcasting = true
	defer func() { h.broadcasting = prev }()

	h.pub.Notify(h)
}

// String implements fmt.Stringer.
func (h *Holder) String() string {
	return fmt.Sprintf("Holder: '%s' has value = %d", h.name, h.value)
}
