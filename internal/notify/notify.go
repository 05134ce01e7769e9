// Package notify is the contract between the flow controller and whatever
// renders user-facing messages. Toasts are unscoped, stack and self-dismiss;
// inline alerts are scoped to one form and persist until replaced or
// cleared.
package notify

import (
	"sync"
	"time"
)

// Severity classifies a notification for presentation.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// Kind distinguishes transient toasts from persistent inline alerts.
type Kind int

const (
	KindToast Kind = iota
	KindInlineAlert
)

// Notification is one user-facing message.
type Notification struct {
	Kind     Kind
	Severity Severity
	Title    string
	Body     string
	Scope    string // form scope; only set for inline alerts
}

// Toast lifetimes: successes dismiss quickly, promoted alerts linger.
const (
	successToastTTL = 4 * time.Second
	alertToastTTL   = 10 * time.Second
)

type activeToast struct {
	Notification
	expiresAt time.Time
}

// Listener receives every notification as it is shown.
type Listener func(Notification)

// Center owns notification state. The flow controller talks to it; renderers
// subscribe to it.
type Center struct {
	mu        sync.Mutex
	alerts    map[string]Notification // scope -> current inline alert
	toasts    []activeToast
	listeners []Listener

	now func() time.Time
}

// NewCenter creates an empty notification center.
func NewCenter() *Center {
	return &Center{
		alerts: make(map[string]Notification),
		now:    time.Now,
	}
}

// Subscribe registers a listener for every shown notification.
func (c *Center) Subscribe(l Listener) {
	c.mu.Lock()
	c.listeners = append(c.listeners, l)
	c.mu.Unlock()
}

// Toast shows a transient notification. Toasts stack and expire on their own.
func (c *Center) Toast(severity Severity, title, body string) {
	n := Notification{Kind: KindToast, Severity: severity, Title: title, Body: body}

	ttl := successToastTTL
	if severity == SeverityWarning || severity == SeverityError {
		ttl = alertToastTTL
	}

	c.mu.Lock()
	c.pruneLocked()
	c.toasts = append(c.toasts, activeToast{Notification: n, expiresAt: c.now().Add(ttl)})
	listeners := append([]Listener(nil), c.listeners...)
	c.mu.Unlock()

	for _, l := range listeners {
		l(n)
	}
}

// Alert shows an inline alert for a form scope, replacing any prior alert in
// that scope.
func (c *Center) Alert(scope, message string) {
	n := Notification{
		Kind:     KindInlineAlert,
		Severity: SeverityError,
		Body:     message,
		Scope:    scope,
	}

	c.mu.Lock()
	c.alerts[scope] = n
	listeners := append([]Listener(nil), c.listeners...)
	c.mu.Unlock()

	for _, l := range listeners {
		l(n)
	}
}

// ClearAlert removes the inline alert for a scope, if any.
func (c *Center) ClearAlert(scope string) {
	c.mu.Lock()
	delete(c.alerts, scope)
	c.mu.Unlock()
}

// AlertFor returns the current inline alert message for a scope.
func (c *Center) AlertFor(scope string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.alerts[scope]
	return n.Body, ok
}

// ActiveToasts returns the not-yet-expired toasts, oldest first.
func (c *Center) ActiveToasts() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pruneLocked()

	out := make([]Notification, 0, len(c.toasts))
	for _, t := range c.toasts {
		out = append(out, t.Notification)
	}
	return out
}

func (c *Center) pruneLocked() {
	now := c.now()
	kept := c.toasts[:0]
	for _, t := range c.toasts {
		if t.expiresAt.After(now) {
			kept = append(kept, t)
		}
	}
	c.toasts = kept
}
