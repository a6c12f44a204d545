package webhook

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

/* Invocation is the normalized record handed to every configured action
 * Actions may set ContactID and add Attachments; later actions see those changes
 */
type Invocation struct {
	Config      Config
	Account     Account
	RequestID   string
	Raw         []byte
	Payload     any
	Contact     Contact
	ContactID   string
	Attachments map[string]string
}

// Action is a side effect configured per webhook
type Action interface {
	Name() string
	Run(ctx context.Context, inv *Invocation) error
}

// ActionFunc adapts a function to the Action interface
type ActionFunc struct {
	ID string
	Fn func(ctx context.Context, inv *Invocation) error
}

func (a ActionFunc) Name() string { return a.ID }

func (a ActionFunc) Run(ctx context.Context, inv *Invocation) error { return a.Fn(ctx, inv) }

// Registry resolves action ids listed in Config.Actions
type Registry struct {
	mu      sync.RWMutex
	actions map[string]Action
}

// NewRegistry creates a registry holding actions
func NewRegistry(actions ...Action) *Registry {
	r := &Registry{actions: make(map[string]Action, len(actions))}
	for _, a := range actions {
		r.Register(a)
	}
	return r
}

// Register adds or replaces an action
func (r *Registry) Register(a Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[a.Name()] = a
}

func (r *Registry) Get(name string) (Action, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.actions[name]
	return a, ok
}

// Names returns the registered action ids, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// run executes one action, converting a panic into an error
func run(ctx context.Context, a Action, inv *Invocation) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("action panicked: %v", r)
		}
	}()
	return a.Run(ctx, inv)
}
