package command

import (
	"context"
	"fmt"
	"sync"
)

// Call records one invocation seen by Fake.
type Call struct {
	Name  string
	Args  []string
	Stdin []byte
}

// Fake is a scripted Runner for tests. Handlers are keyed by executable name;
// a missing handler behaves like a tool that is not installed.
type Fake struct {
	mu       sync.Mutex
	Handlers map[string]func(call Call) (Result, error)
	Calls    []Call
}

func NewFake() *Fake {
	return &Fake{Handlers: map[string]func(Call) (Result, error){}}
}

// Handle registers fn for the executable name.
func (f *Fake) Handle(name string, fn func(call Call) (Result, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Handlers[name] = fn
}

func (f *Fake) Run(ctx context.Context, name string, args []string, stdin []byte) (Result, error) {
	f.mu.Lock()
	call := Call{Name: name, Args: append([]string(nil), args...), Stdin: append([]byte(nil), stdin...)}
	f.Calls = append(f.Calls, call)
	fn, ok := f.Handlers[name]
	f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("run %s: %w", name, err)
	}
	if !ok {
		return Result{}, Unavailable(name, "")
	}
	return fn(call)
}

// CallsTo returns the recorded invocations of name.
func (f *Fake) CallsTo(name string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Call
	for _, c := range f.Calls {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}
