package usecase

import (
	"context"
	"sort"
	"sync"

	"github.com/Likheet/hermes-monitoring-sub002/domain"
)

type CommandHandler func(ctx context.Context, payload interface{}) (interface{}, error)
type QueryHandler func(ctx context.Context, params interface{}) (interface{}, error)

// Dispatcher routes named commands and queries to their handlers. Task
// actions are registered here so one endpoint can serve all of them.
type Dispatcher struct {
	cmdHandlers map[string]CommandHandler
	qryHandlers map[string]QueryHandler
	mu          sync.RWMutex
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		cmdHandlers: make(map[string]CommandHandler),
		qryHandlers: make(map[string]QueryHandler),
	}
}

func (d *Dispatcher) RegisterCommand(name string, handler CommandHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cmdHandlers[name] = handler
}

func (d *Dispatcher) RegisterQuery(name string, handler QueryHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.qryHandlers[name] = handler
}

func (d *Dispatcher) ExecuteCommand(ctx context.Context, name string, payload interface{}) (interface{}, error) {
	d.mu.RLock()
	handler, ok := d.cmdHandlers[name]
	d.mu.RUnlock()
	if !ok {
		return nil, domain.Invalidf("unknown command %q", name)
	}
	return handler(ctx, payload)
}

func (d *Dispatcher) ExecuteQuery(ctx context.Context, name string, params interface{}) (interface{}, error) {
	d.mu.RLock()
	handler, ok := d.qryHandlers[name]
	d.mu.RUnlock()
	if !ok {
		return nil, domain.Invalidf("unknown query %q", name)
	}
	return handler(ctx, params)
}

// Commands lists the registered command names in order.
func (d *Dispatcher) Commands() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.cmdHandlers))
	for name := range d.cmdHandlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
