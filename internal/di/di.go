// Package di provides a minimal service registry used to wire modules together.
//
// Services are registered either as ready instances (global infrastructure
// like config and logger) or as lazy factories that are resolved and memoized
// on first Get. Wiring mistakes are programmer errors and panic at startup.
package di

import (
	"fmt"
	"sync"
)

// ServiceRegistry is the read side of the container.
type ServiceRegistry interface {
	// Get resolves a service by name, building it on first access when it
	// was registered as a factory. Panics if the name is unknown.
	Get(name string) any
}

// Container is the write side: modules register their services into it.
type Container interface {
	ServiceRegistry

	// Register stores a ready instance under name.
	Register(name string, svc any)

	// RegisterFactory stores a lazy constructor under name. The factory
	// runs at most once; its result is memoized.
	RegisterFactory(name string, factory func(ServiceRegistry) any)
}

type container struct {
	mu        sync.Mutex
	services  map[string]any
	factories map[string]func(ServiceRegistry) any
}

// NewContainer creates an empty container.
func NewContainer() Container {
	return &container{
		services:  make(map[string]any),
		factories: make(map[string]func(ServiceRegistry) any),
	}
}

func (c *container) Register(name string, svc any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureFree(name)
	c.services[name] = svc
}

func (c *container) RegisterFactory(name string, factory func(ServiceRegistry) any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureFree(name)
	c.factories[name] = factory
}

func (c *container) ensureFree(name string) {
	if _, exists := c.services[name]; exists {
		panic(fmt.Sprintf("di: service %q already registered", name))
	}
	if _, exists := c.factories[name]; exists {
		panic(fmt.Sprintf("di: factory %q already registered", name))
	}
}

func (c *container) Get(name string) any {
	c.mu.Lock()
	if svc, ok := c.services[name]; ok {
		c.mu.Unlock()
		return svc
	}
	factory, ok := c.factories[name]
	if !ok {
		c.mu.Unlock()
		panic(fmt.Sprintf("di: service %q not registered", name))
	}
	delete(c.factories, name)
	c.mu.Unlock()

	// Build outside the lock so factories can resolve their own deps.
	svc := factory(c)

	c.mu.Lock()
	c.services[name] = svc
	c.mu.Unlock()
	return svc
}
