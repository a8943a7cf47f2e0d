package di

import "fmt"

// Token is a typed handle for a registered service.
// Modules export tokens so consumers get compile-time typed access.
type Token[T any] struct {
	name string
}

// NewToken creates a token with a unique name.
func NewToken[T any](name string) Token[T] {
	return Token[T]{name: name}
}

// Name returns the registry key for the token.
func (t Token[T]) Name() string {
	return t.name
}

// RegisterToken registers a lazy factory under the token's name.
func RegisterToken[T any](c Container, t Token[T], factory func(ServiceRegistry) T) {
	c.RegisterFactory(t.name, func(sr ServiceRegistry) any {
		return factory(sr)
	})
}

// GetToken resolves a service by token, panicking on mistyped entries.
func GetToken[T any](c ServiceRegistry, t Token[T]) T {
	raw := c.Get(t.name)
	svc, ok := raw.(T)
	if !ok {
		panic(fmt.Sprintf("di: service %q has unexpected type %T", t.name, raw))
	}
	return svc
}
