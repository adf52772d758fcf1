package feed

import (
	"fmt"
	"sort"

	"Zenframe/internal/ports"
)

// Registry keeps a mapping from provider names to feed clients.
type Registry struct {
	clients map[string]ports.FeedClient
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{clients: map[string]ports.FeedClient{}}
}

// Register adds or replaces a feed client implementation.
func (r *Registry) Register(client ports.FeedClient) {
	if r.clients == nil {
		r.clients = map[string]ports.FeedClient{}
	}
	r.clients[client.Name()] = client
}

// Resolve returns a feed client by name or an error if it is absent.
func (r *Registry) Resolve(name string) (ports.FeedClient, error) {
	if client, ok := r.clients[name]; ok {
		return client, nil
	}
	return nil, fmt.Errorf("feed provider %s is not registered", name)
}

// Names lists registered providers in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
