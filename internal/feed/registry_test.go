package feed

import (
	"context"
	"testing"

	"Zenframe/internal/domain"
)

type namedClient string

func (n namedClient) Name() string { return string(n) }

func (n namedClient) FetchPage(context.Context, int, string, int) ([]domain.RawArticle, error) {
	return nil, nil
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(namedClient("rss"))
	reg.Register(namedClient("thenewsapi"))

	client, err := reg.Resolve("rss")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if client.Name() != "rss" {
		t.Fatalf("unexpected client: %s", client.Name())
	}

	if _, err := reg.Resolve("gdelt"); err == nil {
		t.Fatalf("expected error for unknown provider")
	}

	names := reg.Names()
	if len(names) != 2 || names[0] != "rss" || names[1] != "thenewsapi" {
		t.Fatalf("unexpected names: %v", names)
	}
}

func TestRegistryZeroValue(t *testing.T) {
	t.Parallel()

	var reg Registry
	reg.Register(namedClient("rss"))
	if _, err := reg.Resolve("rss"); err != nil {
		t.Fatalf("zero-value registry must accept registrations: %v", err)
	}
}
