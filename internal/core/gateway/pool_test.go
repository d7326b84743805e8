package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oraclewa/oraclewa/internal/template"
)

// fakeProvider is a scriptable in-memory gateway instance.
type fakeProvider struct {
	name      string
	buttons   bool
	healthErr error
	sent      []string
}

func (f *fakeProvider) GetProviderName() string { return "fake" }
func (f *fakeProvider) InstanceName() string    { return f.name }

func (f *fakeProvider) Capabilities() template.ChannelCapabilities {
	return template.ChannelCapabilities{SupportsInteractiveAffordances: f.buttons}
}

func (f *fakeProvider) SendText(ctx context.Context, phone, text string) error {
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeProvider) SendButtons(ctx context.Context, phone, text string, buttons []template.Button) error {
	if !f.buttons {
		return ErrButtonsUnsupported
	}
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeProvider) CheckHealth(ctx context.Context) error { return f.healthErr }

func (f *fakeProvider) PairingCode(ctx context.Context) (string, error) { return "code", nil }

func TestPoolRoundRobin(t *testing.T) {
	a := &fakeProvider{name: "a"}
	b := &fakeProvider{name: "b"}
	c := &fakeProvider{name: "c"}
	pool := NewPool([]Provider{a, b, c}, false)

	var order []string
	for i := 0; i < 6; i++ {
		p, err := pool.Acquire()
		require.NoError(t, err)
		order = append(order, p.InstanceName())
	}
	assert.Equal(t, []string{"a", "b", "c", "a", "b", "c"}, order)
}

func TestPoolSkipsUnhealthy(t *testing.T) {
	a := &fakeProvider{name: "a"}
	b := &fakeProvider{name: "b"}
	pool := NewPool([]Provider{a, b}, false)

	pool.MarkDown("a")

	for i := 0; i < 4; i++ {
		p, err := pool.Acquire()
		require.NoError(t, err)
		assert.Equal(t, "b", p.InstanceName())
	}

	pool.MarkUp("a")
	names := map[string]bool{}
	for i := 0; i < 4; i++ {
		p, err := pool.Acquire()
		require.NoError(t, err)
		names[p.InstanceName()] = true
	}
	assert.True(t, names["a"])
	assert.True(t, names["b"])
}

func TestPoolAllDownWithoutFallback(t *testing.T) {
	a := &fakeProvider{name: "a"}
	pool := NewPool([]Provider{a}, false)
	pool.MarkDown("a")

	_, err := pool.Acquire()
	assert.ErrorIs(t, err, ErrNoInstanceAvailable)
}

func TestPoolAllDownWithFallback(t *testing.T) {
	a := &fakeProvider{name: "a"}
	b := &fakeProvider{name: "b"}
	pool := NewPool([]Provider{a, b}, true)
	pool.MarkDown("a")
	pool.MarkDown("b")

	p, err := pool.Acquire()
	require.NoError(t, err)
	assert.Contains(t, []string{"a", "b"}, p.InstanceName())
}

func TestPoolEmpty(t *testing.T) {
	_, err := NewPool(nil, true).Acquire()
	assert.ErrorIs(t, err, ErrNoInstanceAvailable)
}

func TestPoolCheckAllUpdatesHealth(t *testing.T) {
	a := &fakeProvider{name: "a", healthErr: errors.New("disconnected")}
	b := &fakeProvider{name: "b"}
	pool := NewPool([]Provider{a, b}, false)

	pool.CheckAll(context.Background())

	for i := 0; i < 3; i++ {
		p, err := pool.Acquire()
		require.NoError(t, err)
		assert.Equal(t, "b", p.InstanceName())
	}

	// Instance recovers on the next probe.
	a.healthErr = nil
	pool.CheckAll(context.Background())

	names := map[string]bool{}
	for i := 0; i < 4; i++ {
		p, err := pool.Acquire()
		require.NoError(t, err)
		names[p.InstanceName()] = true
	}
	assert.True(t, names["a"])
}

func TestPoolStatuses(t *testing.T) {
	a := &fakeProvider{name: "a"}
	b := &fakeProvider{name: "b"}
	pool := NewPool([]Provider{a, b}, false)
	pool.MarkDown("b")

	statuses := pool.Statuses()
	require.Len(t, statuses, 2)
	assert.Equal(t, "a", statuses[0].Instance)
	assert.True(t, statuses[0].Healthy)
	assert.False(t, statuses[1].Healthy)
	assert.Equal(t, "fake", statuses[0].Provider)
}

func TestNewProviderFactory(t *testing.T) {
	p, err := NewProvider(&ProviderConfig{
		Type:         ProviderEvolution,
		BaseURL:      "http://localhost:8080",
		APIKey:       "key",
		InstanceName: "imperio-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "evolution", p.GetProviderName())
	assert.False(t, p.Capabilities().SupportsInteractiveAffordances)

	p, err = NewProvider(&ProviderConfig{
		Type:          ProviderZAPI,
		InstanceID:    "inst",
		InstanceToken: "tok",
	})
	require.NoError(t, err)
	assert.Equal(t, "zapi", p.GetProviderName())
	assert.True(t, p.Capabilities().SupportsInteractiveAffordances)

	_, err = NewProvider(&ProviderConfig{Type: "telegram"})
	assert.Error(t, err)

	_, err = NewProvider(&ProviderConfig{Type: ProviderEvolution})
	assert.Error(t, err)
}
