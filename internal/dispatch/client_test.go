package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

// fakeBus is an in-process Bus: Publish is a no-op (simulateWorker
// watches the key-value store instead), and a test drives completions
// by calling complete().
type fakeBus struct {
	mu   sync.Mutex
	subs []chan Delivery
}

func newFakeBus() *fakeBus { return &fakeBus{} }

func (b *fakeBus) Publish(ctx context.Context, routingKey, body string) error {
	return nil
}

func (b *fakeBus) Consume(ctx context.Context, routingKey string) (<-chan Delivery, error) {
	ch := make(chan Delivery, 16)
	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()
	return ch, nil
}

// complete delivers uuid as a completion message to every consumer.
func (b *fakeBus) complete(uuid string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		ch <- Delivery{Body: uuid, Ack: func() error { return nil }}
	}
}

func (b *fakeBus) Close() error { return nil }

type fakeKV struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeKV() *fakeKV { return &fakeKV{data: make(map[string]string)} }

func key(uuid, field string) string { return uuid + "/" + field }

func (k *fakeKV) Put(ctx context.Context, uuid, field, value string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.data[key(uuid, field)] = value
	return nil
}

func (k *fakeKV) Get(ctx context.Context, uuid, field string) (string, bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.data[key(uuid, field)]
	return v, ok, nil
}

func (k *fakeKV) Delete(ctx context.Context, uuid, field string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.data, key(uuid, field))
	return nil
}

// simulateWorker plays the role of the external simulator fleet: once
// it sees the solution_to_execute mailbox entry for uuid, it writes a
// result and announces completion on the bus.
func simulateWorker(t *testing.T, kv *fakeKV, bus *fakeBus, uuid string, loads []float64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok, _ := kv.Get(context.Background(), uuid, FieldSolutionToExecute); ok {
			kv.Put(context.Background(), uuid, FieldExecutedResults, FormatResult(loads))
			bus.complete(uuid)
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("worker never observed submission for %s", uuid)
}

func TestClientBatchRoundTrip(t *testing.T) {
	bus := newFakeBus()
	kv := newFakeKV()
	c := NewClient(bus, kv, "run-1", logrus.StandardLogger(), 4)

	uuids := []string{"cand-a", "cand-b", "cand-c"}
	expected := map[string][]float64{
		"cand-a": {1, 2, 3},
		"cand-b": {4, 5, 6},
		"cand-c": {7, 8, 9},
	}

	var wg sync.WaitGroup
	for _, u := range uuids {
		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			simulateWorker(t, kv, bus, u, expected[u])
		}(u)
	}

	errs := c.Batch(context.Background(), uuids, 5*time.Second)
	wg.Wait()

	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	got := c.LastLoads()
	for _, u := range uuids {
		if len(got[u]) != len(expected[u]) {
			t.Fatalf("uuid %s: got %v, want %v", u, got[u], expected[u])
		}
		for i := range expected[u] {
			if got[u][i] != expected[u][i] {
				t.Errorf("uuid %s[%d] = %v, want %v", u, i, got[u][i], expected[u][i])
			}
		}
	}
}

func TestClientBatchTimeout(t *testing.T) {
	bus := newFakeBus()
	kv := newFakeKV()
	c := NewClient(bus, kv, "run-2", logrus.StandardLogger(), 2)

	errs := c.Batch(context.Background(), []string{"never-replies"}, 50*time.Millisecond)
	if err, ok := errs["never-replies"]; !ok || err == nil {
		t.Fatalf("expected a timeout error for never-replies, got %v", errs)
	}
}

func TestClientBatchMixedOutcome(t *testing.T) {
	bus := newFakeBus()
	kv := newFakeKV()
	c := NewClient(bus, kv, "run-3", logrus.StandardLogger(), 4)

	go simulateWorker(t, kv, bus, "good", []float64{1, 1})

	errs := c.Batch(context.Background(), []string{"good", "stuck"}, 200*time.Millisecond)
	if errs["good"] != nil {
		t.Errorf("good: unexpected error %v", errs["good"])
	}
	if errs["stuck"] == nil {
		t.Errorf("stuck: expected timeout error, got nil")
	}
	if got := c.LastLoads()["good"]; len(got) != 2 || got[0] != 1 || got[1] != 1 {
		t.Errorf("good loads = %v, want [1 1]", got)
	}
}
