package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ctessum/requestcache"
	"github.com/sirupsen/logrus"

	"github.com/msucast/bmpopt/internal/scenario"
)

// ErrPublishFailed wraps a publish failure (spec.md §7 item 3): the
// UUID must not be added to the await set.
var ErrPublishFailed = errors.New("dispatch: publish failed")

// ErrTimeout marks a candidate that was not received by the batch
// deadline (spec.md §7 item 4, the REDESIGN addition of spec.md §9).
var ErrTimeout = errors.New("dispatch: await timeout")

// Result is the outcome of dispatching one candidate.
type Result struct {
	UUID  string
	Loads []float64
}

// Client is the single-threaded-per-driver Dispatch Client of
// spec.md §4.4: it holds a work-queue (Bus) and a shared key-value
// store (KVStore) collaborator, and correlates replies back to
// waiting callers purely by UUID (spec.md §4.4 "Ordering").
type Client struct {
	Bus     Bus
	KV      KVStore
	RunUUID string
	Log     logrus.FieldLogger

	// cache deduplicates concurrent Submit+Await round trips for the
	// same candidate UUID within this process, reusing
	// github.com/ctessum/requestcache the way the teacher's own
	// emissions/slca/bea/eioserve.Server uses it for its geometry and
	// area caches.
	cache *requestcache.Cache

	consumeOnce sync.Once
	consumeErr  error

	mu           sync.Mutex
	waiters      map[string]chan Result
	nextScenario int

	resultsMu sync.Mutex
	lastLoads map[string][]float64
}

// NewClient constructs a Client. numWorkers bounds how many
// outstanding Submit+Await round trips this process drives
// concurrently.
func NewClient(bus Bus, kv KVStore, runUUID string, log logrus.FieldLogger, numWorkers int) *Client {
	if log == nil {
		log = logrus.StandardLogger()
	}
	c := &Client{Bus: bus, KV: kv, RunUUID: runUUID, Log: log, waiters: make(map[string]chan Result)}
	c.cache = requestcache.NewCache(c.process, numWorkers, requestcache.Deduplicate())
	return c
}

// process is the requestcache.ProcessFunc: it submits one candidate
// and blocks until its result arrives or ctx is done.
func (c *Client) process(ctx context.Context, payload interface{}) (interface{}, error) {
	uuid := payload.(string)

	if err := c.ensureConsumer(ctx); err != nil {
		return nil, err
	}

	ch := make(chan Result, 1)
	c.mu.Lock()
	c.waiters[uuid] = ch
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.waiters, uuid)
		c.mu.Unlock()
	}()

	if err := c.submitOne(ctx, uuid); err != nil {
		return nil, err
	}

	select {
	case res := <-ch:
		return res, nil
	case <-ctx.Done():
		return nil, ErrTimeout
	}
}

// ensureConsumer starts the single shared consume loop for this
// client's run UUID routing key, the first time it is needed.
func (c *Client) ensureConsumer(ctx context.Context) error {
	c.consumeOnce.Do(func() {
		deliveries, err := c.Bus.Consume(ctx, c.RunUUID)
		if err != nil {
			c.consumeErr = fmt.Errorf("dispatch: opening await queue: %w", err)
			return
		}
		go c.dispatchLoop(ctx, deliveries)
	})
	return c.consumeErr
}

// dispatchLoop demultiplexes incoming completion messages to whichever
// goroutine is currently awaiting that UUID. A message for a UUID no
// one here is waiting for is acknowledged and dropped: no ordering or
// exactly-once guarantee is made across processes (spec.md §4.4
// Ordering).
func (c *Client) dispatchLoop(ctx context.Context, deliveries <-chan Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			uuid := d.Body
			c.mu.Lock()
			ch, waiting := c.waiters[uuid]
			c.mu.Unlock()
			if !waiting {
				d.Ack()
				continue
			}
			res, err := c.fetchResult(ctx, uuid)
			if err != nil {
				c.Log.WithFields(logrus.Fields{"uuid": uuid, "err": err}).Warn("dispatch: reading executed_results failed")
				d.Ack()
				continue
			}
			d.Ack()
			ch <- res
		}
	}
}

// submitOne writes the correlated mailbox entries and publishes the
// execution request for uuid (spec.md §4.4 Submit, §6 message fields).
func (c *Client) submitOne(ctx context.Context, uuid string) error {
	c.mu.Lock()
	scenarioID := c.nextScenario
	c.nextScenario++
	c.mu.Unlock()

	descriptor := scenario.Descriptor(c.RunUUID, uuid, scenarioID)
	if err := c.KV.Put(ctx, uuid, FieldEmoData, descriptor); err != nil {
		return fmt.Errorf("%w: %v", ErrPublishFailed, err)
	}
	solutionToExecute := fmt.Sprintf("%s_%d", c.RunUUID, scenarioID)
	if err := c.KV.Put(ctx, uuid, FieldSolutionToExecute, solutionToExecute); err != nil {
		return fmt.Errorf("%w: %v", ErrPublishFailed, err)
	}
	if err := c.Bus.Publish(ctx, SubmitRoutingKey, uuid); err != nil {
		c.Log.WithFields(logrus.Fields{"uuid": uuid, "err": err}).Warn("dispatch: publish failed")
		return fmt.Errorf("%w: %v", ErrPublishFailed, err)
	}
	return nil
}

func (c *Client) fetchResult(ctx context.Context, uuid string) (Result, error) {
	raw, ok, err := c.KV.Get(ctx, uuid, FieldExecutedResults)
	if err != nil {
		return Result{}, fmt.Errorf("dispatch: reading executed_results: %w", err)
	}
	if !ok {
		return Result{}, fmt.Errorf("dispatch: executed_results missing for %s", uuid)
	}
	loads, err := ParseResult(raw)
	if err != nil {
		return Result{}, err
	}
	c.KV.Delete(ctx, uuid, FieldEmoData)
	c.KV.Delete(ctx, uuid, FieldExecutedResults)
	return Result{UUID: uuid, Loads: loads}, nil
}

// Batch submits every uuid in uuids for evaluation and blocks until
// all have replied or timeout elapses (spec.md §4.4 Submit/Await/
// Completion, with the REDESIGN per-batch deadline of spec.md §9).
// Candidates not received within timeout carry ErrTimeout (or
// ErrPublishFailed) in their map entry's error and must be excluded
// from the caller's archive update.
func (c *Client) Batch(ctx context.Context, uuids []string, timeout time.Duration) map[string]error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	loads := make(map[string][]float64, len(uuids))
	errs := make(map[string]error, len(uuids))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, uuid := range uuids {
		wg.Add(1)
		go func(uuid string) {
			defer wg.Done()
			req := c.cache.NewRequest(ctx, uuid, uuid)
			payload, err := req.Result()
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				c.Log.WithFields(logrus.Fields{"uuid": uuid, "err": err}).Warn("dispatch: candidate failed")
				errs[uuid] = err
				return
			}
			res := payload.(Result)
			loads[uuid] = res.Loads
		}(uuid)
	}
	wg.Wait()

	c.resultsMu.Lock()
	c.lastLoads = loads
	c.resultsMu.Unlock()
	return errs
}

// LastLoads returns the per-UUID load vectors from the most recent
// Batch call; UUIDs that failed in that call have no entry.
func (c *Client) LastLoads() map[string][]float64 {
	c.resultsMu.Lock()
	defer c.resultsMu.Unlock()
	return c.lastLoads
}
