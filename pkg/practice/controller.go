package practice

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"practice-service/pkg/client"
)

const (
	DefaultLowWaterMark = 2
	DefaultRefillBatch  = 3
	refillTimeout       = 2 * time.Minute
)

var ErrNoCurrentPractice = errors.New("no practice to answer")

// API is the subset of the practice API the controller needs.
type API interface {
	GeneratePractice(ctx context.Context, req client.GenerateRequest) (*client.GenerateResponse, error)
	SubmitAnswer(ctx context.Context, practiceID, answer string) (*client.SubmitResponse, error)
	EnterAdjustmentMode(ctx context.Context, learningSubject string) (*client.AdjustmentMode, error)
}

type Options struct {
	UserID          string
	LearningSubject string
	Type            string
	LowWaterMark    int
	RefillBatch     int
	// OnAdjustmentComplete runs once when the server reports that a
	// recalibration window closed.
	OnAdjustmentComplete func()
}

// Controller serves practices from a read-ahead queue and mirrors the
// server's adjustment state. The mirror is only ever overwritten from
// server responses, never decremented locally.
type Controller struct {
	api API

	mu         sync.Mutex
	userID     string
	subject    string
	exType     string
	queue      []client.Practice
	current    *client.Practice
	adjustment client.AdjustmentMode

	// epoch changes whenever the queue is invalidated; prefetches started
	// under an older epoch are discarded.
	epoch     uint64
	refilling bool
	prefetch  sync.WaitGroup

	lowWater   int
	batch      int
	onComplete func()
}

func New(api API, opts Options) *Controller {
	c := &Controller{
		api:        api,
		userID:     opts.UserID,
		subject:    opts.LearningSubject,
		exType:     opts.Type,
		lowWater:   opts.LowWaterMark,
		batch:      opts.RefillBatch,
		onComplete: opts.OnAdjustmentComplete,
	}
	if c.lowWater <= 0 {
		c.lowWater = DefaultLowWaterMark
	}
	if c.batch <= 0 {
		c.batch = DefaultRefillBatch
	}
	return c
}

// RequestNext returns the next practice. With forceNew false and a
// non-empty queue it pops the head without any network call, starting a
// background refill when the queue runs low. Otherwise it generates
// synchronously and enqueues any extra practices returned.
func (c *Controller) RequestNext(ctx context.Context, forceNew bool) (*client.Practice, error) {
	c.mu.Lock()
	if !forceNew && len(c.queue) > 0 {
		head := c.queue[0]
		c.queue = c.queue[1:]
		c.current = &head
		c.maybeRefillLocked()
		c.mu.Unlock()
		return &head, nil
	}
	req := c.requestLocked(c.batch)
	epoch := c.epoch
	c.mu.Unlock()

	resp, err := c.api.GeneratePractice(ctx, req)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.adjustment = resp.AdjustmentMode
	next := resp.Data
	if epoch == c.epoch {
		c.queue = append(c.queue, resp.Batch...)
		c.current = &next
		c.maybeRefillLocked()
	}
	return &next, nil
}

// Submit answers the current practice and reconciles the adjustment
// mirror from the response.
func (c *Controller) Submit(ctx context.Context, answer string) (*client.SubmitResponse, error) {
	c.mu.Lock()
	current := c.current
	c.mu.Unlock()
	if current == nil {
		return nil, ErrNoCurrentPractice
	}

	resp, err := c.api.SubmitAnswer(ctx, current.ID, answer)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if resp.AdjustmentMode != nil {
		c.adjustment = *resp.AdjustmentMode
	}
	if resp.Evaluated && c.current != nil && c.current.ID == current.ID {
		c.current = nil
	}
	notify := resp.AdjustmentCompleted && c.onComplete != nil
	c.mu.Unlock()

	if notify {
		c.onComplete()
	}
	return resp, nil
}

// EnterAdjustmentMode asks the server to start recalibrating. Prefetched
// practices were generated at the old pacing and are dropped.
func (c *Controller) EnterAdjustmentMode(ctx context.Context) (client.AdjustmentMode, error) {
	c.mu.Lock()
	subject := c.subject
	c.mu.Unlock()

	state, err := c.api.EnterAdjustmentMode(ctx, subject)
	if err != nil {
		return client.AdjustmentMode{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.adjustment = *state
	c.invalidateLocked()
	return c.adjustment, nil
}

// SetType switches the exercise type and always empties the queue.
func (c *Controller) SetType(exType string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exType = exType
	c.invalidateLocked()
	c.current = nil
}

// SetSubject switches the learning subject and always empties the queue.
func (c *Controller) SetSubject(subject string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subject = subject
	c.invalidateLocked()
	c.current = nil
}

func (c *Controller) QueueLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// Adjustment returns the last adjustment state reported by the server.
func (c *Controller) Adjustment() client.AdjustmentMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.adjustment
}

func (c *Controller) Current() *client.Practice {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil
	}
	p := *c.current
	return &p
}

// Wait blocks until in-flight prefetches finish.
func (c *Controller) Wait() {
	c.prefetch.Wait()
}

func (c *Controller) invalidateLocked() {
	c.queue = nil
	c.epoch++
	c.refilling = false
}

func (c *Controller) requestLocked(batch int) client.GenerateRequest {
	if c.adjustment.IsInAdjustmentMode {
		batch = 1
	}
	return client.GenerateRequest{
		UserID:          c.userID,
		LearningSubject: c.subject,
		Type:            c.exType,
		BatchSize:       batch,
	}
}

// maybeRefillLocked starts one background prefetch when the queue is below
// the low-water mark. Adjustment mode never prefetches.
func (c *Controller) maybeRefillLocked() {
	if c.adjustment.IsInAdjustmentMode || c.refilling || len(c.queue) >= c.lowWater {
		return
	}
	c.refilling = true
	req := c.requestLocked(c.batch)
	epoch := c.epoch

	c.prefetch.Add(1)
	go func() {
		defer c.prefetch.Done()
		ctx, cancel := context.WithTimeout(context.Background(), refillTimeout)
		defer cancel()

		resp, err := c.api.GeneratePractice(ctx, req)

		c.mu.Lock()
		defer c.mu.Unlock()
		if epoch != c.epoch {
			return
		}
		c.refilling = false
		if err != nil {
			log.Printf("Error prefetching practices: %v", err)
			return
		}
		c.adjustment = resp.AdjustmentMode
		if c.adjustment.IsInAdjustmentMode {
			return
		}
		c.queue = append(c.queue, resp.Data)
		c.queue = append(c.queue, resp.Batch...)
	}()
}
