package services

import (
	"context"
	"log"
	"sync"
	"time"

	"task-assign.com/task-assign/internal/events"
	"task-assign.com/task-assign/internal/metrics"
	repository "task-assign.com/task-assign/internal/repositories"
)

type reminderSource interface {
	DueReminders(ctx context.Context, asOf time.Time, after *repository.ReminderCursor, limit int) ([]DueReminder, error)
}

// DispatchService delivers task events to a publisher from a bounded queue
// drained by a fixed set of workers, and periodically enqueues reminder_due
// events for open tasks whose reminder has come due.
type DispatchService struct {
	queue     chan events.Event
	wg        sync.WaitGroup
	sweepWG   sync.WaitGroup
	mu        sync.RWMutex
	closed    bool
	publisher events.Publisher
	sweepStop chan struct{}

	sweepMu sync.Mutex
	// resume is where the next sweep starts when the previous one stopped
	// on a full queue or a failed page.
	resume *repository.ReminderCursor
}

func NewDispatchService(publisher events.Publisher, workers int, queueSize int) *DispatchService {
	p := &DispatchService{
		queue:     make(chan events.Event, queueSize),
		publisher: publisher,
		sweepStop: make(chan struct{}),
	}

	for i := 1; i <= workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	return p
}

// Enqueue never blocks. It reports false when the queue is full or the
// dispatcher has been shut down.
func (p *DispatchService) Enqueue(e events.Event) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return false
	}

	select {
	case p.queue <- e:
		return true
	default:
		metrics.EventsDropped.Inc()
		return false
	}
}

func (p *DispatchService) worker(workerID int) {
	defer p.wg.Done()

	log.Printf("event worker %d started", workerID)

	for e := range p.queue {
		p.handleEvent(workerID, e)
	}

	log.Printf("event worker %d stopped", workerID)
}

func (p *DispatchService) handleEvent(workerID int, e events.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := p.publisher.Publish(ctx, e); err != nil {
		metrics.EventsPublished.WithLabelValues("error").Inc()
		log.Printf("event worker %d: publish %s for task %d failed: %v", workerID, e.Type, e.TaskID, err)
		return
	}
	metrics.EventsPublished.WithLabelValues("ok").Inc()
}

// StartReminderSweep runs SweepReminders every interval until Shutdown.
func (p *DispatchService) StartReminderSweep(source reminderSource, interval time.Duration, batch int) {
	p.sweepWG.Add(1)
	go p.sweepLoop(source, interval, batch)
}

func (p *DispatchService) sweepLoop(source reminderSource, interval time.Duration, batch int) {
	defer p.sweepWG.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.SweepReminders(context.Background(), source, time.Now(), batch)
		case <-p.sweepStop:
			return
		}
	}
}

// SweepReminders enqueues one reminder_due event per assignee of every due
// reminder, reading batch reminders per page, and returns how many were
// enqueued. When the queue fills up the sweep stops, and the next one picks
// up after the last reminder that was fully enqueued.
func (p *DispatchService) SweepReminders(ctx context.Context, source reminderSource, now time.Time, batch int) int {
	if batch <= 0 {
		return 0
	}

	p.sweepMu.Lock()
	defer p.sweepMu.Unlock()

	cursor := p.resume
	p.resume = nil

	enqueued := 0
	for {
		due, err := source.DueReminders(ctx, now, cursor, batch)
		if err != nil {
			log.Printf("reminder sweep: failed to list due reminders: %v", err)
			p.resume = cursor
			return enqueued
		}

		for _, r := range due {
			for _, userID := range r.UserIDs {
				if !p.Enqueue(events.New(events.ReminderDue, r.TaskID, userID)) {
					log.Printf("reminder sweep: queue full after %d reminders, resuming at task %d", enqueued, r.TaskID)
					p.resume = cursor
					return enqueued
				}
				enqueued++
			}
			cursor = r.cursor()
		}

		if len(due) < batch {
			return enqueued
		}
	}
}

func (p *DispatchService) Shutdown(ctx context.Context) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.sweepStop)
	close(p.queue)
	p.mu.Unlock()

	p.sweepWG.Wait()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("event dispatcher shut down cleanly")
	case <-ctx.Done():
		log.Println("event dispatcher shutdown timed out")
	}
}
