package scheduler

import (
	"context"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/feedwatch/pkg/domain"
)

// DefaultPacing is the pause after every send attempt
const DefaultPacing = 3 * time.Second

// Dispatcher sends items to the notifier one by one with a fixed pause after each attempt
type Dispatcher struct {
	notifier Notifier
	journal  Journal // optional
	pacing   time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
}

// DispatcherParams holds Dispatcher dependencies
type DispatcherParams struct {
	Notifier Notifier
	Journal  Journal       // optional, records every attempt
	Pacing   time.Duration // pause after each send, DefaultPacing if zero
}

// NewDispatcher makes a Dispatcher
func NewDispatcher(params DispatcherParams) *Dispatcher {
	if params.Pacing <= 0 {
		params.Pacing = DefaultPacing
	}
	return &Dispatcher{
		notifier: params.Notifier,
		journal:  params.Journal,
		pacing:   params.Pacing,
		sleep:    sleepCtx,
	}
}

// DispatchAll sends all elevated items, then all normal items, each list in order.
// Every send is a single attempt; failures are logged and the rest still go out.
// It stops early only if ctx is canceled, after the current send.
func (d *Dispatcher) DispatchAll(ctx context.Context, elevated, normal []domain.Item) (sent, failed int) {
	total := len(elevated) + len(normal)
	if total == 0 {
		return 0, 0
	}
	lgr.Printf("[INFO] dispatching %d elevated and %d normal items", len(elevated), len(normal))

	for _, list := range [][]domain.Item{elevated, normal} {
		for _, item := range list {
			if ctx.Err() != nil {
				lgr.Printf("[INFO] dispatch interrupted, %d items not sent", total-sent-failed)
				return sent, failed
			}

			if err := d.send(ctx, item); err != nil {
				failed++
			} else {
				sent++
			}

			if err := d.sleep(ctx, d.pacing); err != nil {
				lgr.Printf("[DEBUG] dispatch pause interrupted: %v", err)
			}
		}
	}

	lgr.Printf("[INFO] dispatch completed, sent %d, failed %d", sent, failed)
	return sent, failed
}

func (d *Dispatcher) send(ctx context.Context, item domain.Item) error {
	err := d.notifier.Notify(ctx, item)
	if err != nil {
		lgr.Printf("[WARN] failed to send %s item %s: %v", item.Tier, item.Key(), err)
	} else {
		lgr.Printf("[DEBUG] sent %s item %s", item.Tier, item.Key())
	}

	if d.journal != nil {
		if jerr := d.journal.Record(ctx, item, err); jerr != nil {
			lgr.Printf("[WARN] failed to record delivery of %s: %v", item.Key(), jerr)
		}
	}
	return err
}

// sleepCtx waits for d or until ctx is done
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
