package notifier

import (
	"context"
	"sync"
	"time"

	"emr-auth/pkg/logger"

	"github.com/google/uuid"
)

// maxReasonLen bounds failure reasons in log output
const maxReasonLen = 120

type message struct {
	id           string
	mobileNumber string
	text         string
}

// Dispatcher delivers text messages asynchronously. Send enqueues and
// returns immediately; a single worker attempts each configured channel in
// order and absorbs every failure. Callers cannot observe delivery outcome
// through this interface.
type Dispatcher struct {
	channels    []Channel
	queue       chan message
	done        chan struct{}
	wg          sync.WaitGroup
	closeOnce   sync.Once
	sendTimeout time.Duration
	logger      *logger.Logger
}

// NewDispatcher creates a dispatcher over the given delivery channels in
// fallback order. With no channels configured it degrades to log-only mode.
func NewDispatcher(channels []Channel, queueSize int, sendTimeout time.Duration, log *logger.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 1
	}

	d := &Dispatcher{
		channels:    channels,
		queue:       make(chan message, queueSize),
		done:        make(chan struct{}),
		sendTimeout: sendTimeout,
		logger:      log,
	}

	d.wg.Add(1)
	go d.run()

	return d
}

// Send enqueues a message for delivery. It never blocks and never reports
// failure; a full queue drops the message with a log line.
func (d *Dispatcher) Send(mobileNumber, text string) {
	msg := message{
		id:           uuid.NewString(),
		mobileNumber: mobileNumber,
		text:         text,
	}

	select {
	case d.queue <- msg:
	case <-d.done:
	default:
		d.logger.Warnw("Notification queue full, message dropped",
			"message_id", msg.id,
			"mobile_number", mobileNumber,
		)
	}
}

// Close stops the worker after draining queued messages
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.done)
		d.wg.Wait()
	})
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case msg := <-d.queue:
			d.deliver(msg)
		case <-d.done:
			for {
				select {
				case msg := <-d.queue:
					d.deliver(msg)
				default:
					return
				}
			}
		}
	}
}

// deliver tries each channel in order and stops at the first success. With
// no channels configured the would-be message is only logged.
func (d *Dispatcher) deliver(msg message) {
	if len(d.channels) == 0 {
		d.logger.Warnw("No notification channels configured, message not sent",
			"message_id", msg.id,
			"mobile_number", msg.mobileNumber,
			"text", msg.text,
		)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
	defer cancel()

	for _, ch := range d.channels {
		err := ch.Send(ctx, msg.mobileNumber, msg.text)
		if err == nil {
			d.logger.Infow("Notification delivered",
				"message_id", msg.id,
				"channel", ch.Name(),
				"mobile_number", msg.mobileNumber,
			)
			return
		}

		d.logger.Warnw("Notification channel failed, falling back",
			"message_id", msg.id,
			"channel", ch.Name(),
			"mobile_number", msg.mobileNumber,
			"reason", truncate(err.Error(), maxReasonLen),
		)
	}

	d.logger.Errorw("All notification channels failed",
		"message_id", msg.id,
		"mobile_number", msg.mobileNumber,
	)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
