// Package gateway talks to devices through their gateways: commands go out
// on a reliable asynchronous channel, replies and device events come back on
// another, and the Dispatcher correlates the two.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/devlogs/internal/common"
	"github.com/dmitrijs2005/devlogs/internal/logging"
	"github.com/dmitrijs2005/devlogs/internal/server/models"
	"github.com/google/uuid"
)

// EventSink receives device upload events. A non-nil error means the event
// was not applied and should be delivered again.
type EventSink func(ctx context.Context, deviceSN, fileID string, ev models.DeviceEvent) error

// handleAttempts bounds how often Run retries a message whose handling failed
// before leaving it unacknowledged.
const handleAttempts = 3

// Dispatcher sends commands to device sessions and waits for correlated
// replies. Run must be running for any command to complete.
type Dispatcher struct {
	pub          Publisher
	sub          Subscriber
	sessions     *SessionRegistry
	log          logging.Logger
	replyTimeout time.Duration
	retryDelay   time.Duration

	mu      sync.Mutex
	pending map[string]chan *Envelope

	sinksMu  sync.RWMutex
	sinks    map[uint64]EventSink
	nextSink uint64

	now   func() time.Time
	newID func() string
}

func NewDispatcher(pub Publisher, sub Subscriber, sessions *SessionRegistry, log logging.Logger, replyTimeout time.Duration) *Dispatcher {
	return &Dispatcher{
		pub:          pub,
		sub:          sub,
		sessions:     sessions,
		log:          log,
		replyTimeout: replyTimeout,
		retryDelay:   time.Second,
		pending:      make(map[string]chan *Envelope),
		sinks:        make(map[uint64]EventSink),
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

// Register adds an event sink and returns a function removing it.
func (d *Dispatcher) Register(sink EventSink) (unregister func()) {
	d.sinksMu.Lock()
	id := d.nextSink
	d.nextSink++
	d.sinks[id] = sink
	d.sinksMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			d.sinksMu.Lock()
			delete(d.sinks, id)
			d.sinksMu.Unlock()
		})
	}
}

// SendStart asks the device to upload files as part of requestID.
func (d *Dispatcher) SendStart(ctx context.Context, deviceSN, requestID string, files []*models.FileEntry) error {
	data := StartData{Files: make([]FileCommand, 0, len(files))}
	for _, f := range files {
		data.Files = append(data.Files, FileCommand{
			FileID:    f.FileID,
			Module:    f.Domain,
			BootIndex: f.BootIndex,
			StartTime: unixMilli(f.StartTime),
			EndTime:   unixMilli(f.EndTime),
		})
	}
	_, err := d.call(ctx, deviceSN, requestID, MethodFileUploadStart, data)
	return err
}

// SendUpdate forwards per-file targets of requestID to the device.
func (d *Dispatcher) SendUpdate(ctx context.Context, deviceSN, requestID string, targets []models.FileTarget) error {
	data := UpdateData{Targets: make([]TargetCommand, 0, len(targets))}
	for _, t := range targets {
		data.Targets = append(data.Targets, TargetCommand{FileID: t.FileID, Action: string(t.Action)})
	}
	_, err := d.call(ctx, deviceSN, requestID, MethodFileUploadUpdate, data)
	return err
}

// QueryDomains lists the log files the device currently holds for domains.
func (d *Dispatcher) QueryDomains(ctx context.Context, deviceSN string, domains []string) ([]models.DomainDescriptor, error) {
	reply, err := d.call(ctx, deviceSN, "", MethodFileUploadList, ListData{Modules: domains})
	if err != nil {
		return nil, err
	}

	var out ListReply
	if err := reply.DecodeData(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	result := make([]models.DomainDescriptor, 0, len(out.Files))
	for _, m := range out.Files {
		desc := models.DomainDescriptor{DeviceSN: m.DeviceSN, Domain: m.Module}
		if desc.DeviceSN == "" {
			desc.DeviceSN = deviceSN
		}
		for _, f := range m.List {
			desc.Files = append(desc.Files, models.LogFileDescriptor{
				BootIndex: f.BootIndex,
				StartTime: fromUnixMilli(f.StartTime),
				EndTime:   fromUnixMilli(f.EndTime),
				Size:      f.Size,
			})
		}
		result = append(result, desc)
	}
	return result, nil
}

func (d *Dispatcher) call(ctx context.Context, deviceSN, tid, method string, data any) (*Envelope, error) {
	session, ok := d.sessions.Lookup(deviceSN)
	if !ok {
		return nil, fmt.Errorf("%w: %s", common.ErrDeviceUnreachable, deviceSN)
	}

	bid := d.newID()
	env, err := newEnvelope(KindCommand, method, deviceSN, bid, tid, data, d.now())
	if err != nil {
		return nil, err
	}
	env.Gateway = session.GatewaySN

	ch := make(chan *Envelope, 1)
	d.mu.Lock()
	d.pending[bid] = ch
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		delete(d.pending, bid)
		d.mu.Unlock()
	}()

	if d.replyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.replyTimeout)
		defer cancel()
	}

	if err := d.pub.Publish(ctx, env); err != nil {
		return nil, fmt.Errorf("publish %s to %s: %w", method, deviceSN, err)
	}

	select {
	case reply := <-ch:
		if reply.Result != 0 {
			return nil, fmt.Errorf("%w: %s returned %d", common.ErrDeviceRejected, method, reply.Result)
		}
		return reply, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: no reply to %s from %s", common.ErrTimeout, method, deviceSN)
		}
		return nil, ctx.Err()
	}
}

// Run loads known sessions and consumes the gateway stream until ctx is
// done. A message is acknowledged once handled; one that keeps failing is
// left unacknowledged.
func (d *Dispatcher) Run(ctx context.Context) error {
	if err := d.sessions.Load(ctx); err != nil {
		return err
	}
	for {
		env, ack, err := d.sub.Consume(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			if errors.Is(err, ErrMalformed) {
				d.log.Warn(ctx, "dropping gateway message", "error", err)
				continue
			}
			d.log.Error(ctx, "gateway consume failed", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(d.retryDelay):
			}
			continue
		}

		ack(d.handleWithRetry(ctx, env))
	}
}

func (d *Dispatcher) handleWithRetry(ctx context.Context, env *Envelope) bool {
	for attempt := 1; ; attempt++ {
		err := d.handle(ctx, env)
		if err == nil {
			return true
		}
		if attempt == handleAttempts || ctx.Err() != nil {
			d.log.Error(ctx, "gateway message not handled", "method", env.Method, "bid", env.Bid, "attempts", attempt, "error", err)
			return false
		}
		d.log.Warn(ctx, "retrying gateway message", "method", env.Method, "bid", env.Bid, "error", err)
		select {
		case <-ctx.Done():
		case <-time.After(d.retryDelay):
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, env *Envelope) error {
	if env.Kind == KindReply {
		d.resolve(ctx, env)
		return nil
	}

	switch env.Method {
	case MethodSessionOnline:
		if err := d.sessions.Connect(ctx, env.DeviceSN, env.Gateway, fromUnixMilli(env.Timestamp)); err != nil {
			return err
		}
		d.log.Info(ctx, "device online", "device_sn", env.DeviceSN, "gateway", env.Gateway)
	case MethodSessionOffline:
		if err := d.sessions.Disconnect(ctx, env.DeviceSN); err != nil {
			return err
		}
		d.log.Info(ctx, "device offline", "device_sn", env.DeviceSN)
	case MethodFileUploadProgress:
		var p ProgressData
		if err := env.DecodeData(&p); err != nil {
			d.log.Warn(ctx, "bad progress payload", "device_sn", env.DeviceSN, "bid", env.Bid, "error", err)
			return nil
		}
		ev, ok := p.Event()
		if !ok {
			d.log.Warn(ctx, "unknown upload status", "device_sn", env.DeviceSN, "status", p.Status)
			return nil
		}
		return d.dispatch(ctx, env.DeviceSN, p.FileID, ev)
	default:
		d.log.Debug(ctx, "no handler for gateway method", "method", env.Method, "bid", env.Bid)
	}
	return nil
}

func (d *Dispatcher) resolve(ctx context.Context, env *Envelope) {
	d.mu.Lock()
	ch, ok := d.pending[env.Bid]
	d.mu.Unlock()
	if !ok {
		d.log.Debug(ctx, "reply for unknown bid dropped", "bid", env.Bid, "method", env.Method)
		return
	}
	select {
	case ch <- env:
	default:
		d.log.Debug(ctx, "duplicate reply dropped", "bid", env.Bid)
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, deviceSN, fileID string, ev models.DeviceEvent) error {
	d.sinksMu.RLock()
	sinks := make([]EventSink, 0, len(d.sinks))
	for _, s := range d.sinks {
		sinks = append(sinks, s)
	}
	d.sinksMu.RUnlock()

	if len(sinks) == 0 {
		d.log.Debug(ctx, "no sink registered for device event", "device_sn", deviceSN, "file_id", fileID)
		return nil
	}
	var errs []error
	for _, s := range sinks {
		if err := s(ctx, deviceSN, fileID, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
