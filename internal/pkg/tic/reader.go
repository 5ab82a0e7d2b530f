package tic

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/samber/lo"
	"go.bug.st/serial"
	"go.uber.org/zap"

	"github.com/anicoll/linky-integration/internal/pkg/config"
)

var ErrConnect = errors.New("unable to open serial port")

type portOpener func(cfg *config.SerialConfig) (io.ReadCloser, error)

type Option func(*Reader)

// WithOpener replaces the serial port with any byte source.
func WithOpener(open func(cfg *config.SerialConfig) (io.ReadCloser, error)) Option {
	return func(r *Reader) {
		r.open = open
	}
}

// WithBackOff sets the reconnect policy.
func WithBackOff(b backoff.BackOff) Option {
	return func(r *Reader) {
		r.backOff = b
	}
}

// Reader keeps the latest complete TIC frame read from the serial link and
// notifies subscribers after every frame.
type Reader struct {
	cfg     *config.SerialConfig
	open    portOpener
	backOff backoff.BackOff
	logger  *zap.Logger

	mu        sync.RWMutex
	values    Frame
	connected bool
	fullFrame bool
	ident     Identification

	subsMu sync.Mutex
	subs   map[uint64]subscriber
	nextID uint64
}

type subscriber struct {
	tag string
	fn  func(realtime bool)
}

func New(cfg *config.SerialConfig, opts ...Option) *Reader {
	r := &Reader{
		cfg:    cfg,
		open:   openSerial,
		logger: zap.L(),
		values: Frame{},
		ident:  ParseIdentification(""),
		subs:   make(map[uint64]subscriber),
	}
	for _, o := range opts {
		o(r)
	}
	if r.backOff == nil {
		b := backoff.NewExponentialBackOff()
		b.MaxElapsedTime = 0 // retry until the context ends
		b.MaxInterval = time.Minute
		r.backOff = b
	}
	return r
}

func openSerial(cfg *config.SerialConfig) (io.ReadCloser, error) {
	port, err := serial.Open(cfg.Port, &serial.Mode{
		BaudRate: cfg.Mode.BaudRate(),
		DataBits: 7,
		Parity:   serial.EvenParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrConnect, cfg.Port, err)
	}
	return port, nil
}

// Run reads the serial link until ctx is done, reconnecting on failure.
func (r *Reader) Run(ctx context.Context) error {
	op := func() error {
		err := r.readPort(ctx)
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		return err
	}
	notify := func(err error, next time.Duration) {
		r.logger.Warn("serial link lost, reconnecting", zap.String("port", r.cfg.Port), zap.Duration("retry_in", next), zap.Error(err))
	}
	return backoff.RetryNotify(op, backoff.WithContext(r.backOff, ctx), notify)
}

func (r *Reader) readPort(ctx context.Context) error {
	port, err := r.open(r.cfg)
	if err != nil {
		return err
	}
	r.setConnected(true)
	r.logger.Info("serial link opened", zap.String("port", r.cfg.Port), zap.String("mode", string(r.cfg.Mode)))
	defer r.setConnected(false)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = port.Close()
		case <-done:
			_ = port.Close()
		}
	}()

	if err := r.consume(port); err != nil {
		return err
	}
	r.backOff.Reset()
	return io.EOF
}

// consume decodes src until it fails. A clean EOF returns nil.
func (r *Reader) consume(src io.Reader) error {
	dec := newDecoder(r.cfg.Mode, func(err error) {
		r.logger.Warn("dropping invalid group", zap.Error(err))
	})
	buf := make([]byte, 256)
	for {
		n, err := src.Read(buf)
		for _, b := range buf[:n] {
			frame, ferr := dec.feed(b)
			if ferr != nil {
				r.logger.Debug("frame interrupted", zap.Error(ferr))
				continue
			}
			if frame != nil {
				r.handleFrame(frame)
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (r *Reader) setConnected(connected bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connected = connected
	if connected {
		r.fullFrame = false
	}
}

func (r *Reader) handleFrame(f Frame) {
	r.mu.Lock()
	if !r.fullFrame {
		r.logger.Debug("first full frame read", zap.Int("groups", len(f)))
	}
	r.values = f
	r.fullFrame = true
	for _, label := range []string{LabelADSC, LabelADCO} {
		if g, ok := f[label]; ok && g.Value != r.ident.Serial {
			r.ident = ParseIdentification(g.Value)
			break
		}
	}
	r.mu.Unlock()

	r.notify()
}

func (r *Reader) notify() {
	r.subsMu.Lock()
	ids := lo.Keys(r.subs)
	slices.Sort(ids)
	subs := lo.Map(ids, func(id uint64, _ int) subscriber { return r.subs[id] })
	r.subsMu.Unlock()

	for _, sub := range subs {
		r.logger.Debug("notifying subscriber", zap.String("tag", sub.tag))
		sub.fn(r.cfg.RealTime)
	}
}

// GetValue returns the value of label in the last complete frame.
func (r *Reader) GetValue(label string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.values[label]
	if !ok {
		return "", false
	}
	return g.Value, true
}

func (r *Reader) HasReadFullFrame() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fullFrame
}

func (r *Reader) IsConnected() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.connected
}

func (r *Reader) Identification() Identification {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ident
}

// Subscription is released with Close.
type Subscription interface {
	Close()
}

type subscription struct {
	r    *Reader
	id   uint64
	once sync.Once
}

func (s *subscription) Close() {
	s.once.Do(func() {
		s.r.subsMu.Lock()
		defer s.r.subsMu.Unlock()
		delete(s.r.subs, s.id)
	})
}

// Subscribe calls fn on the reader goroutine after every complete frame, in
// subscription order. tag is not used for dispatch: fn runs whether tag was
// in the frame or not, so the subscriber can see it go missing.
func (r *Reader) Subscribe(tag string, fn func(realtime bool)) Subscription {
	r.subsMu.Lock()
	defer r.subsMu.Unlock()
	r.nextID++
	r.subs[r.nextID] = subscriber{tag: tag, fn: fn}
	return &subscription{r: r, id: r.nextID}
}
