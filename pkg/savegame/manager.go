// Package savegame frames extension data inside a save stream and drives the
// two-phase load: every participant reads its records first, then deferred
// references are resolved in one pass.
package savegame

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"extframe/pkg/diag"
	"extframe/pkg/stream"
	"extframe/pkg/swizzle"
)

// Magic opens every stream written by a Manager ("EXTF" little endian).
const Magic uint32 = 'E' | 'X'<<8 | 'T'<<16 | 'F'<<24

// FormatVersion is the stream layout version written by Save.
const FormatVersion uint32 = 1

const (
	opSave = "savegame.save"
	opLoad = "savegame.load"
)

var (
	// ErrBadHeader reports a stream without the expected magic or version.
	ErrBadHeader = errors.New("savegame: bad header")
	// ErrDuplicateParticipant reports two participants sharing a name.
	ErrDuplicateParticipant = errors.New("savegame: duplicate participant")
	// ErrUnknownParticipant reports a stream section no participant claims.
	ErrUnknownParticipant = errors.New("savegame: unknown participant")
	// ErrSessionClosed reports use of a session after End.
	ErrSessionClosed = errors.New("savegame: session closed")
)

// Participant is a named section of the save stream. ext.Container satisfies
// it.
type Participant interface {
	Name() string
	SaveAll(w *stream.Writer) error
	LoadAll(r *stream.Reader, sw *swizzle.Resolver) error
}

// Manager saves and loads an ordered set of participants.
type Manager struct {
	participants []Participant
	byName       map[string]Participant
	logger       diag.Logger
	metrics      diag.MetricsRecorder
	tracer       diag.Tracer
	clock        diag.Clock
}

// Option customises a Manager.
type Option func(*Manager)

// WithLogger sets the manager logger.
func WithLogger(l diag.Logger) Option {
	return func(m *Manager) { m.logger = diag.LoggerOrNop(l) }
}

// WithMetricsRecorder records save and load outcomes.
func WithMetricsRecorder(r diag.MetricsRecorder) Option {
	return func(m *Manager) { m.metrics = diag.MetricsOrNop(r) }
}

// WithTracer opens a span around every save and load.
func WithTracer(t diag.Tracer) Option {
	return func(m *Manager) {
		if t == nil {
			t = diag.NopTracer{}
		}
		m.tracer = t
	}
}

// WithClock overrides the clock used for duration accounting.
func WithClock(c diag.Clock) Option {
	return func(m *Manager) {
		if c == nil {
			c = diag.SystemClock
		}
		m.clock = c
	}
}

// NewManager returns a manager with no participants.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		byName:  make(map[string]Participant),
		logger:  diag.NopLogger{},
		metrics: diag.NopMetrics{},
		tracer:  diag.NopTracer{},
		clock:   diag.SystemClock,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register appends participants in save order.
func (m *Manager) Register(ps ...Participant) error {
	for _, p := range ps {
		name := p.Name()
		if _, ok := m.byName[name]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateParticipant, name)
		}
		m.byName[name] = p
		m.participants = append(m.participants, p)
	}
	return nil
}

// Participants returns the registered participant names in save order.
func (m *Manager) Participants() []string {
	names := make([]string, len(m.participants))
	for i, p := range m.participants {
		names[i] = p.Name()
	}
	return names
}

type session struct {
	m      *Manager
	ctx    context.Context
	span   diag.TraceSpan
	op     string
	start  time.Time
	closed bool
}

func (m *Manager) begin(ctx context.Context, op string) session {
	ctx, span := m.tracer.Start(ctx, op)
	return session{m: m, ctx: ctx, span: span, op: op, start: m.clock.Now()}
}

func (s *session) finish(err error) error {
	s.closed = true
	s.span.End(err)
	s.m.metrics.Observe(s.ctx, s.op, err == nil, s.m.clock.Now().Sub(s.start))
	if err != nil {
		s.m.logger.Error("save stream failed", "operation", s.op, "error", err)
	}
	return err
}

// SaveSession is a save in progress. The host may write its own data through
// Stream before End appends the participant sections.
type SaveSession struct {
	session
	w *stream.Writer
}

// BeginSave writes the stream header.
func (m *Manager) BeginSave(ctx context.Context, w io.Writer) (*SaveSession, error) {
	s := &SaveSession{session: m.begin(ctx, opSave), w: stream.NewWriter(w)}
	if err := s.writeHeader(); err != nil {
		return nil, s.finish(fmt.Errorf("savegame: write header: %w", err))
	}
	return s, nil
}

func (s *SaveSession) writeHeader() error {
	if err := s.w.WriteUint32(Magic); err != nil {
		return err
	}
	if err := s.w.WriteUint32(FormatVersion); err != nil {
		return err
	}
	return s.w.WriteCount(len(s.m.participants))
}

// Stream returns the underlying writer for host data.
func (s *SaveSession) Stream() *stream.Writer { return s.w }

// End writes every participant section and closes the session.
func (s *SaveSession) End() error {
	if s.closed {
		return ErrSessionClosed
	}
	for _, p := range s.m.participants {
		if err := s.ctx.Err(); err != nil {
			return s.finish(err)
		}
		if err := s.w.WriteString(p.Name()); err != nil {
			return s.finish(fmt.Errorf("savegame: %s: %w", p.Name(), err))
		}
		if err := p.SaveAll(s.w); err != nil {
			return s.finish(fmt.Errorf("savegame: %s: %w", p.Name(), err))
		}
	}
	s.m.logger.Info("save stream written", "participants", len(s.m.participants), "bytes", s.w.Offset())
	return s.finish(nil)
}

// Save writes a complete stream.
func (m *Manager) Save(ctx context.Context, w io.Writer) error {
	s, err := m.BeginSave(ctx, w)
	if err != nil {
		return err
	}
	return s.End()
}

// LoadSession is a load in progress. The host may read its own data through
// Stream and announce its objects to Resolver before End loads the
// participant sections and resolves every deferred reference.
type LoadSession struct {
	session
	r     *stream.Reader
	sw    *swizzle.Resolver
	count int
}

// BeginLoad validates the stream header.
func (m *Manager) BeginLoad(ctx context.Context, r io.Reader) (*LoadSession, error) {
	s := &LoadSession{
		session: m.begin(ctx, opLoad),
		r:       stream.NewReader(r),
		sw:      swizzle.NewResolver(swizzle.WithLogger(m.logger)),
	}
	if err := s.readHeader(); err != nil {
		return nil, s.finish(err)
	}
	return s, nil
}

func (s *LoadSession) readHeader() error {
	magic, err := s.r.ReadUint32()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBadHeader, err)
	}
	if magic != Magic {
		return fmt.Errorf("%w: magic %#08x", ErrBadHeader, magic)
	}
	version, err := s.r.ReadUint32()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBadHeader, err)
	}
	if version != FormatVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrBadHeader, version)
	}
	count, err := s.r.ReadCount()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBadHeader, err)
	}
	s.count = count
	return nil
}

// Stream returns the underlying reader for host data.
func (s *LoadSession) Stream() *stream.Reader { return s.r }

// Resolver returns the session's swizzle resolver.
func (s *LoadSession) Resolver() *swizzle.Resolver { return s.sw }

// End loads every participant section, resolves deferred references and
// closes the session. Registered participants absent from the stream keep
// their current state.
func (s *LoadSession) End() error {
	if s.closed {
		return ErrSessionClosed
	}
	loaded := make(map[string]struct{}, s.count)
	for range s.count {
		if err := s.ctx.Err(); err != nil {
			return s.finish(err)
		}
		name, err := s.r.ReadString()
		if err != nil {
			return s.finish(fmt.Errorf("savegame: section name: %w", err))
		}
		p, ok := s.m.byName[name]
		if !ok {
			return s.finish(fmt.Errorf("%w: %s", ErrUnknownParticipant, name))
		}
		if _, dup := loaded[name]; dup {
			return s.finish(fmt.Errorf("%w: %s", ErrDuplicateParticipant, name))
		}
		loaded[name] = struct{}{}
		if err := p.LoadAll(s.r, s.sw); err != nil {
			return s.finish(fmt.Errorf("savegame: %s: %w", name, err))
		}
	}
	for _, p := range s.m.participants {
		if _, ok := loaded[p.Name()]; !ok {
			s.m.logger.Warn("participant missing from save stream", "participant", p.Name())
		}
	}
	pending := s.sw.Pending()
	if err := s.sw.Resolve(); err != nil {
		return s.finish(fmt.Errorf("savegame: resolve: %w", err))
	}
	s.m.logger.Info("save stream loaded", "participants", len(loaded), "references", pending, "bytes", s.r.Offset())
	return s.finish(nil)
}

// Load reads a complete stream written by Save.
func (m *Manager) Load(ctx context.Context, r io.Reader) error {
	s, err := m.BeginLoad(ctx, r)
	if err != nil {
		return err
	}
	return s.End()
}
