package engine

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
)

// Session is the protocol engine for one sensor link. All state mutation
// happens on a single event-loop goroutine started by NewSession; the
// only exported methods safe to call from other goroutines are Feed,
// Close, Diagnostic, and the operations reachable through Handle.
type Session struct {
	logger     *log.Logger
	transport  Transport
	publisher  Publisher
	scheduler  Scheduler
	dataErrThreshold int

	events   chan loopTask
	txCh     chan []byte
	done     chan struct{}
	loopDone chan struct{}
	stopOnce sync.Once
	closed   atomic.Bool

	handle *Handle

	// -- protocol state, loop-goroutine owned --
	phase       Phase
	sensorType  uint8
	numModes    uint8
	numViewModes uint8
	currentMode uint8
	infoFlags   uint16
	newBaudRate int
	dataErrorCount int
	lastDataSeen   bool
	lastError      string
	modes       [NumModesMax]ModeInfo

	rxBuffer [BufferSize]byte
	writePtr int

	ackTimer      CancelHandle
	baudTimer     CancelHandle
	watchdogTimer CancelHandle

	stats struct {
		resyncCount    uint64
		framesAccepted uint64
		framesRejected uint64
	}

	// -- read path, guarded for concurrent Handle access --
	mu   sync.RWMutex
	view sessionView
}

type sessionView struct {
	phase          Phase
	sensorType     uint8
	numModes       uint8
	currentMode    uint8
	modes          [NumModesMax]ModeInfo
	lastError      string
	dataErrorCount int
	resyncCount    uint64
	framesAccepted uint64
	framesRejected uint64
}

// loopTask is a closure executed by the event loop goroutine, carrying
// whatever context it needs (bytes, a reply channel, ...) via closure
// capture. This is the tagged-variant event the loop consumes; every
// event kind (bytes delivered, a timer firing, a control request,
// teardown) is represented the same way.
type loopTask func(*Session)

// Options configures a new Session. Transport is required; Publisher,
// Scheduler, and Logger default to no-op/real/standard-log equivalents.
type Options struct {
	Transport        Transport
	Publisher        Publisher
	Scheduler        Scheduler
	Logger           *log.Logger
	DataErrThreshold int
}

// NewSession starts the event loop and transmit worker goroutines and
// returns a ready-to-feed Session.
func NewSession(opts Options) *Session {
	if opts.Publisher == nil {
		opts.Publisher = nopPublisher{}
	}
	if opts.Scheduler == nil {
		opts.Scheduler = NewScheduler()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.DataErrThreshold <= 0 {
		opts.DataErrThreshold = MaxDataErr
	}

	s := &Session{
		logger:           opts.Logger,
		transport:        opts.Transport,
		publisher:        opts.Publisher,
		scheduler:        opts.Scheduler,
		dataErrThreshold: opts.DataErrThreshold,
		events:           make(chan loopTask, 64),
		txCh:             make(chan []byte, 4),
		done:             make(chan struct{}),
		loopDone:         make(chan struct{}),
		phase:            PhaseUnsynced,
		sensorType:       SensorTypeUnknown,
		newBaudRate:      SpeedMin,
	}
	s.handle = &Handle{session: s}

	go s.runLoop()
	go s.runTxWorker()

	return s
}

// Feed delivers bytes read from the transport. Safe to call from any
// goroutine; it never blocks on protocol processing.
func (s *Session) Feed(data []byte) {
	if len(data) == 0 {
		return
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	s.enqueue(func(sess *Session) { sess.handleBytes(buf) })
}

// Diagnostic returns a point-in-time snapshot of session health. Safe to
// call from any goroutine.
func (s *Session) Diagnostic() Diagnostic {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Diagnostic{
		Phase:          s.view.phase,
		SensorType:     s.view.sensorType,
		CurrentMode:    s.view.currentMode,
		NumModes:       s.view.numModes,
		DataErrorCount: s.view.dataErrorCount,
		LastError:      s.view.lastError,
		ResyncCount:    s.view.resyncCount,
		FramesAccepted: s.view.framesAccepted,
		FramesRejected: s.view.framesRejected,
	}
}

// Handle returns the Publisher-facing handle for this session.
func (s *Session) Handle() *Handle { return s.handle }

// Close tears the session down: stops the event loop and transmit
// worker, cancels outstanding timers, and fires Publisher.OnDetach at
// most once: only if the session had left Unsynced or recorded a mode
// count. Safe to call more than once.
func (s *Session) Close() {
	s.stopOnce.Do(func() {
		reply := make(chan struct{})
		select {
		case s.events <- func(sess *Session) { sess.teardown(); close(reply) }:
			<-reply
		case <-s.done:
		}
		s.closed.Store(true)
		close(s.done)

		// runLoop is the only goroutine that calls transmit; waiting for
		// it to exit before closing txCh guarantees no send races the
		// close, even if a timer callback slipped past cancellation and
		// enqueued one last task.
		<-s.loopDone
		close(s.txCh)
	})
}

func (s *Session) teardown() {
	s.cancelTimers()
	wasAttached := s.phase != PhaseUnsynced || s.numModes > 0
	s.phase = PhaseUnsynced
	s.publishView()
	if wasAttached {
		s.publisher.OnDetach(s.handle)
	}
}

// enqueue hands task to the event loop. It reports false, without
// running task, if Close has already returned.
func (s *Session) enqueue(task loopTask) bool {
	if s.closed.Load() {
		return false
	}
	select {
	case s.events <- task:
		return true
	case <-s.done:
		return false
	}
}

func (s *Session) runLoop() {
	defer close(s.loopDone)
	for {
		select {
		case task := <-s.events:
			task(s)
		case <-s.done:
			return
		}
	}
}

func (s *Session) runTxWorker() {
	ctx := context.Background()
	for frame := range s.txCh {
		if err := s.transport.Write(ctx, frame); err != nil {
			s.logger.Printf("engine: transmit failed: %v", err)
		}
	}
}

// transmit hands a frame to the transmit worker without blocking the
// event loop. If the worker is backed up, the frame is dropped and
// logged rather than stalling protocol processing.
func (s *Session) transmit(frame []byte) {
	select {
	case s.txCh <- frame:
	default:
		s.logger.Printf("engine: transmit worker backed up, dropping %d-byte frame", len(frame))
	}
}

func (s *Session) cancelTimers() {
	if s.ackTimer != nil {
		s.ackTimer.Cancel()
		s.ackTimer = nil
	}
	if s.baudTimer != nil {
		s.baudTimer.Cancel()
		s.baudTimer = nil
	}
	if s.watchdogTimer != nil {
		s.watchdogTimer.Cancel()
		s.watchdogTimer = nil
	}
}

// publishView refreshes the mutex-guarded read snapshot. Called by the
// loop goroutine after any task that may have changed externally visible
// state. This is the one place a lock protects Session data; everything
// else is loop-goroutine-exclusive by construction.
func (s *Session) publishView() {
	s.mu.Lock()
	s.view.phase = s.phase
	s.view.sensorType = s.sensorType
	s.view.numModes = s.numModes
	s.view.currentMode = s.currentMode
	s.view.modes = s.modes
	s.view.lastError = s.lastError
	s.view.dataErrorCount = s.dataErrorCount
	s.view.resyncCount = s.stats.resyncCount
	s.view.framesAccepted = s.stats.framesAccepted
	s.view.framesRejected = s.stats.framesRejected
	s.mu.Unlock()
}
