// Package playback drives a single audio session through its lifecycle.
package playback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// State is a playback state
type State int

const (
	Idle State = iota
	Loading
	Playing
	Paused
	Ended
	Errored
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Ended:
		return "ended"
	case Errored:
		return "errored"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Event drives a transition
type Event int

const (
	EventPlay Event = iota
	EventReady
	EventPause
	EventEnded
	EventError
	EventClose
)

func (e Event) String() string {
	switch e {
	case EventPlay:
		return "play"
	case EventReady:
		return "ready"
	case EventPause:
		return "pause"
	case EventEnded:
		return "ended"
	case EventError:
		return "error"
	case EventClose:
		return "close"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// ErrInvalidTransition is returned for an event the current state does not accept
var ErrInvalidTransition = errors.New("invalid playback transition")

// ErrNoSource is returned when playing before a source is loaded
var ErrNoSource = errors.New("no audio source loaded")

// transitions lists the accepted events per state. Error and close are
// handled separately since every state accepts them.
var transitions = map[State]map[Event]State{
	Idle:    {EventPlay: Loading},
	Ended:   {EventPlay: Loading},
	Errored: {EventPlay: Loading},
	Loading: {EventReady: Playing},
	Playing: {EventPause: Paused, EventEnded: Ended},
	Paused:  {EventPlay: Playing},
}

// Source is what a session plays
type Source struct {
	// URL is the playable URL: remote, presigned or blob:
	URL string
	// Original is a local file the URL can be recreated from, if any
	Original string
}

// Player is the state machine for one playback session. It holds at most
// one open stream and owns any blob: URL it was given or created.
type Player struct {
	opener Opener
	urls   *ObjectURLs
	logger *slog.Logger

	mu         sync.Mutex
	state      State
	source     Source
	stream     io.ReadCloser
	position   int64
	recovering bool
	recoveries int
	lastErr    error
}

// NewPlayer creates an idle player
func NewPlayer(opener Opener, urls *ObjectURLs, logger *slog.Logger) *Player {
	return &Player{
		opener: opener,
		urls:   urls,
		logger: logger,
	}
}

// State returns the current state
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Position returns the byte offset reached in the current stream
func (p *Player) Position() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position
}

// Recoveries counts recreate-from-original attempts
func (p *Player) Recoveries() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.recoveries
}

// Err returns the error that last put the player in Errored
func (p *Player) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// URL returns the current source URL
func (p *Player) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.source.URL
}

// Load switches to src, releasing the previous stream and object URL first
func (p *Player) Load(src Source) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.release()
	p.source = src
	p.state = Idle
	p.position = 0
	p.recovering = false
	p.lastErr = nil
}

// Play starts or resumes playback. From Idle, Ended or Errored it opens
// the source; a stale source is recreated from the original once.
func (p *Player) Play(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.source.URL == "" && p.source.Original == "" {
		return ErrNoSource
	}

	next, err := p.next(EventPlay)
	if err != nil {
		return err
	}
	if p.state == Paused {
		p.state = next
		return nil
	}

	p.state = next
	p.position = 0
	p.recovering = false
	return p.start(ctx)
}

// Pause pauses a playing session
func (p *Player) Pause() error {
	return p.fire(EventPause)
}

// Finish marks the stream as played to the end and rewinds
func (p *Player) Finish() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	next, err := p.next(EventEnded)
	if err != nil {
		return err
	}
	p.closeStream()
	p.state = next
	p.position = 0
	return nil
}

// Fail reports a media error. The player moves to Errored and, once per
// error cycle, recreates the URL from the original file and replays.
func (p *Player) Fail(ctx context.Context, cause error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == Idle {
		return fmt.Errorf("%w: %s in %s", ErrInvalidTransition, EventError, p.state)
	}
	return p.fail(ctx, cause)
}

// Close tears the session down and releases everything it holds
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.release()
	p.source = Source{}
	p.state = Idle
	p.position = 0
	return nil
}

// Stream plays the source into w until it ends, recovering from a
// mid-stream failure by reopening and skipping what was already written.
func (p *Player) Stream(ctx context.Context, w io.Writer) error {
	if err := p.Play(ctx); err != nil {
		return err
	}

	for retry := false; ; retry = true {
		p.mu.Lock()
		stream, offset := p.stream, p.position
		p.mu.Unlock()

		if stream == nil {
			return fmt.Errorf("playback %s: %w", p.State(), p.Err())
		}

		n, err := io.Copy(&offsetWriter{w: w, skip: offset}, stream)
		p.mu.Lock()
		if n > p.position {
			p.position = n
		}
		p.mu.Unlock()

		if err == nil {
			return p.Finish()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// A reopened stream that fails before passing the old offset would loop
		if retry && n <= offset {
			p.mu.Lock()
			p.closeStream()
			p.state, p.lastErr = Errored, err
			p.mu.Unlock()
			return err
		}
		if failErr := p.Fail(ctx, err); failErr != nil {
			return failErr
		}
	}
}

func (p *Player) fire(ev Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	next, err := p.next(ev)
	if err != nil {
		return err
	}
	p.state = next
	return nil
}

func (p *Player) next(ev Event) (State, error) {
	next, ok := transitions[p.state][ev]
	if !ok {
		return p.state, fmt.Errorf("%w: %s in %s", ErrInvalidTransition, ev, p.state)
	}
	return next, nil
}

// start opens the source while Loading. Callers hold mu.
func (p *Player) start(ctx context.Context) error {
	url := p.source.URL
	if url == "" {
		url = p.recreate()
	}

	stream, err := p.opener.Open(ctx, url)
	if err != nil {
		if errors.Is(err, ErrStaleURL) && p.source.Original != "" && !p.recovering {
			return p.fail(ctx, err)
		}
		p.state = Errored
		p.lastErr = err
		p.logger.Warn("playback failed to start", slog.String("url", url), slog.String("error", err.Error()))
		return err
	}

	p.stream = stream
	p.state = transitions[Loading][EventReady]
	p.recovering = false
	return nil
}

// fail enters Errored and makes the cycle's single recovery attempt.
// Callers hold mu.
func (p *Player) fail(ctx context.Context, cause error) error {
	p.closeStream()
	p.state = Errored
	p.lastErr = cause
	p.logger.Warn("playback error", slog.String("url", p.source.URL), slog.String("error", cause.Error()))

	if p.source.Original == "" || p.recovering {
		return cause
	}

	p.recovering = true
	p.recreate()
	p.recoveries++
	p.state = Loading
	return p.start(ctx)
}

// recreate replaces the source URL with a fresh object URL for the original
func (p *Player) recreate() string {
	p.revoke()
	p.source.URL = p.urls.Create(p.source.Original)
	p.logger.Debug("recreated object url", slog.String("url", p.source.URL))
	return p.source.URL
}

func (p *Player) release() {
	p.closeStream()
	p.revoke()
}

func (p *Player) closeStream() {
	if p.stream != nil {
		_ = p.stream.Close()
		p.stream = nil
	}
}

func (p *Player) revoke() {
	if IsObjectURL(p.source.URL) {
		p.urls.Revoke(p.source.URL)
	}
}

// offsetWriter drops the first skip bytes written to it
type offsetWriter struct {
	w    io.Writer
	skip int64
}

func (o *offsetWriter) Write(b []byte) (int, error) {
	n := len(b)
	if o.skip >= int64(n) {
		o.skip -= int64(n)
		return n, nil
	}
	b = b[o.skip:]
	o.skip = 0
	written, err := o.w.Write(b)
	return n - len(b) + written, err
}
