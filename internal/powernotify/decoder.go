package powernotify

import (
	"runtime"

	"go.uber.org/multierr"

	"github.com/powerplanchanger/ppc/internal/logging"
)

// Handle is an OS registration handle (HPOWERNOTIFY).
type Handle uintptr

// Registrar subscribes a recipient to power-setting notifications.
type Registrar interface {
	Register(recipient uintptr, topic Topic) (Handle, error)
	Unregister(h Handle) error
}

type subscription struct {
	topic  Topic
	handle Handle
}

// Decoder owns a set of power-setting subscriptions and turns the
// broadcasts they produce into handler calls.
//
// A Decoder is not safe for concurrent use. It is meant to be driven by the
// goroutine that runs the recipient window's message loop.
type Decoder struct {
	reg      Registrar
	subs     []subscription
	handlers Handlers
	logger   *logging.Logger
	closed   bool
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithLogger sets the logger used for ignored topics and teardown failures.
func WithLogger(l *logging.Logger) Option {
	return func(d *Decoder) { d.logger = l }
}

// New registers every topic for recipient, in order. If any registration
// fails, the handles acquired so far are released and a *RegistrationError
// is returned; later topics are not attempted.
func New(reg Registrar, recipient uintptr, h Handlers, topics []Topic, opts ...Option) (*Decoder, error) {
	d := &Decoder{
		reg:      reg,
		subs:     make([]subscription, 0, len(topics)),
		handlers: h,
	}
	for _, opt := range opts {
		opt(d)
	}

	for _, t := range topics {
		handle, err := reg.Register(recipient, t)
		if err != nil {
			rerr := &RegistrationError{Op: "register", Topic: t, Err: err}
			if uerr := d.release(); uerr != nil {
				return nil, multierr.Append(rerr, uerr)
			}
			return nil, rerr
		}
		d.subs = append(d.subs, subscription{topic: t, handle: handle})
		d.debugf("subscribed to %s notifications", t.Name())
	}

	runtime.SetFinalizer(d, (*Decoder).finalize)
	return d, nil
}

// Topics returns the subscribed topics in registration order.
func (d *Decoder) Topics() []Topic {
	out := make([]Topic, 0, len(d.subs))
	for _, s := range d.subs {
		out = append(out, s.topic)
	}
	return out
}

// ProcessMessage decodes one POWERBROADCAST_SETTING and calls the matching
// handler before returning. Unknown topics are ignored.
func (d *Decoder) ProcessMessage(msg []byte) error {
	if d.closed {
		return ErrClosed
	}
	known, err := Dispatch(msg, d.handlers)
	if err != nil {
		return err
	}
	if !known {
		if env, eerr := ReadEnvelope(msg); eerr == nil {
			d.debugf("ignoring power broadcast for unknown setting %s", env.Topic)
		}
	}
	return nil
}

// Dispatch decodes msg and calls the matching handler in h without a
// Decoder. It serves broadcasts that arrive while New is still registering.
// known is false for topics outside the known set.
func Dispatch(msg []byte, h Handlers) (known bool, err error) {
	ev, known, err := Decode(msg)
	if err != nil || !known {
		return false, err
	}
	h.dispatch(ev)
	return true, nil
}

// Close releases every subscription. All handles are attempted even if some
// fail; the failures are returned together. Calling Close again is a no-op.
func (d *Decoder) Close() error {
	if d.closed {
		return nil
	}
	runtime.SetFinalizer(d, nil)
	err := d.release()
	d.closed = true
	return err
}

func (d *Decoder) finalize() {
	if d.closed {
		return
	}
	_ = d.release()
	d.closed = true
}

// release makes one unregistration attempt per held handle and drops them all.
func (d *Decoder) release() error {
	var errs error
	for _, s := range d.subs {
		if err := d.reg.Unregister(s.handle); err != nil {
			errs = multierr.Append(errs, &RegistrationError{Op: "unregister", Topic: s.topic, Err: err})
		}
	}
	d.subs = nil
	return errs
}

func (d *Decoder) debugf(format string, args ...interface{}) {
	if d.logger != nil {
		d.logger.Debugf(format, args...)
	}
}
