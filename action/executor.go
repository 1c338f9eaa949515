package action

import (
	"strings"
	"time"

	"github.com/df-mc/dragonfly/server/event"
	"github.com/google/uuid"
	"github.com/oomph-ac/replica/game"
	"github.com/oomph-ac/replica/utils"
	"github.com/sandertv/gophertunnel/minecraft/text"
	"github.com/sirupsen/logrus"
)

// DefaultKickMessage is the message players are kicked with unless a Handler changes it.
var DefaultKickMessage = text.Colourf("%s", strings.Join([]string{
	"<red><bold>Cheating Detected</bold></red>",
	"<red>We've identified suspicious behavior from your gameplay</red>",
	"<red>and removed you from the server.</red>",
}, "\n"))

// Context is the cancellable context handed to a Handler.
type Context = event.Context[Violation]

// Handler is notified before the effects of a violation are executed. Cancelling the context of
// HandleFlag drops the violation entirely, cancelling the context of HandlePunishment keeps the
// player connected.
type Handler interface {
	HandleFlag(ctx *Context, v *Violation)
	HandlePunishment(ctx *Context, v *Violation, message *string)
}

// NopHandler implements Handler without doing anything.
type NopHandler struct{}

func (NopHandler) HandleFlag(*Context, *Violation)                {}
func (NopHandler) HandlePunishment(*Context, *Violation, *string) {}

// Kicker disconnects players.
type Kicker interface {
	Kick(id uuid.UUID, message string)
}

// KickerFunc is a function implementing Kicker.
type KickerFunc func(id uuid.UUID, message string)

func (f KickerFunc) Kick(id uuid.UUID, message string) { f(id, message) }

// ExecutorOptions holds the collaborators of an Executor. Every field is optional.
type ExecutorOptions struct {
	Log     *logrus.Logger
	Handler Handler
	Kicker  Kicker
	Sink    Sink
}

// Executor is the default Dispatcher. It looks up the effects for the violation level of a violation
// and executes them.
type Executor struct {
	log     *logrus.Logger
	handler Handler
	kicker  Kicker
	sink    Sink
}

// NewExecutor returns an Executor using the collaborators in opts.
func NewExecutor(opts ExecutorOptions) *Executor {
	e := &Executor{log: opts.Log, handler: opts.Handler, kicker: opts.Kicker, sink: opts.Sink}
	if e.log == nil {
		e.log = logrus.StandardLogger()
	}
	if e.handler == nil {
		e.handler = NopHandler{}
	}
	return e
}

// Dispatch executes the effects of the violation and returns true if it carries the Cancel effect.
func (e *Executor) Dispatch(v Violation) bool {
	ctx := event.C(v)
	e.handler.HandleFlag(ctx, &v)
	if ctx.Cancelled() {
		return false
	}

	effects := v.Actions.EffectsFor(v.VL)
	extra := utils.OrderedMapToString(v.Extra)
	if effects.Has(Warn) {
		e.log.Warnf("%s flagged %s (%s) <x%.2f> %s", v.Player, v.Check, v.SubType, game.Round64(v.VL, 2), extra)
	} else {
		e.log.Debugf("%s flagged %s (%s) <x%.2f> %s", v.Player, v.Check, v.SubType, game.Round64(v.VL, 2), extra)
	}

	if effects.Has(Log) && e.sink != nil {
		if err := e.sink.Record(v.entry(extra)); err != nil {
			e.log.Errorf("unable to record violation of %s: %v", v.Player, err)
		}
	}
	if effects.Has(Kick) {
		e.punish(v)
	}
	return effects.Has(Cancel)
}

func (e *Executor) punish(v Violation) {
	ctx := event.C(v)
	message := DefaultKickMessage
	e.handler.HandlePunishment(ctx, &v, &message)
	if ctx.Cancelled() {
		return
	}

	e.log.Warnf("%s was removed from the server for usage of third-party modifications (%s-%s).", v.Player, v.Check, v.SubType)
	if e.kicker != nil {
		e.kicker.Kick(v.PlayerID, message)
	}
}

func (v Violation) entry(extra string) Entry {
	return Entry{
		PlayerID: v.PlayerID,
		Player:   v.Player,
		Check:    v.Check,
		SubType:  v.SubType,
		Tag:      v.Tag,
		VL:       v.VL,
		Added:    v.Added,
		Extra:    extra,
		Time:     time.Now(),
	}
}
