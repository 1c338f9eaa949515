package player

import (
	"runtime/debug"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/oomph-ac/replica/oerror"
)

// Recover recovers from a panic in an evaluation of the player. It must be deferred directly. The
// panic is reported to sentry and logged, and result, if not nil, is set to false so the event is
// not cancelled.
func (p *Player) Recover(result *bool) {
	v := recover()
	if v == nil {
		return
	}
	if result != nil {
		*result = false
	}

	hub := sentry.CurrentHub().Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetUser(sentry.User{ID: p.id.String(), Username: p.name})
		scope.SetTag("protocol", p.version.String())
	})
	hub.Recover(oerror.New("%v", v))
	go hub.Flush(5 * time.Second)

	p.log.Errorf("%s: recovered from panic: %v\n%s", p.name, v, debug.Stack())
}
