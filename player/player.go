package player

import (
	"github.com/google/uuid"
	"github.com/oomph-ac/replica/action"
	"github.com/oomph-ac/replica/entity"
	"github.com/oomph-ac/replica/settings"
	"github.com/oomph-ac/replica/version"
	"github.com/oomph-ac/replica/violation"
	"github.com/oomph-ac/replica/world"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

// Config holds the collaborators of a Player. Every field except World is optional.
type Config struct {
	// ID identifies the session. A random ID is generated if it is left empty.
	ID      uuid.UUID
	Name    string
	Version version.Version

	Log        *logrus.Logger
	Lag        violation.LagSource
	Dispatcher action.Dispatcher
	Settings   *settings.Settings

	// World is the block geometry the player moves in. Entities reports other entities the player
	// may stand on.
	World    world.Source
	Entities world.EntityProbe
}

// New creates a player from the config.
func (conf Config) New() *Player {
	p := &Player{
		id:         conf.ID,
		name:       conf.Name,
		version:    conf.Version.Resolve(),
		log:        conf.Log,
		lag:        conf.Lag,
		dispatcher: conf.Dispatcher,
		world:      conf.World,
		entities:   conf.Entities,
		states:     make(map[string]any),
	}
	if p.id == uuid.Nil {
		p.id = uuid.New()
	}
	if p.log == nil {
		p.log = logrus.StandardLogger()
	}
	if p.lag == nil {
		p.lag = violation.NoLag{}
	}
	if p.dispatcher == nil {
		p.dispatcher = action.NopDispatcher{}
	}
	if p.entities == nil {
		p.entities = world.NopProbe{}
	}
	if conf.Settings != nil {
		p.settings = *conf.Settings
	} else {
		p.settings = settings.DefaultSettings()
	}
	return p
}

// Player holds everything the checks know about one session. A Player is not safe for concurrent
// use: all evaluations of one player happen on the same goroutine.
type Player struct {
	id      uuid.UUID
	name    string
	version version.Version

	log        *logrus.Logger
	lag        violation.LagSource
	dispatcher action.Dispatcher
	settings   settings.Settings

	world    world.Source
	entities world.EntityProbe

	tick     int64
	creative bool

	states map[string]any
	closed atomic.Bool
}

// ID returns the unique ID of the session.
func (p *Player) ID() uuid.UUID {
	return p.id
}

// Name returns the display name of the player.
func (p *Player) Name() string {
	return p.name
}

// Version returns the protocol version of the player's client.
func (p *Player) Version() version.Version {
	return p.version
}

// Log returns the logger of the player.
func (p *Player) Log() *logrus.Logger {
	return p.log
}

// Lag returns the lag source used by checks that adjust to server side lag.
func (p *Player) Lag() violation.LagSource {
	return p.lag
}

// Dispatcher returns the dispatcher violations of the player are handed to.
func (p *Player) Dispatcher() action.Dispatcher {
	return p.dispatcher
}

// Settings returns the settings the checks of the player read. The returned value must not be
// modified, use SetSettings instead.
func (p *Player) Settings() *settings.Settings {
	return &p.settings
}

// SetSettings replaces the settings of the player. Only evaluations started afterwards see them.
func (p *Player) SetSettings(s settings.Settings) {
	p.settings = s
}

// World returns the block geometry the player moves in.
func (p *Player) World() world.Source {
	return p.world
}

// SetWorld changes the block geometry the player moves in, for example after a dimension change.
func (p *Player) SetWorld(src world.Source) {
	p.world = src
}

// Tick returns the current server tick as last reported by SetTick.
func (p *Player) Tick() int64 {
	return p.tick
}

// SetTick updates the current server tick.
func (p *Player) SetTick(tick int64) {
	p.tick = tick
}

// Creative returns true if the player is in creative mode.
func (p *Player) Creative() bool {
	return p.creative
}

// SetCreative updates the game mode of the player.
func (p *Player) SetCreative(creative bool) {
	p.creative = creative
}

// Location returns the physical evaluation of the given state of the player in its world.
func (p *Player) Location(state entity.State) *entity.Location {
	phys := p.settings.Physics
	return entity.NewLocation(state, p.version, p.world, p.entities, entity.Options{
		YOnGround:         phys.YOnGround,
		StepHeight:        phys.StepHeight,
		EntityStackMargin: phys.EntityStackMargin,
	})
}

// Close releases all per-check state of the player. Calling Close more than once has no effect.
func (p *Player) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	clear(p.states)
	p.log.Debugf("%s: session closed", p.name)
	return nil
}

// Closed returns true if Close was called.
func (p *Player) Closed() bool {
	return p.closed.Load()
}
