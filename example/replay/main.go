package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/oomph-ac/replica/action"
	"github.com/oomph-ac/replica/check"
	"github.com/oomph-ac/replica/entity"
	"github.com/oomph-ac/replica/history"
	"github.com/oomph-ac/replica/player"
	"github.com/oomph-ac/replica/settings"
	"github.com/oomph-ac/replica/version"
	"github.com/oomph-ac/replica/violation"
	"github.com/oomph-ac/replica/worker"
	"github.com/oomph-ac/replica/world"
	"github.com/sirupsen/logrus"
)

// The following program replays a scripted session of a cheating player through the checks and prints
// the violations recorded for it.
func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: ./bin <settings_path> <history_db> [protocol_version]")
		return
	}

	log := logrus.New()
	log.Formatter = &logrus.TextFormatter{ForceColors: true}
	log.Level = logrus.DebugLevel

	settingsPath, dbPath := os.Args[1], os.Args[2]
	if err := settings.SaveDefault(settingsPath); err == nil {
		log.Infof("created default settings at %s", settingsPath)
	}
	conf, err := settings.Load(settingsPath)
	if err != nil {
		log.Fatalf("unable to load settings: %v", err)
	}

	ver := version.Latest
	if len(os.Args) > 3 {
		if ver, err = version.Parse(os.Args[3]); err != nil {
			log.Fatalf("unable to parse protocol version: %v", err)
		}
	}

	db, err := history.OpenSQLite(dbPath)
	if err != nil {
		log.Fatalf("unable to open history: %v", err)
	}
	defer db.Close()

	src := world.NewCache(demoWorld(), 1024)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	src.StartEviction(ctx, time.Minute)

	exec := action.NewExecutor(action.ExecutorOptions{
		Log:  log,
		Sink: db,
		Kicker: action.KickerFunc(func(id uuid.UUID, message string) {
			log.Infof("kicking %s: %s", id, message)
		}),
	})
	p := player.Config{
		Name:       "Steve",
		Version:    ver,
		Log:        log,
		Lag:        violation.NoLag{},
		Dispatcher: exec,
		Settings:   &conf,
		World:      src,
	}.New()
	defer p.Close()

	pool := worker.New(0, 64, log)
	replay(pool, p)
	pool.Close()

	entries, err := db.Recent(ctx, p.ID(), 20)
	if err != nil {
		log.Fatalf("unable to read history: %v", err)
	}
	for _, e := range entries {
		fmt.Printf("%s %s (%s) [%s] <x%.2f> %s\n", e.Time.Format(time.TimeOnly), e.Check, e.SubType, e.Tag, e.VL, e.Extra)
	}
	hits, misses := src.Stats()
	log.Debugf("block cache: %d hits, %d misses", hits, misses)
}

func replay(pool *worker.Pool, p *player.Player) {
	start := time.Now()

	frequency := check.Frequency{}
	for i := range 40 {
		tick := int64(i)
		pool.Submit(p.ID(), func() {
			p.SetTick(tick)
			frequency.Break(p, start.Add(time.Duration(tick)*violation.TickDuration))
		})
	}

	sign := check.AutoSign{}
	pos := cube.Pos{0, 1, 2}
	pool.Submit(p.ID(), func() {
		sign.Place(p, pos, "minecraft:oak_sign", start)
		sign.Edit(p, pos, "minecraft:oak_sign", []string{"free", "diamonds", "at", "spawn"}, start.Add(20*time.Millisecond))
	})

	collision := check.Collision{}
	state := entity.State{
		Pos:       mgl64.Vec3{0.5, 1, 0.5},
		Width:     0.6,
		Height:    1.8,
		EyeHeight: 1.62,
		Kind:      entity.Living | entity.Player,
	}
	for range 5 {
		pool.Submit(p.ID(), func() {
			collision.Move(p, check.Movement{State: state, Motion: mgl64.Vec3{0.3, 0, 0}, Observed: mgl64.Vec3{0.3, 0, 0}})
		})
	}
}

func demoWorld() *world.Map {
	m := world.NewMap()
	m.Fill(cube.Pos{-8, 0, -8}, cube.Pos{8, 0, 8}, world.FullBlock("stone", 0))
	m.Fill(cube.Pos{1, 1, -8}, cube.Pos{1, 2, 8}, world.FullBlock("stone", 0))
	return m
}
