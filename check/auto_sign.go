package check

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/elliotchance/orderedmap/v2"
	"github.com/oomph-ac/replica/player"
	"github.com/oomph-ac/replica/settings"
	"github.com/oomph-ac/replica/violation"
	"github.com/zeebo/xxh3"
)

const autoSignKey = "check.auto_sign"

// AutoSign checks if the text of a sign was written faster than a human could type it.
type AutoSign struct{}

type autoSignData struct {
	placed     bool
	placedHash uint64
	openTime   time.Time
	rec        violation.Record
}

func (AutoSign) Type() string    { return "BlockPlace" }
func (AutoSign) SubType() string { return "AutoSign" }
func (AutoSign) Description() string {
	return "Checks if a player edits signs faster than possible."
}

// Place records a sign placed at pos at now, which opens the sign editor.
func (AutoSign) Place(p *player.Player, pos cube.Pos, material string, now time.Time) {
	data := player.State(p, autoSignKey, newAutoSignData)
	data.placed = true
	data.placedHash = BlockPlaceHash(pos, material)
	data.openTime = now
}

// Edit evaluates the text of the sign at pos submitted at now and returns true if the edit should be
// cancelled.
func (c AutoSign) Edit(p *player.Player, pos cube.Pos, material string, lines []string, now time.Time) (cancel bool) {
	defer p.Recover(&cancel)

	conf := p.Settings().AutoSign
	if !conf.Basics.Enabled {
		return false
	}
	data := player.State(p, autoSignKey, newAutoSignData)

	if data.placed && data.placedHash != BlockPlaceHash(pos, material) {
		return c.violate(p, data, conf, conf.MaxEditTime, "block_mismatch")
	}
	if now.Before(data.openTime) {
		data.openTime = time.Time{}
		return false
	}

	editTime := now.Sub(data.openTime).Milliseconds()
	expected := ExpectedEditTime(lines, conf)
	if expected == 0 {
		return false
	}
	// Edit times always scale with lag, whatever AdjustToLag says.
	expected = int64(float64(expected) / violation.LagFactor(p.Lag(), time.Duration(expected)*time.Millisecond))
	if expected > editTime {
		return c.violate(p, data, conf, expected-editTime, "edit_time")
	}
	return false
}

// violate adds a violation for editing violationTime milliseconds too fast.
func (c AutoSign) violate(p *player.Player, data *autoSignData, conf settings.AutoSign, violationTime int64, tag string) bool {
	maxTime := float64(conf.MaxEditTime)
	data.rec.Add(10 * math.Min(maxTime, float64(violationTime)) / maxTime)

	extra := orderedmap.NewOrderedMap[string, any]()
	extra.Set("too_fast", fmt.Sprintf("%dms", violationTime))
	return Flag(p, c, &data.rec, conf.Basics, tag, extra)
}

// Violations returns the violation level of the player for this check.
func (AutoSign) Violations(p *player.Player) float64 {
	return player.State(p, autoSignKey, newAutoSignData).rec.VL
}

func newAutoSignData() *autoSignData {
	return &autoSignData{}
}

// ExpectedEditTime returns the minimum time in milliseconds needed to write the lines: a base time,
// a time for every distinct character of each non-empty line and a time for every line once more than
// one line is used. It returns 0 for a sign without text if empty signs are skipped.
func ExpectedEditTime(lines []string, conf settings.AutoSign) int64 {
	expected := conf.MinEditTime
	n := int64(0)
	for _, line := range lines {
		line = strings.ToLower(strings.TrimSpace(line))
		if line == "" {
			continue
		}
		n++
		chars := make(map[rune]struct{}, len(line))
		for _, r := range line {
			chars[r] = struct{}{}
		}
		expected += conf.MinCharTime * int64(len(chars))
	}
	if conf.SkipEmpty && n == 0 {
		return 0
	}
	if n > 1 {
		expected += conf.MinLineTime * n
	}
	return expected
}

// BlockPlaceHash returns a hash of a sign block at pos. Wall and standing variants of the same sign
// hash the same.
func BlockPlaceHash(pos cube.Pos, material string) uint64 {
	return xxh3.HashString(fmt.Sprintf("%d:%d:%d:%s", pos[0], pos[1], pos[2], SignMaterial(material)))
}

// SignMaterial normalizes the material of a sign block to the material of its item.
func SignMaterial(material string) string {
	m := strings.ToLower(material)
	if i := strings.IndexByte(m, ':'); i != -1 {
		m = m[i+1:]
	}
	switch {
	case strings.HasSuffix(m, "_wall_hanging_sign"):
		return strings.Replace(m, "wall_hanging", "hanging", 1)
	case strings.HasSuffix(m, "_wall_sign"):
		return strings.TrimSuffix(m, "_wall_sign") + "_sign"
	case strings.HasSuffix(m, "wall_sign"):
		return strings.Replace(m, "wall_", "", 1)
	case m == "sign_post", m == "standing_sign":
		return "sign"
	}
	return m
}
