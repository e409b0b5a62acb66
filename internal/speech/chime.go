package speech

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/hammamikhairi/recipebot/internal/logger"
)

// Compile-time interface check.
var _ Cue = (*Chime)(nil)

// Chime plays a short rising tone when listening starts and a falling
// one when it stops.
type Chime struct {
	player *Player
	log    *logger.Logger
	up     []byte
	down   []byte
}

// NewChime renders both tones up front.
func NewChime(player *Player, log *logger.Logger) *Chime {
	step := 90 * time.Millisecond
	return &Chime{
		player: player,
		log:    log,
		up:     append(Tone(660, step), Tone(880, step)...),
		down:   append(Tone(880, step), Tone(660, step)...),
	}
}

// Started plays the rising tone without blocking.
func (c *Chime) Started() { c.play(c.up) }

// Stopped plays the falling tone without blocking.
func (c *Chime) Stopped() { c.play(c.down) }

func (c *Chime) play(pcm []byte) {
	go func() {
		if err := c.player.Play(pcm); err != nil {
			c.log.Debug("chime: %v", err)
		}
	}()
}

// Tone renders a sine wave at freq Hz as 16-bit LE PCM at SampleRate,
// with a short linear fade at both ends to avoid clicks.
func Tone(freq float64, d time.Duration) []byte {
	n := int(float64(SampleRate) * d.Seconds())
	fade := SampleRate / 200 // 5ms
	buf := make([]byte, n*2)

	for i := 0; i < n; i++ {
		amp := 0.3
		if i < fade {
			amp *= float64(i) / float64(fade)
		} else if n-i < fade {
			amp *= float64(n-i) / float64(fade)
		}
		v := amp * math.Sin(2*math.Pi*freq*float64(i)/SampleRate)
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(int16(v*math.MaxInt16)))
	}
	return buf
}
