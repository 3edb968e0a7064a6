package input

import (
	"fmt"
	"sync"

	"github.com/eiannone/keyboard"
	"github.com/lcalzada-xor/wdeck/internal/core/domain"
	"github.com/lcalzada-xor/wdeck/internal/core/ports"
)

// Keyboard emulates the joystick with the arrow keys (or WASD) and Enter or
// Space for the button. Esc and Ctrl+C request shutdown.
type Keyboard struct {
	samples chan domain.RawSample
	quit    chan struct{}
	stop    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

var _ ports.InputSource = (*Keyboard)(nil)

// OpenKeyboard puts the terminal in raw mode and starts reading keys.
func OpenKeyboard() (*Keyboard, error) {
	events, err := keyboard.GetKeys(16)
	if err != nil {
		return nil, fmt.Errorf("open keyboard: %w", err)
	}
	k := &Keyboard{
		samples: make(chan domain.RawSample, 16),
		quit:    make(chan struct{}),
		stop:    make(chan struct{}),
	}
	k.wg.Add(1)
	go k.read(events)
	return k, nil
}

func (k *Keyboard) read(events <-chan keyboard.KeyEvent) {
	defer k.wg.Done()
	defer close(k.samples)
	quitOnce := sync.Once{}
	for {
		select {
		case <-k.stop:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Err != nil {
				continue
			}
			if IsQuitKey(ev) {
				quitOnce.Do(func() { close(k.quit) })
				continue
			}
			s, ok := SampleForKey(ev)
			if !ok {
				continue
			}
			select {
			case k.samples <- s:
			default:
			}
		}
	}
}

// Samples implements ports.InputSource.
func (k *Keyboard) Samples() <-chan domain.RawSample { return k.samples }

// Quit is closed when the user asks to exit.
func (k *Keyboard) Quit() <-chan struct{} { return k.quit }

// Close restores the terminal.
func (k *Keyboard) Close() error {
	var err error
	k.once.Do(func() {
		close(k.stop)
		err = keyboard.Close()
		k.wg.Wait()
	})
	return err
}

// SampleForKey maps a key press to the joystick sample it stands for.
func SampleForKey(ev keyboard.KeyEvent) (domain.RawSample, bool) {
	s := domain.CenteredSample()
	switch {
	case ev.Key == keyboard.KeyArrowUp || ev.Rune == 'w':
		s.Y = domain.AxisMin
	case ev.Key == keyboard.KeyArrowDown || ev.Rune == 's':
		s.Y = domain.AxisMax
	case ev.Key == keyboard.KeyArrowLeft || ev.Rune == 'a':
		s.X = domain.AxisMin
	case ev.Key == keyboard.KeyArrowRight || ev.Rune == 'd':
		s.X = domain.AxisMax
	case ev.Key == keyboard.KeyEnter || ev.Key == keyboard.KeySpace:
		s.Button = true
	default:
		return s, false
	}
	return s, true
}

// IsQuitKey reports whether ev asks to exit.
func IsQuitKey(ev keyboard.KeyEvent) bool {
	return ev.Key == keyboard.KeyEsc || ev.Key == keyboard.KeyCtrlC || ev.Rune == 'q'
}
