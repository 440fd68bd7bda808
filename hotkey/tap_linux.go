//go:build linux

package hotkey

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/micmonay/keybd_event"
	"golang.org/x/sys/unix"

	"gridkey/keyid"
	"gridkey/log"
)

const (
	evKey      = 1
	keyRelease = 0
	keyPress   = 1
	keyRepeat  = 2

	keyLCtrl    = 29
	keyLShift   = 42
	keyRShift   = 54
	keyLAlt     = 56
	keyCapsLock = 58
	keyRCtrl    = 97
	keyRAlt     = 100
	keyLMeta    = 125
	keyRMeta    = 126
)

// input_event is 24 bytes on 64-bit Linux:
// timeval (16 bytes) + type (2) + code (2) + value (4)
const inputEventSize = 24

// _IOW('E', 0x90, int)
const evIOCGRAB = 0x40044590

// uinput device created by keybd_event; never grabbed or we would read our
// own re-injected events.
const virtualDeviceName = "keybd_event"

var modifierKeys = map[uint16]keyid.Modifier{
	keyLCtrl:  keyid.Control,
	keyRCtrl:  keyid.Control,
	keyLShift: keyid.Shift,
	keyRShift: keyid.Shift,
	keyLAlt:   keyid.Option,
	keyRAlt:   keyid.Option,
	keyLMeta:  keyid.Command,
	keyRMeta:  keyid.Command,
}

// evdevTap reads /dev/input keyboards directly. Requires the user to be in
// the 'input' group. In exclusive mode the keyboards are grabbed so swallowed
// events never reach other clients; passed events are re-injected through a
// uinput device.
type evdevTap struct {
	exclusive bool

	mu    sync.Mutex
	files []*os.File
	stop  chan struct{}
	mods  *modState

	kbMu sync.Mutex
	kb   *keybd_event.KeyBonding
}

func NewTap(opts TapOptions) Tap {
	return &evdevTap{exclusive: opts.Exclusive}
}

func (t *evdevTap) Name() string {
	if t.exclusive {
		return "evdev-exclusive"
	}
	return "evdev"
}

func (t *evdevTap) Install(cb Callback) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stop != nil {
		return errors.New("evdev tap already installed")
	}

	keyboards, err := findKeyboards()
	if err != nil {
		return fmt.Errorf("finding keyboards: %w", err)
	}
	if len(keyboards) == 0 {
		return fmt.Errorf("no keyboard devices found (is user in 'input' group?)")
	}

	if t.exclusive {
		kb, err := keybd_event.NewKeyBonding()
		if err != nil {
			return fmt.Errorf("creating virtual keyboard (check /dev/uinput permissions): %w", err)
		}
		t.kbMu.Lock()
		t.kb = &kb
		t.kbMu.Unlock()
	}

	for _, path := range keyboards {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		if t.exclusive {
			if err := grab(f, true); err != nil {
				log.Warnf("grab %s: %v", path, err)
				f.Close()
				continue
			}
		}
		t.files = append(t.files, f)
	}

	if len(t.files) == 0 {
		t.dropVirtual()
		return fmt.Errorf("could not open any keyboard device (run: sudo usermod -aG input $USER, then re-login)")
	}

	t.stop = make(chan struct{})
	t.mods = newModState()
	for _, f := range t.files {
		go t.readEvents(f, cb, t.stop, t.mods)
	}
	return nil
}

func (t *evdevTap) Remove() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stop == nil {
		return nil
	}
	close(t.stop)
	t.stop = nil

	var errs []error
	for _, f := range t.files {
		if t.exclusive {
			if err := grab(f, false); err != nil {
				errs = append(errs, fmt.Errorf("release %s: %w", f.Name(), err))
			}
		}
		f.Close()
	}
	t.files = nil
	t.dropVirtual()
	return errors.Join(errs...)
}

func (t *evdevTap) dropVirtual() {
	t.kbMu.Lock()
	t.kb = nil
	t.kbMu.Unlock()
}

func (t *evdevTap) readEvents(f *os.File, cb Callback, stop <-chan struct{}, mods *modState) {
	buf := make([]byte, inputEventSize*16)

	for {
		select {
		case <-stop:
			return
		default:
		}

		n, err := f.Read(buf)
		if err != nil {
			return
		}

		for i := 0; i+inputEventSize <= n; i += inputEventSize {
			evType := binary.LittleEndian.Uint16(buf[i+16:])
			evCode := binary.LittleEndian.Uint16(buf[i+18:])
			evValue := int32(binary.LittleEndian.Uint32(buf[i+20:]))

			if evType != evKey {
				continue
			}

			var kind Kind
			switch evValue {
			case keyPress, keyRepeat:
				kind = KindDown
			case keyRelease:
				kind = KindUp
			default:
				continue
			}

			flags := mods.update(evCode, evValue)
			d := cb(Event{Kind: kind, Code: evCode, Flags: flags, Repeat: evValue == keyRepeat})
			if d == Pass && t.exclusive {
				t.reinject(evCode, kind)
			}
		}
	}
}

func (t *evdevTap) reinject(code uint16, kind Kind) {
	t.kbMu.Lock()
	defer t.kbMu.Unlock()
	if t.kb == nil {
		return
	}
	t.kb.SetKeys(int(code))
	var err error
	if kind == KindDown {
		err = t.kb.Press()
	} else {
		err = t.kb.Release()
	}
	if err != nil {
		log.Warnf("reinject key %d: %v", code, err)
	}
}

// modState is the modifier and caps lock state shared by every device
// reader, so a modifier held on one keyboard applies to keys on another.
type modState struct {
	mu   sync.Mutex
	held map[uint16]int // presses per modifier key, summed over devices
	caps bool
}

func newModState() *modState {
	return &modState{held: make(map[uint16]int, len(modifierKeys))}
}

// update records one key event and returns the flags in effect for it.
func (s *modState) update(code uint16, value int32) keyid.Modifier {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := modifierKeys[code]; ok {
		switch value {
		case keyPress:
			s.held[code]++
		case keyRelease:
			if s.held[code] > 0 {
				s.held[code]--
			}
		}
	}
	if code == keyCapsLock && value == keyPress {
		s.caps = !s.caps
	}

	var m keyid.Modifier
	for c, n := range s.held {
		if n > 0 {
			m |= modifierKeys[c]
		}
	}
	if s.caps {
		m |= keyid.AlphaShift
	}
	if isKeypad(code) {
		m |= keyid.NumericPad
	}
	return m
}

func isKeypad(code uint16) bool {
	switch {
	case code == 55, code >= 71 && code <= 83, code == 96, code == 98:
		return true
	}
	return false
}

func grab(f *os.File, on bool) error {
	rc, err := f.SyscallConn()
	if err != nil {
		return err
	}
	v := 0
	if on {
		v = 1
	}
	var ioErr error
	if err := rc.Control(func(fd uintptr) {
		ioErr = unix.IoctlSetInt(int(fd), evIOCGRAB, v)
	}); err != nil {
		return err
	}
	return ioErr
}

func findKeyboards() ([]string, error) {
	entries, err := os.ReadDir("/dev/input")
	if err != nil {
		return nil, err
	}

	var keyboards []string
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "event") {
			continue
		}
		if isKeyboard(e.Name()) && !isVirtual(e.Name()) {
			keyboards = append(keyboards, filepath.Join("/dev/input", e.Name()))
		}
	}
	return keyboards, nil
}

func isKeyboard(eventName string) bool {
	capsPath := filepath.Join("/sys/class/input", eventName, "device", "capabilities", "key")
	data, err := os.ReadFile(capsPath)
	if err != nil {
		return false
	}
	caps := strings.TrimSpace(string(data))
	return len(caps) > 10
}

func isVirtual(eventName string) bool {
	data, err := os.ReadFile(filepath.Join("/sys/class/input", eventName, "device", "name"))
	if err != nil {
		return false
	}
	return strings.Contains(string(data), virtualDeviceName)
}

// CaptureNote describes a capture limitation of opts, or returns "".
func CaptureNote(opts TapOptions) string {
	if opts.Exclusive {
		return ""
	}
	return "observe-only capture; use -exclusive to swallow"
}

// Diagnose checks keyboard access and returns a status message.
func Diagnose(opts TapOptions) (string, error) {
	keyboards, err := findKeyboards()
	if err != nil {
		return "", fmt.Errorf("cannot scan input devices: %w", err)
	}
	if len(keyboards) == 0 {
		return "", fmt.Errorf("no keyboard devices found (is user in 'input' group?)")
	}

	opened := firstReadable(keyboards)
	if opened == "" {
		return "", fmt.Errorf("found %d keyboard(s) but cannot open any (run: sudo usermod -aG input $USER)", len(keyboards))
	}

	msg := fmt.Sprintf("%d keyboard(s) found, opened %s", len(keyboards), opened)
	if opts.Exclusive {
		if err := uinputWritable(); err != nil {
			return "", fmt.Errorf("exclusive mode needs /dev/uinput: %w (fix: sudo chmod 660 /dev/uinput && sudo chgrp input /dev/uinput)", err)
		}
		msg += ", uinput writable"
	}
	return msg, nil
}

func firstReadable(paths []string) string {
	for _, path := range paths {
		f, err := os.Open(path)
		if err == nil {
			f.Close()
			return path
		}
	}
	return ""
}

func uinputWritable() error {
	f, err := os.OpenFile("/dev/uinput", os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	return f.Close()
}
