//go:build !darwin

package tray

import "testing"

func TestStateTracking(t *testing.T) {
	SetMonitoring(true)
	SetOverlay(true)
	SetInvalid(3)

	on, overlay, n := state()
	if !on || !overlay || n != 3 {
		t.Errorf("state() = %v, %v, %d", on, overlay, n)
	}

	SetMonitoring(false)
	SetOverlay(false)
	SetInvalid(0)
	on, overlay, n = state()
	if on || overlay || n != 0 {
		t.Errorf("state() = %v, %v, %d", on, overlay, n)
	}
}

func TestQuitClosesInitChannel(t *testing.T) {
	ch := Init()
	Quit()
	Quit()
	<-ch
}
