package action

import (
	"errors"
	"fmt"
	"slices"
	"testing"

	"gridkey/keyid"
)

type recorder struct {
	calls []string
	err   error
}

func (r *recorder) Grid(rows, cols int) error {
	r.calls = append(r.calls, fmt.Sprintf("grid %dx%d", rows, cols))
	return r.err
}
func (r *recorder) Cascade() error  { r.calls = append(r.calls, "cascade"); return r.err }
func (r *recorder) Stack() error    { r.calls = append(r.calls, "stack"); return r.err }
func (r *recorder) Next() error     { r.calls = append(r.calls, "next"); return r.err }
func (r *recorder) Previous() error { r.calls = append(r.calls, "previous"); return r.err }
func (r *recorder) Handle(down bool) {
	r.calls = append(r.calls, fmt.Sprintf("hold %v", down))
}
func (r *recorder) Toggle() { r.calls = append(r.calls, "toggle") }

func newRouter() (*Router, *recorder) {
	rec := &recorder{}
	return NewRouter(Default, rec, rec, rec), rec
}

func TestDefaultCatalogUnique(t *testing.T) {
	seenID := map[string]bool{}
	seenKey := map[keyid.ID]string{}
	for _, a := range Default {
		if a.ID == "" || a.Name == "" {
			t.Errorf("incomplete action %+v", a)
		}
		if seenID[a.ID] {
			t.Errorf("duplicate action ID %q", a.ID)
		}
		seenID[a.ID] = true
		if prev, ok := seenKey[a.Default]; ok {
			t.Errorf("%s and %s share default %s", prev, a.ID, a.Default)
		}
		seenKey[a.Default] = a.ID
		if a.Op == OpGrid && (a.Rows < 1 || a.Cols < 1) {
			t.Errorf("%s has no grid shape", a.ID)
		}
	}
}

func TestLookup(t *testing.T) {
	a, ok := Default.Lookup("grid.2x3")
	if !ok {
		t.Fatal("grid.2x3 not found")
	}
	if a.Rows != 2 || a.Cols != 3 || a.Category != Layout {
		t.Errorf("grid.2x3 = %+v", a)
	}
	if _, ok := Default.Lookup("nope"); ok {
		t.Error("lookup of unknown ID succeeded")
	}
}

func TestOnlyHoldIsPressRelease(t *testing.T) {
	for _, a := range Default {
		want := FireOnce
		if a.Op == OpHoldOverlay {
			want = PressRelease
		}
		if a.Kind != want {
			t.Errorf("%s kind = %v, want %v", a.ID, a.Kind, want)
		}
	}
}

func TestRouterRoutesEveryAction(t *testing.T) {
	r, rec := newRouter()
	for _, a := range Default {
		if a.Kind == PressRelease {
			h := r.PressRelease(a)
			h(true)
			h(false)
		} else {
			r.FireOnce(a)()
		}
	}
	want := []string{
		"grid 1x2", "grid 2x2", "grid 2x3", "grid 3x3", "grid 3x4",
		"cascade", "stack", "next", "previous",
		"hold true", "hold false",
		"toggle",
	}
	if !slices.Equal(rec.calls, want) {
		t.Errorf("calls = %v\nwant %v", rec.calls, want)
	}
	if r.Fired() != uint64(len(Default)) {
		t.Errorf("Fired() = %d, want %d", r.Fired(), len(Default))
	}
}

func TestRouterSwallowsCollaboratorErrors(t *testing.T) {
	r, rec := newRouter()
	rec.err = errors.New("no windows")
	a, _ := Default.Lookup("layout.cascade")
	r.FireOnce(a)()
	if len(rec.calls) != 1 {
		t.Errorf("calls = %v", rec.calls)
	}
}

func TestFire(t *testing.T) {
	r, rec := newRouter()
	var observed []string
	r.OnFire(func(a Action) { observed = append(observed, a.ID) })

	if err := r.Fire("overlay.hold"); err != nil {
		t.Fatal(err)
	}
	if err := r.Fire("table.next"); err != nil {
		t.Fatal(err)
	}
	if err := r.Fire("bogus"); !errors.Is(err, ErrUnknownAction) {
		t.Errorf("Fire(bogus) = %v, want ErrUnknownAction", err)
	}

	if !slices.Equal(rec.calls, []string{"hold true", "hold false", "next"}) {
		t.Errorf("calls = %v", rec.calls)
	}
	if !slices.Equal(observed, []string{"overlay.hold", "table.next"}) {
		t.Errorf("observed = %v", observed)
	}
}

func TestWithDefaults(t *testing.T) {
	space := keyid.MustParse("Ctrl+Alt+Space")
	c := Default.WithDefaults(map[string]keyid.ID{"overlay.hold": space, "missing": space})

	if a, _ := c.Lookup("overlay.hold"); a.Default != space {
		t.Errorf("override not applied: %v", a.Default)
	}
	if a, _ := Default.Lookup("overlay.hold"); a.Default == space {
		t.Error("override leaked into Default")
	}
	if len(c) != len(Default) {
		t.Errorf("len = %d", len(c))
	}
}
