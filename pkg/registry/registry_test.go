package registry

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/OpenTraceLab/OpenTraceBench/pkg/device"
)

type stub struct {
	kind   device.Kind
	closed bool
}

func (s *stub) Info() device.Info            { return device.Info{Kind: s.kind, Model: "stub"} }
func (s *stub) Channels() []int              { return nil }
func (s *stub) Send(string) error            { return nil }
func (s *stub) Query(string) (string, error) { return "", nil }
func (s *stub) Reset() error                 { return nil }
func (s *stub) Close() error                 { s.closed = true; return nil }

func TestAddAssignsIndexedNames(t *testing.T) {
	r := New()
	if got := r.Add("psu", &stub{kind: device.KindPSU}); got != "psu" {
		t.Errorf("first Add = %q, want psu", got)
	}
	if got := r.Add("psu", &stub{kind: device.KindPSU}); got != "psu2" {
		t.Errorf("second Add = %q, want psu2", got)
	}
	if got := r.Add("psu", &stub{kind: device.KindPSU}); got != "psu3" {
		t.Errorf("third Add = %q, want psu3", got)
	}
	want := []string{"psu", "psu2", "psu3"}
	if diff := cmp.Diff(want, r.Names()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveRole(t *testing.T) {
	r := New()
	r.Add("psu", &stub{kind: device.KindPSU})
	r.Add("dmm", &stub{kind: device.KindDMM})

	name, err := r.ResolveRole("psu")
	if err != nil || name != "psu" {
		t.Errorf("ResolveRole(psu) = %q, %v", name, err)
	}

	_, err = r.ResolveRole("scope")
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("ResolveRole(scope) err = %v, want ErrDeviceNotFound", err)
	}

	r.Add("psu", &stub{kind: device.KindPSU})
	_, err = r.ResolveRole("psu")
	if !errors.Is(err, ErrAmbiguousDevice) {
		t.Errorf("ResolveRole(psu) with two = %v, want ErrAmbiguousDevice", err)
	}
}

func TestResolveRoleLegacyDDS(t *testing.T) {
	r := New()
	r.Add("dds", &stub{kind: device.KindAWG})

	// With only a dds entry, the modern role token still finds it.
	name, err := r.ResolveRole("awg")
	if err != nil || name != "dds" {
		t.Errorf("ResolveRole(awg) = %q, %v", name, err)
	}

	// A real awg entry takes over; dds stays reachable by its own name.
	r.Add("awg", &stub{kind: device.KindAWG})
	name, err = r.ResolveRole("awg")
	if err != nil || name != "awg" {
		t.Errorf("ResolveRole(awg) with both = %q, %v", name, err)
	}
	name, err = r.ResolveRole("dds")
	if err != nil || name != "dds" {
		t.Errorf("ResolveRole(dds) = %q, %v", name, err)
	}
}

func TestActiveSelection(t *testing.T) {
	r := New()
	r.Add("psu", &stub{kind: device.KindPSU})

	if err := r.SetActive("psu"); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if r.Active() != "psu" {
		t.Errorf("Active = %q", r.Active())
	}
	if err := r.SetActive("nope"); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("SetActive(nope) = %v", err)
	}

	// Removing the active device clears the selection.
	if err := r.Remove("psu"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if r.Active() != "" {
		t.Errorf("Active after Remove = %q, want empty", r.Active())
	}
}

func TestBaseName(t *testing.T) {
	tests := []struct {
		in      string
		base    string
		indexed bool
	}{
		{"psu", "psu", false},
		{"psu2", "psu", true},
		{"awg10", "awg", true},
		{"dds", "dds", false},
	}
	for _, tt := range tests {
		base, indexed := BaseName(tt.in)
		if base != tt.base || indexed != tt.indexed {
			t.Errorf("BaseName(%q) = %q, %v; want %q, %v", tt.in, base, indexed, tt.base, tt.indexed)
		}
	}
}

func TestCloseAll(t *testing.T) {
	r := New()
	a := &stub{kind: device.KindPSU}
	b := &stub{kind: device.KindDMM}
	r.Add("psu", a)
	r.Add("dmm", b)

	if errs := r.CloseAll(); len(errs) != 0 {
		t.Fatalf("CloseAll errors: %v", errs)
	}
	if !a.closed || !b.closed {
		t.Error("devices not closed")
	}
	if r.Len() != 0 {
		t.Errorf("Len after CloseAll = %d", r.Len())
	}
}
