// Package registry tracks connected instruments under short logical names
// (psu, psu2, awg, dds, ...) and resolves role tokens to devices.
package registry

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/OpenTraceLab/OpenTraceBench/pkg/device"
)

var (
	// ErrDeviceNotFound is returned when a name or role matches nothing.
	ErrDeviceNotFound = errors.New("registry: device not found")

	// ErrAmbiguousDevice is returned when a bare role token matches more
	// than one registered device. Resolution fails closed: the caller must
	// name one explicitly.
	ErrAmbiguousDevice = errors.New("registry: ambiguous device")
)

var nameRe = regexp.MustCompile(`^([a-z]+?)(\d*)$`)

// Registry maps logical names to devices. Names follow the pattern
// <base><index?>: the first device of a base takes the bare name, later
// ones get psu2, psu3, and so on.
type Registry struct {
	mu      sync.Mutex
	order   []string
	devices map[string]device.Device
	active  string
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{devices: make(map[string]device.Device)}
}

// Add registers dev under the first free name for base and returns the
// assigned name.
func (r *Registry) Add(base string, dev device.Device) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := base
	for i := 2; ; i++ {
		if _, taken := r.devices[name]; !taken {
			break
		}
		name = fmt.Sprintf("%s%d", base, i)
	}
	r.devices[name] = dev
	r.order = append(r.order, name)
	return name
}

// Get returns the device registered under name.
func (r *Registry) Get(name string) (device.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dev, ok := r.devices[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrDeviceNotFound, name)
	}
	return dev, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.devices[name]
	return ok
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered devices.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.devices)
}

// Remove unregisters name. The active selection is cleared if it pointed at
// the removed device.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.devices[name]; !ok {
		return fmt.Errorf("%w: %q", ErrDeviceNotFound, name)
	}
	delete(r.devices, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	if r.active == name {
		r.active = ""
	}
	return nil
}

// Active returns the explicitly selected device name, or "".
func (r *Registry) Active() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// SetActive selects a device by name for commands that honor a selection.
func (r *Registry) SetActive(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if name == "" {
		r.active = ""
		return nil
	}
	if _, ok := r.devices[name]; !ok {
		return fmt.Errorf("%w: %q", ErrDeviceNotFound, name)
	}
	r.active = name
	return nil
}

// BaseName splits a logical name into its base and whether it carries an
// explicit index ("psu2" -> "psu", true; "psu" -> "psu", false).
func BaseName(name string) (string, bool) {
	m := nameRe.FindStringSubmatch(strings.ToLower(name))
	if m == nil {
		return name, false
	}
	return m[1], m[2] != ""
}

// ResolveRole maps a bare role token ("psu", "awg", ...) to the single
// registered name with that base. With no match it fails with
// ErrDeviceNotFound; with more than one it fails closed with
// ErrAmbiguousDevice. The token "awg" additionally matches a legacy "dds"
// entry, but only when no awg-based name exists.
func (r *Registry) ResolveRole(role string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	role = strings.ToLower(role)
	var candidates []string
	for _, name := range r.order {
		base, _ := BaseName(name)
		if base == role {
			candidates = append(candidates, name)
		}
	}
	if role == "awg" && len(candidates) == 0 {
		for _, name := range r.order {
			if base, _ := BaseName(name); base == "dds" {
				candidates = append(candidates, name)
			}
		}
	}

	switch len(candidates) {
	case 0:
		return "", fmt.Errorf("%w: no %s connected", ErrDeviceNotFound, role)
	case 1:
		return candidates[0], nil
	default:
		sort.Strings(candidates)
		return "", fmt.Errorf("%w: %s matches %s; name one explicitly",
			ErrAmbiguousDevice, role, strings.Join(candidates, ", "))
	}
}

// CloseAll closes every device and empties the registry, collecting any
// close errors.
func (r *Registry) CloseAll() []error {
	r.mu.Lock()
	names := r.order
	devices := r.devices
	r.order = nil
	r.devices = make(map[string]device.Device)
	r.active = ""
	r.mu.Unlock()

	var errs []error
	for _, name := range names {
		if err := devices[name].Close(); err != nil {
			errs = append(errs, fmt.Errorf("registry: close %s: %w", name, err))
		}
	}
	return errs
}
