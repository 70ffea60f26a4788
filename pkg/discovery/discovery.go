// Package discovery finds bench instruments, identifies them and fills the
// registry. USB-TMC devices are enumerated and probed with *IDN?; serial
// and GPIB resources come from the bench config.
package discovery

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/gousb"

	"github.com/OpenTraceLab/OpenTraceBench/internal/ctxlog"
	"github.com/OpenTraceLab/OpenTraceBench/pkg/device"
	"github.com/OpenTraceLab/OpenTraceBench/pkg/registry"
	"github.com/OpenTraceLab/OpenTraceBench/pkg/scpi"
)

// model binds an *IDN? substring to a driver constructor and a registry
// base name.
type model struct {
	match string
	base  string
	build func(tr scpi.Transport) (device.Device, error)
}

// models is the supported instrument table. JDS6600 is absent: it has no
// identification command and is matched by config Model hint instead.
var models = []model{
	{"E3631A", "psu", func(tr scpi.Transport) (device.Device, error) { return device.NewE3631A(tr), nil }},
	{"MPS-6010H", "psu", func(tr scpi.Transport) (device.Device, error) { return device.NewMPS6010H(tr) }},
	{"EDU33212A", "awg", func(tr scpi.Transport) (device.Device, error) { return device.NewEDU33212A(tr), nil }},
	{"34401A", "dmm", func(tr scpi.Transport) (device.Device, error) { return device.NewHP34401A(tr), nil }},
	{"XDM1041", "dmm", func(tr scpi.Transport) (device.Device, error) { return device.NewXDM1041(tr), nil }},
	{"MSO2024", "scope", func(tr scpi.Transport) (device.Device, error) { return device.NewMSO2024(tr), nil }},
}

// usbVendors lists vendor IDs worth opening during the USB scan. Probing
// every device on the bus upsets unrelated hardware.
var usbVendors = map[gousb.ID]bool{
	0x0957: true, // Agilent
	0x2a8d: true, // Keysight
	0x0699: true, // Tektronix
	0x1ab1: true, // Rigol
	0x5345: true, // Owon
}

// matchModel finds the driver entry whose substring appears in idn, or
// whose match equals an explicit model hint.
func matchModel(idn string) (model, bool) {
	for _, m := range models {
		if strings.Contains(idn, m.match) {
			return m, true
		}
	}
	return model{}, false
}

// Scan probes USB and configured serial/GPIB resources and registers every
// identified instrument. Individual probe failures are logged and skipped;
// the scan itself only fails on setup errors.
func Scan(ctx context.Context, cfg *Config, reg *registry.Registry) error {
	log := ctxlog.FromContext(ctx)

	if err := scanUSB(ctx, reg); err != nil {
		return err
	}

	for _, res := range cfg.Serial {
		if err := addSerial(ctx, res, reg); err != nil {
			log.Warn("serial probe failed", "port", res.Port, "error", err)
		}
	}
	for _, res := range cfg.GPIB {
		if err := addGPIB(ctx, res, reg); err != nil {
			log.Warn("gpib probe failed", "port", res.Port, "address", res.Address, "error", err)
		}
	}
	return nil
}

func scanUSB(ctx context.Context, reg *registry.Registry) error {
	log := ctxlog.FromContext(ctx)

	usbCtx := gousb.NewContext()
	defer usbCtx.Close()

	// Enumerate without opening; each match is reopened with its own
	// context so a wedged instrument cannot hold the scan's handle.
	var found []gousb.DeviceDesc
	if _, err := usbCtx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		if usbVendors[desc.Vendor] {
			found = append(found, *desc)
		}
		return false
	}); err != nil {
		return fmt.Errorf("discovery: usb enumerate: %w", err)
	}

	for _, desc := range found {
		tr, err := scpi.OpenUSBTMC(desc.Vendor, desc.Product)
		if err != nil {
			log.Debug("usb device skipped", "vid", desc.Vendor, "pid", desc.Product, "error", err)
			continue
		}
		if err := identify(ctx, tr, "", reg); err != nil {
			log.Warn("usb probe failed", "vid", desc.Vendor, "pid", desc.Product, "error", err)
			tr.Close()
		}
	}
	return nil
}

func addSerial(ctx context.Context, res SerialResource, reg *registry.Registry) error {
	// JDS6600 never answers *IDN?; a model hint is the only way in.
	if strings.Contains(strings.ToUpper(res.Model), "JDS6600") {
		tr, err := scpi.OpenSerial(res.Port)
		if err != nil {
			return err
		}
		dev := device.NewJDS6600(tr)
		name := reg.Add("dds", dev)
		ctxlog.FromContext(ctx).Info("registered", "name", name, "model", dev.Info().Model, "resource", tr.Description())
		return nil
	}

	tr, err := scpi.OpenSerial(res.Port)
	if err != nil {
		return err
	}
	if err := identify(ctx, tr, res.Model, reg); err != nil {
		tr.Close()
		return err
	}
	return nil
}

func addGPIB(ctx context.Context, res GPIBResource, reg *registry.Registry) error {
	tr, err := scpi.OpenPrologix(res.Port, res.Address)
	if err != nil {
		return err
	}
	if err := identify(ctx, tr, res.Model, reg); err != nil {
		tr.Close()
		return err
	}
	return nil
}

// identify matches a transport to a driver by the model hint or *IDN?
// response and registers the resulting device.
func identify(ctx context.Context, tr scpi.Transport, hint string, reg *registry.Registry) error {
	log := ctxlog.FromContext(ctx)

	idn := hint
	if idn == "" {
		resp, err := tr.Query("*IDN?")
		if err != nil {
			return fmt.Errorf("discovery: idn: %w", err)
		}
		idn = resp
	}

	m, ok := matchModel(idn)
	if !ok {
		return fmt.Errorf("discovery: unsupported instrument %q", idn)
	}
	dev, err := m.build(tr)
	if err != nil {
		return fmt.Errorf("discovery: init %s: %w", m.match, err)
	}
	name := reg.Add(m.base, dev)
	log.Info("registered", "name", name, "model", dev.Info().Model, "resource", tr.Description())
	return nil
}
