package scpi

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/gousb"
)

const (
	// USBTMC interface class/subclass (USB-TMC spec rev 1.0).
	usbtmcClass    = 0xfe
	usbtmcSubclass = 0x03

	// Bulk message IDs.
	msgDevDepOut   = 1
	msgReqDevDepIn = 2
	msgDevDepIn    = 2

	usbtmcHeaderLen = 12
	usbtmcMaxRead   = 1024 * 1024

	usbtmcTimeout = 5 * time.Second
)

// USBTMC is a Transport over a USB Test & Measurement Class bulk interface.
type USBTMC struct {
	ctx  *gousb.Context
	dev  *gousb.Device
	intf *gousb.Interface
	cfg  *gousb.Config

	epOut *gousb.OutEndpoint
	epIn  *gousb.InEndpoint

	btag   byte
	desc   string
	closed bool
}

// OpenUSBTMC opens the first device matching vid:pid and claims its USBTMC
// interface.
func OpenUSBTMC(vid, pid gousb.ID) (*USBTMC, error) {
	ctx := gousb.NewContext()

	dev, err := ctx.OpenDeviceWithVIDPID(vid, pid)
	if err != nil {
		ctx.Close()
		return nil, fmt.Errorf("scpi: open %s:%s: %w", vid, pid, err)
	}
	if dev == nil {
		ctx.Close()
		return nil, fmt.Errorf("scpi: device %s:%s not found", vid, pid)
	}

	// Linux binds usbtmc kernel driver to these interfaces.
	_ = dev.SetAutoDetach(true)

	t := &USBTMC{
		ctx:  ctx,
		dev:  dev,
		desc: fmt.Sprintf("usb:%s:%s", vid, pid),
	}
	if err := t.claimInterface(); err != nil {
		dev.Close()
		ctx.Close()
		return nil, err
	}
	return t, nil
}

// claimInterface finds the USBTMC class interface and its bulk endpoints.
func (t *USBTMC) claimInterface() error {
	cfg, err := t.dev.Config(1)
	if err != nil {
		return fmt.Errorf("scpi: get config: %w", err)
	}
	t.cfg = cfg

	intfNum := -1
	for _, intf := range cfg.Desc.Interfaces {
		if len(intf.AltSettings) == 0 {
			continue
		}
		alt := intf.AltSettings[0]
		if uint8(alt.Class) == usbtmcClass && uint8(alt.SubClass) == usbtmcSubclass {
			intfNum = intf.Number
			break
		}
	}
	if intfNum == -1 {
		return fmt.Errorf("scpi: %s: no USBTMC interface", t.desc)
	}

	intf, err := cfg.Interface(intfNum, 0)
	if err != nil {
		return fmt.Errorf("scpi: claim interface %d: %w", intfNum, err)
	}
	t.intf = intf

	for _, ep := range intf.Setting.Endpoints {
		if ep.TransferType != gousb.TransferTypeBulk {
			continue
		}
		switch ep.Direction {
		case gousb.EndpointDirectionOut:
			if t.epOut == nil {
				out, err := intf.OutEndpoint(ep.Number)
				if err != nil {
					return fmt.Errorf("scpi: open OUT endpoint: %w", err)
				}
				t.epOut = out
			}
		case gousb.EndpointDirectionIn:
			if t.epIn == nil {
				in, err := intf.InEndpoint(ep.Number)
				if err != nil {
					return fmt.Errorf("scpi: open IN endpoint: %w", err)
				}
				t.epIn = in
			}
		}
	}
	if t.epOut == nil || t.epIn == nil {
		return fmt.Errorf("scpi: %s: bulk endpoints not found", t.desc)
	}
	return nil
}

func (t *USBTMC) nextTag() byte {
	t.btag++
	if t.btag == 0 {
		t.btag = 1
	}
	return t.btag
}

// Send writes cmd as one DEV_DEP_MSG_OUT transfer with EOM set.
func (t *USBTMC) Send(cmd string) error {
	if t.closed {
		return ErrClosed
	}
	payload := []byte(cmd + "\n")
	tag := t.nextTag()

	msg := make([]byte, usbtmcHeaderLen+(len(payload)+3)/4*4)
	msg[0] = msgDevDepOut
	msg[1] = tag
	msg[2] = ^tag
	putUint32LE(msg[4:], uint32(len(payload)))
	msg[8] = 0x01 // EOM
	copy(msg[usbtmcHeaderLen:], payload)

	if _, err := t.epOut.Write(msg); err != nil {
		return fmt.Errorf("scpi: %s: write: %w", t.desc, err)
	}
	return nil
}

// Query sends cmd and reads one device-dependent response message.
func (t *USBTMC) Query(cmd string) (string, error) {
	if t.closed {
		return "", ErrClosed
	}
	if err := t.Send(cmd); err != nil {
		return "", err
	}

	var response []byte
	deadline := time.Now().Add(usbtmcTimeout)
	for {
		if time.Now().After(deadline) {
			return "", fmt.Errorf("scpi: %s: query %q timed out", t.desc, cmd)
		}

		tag := t.nextTag()
		req := make([]byte, usbtmcHeaderLen)
		req[0] = msgReqDevDepIn
		req[1] = tag
		req[2] = ^tag
		putUint32LE(req[4:], usbtmcMaxRead)
		if _, err := t.epOut.Write(req); err != nil {
			return "", fmt.Errorf("scpi: %s: request read: %w", t.desc, err)
		}

		buf := make([]byte, t.epIn.Desc.MaxPacketSize*64)
		n, err := t.epIn.Read(buf)
		if err != nil {
			return "", fmt.Errorf("scpi: %s: read: %w", t.desc, err)
		}
		if n < usbtmcHeaderLen || buf[0] != msgDevDepIn {
			return "", fmt.Errorf("scpi: %s: short or malformed response", t.desc)
		}

		size := int(getUint32LE(buf[4:]))
		body := buf[usbtmcHeaderLen:n]
		if size < len(body) {
			body = body[:size]
		}
		response = append(response, body...)

		eom := buf[8]&0x01 != 0
		if eom {
			break
		}
	}
	return strings.TrimRight(string(response), "\r\n"), nil
}

// Description names the USB link.
func (t *USBTMC) Description() string { return t.desc }

// Close releases the interface and USB context.
func (t *USBTMC) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	if t.intf != nil {
		t.intf.Close()
	}
	if t.cfg != nil {
		t.cfg.Close()
	}
	if t.dev != nil {
		t.dev.Close()
	}
	if t.ctx != nil {
		t.ctx.Close()
	}
	return nil
}

func putUint32LE(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func getUint32LE(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
