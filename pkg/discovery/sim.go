package discovery

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/OpenTraceLab/OpenTraceBench/internal/ctxlog"
	"github.com/OpenTraceLab/OpenTraceBench/pkg/device"
	"github.com/OpenTraceLab/OpenTraceBench/pkg/registry"
	"github.com/OpenTraceLab/OpenTraceBench/pkg/scpi"
)

// jitter answers measurement queries with a value near center, so scripted
// runs against the simulated bench look like a live bench.
func jitter(center, spread float64) string {
	return fmt.Sprintf("%.6f", center+(rand.Float64()-0.5)*2*spread)
}

// SimBench registers one simulated instrument of each kind, driven by the
// real drivers over in-memory transports with canned responses.
func SimBench(ctx context.Context, reg *registry.Registry) {
	log := ctxlog.FromContext(ctx)

	psuTr := scpi.NewSim("HEWLETT-PACKARD,E3631A,0,1.4-5.0-1.0")
	psuTr.OnQuery = func(cmd string) (string, bool) {
		switch cmd {
		case "MEASURE:VOLTAGE? P6V", "MEASURE:VOLTAGE? P25V", "MEASURE:VOLTAGE? N25V":
			return jitter(5.0, 0.015), true
		case "MEASURE:CURRENT? P6V", "MEASURE:CURRENT? P25V", "MEASURE:CURRENT? N25V":
			return jitter(0.1, 0.001), true
		}
		return "", false
	}

	dmmTr := scpi.NewSim("HEWLETT-PACKARD,34401A,0,10-5-2")
	dmmTr.OnQuery = func(cmd string) (string, bool) {
		if cmd == "READ?" || cmd == "FETCh?" || strings.HasPrefix(cmd, "MEASure:") {
			return jitter(5.0, 0.002), true
		}
		return "", false
	}

	scopeTr := scpi.NewSim("TEKTRONIX,MSO2024,0,1.0")
	scopeTr.Stub("MEASUrement:IMMed:VALue?", "1000.2")
	scopeTr.Stub("WFMOutpre:YMUlt?", "0.04")
	scopeTr.Stub("WFMOutpre:YOff?", "0")
	scopeTr.Stub("WFMOutpre:YZero?", "0")
	scopeTr.Stub("WFMOutpre:XINcr?", "1e-6")
	scopeTr.Stub("WFMOutpre:XZero?", "0")
	scopeTr.Stub("CURVe?", "0,12,24,35,45,50,45,35,24,12,0,-12,-24,-35,-45,-50,-45,-35,-24,-12")

	awgTr := scpi.NewSim("Keysight Technologies,EDU33212A,0,1.0")
	ddsTr := scpi.NewSim("")

	for _, ent := range []struct {
		base string
		dev  device.Device
	}{
		{"psu", device.NewE3631A(psuTr)},
		{"awg", device.NewEDU33212A(awgTr)},
		{"dds", device.NewJDS6600(ddsTr)},
		{"dmm", device.NewHP34401A(dmmTr)},
		{"scope", device.NewMSO2024(scopeTr)},
	} {
		name := reg.Add(ent.base, ent.dev)
		log.Info("registered simulated instrument", "name", name, "model", ent.dev.Info().Model)
	}
}
