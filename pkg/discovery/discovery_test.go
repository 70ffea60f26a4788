package discovery

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/OpenTraceLab/OpenTraceBench/pkg/registry"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.yaml")
	text := `
serial:
  - port: /dev/ttyUSB1
    model: JDS6600
gpib:
  - port: /dev/ttyUSB0
    address: 22
    model: 34401A
`
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if len(cfg.Serial) != 1 || cfg.Serial[0].Model != "JDS6600" {
		t.Errorf("serial = %+v", cfg.Serial)
	}
	if len(cfg.GPIB) != 1 || cfg.GPIB[0].Address != 22 {
		t.Errorf("gpib = %+v", cfg.GPIB)
	}
}

func TestLoadConfigMissing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig missing: %v", err)
	}
	if len(cfg.Serial) != 0 || len(cfg.GPIB) != 0 {
		t.Errorf("cfg = %+v, want empty", cfg)
	}
}

func TestMatchModel(t *testing.T) {
	m, ok := matchModel("HEWLETT-PACKARD,E3631A,0,1.4-5.0-1.0")
	if !ok || m.base != "psu" {
		t.Errorf("matchModel(E3631A) = %+v, %v", m, ok)
	}
	if _, ok := matchModel("ACME,UNKNOWN,0,1"); ok {
		t.Error("matchModel(unknown): expected no match")
	}
}

func TestSimBench(t *testing.T) {
	reg := registry.New()
	SimBench(context.Background(), reg)

	for _, name := range []string{"psu", "awg", "dds", "dmm", "scope"} {
		if !reg.Has(name) {
			t.Errorf("simulated bench missing %q", name)
		}
	}

	// The simulated meter answers readings through the real driver.
	dev, err := reg.Get("dmm")
	if err != nil {
		t.Fatal(err)
	}
	resp, err := dev.Query("READ?")
	if err != nil || resp == "" {
		t.Errorf("dmm READ? = %q, %v", resp, err)
	}
}
