package max1704x

import (
	"errors"
	"testing"

	"tinygo.org/x/drivers"
)

// Compile-time checks.
var (
	_ Transport   = (*fakeTransport)(nil)
	_ drivers.I2C = (*fakeI2C)(nil)
)

type regWrite struct {
	reg uint8
	val uint16
}

// fakeTransport is a scripted register file recording every write.
type fakeTransport struct {
	mem      map[uint8]uint16
	writes   []regWrite
	readErr  error
	writeErr error
}

// newFakeTransport seeds a plausible power-up register image.
func newFakeTransport() *fakeTransport {
	return &fakeTransport{mem: map[uint8]uint16{
		regVCell:    0x0CE0,
		regSOC:      0x0320,
		regMode:     0x0000,
		regVersion:  0x0012,
		regHibrt:    0x8030,
		regConfig:   0x971C,
		regVAlert:   0x00FF,
		regCRate:    0xFFFD,
		regVResetID: 0x960C,
		regStatus:   0x0100,
	}}
}

func (f *fakeTransport) ReadRegister(reg uint8) (uint16, error) {
	if f.readErr != nil {
		return 0, f.readErr
	}
	return f.mem[reg], nil
}

func (f *fakeTransport) WriteRegister(reg uint8, val uint16) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.mem[reg] = val
	f.writes = append(f.writes, regWrite{reg, val})
	return nil
}

func (f *fakeTransport) lastWrite(t *testing.T) regWrite {
	t.Helper()
	if len(f.writes) == 0 {
		t.Fatal("no writes recorded")
	}
	return f.writes[len(f.writes)-1]
}

func (f *fakeTransport) writesTo(reg uint8) int {
	n := 0
	for _, w := range f.writes {
		if w.reg == reg {
			n++
		}
	}
	return n
}

func TestCellReadings(t *testing.T) {
	d := New(newFakeTransport())

	v, err := d.CellVoltage()
	if err != nil {
		t.Fatalf("CellVoltage: %v", err)
	}
	if !approx(v, 4.12, 1e-9) {
		t.Errorf("CellVoltage = %v, want 4.12", v)
	}

	p, err := d.CellPercent()
	if err != nil {
		t.Fatalf("CellPercent: %v", err)
	}
	if p != 3.125 {
		t.Errorf("CellPercent = %v, want 3.125", p)
	}

	r, err := d.ChargeRate()
	if err != nil {
		t.Fatalf("ChargeRate: %v", err)
	}
	if !approx(r, -0.624, 1e-9) {
		t.Errorf("ChargeRate = %v, want -0.624", r)
	}
}

func TestReadsHaveNoSideEffects(t *testing.T) {
	f := newFakeTransport()
	d := New(f)
	_, _ = d.CellVoltage()
	_, _ = d.CellPercent()
	_, _ = d.ChargeRate()
	_, _ = d.Hibernating()
	_, _ = d.AlertReason()
	if len(f.writes) != 0 {
		t.Fatalf("read-only accessors issued %d writes", len(f.writes))
	}
}

func TestMAX17049VoltageDoubled(t *testing.T) {
	d := New(newFakeTransport())
	if err := d.Configure(Config{Variant: MAX17049}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	v, err := d.CellVoltage()
	if err != nil {
		t.Fatalf("CellVoltage: %v", err)
	}
	if !approx(v, 8.24, 1e-9) {
		t.Errorf("CellVoltage = %v, want 8.24 (2-cell stack)", v)
	}
}

func TestConfigureProbesVersion(t *testing.T) {
	f := newFakeTransport()
	d := New(f)
	if err := d.Configure(Config{}); err != nil {
		t.Fatalf("Configure with version 0x0012: %v", err)
	}
	if d.Variant().Name != "MAX17048" {
		t.Errorf("default variant = %q, want MAX17048", d.Variant().Name)
	}

	f.mem[regVersion] = 0xABCD
	if err := d.Configure(Config{}); !errors.Is(err, ErrWrongDevice) {
		t.Errorf("Configure with bad version: err = %v, want ErrWrongDevice", err)
	}
}

func TestChipInfo(t *testing.T) {
	d := New(newFakeTransport())
	ver, err := d.ChipVersion()
	if err != nil || ver != 0x0012 {
		t.Errorf("ChipVersion = (%#04x, %v), want 0x0012", ver, err)
	}
	id, err := d.ChipID()
	if err != nil || id != 0x0C {
		t.Errorf("ChipID = (%#02x, %v), want 0x0C", id, err)
	}
}

func TestSetRCompPreservesConfig(t *testing.T) {
	f := newFakeTransport()
	d := New(f)
	if err := d.SetRComp(0x55); err != nil {
		t.Fatalf("SetRComp: %v", err)
	}
	if w := f.lastWrite(t); w.reg != regConfig || w.val != 0x551C {
		t.Errorf("SetRComp wrote %#04x to %#02x, want 0x551C to CONFIG", w.val, w.reg)
	}
	rc, err := d.RComp()
	if err != nil || rc != 0x55 {
		t.Errorf("RComp = (%#02x, %v), want 0x55", rc, err)
	}
}

func TestSleepBitsAreIndependent(t *testing.T) {
	f := newFakeTransport()
	d := New(f)

	// Forcing the switch bit with the enable bit clear must only touch
	// CONFIG; MODE stays untouched and measurement keeps running.
	if err := d.SetSleep(true); err != nil {
		t.Fatalf("SetSleep: %v", err)
	}
	if w := f.lastWrite(t); w.reg != regConfig || w.val != 0x979C {
		t.Errorf("SetSleep wrote %#04x to %#02x, want 0x979C to CONFIG", w.val, w.reg)
	}
	if f.writesTo(regMode) != 0 {
		t.Error("SetSleep wrote to MODE")
	}
	if en, _ := d.SleepEnabled(); en {
		t.Error("SleepEnabled flipped by SetSleep")
	}

	if err := d.SetSleepEnabled(true); err != nil {
		t.Fatalf("SetSleepEnabled: %v", err)
	}
	if w := f.lastWrite(t); w.reg != regMode || w.val != 0x0020 {
		t.Errorf("SetSleepEnabled wrote %#04x to %#02x, want 0x0020 to MODE", w.val, w.reg)
	}
}

func TestQuickStart(t *testing.T) {
	f := newFakeTransport()
	d := New(f)
	if err := d.QuickStart(); err != nil {
		t.Fatalf("QuickStart: %v", err)
	}
	if w := f.lastWrite(t); w.reg != regMode || w.val != 0x0040 {
		t.Errorf("QuickStart wrote %#04x to %#02x, want 0x0040 to MODE", w.val, w.reg)
	}
}

func TestHibernateAndWakeSentinels(t *testing.T) {
	f := newFakeTransport()
	d := New(f)

	if err := d.Hibernate(); err != nil {
		t.Fatalf("Hibernate: %v", err)
	}
	if w := f.lastWrite(t); w.reg != regHibrt || w.val != 0xFFFF {
		t.Errorf("Hibernate wrote %#04x to %#02x, want 0xFFFF to HIBRT", w.val, w.reg)
	}
	act, _ := d.ActivityThreshold()
	hib, _ := d.HibernationThreshold()
	if !approx(act, 0.31875, 1e-9) || !approx(hib, 53.04, 1e-9) {
		t.Errorf("thresholds after Hibernate = (%v, %v), want maxima", act, hib)
	}

	if err := d.Wake(); err != nil {
		t.Fatalf("Wake: %v", err)
	}
	if w := f.lastWrite(t); w.reg != regHibrt || w.val != 0x0000 {
		t.Errorf("Wake wrote %#04x to %#02x, want 0x0000 to HIBRT", w.val, w.reg)
	}
}

func TestHibernateThresholdFieldsIndependent(t *testing.T) {
	f := newFakeTransport() // HIBRT = 0x8030
	d := New(f)

	clamped, err := d.SetActivityThreshold(0.2)
	if err != nil || clamped {
		t.Fatalf("SetActivityThreshold: clamped=%v err=%v", clamped, err)
	}
	if w := f.lastWrite(t); w.reg != regHibrt || w.val != 0x80A0 {
		t.Errorf("SetActivityThreshold wrote %#04x, want 0x80A0 (HibThr byte preserved)", w.val)
	}

	clamped, err = d.SetHibernationThreshold(10.4)
	if err != nil || clamped {
		t.Fatalf("SetHibernationThreshold: clamped=%v err=%v", clamped, err)
	}
	if w := f.lastWrite(t); w.reg != regHibrt || w.val != 0x32A0 {
		t.Errorf("SetHibernationThreshold wrote %#04x, want 0x32A0 (ActThr byte preserved)", w.val)
	}
}

func TestHibernating(t *testing.T) {
	f := newFakeTransport()
	d := New(f)
	if h, err := d.Hibernating(); err != nil || h {
		t.Errorf("Hibernating = (%v, %v), want false", h, err)
	}
	f.mem[regMode] = 1 << modeHibStat
	if h, _ := d.Hibernating(); !h {
		t.Error("Hibernating = false with HibStat set")
	}
}

func TestComparatorDisable(t *testing.T) {
	f := newFakeTransport() // VRESET/ID = 0x960C, Dis clear
	d := New(f)
	if dis, err := d.ComparatorDisabled(); err != nil || dis {
		t.Fatalf("ComparatorDisabled = (%v, %v), want false", dis, err)
	}
	if err := d.SetComparatorDisabled(true); err != nil {
		t.Fatalf("SetComparatorDisabled: %v", err)
	}
	if w := f.lastWrite(t); w.reg != regVResetID || w.val != 0x970C {
		t.Errorf("SetComparatorDisabled wrote %#04x, want 0x970C (ID and threshold preserved)", w.val)
	}
}

func TestResetSemantics(t *testing.T) {
	// The device resets before acknowledging, so a failed write is the
	// success path.
	nacking := newFakeTransport()
	nacking.writeErr = errors.New("i2c: nack")
	d := New(nacking)
	if err := d.Reset(); err != nil {
		t.Errorf("Reset with NACKing device: %v, want nil", err)
	}

	// An acknowledged command word means the reset did not take.
	acking := newFakeTransport()
	d = New(acking)
	if err := d.Reset(); !errors.Is(err, ErrResetFailed) {
		t.Errorf("Reset with ACKing device: %v, want ErrResetFailed", err)
	}
	if acking.writesTo(regStatus) != 0 {
		t.Error("Reset touched STATUS; the reset-indicator flag belongs to the caller")
	}
}

func TestTransportErrorsPropagateUnchanged(t *testing.T) {
	busErr := errors.New("i2c: bus timeout")

	f := newFakeTransport()
	f.readErr = busErr
	d := New(f)
	if _, err := d.CellVoltage(); !errors.Is(err, busErr) {
		t.Errorf("CellVoltage error = %v, want the transport error unchanged", err)
	}
	if err := d.SetSleep(true); !errors.Is(err, busErr) {
		t.Errorf("SetSleep read-phase error = %v, want the transport error unchanged", err)
	}

	f = newFakeTransport()
	f.writeErr = busErr
	d = New(f)
	if err := d.SetRComp(0x42); !errors.Is(err, busErr) {
		t.Errorf("SetRComp write-phase error = %v, want the transport error unchanged", err)
	}
}

// fakeI2C emulates the chip's word-register wire protocol: one sub-address
// byte written, two data bytes MSB first.
type fakeI2C struct {
	mem map[uint8]uint16
}

func (f *fakeI2C) Tx(addr uint16, w, r []byte) error {
	if addr != AddressDefault {
		return errors.New("i2c: no device at address")
	}
	switch {
	case len(w) == 1 && len(r) == 2:
		v := f.mem[w[0]]
		r[0] = byte(v >> 8)
		r[1] = byte(v)
		return nil
	case len(w) == 3 && len(r) == 0:
		f.mem[w[0]] = uint16(w[1])<<8 | uint16(w[2])
		return nil
	default:
		return errors.New("i2c: unexpected transaction shape")
	}
}

func TestI2CTransportWireFormat(t *testing.T) {
	bus := &fakeI2C{mem: map[uint8]uint16{regSOC: 0x0320, regVersion: 0x0012}}
	d := NewI2C(bus, 0) // 0 selects AddressDefault

	if err := d.Configure(Config{}); err != nil {
		t.Fatalf("Configure over I2C: %v", err)
	}
	p, err := d.CellPercent()
	if err != nil || p != 3.125 {
		t.Fatalf("CellPercent over I2C = (%v, %v), want 3.125", p, err)
	}

	if err := d.SetRComp(0xA7); err != nil {
		t.Fatalf("SetRComp over I2C: %v", err)
	}
	if got := bus.mem[regConfig]; got != 0xA700 {
		t.Errorf("CONFIG after SetRComp = %#04x, want 0xA700", got)
	}
}
