// Package max1704x provides a driver for the MAX17048/MAX17049 battery fuel
// gauge.
//
// Design notes (datasheet references):
// • I2C/SMBus word registers at fixed sub-addresses; data MSB then LSB.
// • Fixed 7-bit address 0x36 for the whole family.
// • SoC, voltage and rate are computed on-chip; the driver only decodes them.
// • Sticky alert flags in STATUS, cleared by explicit write, never by read.
// • Sleep needs both the MODE enable bit and the CONFIG switch bit set.
// • Hibernation is automatic around two HIBRT thresholds; 0xFF/0x00 sentinel
//   thresholds force it on/off.
//
// The driver is polymorphic over any Transport and performs exactly the bus
// transactions its accessors describe: no caching, no polling, no retries,
// no internal locking. Callers sharing a Device across goroutines must
// serialize access themselves or read-modify-write sequences can lose
// updates.
package max1704x

// Config selects the device-family variant.
type Config struct {
	// Variant defaults to MAX17048 when left zero.
	Variant Variant
}

// Device represents a MAX1704x fuel gauge behind a register transport.
type Device struct {
	bus     Transport
	variant Variant
}

// New constructs a Device. It only creates the object; it does not touch
// the hardware.
func New(bus Transport) *Device {
	return &Device{bus: bus, variant: MAX17048}
}

// Configure applies cfg and probes the VERSION register, failing with
// ErrWrongDevice when the chip does not identify as a MAX1704x.
func (d *Device) Configure(cfg Config) error {
	if cfg.Variant.Name != "" {
		d.variant = cfg.Variant
	}
	v, err := d.bus.ReadRegister(regVersion)
	if err != nil {
		return err
	}
	if v&versionMask != versionExpected {
		return ErrWrongDevice
	}
	return nil
}

// Variant reports the configured family variant.
func (d *Device) Variant() Variant { return d.variant }

// ---------------- Read-modify-write primitive ----------------

// updateField rewrites only the numBits-wide field at lowestBit of a shared
// register, preserving every other bit: read current word, splice the field,
// write the word back. Not atomic with respect to other bus masters.
func (d *Device) updateField(reg uint8, lowestBit, numBits uint8, field uint16) error {
	cur, err := d.bus.ReadRegister(reg)
	if err != nil {
		return err
	}
	next, err := Insert(cur, lowestBit, numBits, field)
	if err != nil {
		return err
	}
	return d.bus.WriteRegister(reg, next)
}

func (d *Device) updateBit(reg uint8, bit uint8, set bool) error {
	var v uint16
	if set {
		v = 1
	}
	return d.updateField(reg, bit, 1, v)
}

func (d *Device) readBit(reg uint8, bit uint8) (bool, error) {
	v, err := d.bus.ReadRegister(reg)
	return Extract(v, bit, 1) != 0, err
}

// ---------------- Battery monitoring ----------------

// CellVoltage reads VCELL and returns the cell voltage in volts.
func (d *Device) CellVoltage() (float64, error) {
	raw, err := d.bus.ReadRegister(regVCell)
	if err != nil {
		return 0, err
	}
	return DecodeVoltage(raw) * d.variant.CellVoltageMult, nil
}

// CellPercent reads SOC and returns the state of charge in percent.
func (d *Device) CellPercent() (float64, error) {
	raw, err := d.bus.ReadRegister(regSOC)
	if err != nil {
		return 0, err
	}
	return DecodePercent(raw), nil
}

// ChargeRate reads CRATE and returns the charge/discharge rate in percent
// per hour; negative while discharging.
func (d *Device) ChargeRate() (float64, error) {
	raw, err := d.bus.ReadRegister(regCRate)
	if err != nil {
		return 0, err
	}
	return DecodeRate(raw), nil
}

// ---------------- Device info ----------------

// ChipVersion returns the raw VERSION register (0x001_ for this family).
func (d *Device) ChipVersion() (uint16, error) {
	return d.bus.ReadRegister(regVersion)
}

// ChipID returns the one-time-programmable ID byte of the VRESET/ID register.
func (d *Device) ChipID() (uint8, error) {
	v, err := d.bus.ReadRegister(regVResetID)
	return uint8(Extract(v, 0, vrstIDWidth)), err
}

// ---------------- Configuration ----------------

// RComp returns the compensation byte of the CONFIG register.
func (d *Device) RComp() (uint8, error) {
	v, err := d.bus.ReadRegister(regConfig)
	return uint8(Extract(v, cfgRcompBit, 8)), err
}

// SetRComp rewrites the compensation byte, leaving the rest of CONFIG
// untouched. RCOMP tunes the on-chip model for different battery types;
// 0x97 is the power-up default.
func (d *Device) SetRComp(rcomp uint8) error {
	return d.updateField(regConfig, cfgRcompBit, 8, uint16(rcomp))
}

// ---------------- Control actions ----------------

// Reset power-cycles the gauge logic by writing the reset command word. The
// device resets before acknowledging the command, so the expected outcome of
// that write is a bus error; an acknowledged write means the device did not
// reset and ErrResetFailed is returned. After a successful reset the chip
// raises the reset-indicator flag and readings are briefly transient:
// callers should treat ResetIndicatorFlag as the re-initialized signal and
// clear it themselves.
func (d *Device) Reset() error {
	if err := d.bus.WriteRegister(regCmd, cmdReset); err == nil {
		return ErrResetFailed
	}
	return nil
}

// QuickStart forces an immediate OCV/SoC recalculation from the current cell
// voltage, for use after a sudden load change. The command returns at once;
// the chip needs a short, device-specific settling delay before readings are
// valid again, which is the caller's responsibility.
func (d *Device) QuickStart() error {
	return d.updateBit(regMode, modeQuickStart, true)
}

// ---------------- Sleep ----------------

// SleepEnabled reports the MODE EnSleep bit.
func (d *Device) SleepEnabled() (bool, error) {
	return d.readBit(regMode, modeEnSleep)
}

// SetSleepEnabled arms or disarms the sleep capability. Arming alone does
// not halt measurement; see SetSleep.
func (d *Device) SetSleepEnabled(enabled bool) error {
	return d.updateBit(regMode, modeEnSleep, enabled)
}

// Sleeping reports the CONFIG SLEEP bit.
func (d *Device) Sleeping() (bool, error) {
	return d.readBit(regConfig, cfgSleep)
}

// SetSleep forces the device into or out of sleep mode. The device only
// actually halts measurement when SleepEnabled is also true; with the enable
// bit clear this write has no observable effect on measurement state.
func (d *Device) SetSleep(sleep bool) error {
	return d.updateBit(regConfig, cfgSleep, sleep)
}

// ---------------- Hibernate ----------------

// Hibernating reports the read-only MODE HibStat bit.
func (d *Device) Hibernating() (bool, error) {
	return d.readBit(regMode, modeHibStat)
}

// ActivityThreshold returns the delta-voltage above which the device exits
// hibernation, in volts.
func (d *Device) ActivityThreshold() (float64, error) {
	v, err := d.bus.ReadRegister(regHibrt)
	return DecodeActivityThreshold(Extract(v, 0, 8)), err
}

// SetActivityThreshold encodes volts (0 to 0.31875 V, 1.25 mV steps) into
// HIBRT ActThr. Out-of-range input is clamped to the nearest bound; clamped
// reports when that made the write lossy.
func (d *Device) SetActivityThreshold(volts float64) (clamped bool, err error) {
	code, clamped := EncodeActivityThreshold(volts)
	return clamped, d.updateField(regHibrt, 0, 8, code)
}

// HibernationThreshold returns the charge rate below which the device enters
// hibernation, in percent per hour. The rate must stay below it for a fixed
// 6-minute dwell before the chip hibernates; the dwell is not configurable.
func (d *Device) HibernationThreshold() (float64, error) {
	v, err := d.bus.ReadRegister(regHibrt)
	return DecodeHibernationThreshold(Extract(v, 8, 8)), err
}

// SetHibernationThreshold encodes a rate (0 to 53.04 %/hr, 0.208 %/hr steps)
// into HIBRT HibThr, clamping out-of-range input.
func (d *Device) SetHibernationThreshold(pctPerHr float64) (clamped bool, err error) {
	code, clamped := EncodeHibernationThreshold(pctPerHr)
	return clamped, d.updateField(regHibrt, 8, 8, code)
}

// Hibernate forces hibernation immediately by writing the reserved
// maximum-threshold sentinels. The previous thresholds are overwritten, not
// saved: Hibernate followed by Wake leaves both at the sentinel values.
func (d *Device) Hibernate() error {
	return d.bus.WriteRegister(regHibrt, hibrtAlways)
}

// Wake forces the device out of hibernation by zeroing both thresholds,
// which the hardware reserves to mean "never hibernate". As with Hibernate,
// prior threshold values are not restored.
func (d *Device) Wake() error {
	return d.bus.WriteRegister(regHibrt, hibrtNever)
}

// ---------------- Comparator ----------------

// ComparatorDisabled reports the VRESET/ID Dis bit.
func (d *Device) ComparatorDisabled() (bool, error) {
	return d.readBit(regVResetID, vrstComparator)
}

// SetComparatorDisabled disables the fast analog voltage-reset comparator
// during hibernation, saving about 0.5 µA at the cost of raising detection
// latency from ~1 ms to the ~250 ms digital ADC path.
func (d *Device) SetComparatorDisabled(disabled bool) error {
	return d.updateBit(regVResetID, vrstComparator, disabled)
}
