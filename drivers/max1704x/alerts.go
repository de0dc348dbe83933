package max1704x

// Alert flags are sticky: hardware sets a STATUS bit when the condition
// occurs and only an explicit write clears it. Every clear below is a
// read-modify-write that touches one bit, so sibling flags packed in the
// same register are never disturbed. Clearing an already-clear flag writes
// the register back unchanged.

// ---------------- Global alert ----------------

// ActiveAlert reports the CONFIG ALRT bit, set while any enabled alert
// condition is latched. The same bit drives the physical ALRT pin.
func (d *Device) ActiveAlert() (bool, error) {
	return d.readBit(regConfig, cfgAlert)
}

// ClearAlert clears the global alert flag and deasserts the ALRT pin until
// the next alert condition.
func (d *Device) ClearAlert() error {
	return d.updateBit(regConfig, cfgAlert, false)
}

// AlertReason reads the sticky STATUS flags and returns them as a Reason
// mask. It is a convenience aggregate over the individual flag accessors,
// assembled from one register read.
func (d *Device) AlertReason() (Reason, error) {
	v, err := d.bus.ReadRegister(regStatus)
	return Reason(Extract(v, 8, 8)) & 0x3F, err
}

// ---------------- SoC change ----------------

// SOCChangeAlertEnabled reports the CONFIG ALSC bit.
func (d *Device) SOCChangeAlertEnabled() (bool, error) {
	return d.readBit(regConfig, cfgAlsc)
}

// SetSOCChangeAlertEnabled arms an alert on every SoC change of at least 1%.
func (d *Device) SetSOCChangeAlertEnabled(enabled bool) error {
	return d.updateBit(regConfig, cfgAlsc, enabled)
}

// SOCChangeFlag reports the sticky SC flag.
func (d *Device) SOCChangeFlag() (bool, error) {
	return d.readBit(regStatus, stSC)
}

// ClearSOCChangeFlag clears the SC flag, leaving sibling flags intact.
func (d *Device) ClearSOCChangeFlag() error {
	return d.updateBit(regStatus, stSC, false)
}

// ---------------- SoC low ----------------

// SOCLowThreshold returns the percentage below which the SoC-low alert
// triggers, in whole percent (1 to 32).
func (d *Device) SOCLowThreshold() (int, error) {
	v, err := d.bus.ReadRegister(regConfig)
	return DecodeSOCLowThreshold(Extract(v, 0, cfgAthdWidth)), err
}

// SetSOCLowThreshold rewrites the CONFIG ATHD field. Values outside [1,32]
// are clamped to the nearest bound; clamped reports when that happened.
func (d *Device) SetSOCLowThreshold(percent int) (clamped bool, err error) {
	code, clamped := EncodeSOCLowThreshold(percent)
	return clamped, d.updateField(regConfig, 0, cfgAthdWidth, code)
}

// SOCLowFlag reports the sticky HD flag.
func (d *Device) SOCLowFlag() (bool, error) {
	return d.readBit(regStatus, stHD)
}

// ClearSOCLowFlag clears the HD flag, leaving sibling flags intact.
func (d *Device) ClearSOCLowFlag() error {
	return d.updateBit(regStatus, stHD, false)
}

// ---------------- Voltage high ----------------

// VoltageHighThreshold returns the upper cell-voltage alert limit in volts.
func (d *Device) VoltageHighThreshold() (float64, error) {
	v, err := d.bus.ReadRegister(regVAlert)
	return DecodeAlertVoltage(Extract(v, valrtMaxBit, 8)), err
}

// SetVoltageHighThreshold encodes volts (0 to 5.1 V, 20 mV steps) into
// VALRT.MAX, clamping out-of-range input.
func (d *Device) SetVoltageHighThreshold(volts float64) (clamped bool, err error) {
	code, clamped := EncodeAlertVoltage(volts)
	return clamped, d.updateField(regVAlert, valrtMaxBit, 8, code)
}

// VoltageHighFlag reports the sticky VH flag.
func (d *Device) VoltageHighFlag() (bool, error) {
	return d.readBit(regStatus, stVH)
}

// ClearVoltageHighFlag clears the VH flag, leaving sibling flags intact.
func (d *Device) ClearVoltageHighFlag() error {
	return d.updateBit(regStatus, stVH, false)
}

// ---------------- Voltage low ----------------

// VoltageLowThreshold returns the lower cell-voltage alert limit in volts.
func (d *Device) VoltageLowThreshold() (float64, error) {
	v, err := d.bus.ReadRegister(regVAlert)
	return DecodeAlertVoltage(Extract(v, valrtMinBit, 8)), err
}

// SetVoltageLowThreshold encodes volts (0 to 5.1 V, 20 mV steps) into
// VALRT.MIN, clamping out-of-range input.
func (d *Device) SetVoltageLowThreshold(volts float64) (clamped bool, err error) {
	code, clamped := EncodeAlertVoltage(volts)
	return clamped, d.updateField(regVAlert, valrtMinBit, 8, code)
}

// VoltageLowFlag reports the sticky VL flag.
func (d *Device) VoltageLowFlag() (bool, error) {
	return d.readBit(regStatus, stVL)
}

// ClearVoltageLowFlag clears the VL flag, leaving sibling flags intact.
func (d *Device) ClearVoltageLowFlag() error {
	return d.updateBit(regStatus, stVL, false)
}

// ---------------- Voltage reset ----------------

// VoltageResetAlertEnabled reports the STATUS EnVR bit.
func (d *Device) VoltageResetAlertEnabled() (bool, error) {
	return d.readBit(regStatus, stEnVR)
}

// SetVoltageResetAlertEnabled arms the alert raised when the cell voltage
// dips below and then recovers above ResetVoltageThreshold, which indicates
// battery removal or reinsertion.
func (d *Device) SetVoltageResetAlertEnabled(enabled bool) error {
	return d.updateBit(regStatus, stEnVR, enabled)
}

// ResetVoltageThreshold returns the VRESET detection threshold in volts.
func (d *Device) ResetVoltageThreshold() (float64, error) {
	v, err := d.bus.ReadRegister(regVResetID)
	return DecodeResetVoltage(Extract(v, vrstThreshold, 7)), err
}

// SetResetVoltageThreshold encodes volts (0 to 5.08 V, 40 mV steps) into the
// 7-bit VRESET field, clamping out-of-range input.
func (d *Device) SetResetVoltageThreshold(volts float64) (clamped bool, err error) {
	code, clamped := EncodeResetVoltage(volts)
	return clamped, d.updateField(regVResetID, vrstThreshold, 7, code)
}

// VoltageResetFlag reports the sticky VR flag.
func (d *Device) VoltageResetFlag() (bool, error) {
	return d.readBit(regStatus, stVR)
}

// ClearVoltageResetFlag clears the VR flag, leaving sibling flags intact.
func (d *Device) ClearVoltageResetFlag() error {
	return d.updateBit(regStatus, stVR, false)
}

// ---------------- Reset indicator ----------------

// ResetIndicatorFlag reports the sticky RI flag, set by hardware after
// power-up or reset while the device still awaits configuration.
func (d *Device) ResetIndicatorFlag() (bool, error) {
	return d.readBit(regStatus, stRI)
}

// ClearResetIndicatorFlag acknowledges a reset by clearing the RI flag,
// leaving sibling flags intact.
func (d *Device) ClearResetIndicatorFlag() error {
	return d.updateBit(regStatus, stRI, false)
}
