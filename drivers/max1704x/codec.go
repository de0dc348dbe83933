package max1704x

import (
	"math"

	"max1704x-go/x/mathx"
)

// Fixed-point scale factors. All registers are 16-bit; threshold fields are
// narrower sub-fields with bounded ranges, so their encoders clamp rather
// than fail and report when they did.
const (
	// VCellStep is the VCELL resolution for the MAX17048 (the MAX17049
	// applies Variant.CellVoltageMult on top).
	VCellStep = 1.25e-3 // V/LSB

	// CRateStep is the CRATE resolution; raw is two's-complement.
	CRateStep = 0.208 // %/hr/LSB

	// AlertVoltageStep is the VALRT min/max resolution (8-bit fields).
	AlertVoltageStep = 0.02 // V/LSB

	// ResetVoltageStep is the VRESET threshold resolution (7-bit field).
	ResetVoltageStep = 0.04 // V/LSB

	// ActivityStep is the HIBRT ActThr resolution (8-bit field).
	ActivityStep = 1.25e-3 // V/LSB

	// HibernationStep is the HIBRT HibThr resolution (8-bit field).
	HibernationStep = 0.208 // %/hr/LSB
)

// DecodeVoltage converts a raw VCELL word to volts.
func DecodeVoltage(raw uint16) float64 { return float64(raw) * VCellStep }

// DecodePercent converts a raw SOC word to percent: integer percent in the
// upper byte, 1/256ths in the lower.
func DecodePercent(raw uint16) float64 { return float64(raw) / 256.0 }

// DecodeRate converts a raw CRATE word to percent per hour. Positive values
// indicate charging, negative discharging.
func DecodeRate(raw uint16) float64 { return float64(int16(raw)) * CRateStep }

// quantize rounds v onto an unsigned linear code of at most max steps,
// clamping out-of-range input to the nearest representable bound. The second
// result reports whether clamping occurred, so callers can detect lossy
// threshold writes.
func quantize(v, step float64, max uint16) (uint16, bool) {
	code := math.Round(v / step)
	c := mathx.Clamp(code, 0, float64(max))
	return uint16(c), c != code
}

// EncodeAlertVoltage maps volts onto the 8-bit 20 mV VALRT code (0 to 5.1 V).
func EncodeAlertVoltage(volts float64) (code uint16, clamped bool) {
	return quantize(volts, AlertVoltageStep, 0xFF)
}

// DecodeAlertVoltage is the inverse of EncodeAlertVoltage.
func DecodeAlertVoltage(code uint16) float64 { return float64(code) * AlertVoltageStep }

// EncodeResetVoltage maps volts onto the 7-bit 40 mV VRESET code (0 to 5.08 V).
func EncodeResetVoltage(volts float64) (code uint16, clamped bool) {
	return quantize(volts, ResetVoltageStep, 0x7F)
}

// DecodeResetVoltage is the inverse of EncodeResetVoltage.
func DecodeResetVoltage(code uint16) float64 { return float64(code) * ResetVoltageStep }

// EncodeActivityThreshold maps a delta-voltage onto the 8-bit 1.25 mV ActThr
// code (0 to 0.31875 V).
func EncodeActivityThreshold(volts float64) (code uint16, clamped bool) {
	return quantize(volts, ActivityStep, 0xFF)
}

// DecodeActivityThreshold is the inverse of EncodeActivityThreshold.
func DecodeActivityThreshold(code uint16) float64 { return float64(code) * ActivityStep }

// EncodeHibernationThreshold maps a rate onto the 8-bit 0.208 %/hr HibThr
// code (0 to 53.04 %/hr).
func EncodeHibernationThreshold(pctPerHr float64) (code uint16, clamped bool) {
	return quantize(pctPerHr, HibernationStep, 0xFF)
}

// DecodeHibernationThreshold is the inverse of EncodeHibernationThreshold.
func DecodeHibernationThreshold(code uint16) float64 { return float64(code) * HibernationStep }

// EncodeSOCLowThreshold maps a percentage in [1,32] onto the 5-bit ATHD code
// (stored as 32-percent).
func EncodeSOCLowThreshold(percent int) (code uint16, clamped bool) {
	p := mathx.Clamp(percent, 1, 32)
	return uint16(32 - p), p != percent
}

// DecodeSOCLowThreshold is the inverse of EncodeSOCLowThreshold.
func DecodeSOCLowThreshold(code uint16) int { return 32 - int(code&0x1F) }

// Extract returns the numBits-wide field at lowestBit of reg.
func Extract(reg uint16, lowestBit, numBits uint8) uint16 {
	return (reg >> lowestBit) & fieldMask(numBits)
}

// Insert returns reg with only the numBits-wide field at lowestBit replaced
// by field; every other bit is preserved. It fails with ErrFieldOverflow if
// field does not fit in numBits, rather than silently truncating a
// wrong-but-plausible value into hardware.
func Insert(reg uint16, lowestBit, numBits uint8, field uint16) (uint16, error) {
	mask := fieldMask(numBits)
	if field&^mask != 0 {
		return reg, ErrFieldOverflow
	}
	return reg&^(mask<<lowestBit) | field<<lowestBit, nil
}

func fieldMask(numBits uint8) uint16 {
	if numBits >= 16 {
		return 0xFFFF
	}
	return 1<<numBits - 1
}
