package max1704x

const (
	// 7-bit I2C address, fixed for the MAX17048/MAX17049 family.
	AddressDefault = 0x36

	// --- Register sub-addresses (16-bit word registers, MSB first) ---

	regVCell    = 0x02 // R   cell voltage
	regSOC      = 0x04 // R   state of charge
	regMode     = 0x06 // R/W quick-start, sleep enable, hibernate status
	regVersion  = 0x08 // R   production version, 0x001_
	regHibrt    = 0x0A // R/W hibernate thresholds, default 0x8030
	regConfig   = 0x0C // R/W rcomp, sleep, alert bits, default 0x971C
	regVAlert   = 0x14 // R/W voltage alert window, default 0x00FF
	regCRate    = 0x16 // R   charge/discharge rate
	regVResetID = 0x18 // R/W reset voltage, comparator, chip ID
	regStatus   = 0x1A // R/W sticky alert flags, default 0x01__
	regCmd      = 0xFE // W   command register

	// --- MODE (0x06) bit positions ---
	modeHibStat    = 4 // read-only hibernate status
	modeEnSleep    = 5 // arms sleep capability
	modeQuickStart = 6 // forces OCV/SOC recalculation

	// --- CONFIG (0x0C) layout ---
	cfgAthdWidth = 5 // ATHD field, bits 4:0, SoC-low threshold as 32-p
	cfgAlert     = 5 // ALRT, global sticky alert flag
	cfgAlsc      = 6 // ALSC, SoC-change alert enable
	cfgSleep     = 7 // SLEEP, enters sleep when EnSleep is also set
	cfgRcompBit  = 8 // RCOMP field low bit, bits 15:8

	// --- VALRT (0x14) layout ---
	valrtMaxBit = 0 // voltage-high threshold, bits 7:0
	valrtMinBit = 8 // voltage-low threshold, bits 15:8

	// --- VRESET/ID (0x18) layout ---
	vrstIDWidth    = 8 // chip ID, bits 7:0
	vrstComparator = 8 // Dis, disables the analog comparator in hibernate
	vrstThreshold  = 9 // reset voltage threshold, bits 15:9

	// --- STATUS (0x1A) sticky flag bit positions ---
	stRI   = 8  // reset indicator
	stVH   = 9  // voltage high
	stVL   = 10 // voltage low
	stVR   = 11 // voltage reset
	stHD   = 12 // SoC low
	stSC   = 13 // SoC change
	stEnVR = 14 // voltage-reset alert enable

	// Writing this word to CMD power-cycles the gauge logic.
	cmdReset = 0x5400

	// VERSION & versionMask must equal versionExpected for this family.
	versionMask     = 0xFFF0
	versionExpected = 0x0010

	// HIBRT sentinel words: both thresholds at max force hibernation,
	// both at zero prevent it.
	hibrtAlways = 0xFFFF
	hibrtNever  = 0x0000
)

// Reason is the 6-bit mask of sticky alert causes, mirroring the STATUS
// register flags. Multiple causes may be set simultaneously.
type Reason uint8

const (
	ReasonResetIndicator Reason = 0x01
	ReasonVoltageHigh    Reason = 0x02
	ReasonVoltageLow     Reason = 0x04
	ReasonVoltageReset   Reason = 0x08
	ReasonSOCLow         Reason = 0x10
	ReasonSOCChange      Reason = 0x20
)

func (r Reason) Has(flag Reason) bool { return r&flag != 0 }

// Variant describes a device-family member. The MAX17048 and MAX17049 share
// one register layout; the MAX17049 senses a 2-cell stack, doubling the
// VCELL step. MAX17049 figures are taken on faith from the family datasheet
// and have not been verified against hardware.
type Variant struct {
	Name string
	// CellVoltageMult scales the decoded VCELL reading.
	CellVoltageMult float64
}

var (
	MAX17048 = Variant{Name: "MAX17048", CellVoltageMult: 1}
	MAX17049 = Variant{Name: "MAX17049", CellVoltageMult: 2}
)
