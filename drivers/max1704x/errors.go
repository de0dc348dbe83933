package max1704x

import "errors"

// Bus failures (NACK, timeout, device absent) are produced by the Transport
// and surface from every accessor unchanged: the driver never retries,
// wraps, or swallows them, so callers can match on whatever error type
// their transport defines.
var (
	// ErrFieldOverflow reports a write value that does not fit its target
	// bit-field width.
	ErrFieldOverflow = errors.New("max1704x: value does not fit bit-field")

	// ErrWrongDevice reports an unexpected VERSION register during Configure.
	ErrWrongDevice = errors.New("max1704x: unexpected version register, not a MAX1704x")

	// ErrResetFailed reports that the device acknowledged the reset command
	// instead of power-cycling.
	ErrResetFailed = errors.New("max1704x: reset command was acknowledged, device did not reset")
)
