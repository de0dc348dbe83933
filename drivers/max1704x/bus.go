package max1704x

import "tinygo.org/x/drivers"

// Transport is the register-word capability the driver is built on:
// synchronous 16-bit reads and writes at byte sub-addresses. Implementations
// own their bus, addressing, timeout and retry policy; the driver issues one
// transaction per call and propagates failures unchanged.
type Transport interface {
	ReadRegister(reg uint8) (uint16, error)
	WriteRegister(reg uint8, val uint16) error
}

// I2CTransport implements Transport over an I2C bus. MAX1704x word registers
// are big-endian on the wire: MSB first.
type I2CTransport struct {
	bus  drivers.I2C
	addr uint16

	// Fixed buffers to avoid per-call heap allocations.
	w [3]byte
	r [2]byte
}

var _ Transport = (*I2CTransport)(nil)

// NewI2CTransport binds an already-configured I2C bus at addr. Pass
// AddressDefault unless the bus remaps addresses.
func NewI2CTransport(bus drivers.I2C, addr uint16) *I2CTransport {
	if addr == 0 {
		addr = AddressDefault
	}
	return &I2CTransport{bus: bus, addr: addr}
}

// NewI2C constructs a Device on an already-configured I2C bus. Pass addr 0
// for AddressDefault.
func NewI2C(bus drivers.I2C, addr uint16) *Device {
	return New(NewI2CTransport(bus, addr))
}

func (t *I2CTransport) ReadRegister(reg uint8) (uint16, error) {
	t.w[0] = reg
	if err := t.bus.Tx(t.addr, t.w[:1], t.r[:2]); err != nil {
		return 0, err
	}
	return uint16(t.r[0])<<8 | uint16(t.r[1]), nil
}

func (t *I2CTransport) WriteRegister(reg uint8, val uint16) error {
	t.w[0] = reg
	t.w[1] = byte(val >> 8)
	t.w[2] = byte(val)
	return t.bus.Tx(t.addr, t.w[:3], nil)
}
