package device

import (
	"context"
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

const (
	gt1151Addr       = 0x14
	gt1151RegStatus  = 0x814E
	gt1151RegPoint1  = 0x814F
	gt1151TouchMask  = 0x0F
	gt1151ReadyFlag  = 0x80
	gt1151PointBytes = 8
)

// GT1151 reads touches from a Goodix GT1151 controller over I2C.
type GT1151 struct {
	bus i2c.BusCloser
	dev *i2c.Dev
}

// OpenGT1151 initialises the host drivers and opens the controller on the
// named I2C bus ("1" on a Raspberry Pi).
func OpenGT1151(busName string) (*GT1151, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("opening i2c bus %q: %w", busName, err)
	}
	return &GT1151{
		bus: bus,
		dev: &i2c.Dev{Bus: bus, Addr: gt1151Addr},
	}, nil
}

func (g *GT1151) readReg(reg uint16, n int) ([]byte, error) {
	w := []byte{byte(reg >> 8), byte(reg)}
	r := make([]byte, n)
	if err := g.dev.Tx(w, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (g *GT1151) writeReg(reg uint16, val byte) error {
	return g.dev.Tx([]byte{byte(reg >> 8), byte(reg), val}, nil)
}

// Poll returns the first touch point if the controller has one ready.
func (g *GT1151) Poll(ctx context.Context) (TouchPoint, bool, error) {
	status, err := g.readReg(gt1151RegStatus, 1)
	if err != nil {
		return TouchPoint{}, false, fmt.Errorf("gt1151 status: %w", err)
	}
	if status[0]&gt1151ReadyFlag == 0 {
		return TouchPoint{}, false, nil
	}
	defer g.writeReg(gt1151RegStatus, 0)

	if status[0]&gt1151TouchMask == 0 {
		return TouchPoint{}, false, nil
	}

	data, err := g.readReg(gt1151RegPoint1, gt1151PointBytes)
	if err != nil {
		return TouchPoint{}, false, fmt.Errorf("gt1151 point: %w", err)
	}

	// data[0] is the track id; coordinates are little endian.
	return TouchPoint{
		X: int(data[1]) | int(data[2])<<8,
		Y: int(data[3]) | int(data[4])<<8,
	}, true, nil
}

func (g *GT1151) Close() error {
	return g.bus.Close()
}
