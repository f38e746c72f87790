// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hantek

import (
	"fmt"

	"go.uber.org/zap"
)

// PSU drives one power supply. It keeps only its configuration; every
// method performs one complete exchange on the transport and returns.
//
// PSU is not safe for concurrent use. Callers issuing commands from more
// than one goroutine must serialize them.
type PSU struct {
	transport Transport
	config    Config
	log       *zap.Logger
}

// New creates a PSU whose transport is built by factory from the
// configured port, baud rate and timeout.
//
// Example:
//
//	psu := hantek.New(func(port string, baud int, timeout time.Duration) hantek.Transport {
//	    return transport.NewSerial(port, baud, timeout)
//	}, hantek.WithPort("/dev/ttyUSB0"))
func New(factory TransportFactory, opts ...Option) *PSU {
	if factory == nil {
		panic("transport factory cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	t := factory(cfg.Port, cfg.BaudRate, cfg.Timeout)
	if t == nil {
		panic("transport factory returned nil")
	}

	return &PSU{
		transport: t,
		config:    cfg,
		log:       cfg.Logger.With(zap.String("port", cfg.Port)),
	}
}

// Config returns the connection settings of the handle.
func (p *PSU) Config() Config {
	return p.config
}

// TurnOn enables the output.
func (p *PSU) TurnOn() error { return p.send(CmdTurnOn) }

// TurnOff disables the output.
func (p *PSU) TurnOff() error { return p.send(CmdTurnOff) }

// OCPOn enables over-current protection.
func (p *PSU) OCPOn() error { return p.send(CmdOCPOn) }

// OCPOff disables over-current protection.
func (p *PSU) OCPOff() error { return p.send(CmdOCPOff) }

// OVPOn enables over-voltage protection.
func (p *PSU) OVPOn() error { return p.send(CmdOVPOn) }

// OVPOff disables over-voltage protection.
func (p *PSU) OVPOff() error { return p.send(CmdOVPOff) }

// Model returns the model string reported by the device, e.g. "HDP1160V4S".
func (p *PSU) Model() (string, error) {
	payload, err := p.query(CmdGetModel)
	if err != nil {
		return "", err
	}
	return DecodeModel(payload)
}

// ActiveVoltage returns the measured output voltage in volts.
func (p *PSU) ActiveVoltage() (float64, error) {
	return p.queryVolts(CmdGetActiveVoltage)
}

// ActiveCurrent returns the measured output current in milliamps.
func (p *PSU) ActiveCurrent() (int, error) {
	return p.queryMilliamps(CmdGetActiveCurrent)
}

// VoltageLimit returns the voltage setpoint in volts.
func (p *PSU) VoltageLimit() (float64, error) {
	return p.queryVolts(CmdGetVoltageLimit)
}

// CurrentLimit returns the current setpoint in milliamps.
func (p *PSU) CurrentLimit() (int, error) {
	return p.queryMilliamps(CmdGetCurrentLimit)
}

// OnOffStatus reports whether the output is enabled. The device is asked
// every time; nothing is cached.
func (p *PSU) OnOffStatus() (bool, error) {
	payload, err := p.query(CmdGetOnOffStatus)
	if err != nil {
		return false, err
	}
	return DecodeStatus(payload)
}

// SetOutputVoltage sets the output voltage. Values are not checked against
// the device range; only values without a 16-bit centivolt encoding are
// rejected with *ValueRangeError.
func (p *PSU) SetOutputVoltage(volts float64) error {
	return p.sendValue(CmdSetOutputVoltage, volts)
}

// SetOutputCurrent sets the output current limit in milliamps.
func (p *PSU) SetOutputCurrent(milliamps int) error {
	return p.sendValue(CmdSetOutputCurrent, float64(milliamps))
}

// SetOVPLimit sets the over-voltage protection threshold in volts.
func (p *PSU) SetOVPLimit(volts float64) error {
	return p.sendValue(CmdSetOVPLimit, volts)
}

// SetOCPLimit sets the over-current protection threshold in milliamps.
func (p *PSU) SetOCPLimit(milliamps int) error {
	return p.sendValue(CmdSetOCPLimit, float64(milliamps))
}

// Reading is the decoded outcome of a command run through Do.
type Reading struct {
	Command   Command
	Raw       []byte
	Model     string
	Volts     float64
	Milliamps int
	On        bool
}

// String formats the decoded value of a query.
func (r Reading) String() string {
	if r.Command.Kind() != KindQuery {
		return "ok"
	}
	switch r.Command.Unit() {
	case UnitText:
		return r.Model
	case UnitCentivolts:
		return fmt.Sprintf("%.2f V", r.Volts)
	case UnitMilliamps:
		return fmt.Sprintf("%d mA", r.Milliamps)
	case UnitFlag:
		if r.On {
			return "on"
		}
		return "off"
	}
	return string(r.Raw)
}

// Do runs any command. value is used only by setters and is given in volts
// or milliamps according to the command unit.
func (p *PSU) Do(c Command, value float64) (Reading, error) {
	r := Reading{Command: c}

	switch c.Kind() {
	case KindAction:
		return r, p.send(c)
	case KindSetter:
		return r, p.sendValue(c, value)
	}

	payload, err := p.query(c)
	if err != nil {
		return r, err
	}
	r.Raw = payload

	switch c.Unit() {
	case UnitText:
		r.Model, err = DecodeModel(payload)
	case UnitCentivolts:
		r.Volts, err = DecodeVolts(c, payload)
	case UnitMilliamps:
		r.Milliamps, err = DecodeMilliamps(c, payload)
	case UnitFlag:
		r.On, err = DecodeStatus(payload)
	}
	if err != nil {
		return Reading{Command: c, Raw: payload}, err
	}
	return r, nil
}

func (p *PSU) send(c Command) error {
	return p.write(c, EncodeCommand(c))
}

func (p *PSU) sendValue(c Command, value float64) error {
	frame, err := EncodeSetter(c, value)
	if err != nil {
		p.log.Warn("Rejected setter value", zap.Stringer("command", c), zap.Float64("value", value), zap.Error(err))
		return err
	}
	return p.write(c, frame)
}

func (p *PSU) write(c Command, frame []byte) error {
	p.log.Debug("Sending frame", zap.String("frame", FormatFrame(frame)))

	if err := p.transport.Write(frame); err != nil {
		p.log.Warn("Write failed", zap.Stringer("command", c), zap.Error(err))
		return err
	}
	return nil
}

func (p *PSU) query(c Command) ([]byte, error) {
	frame := EncodeCommand(c)
	p.log.Debug("Sending query", zap.String("frame", FormatFrame(frame)))

	payload, err := p.transport.WriteReadLine(frame)
	if err != nil {
		p.log.Warn("Query failed", zap.Stringer("command", c), zap.Error(err))
		return nil, err
	}

	p.log.Debug("Received reply", zap.Stringer("command", c), zap.ByteString("payload", payload))
	return payload, nil
}

func (p *PSU) queryVolts(c Command) (float64, error) {
	payload, err := p.query(c)
	if err != nil {
		return 0, err
	}
	return DecodeVolts(c, payload)
}

func (p *PSU) queryMilliamps(c Command) (int, error) {
	payload, err := p.query(c)
	if err != nil {
		return 0, err
	}
	return DecodeMilliamps(c, payload)
}
