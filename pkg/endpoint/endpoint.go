// Package endpoint discovers the serial ports a drone can be reached on.
package endpoint

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

var (
	// ErrNoEndpoints is returned when the host reports no serial ports.
	ErrNoEndpoints = errors.New("no serial endpoints found")

	// ErrEndpointUnavailable is returned when a selected port cannot be opened.
	ErrEndpointUnavailable = errors.New("serial endpoint unavailable")
)

// Endpoint is a serial port as reported by the platform.
type Endpoint struct {
	Name         string `json:"name"`
	IsUSB        bool   `json:"isUSB"`
	VID          string `json:"vid,omitempty"`
	PID          string `json:"pid,omitempty"`
	SerialNumber string `json:"serialNumber,omitempty"`
	Product      string `json:"product,omitempty"`
}

// Label is the text shown for e in the selection menu.
func (e Endpoint) Label() string {
	if !e.IsUSB {
		return e.Name
	}

	var details []string
	if e.VID != "" || e.PID != "" {
		details = append(details, fmt.Sprintf("USB %s:%s", strings.ToLower(e.VID), strings.ToLower(e.PID)))
	} else {
		details = append(details, "USB")
	}
	if e.Product != "" {
		details = append(details, e.Product)
	}
	return fmt.Sprintf("%s (%s)", e.Name, strings.Join(details, ", "))
}

// Discoverer lists the endpoints currently available.
type Discoverer interface {
	Discover(ctx context.Context) ([]Endpoint, error)
}

// Prober checks that an endpoint can actually be opened.
type Prober interface {
	Probe(ctx context.Context, e Endpoint) error
}

var _ Discoverer = &SerialDiscoverer{}

// SerialDiscoverer queries the host with go.bug.st/serial/enumerator.
type SerialDiscoverer struct {
	list func() ([]*enumerator.PortDetails, error)
}

func NewSerialDiscoverer() *SerialDiscoverer {
	return &SerialDiscoverer{list: enumerator.GetDetailedPortsList}
}

// Discover returns the ports in the order the platform reports them. An empty
// result is reported as ErrNoEndpoints.
func (d *SerialDiscoverer) Discover(ctx context.Context) ([]Endpoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ports, err := d.list()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to enumerate serial ports")
	}

	endpoints := make([]Endpoint, 0, len(ports))
	for _, p := range ports {
		if p == nil || p.Name == "" {
			continue
		}
		e := Endpoint{
			Name:         p.Name,
			IsUSB:        p.IsUSB,
			VID:          p.VID,
			PID:          p.PID,
			SerialNumber: p.SerialNumber,
			Product:      p.Product,
		}
		logrus.WithFields(logrus.Fields{
			"name":  e.Name,
			"usb":   e.IsUSB,
			"vid":   e.VID,
			"pid":   e.PID,
			"product": e.Product,
		}).Debug("discovered serial port")
		endpoints = append(endpoints, e)
	}

	if len(endpoints) == 0 {
		return nil, ErrNoEndpoints
	}

	return endpoints, nil
}

var _ Prober = &SerialProber{}

// SerialProber opens and immediately closes a port. It proves the port is
// present and not held by another process; it says nothing about which
// device is on the other end.
type SerialProber struct {
	BaudRate int

	open func(name string, mode *serial.Mode) (serial.Port, error)
}

func NewSerialProber(baudRate int) *SerialProber {
	return &SerialProber{
		BaudRate: baudRate,
		open:     serial.Open,
	}
}

func (p *SerialProber) Probe(ctx context.Context, e Endpoint) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	port, err := p.open(e.Name, &serial.Mode{BaudRate: p.BaudRate})
	if err != nil {
		return pkgerrors.Wrapf(ErrEndpointUnavailable, "%s: %v", e.Name, err)
	}
	if err := port.Close(); err != nil {
		logrus.WithError(err).WithField("name", e.Name).Warn("failed to close serial port after probe")
	}

	logrus.WithField("name", e.Name).Debug("serial port probe succeeded")
	return nil
}
