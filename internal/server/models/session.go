package models

import "time"

// DeviceSession is the live link between a device and the gateway serving it.
type DeviceSession struct {
	DeviceSN  string
	GatewaySN string
	Since     time.Time
}
