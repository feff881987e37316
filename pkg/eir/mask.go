package eir

import "strings"

// DataMask tracks which optional field groups of a Report currently hold
// valid data, one bit per group. A clear bit means the matching accessor
// returns its zero or sentinel value; it never means an error.
type DataMask uint16

const (
	DataAddress DataMask = 1 << iota
	DataAddressType
	DataName
	DataShortName
	DataRSSI
	DataTxPower
	DataFlags
	DataManufacturerData
	DataServices
	DataServicesComplete
	DataDeviceClass
	DataDeviceID
	DataConnectionInterval
)

// iteration order here is also the rendering order
var maskNames = []struct {
	bit  DataMask
	name string
}{
	{DataAddress, "address"},
	{DataAddressType, "addrtype"},
	{DataName, "name"},
	{DataShortName, "shortname"},
	{DataRSSI, "rssi"},
	{DataTxPower, "txpower"},
	{DataFlags, "flags"},
	{DataManufacturerData, "mfgdata"},
	{DataServices, "services"},
	{DataServicesComplete, "svccomplete"},
	{DataDeviceClass, "class"},
	{DataDeviceID, "devid"},
	{DataConnectionInterval, "connint"},
}

// Has reports whether every bit in want is set in m.
func (m DataMask) Has(want DataMask) bool {
	return m&want == want
}

// String renders the set field groups as a pipe-separated list, e.g.
// "address|name|rssi". The empty mask renders as "none".
func (m DataMask) String() string {
	if m == 0 {
		return "none"
	}
	parts := make([]string, 0, len(maskNames))
	for _, entry := range maskNames {
		if m&entry.bit != 0 {
			parts = append(parts, entry.name)
		}
	}
	return strings.Join(parts, "|")
}
