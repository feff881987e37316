package main

import (
	"net"

	"github.com/duckfullstop/eirie/pkg/eir"
	"tinygo.org/x/bluetooth"
)

// resultToReport builds a partial report out of whatever the platform stack
// already decoded for us. Payload decoding is tinygo bluetooth's job; we only
// copy across the fields it surfaces, which keeps this binary honest about
// never touching raw advertising bytes itself.
func resultToReport(result bluetooth.ScanResult) *eir.Report {
	r := eir.New()
	r.SetSource(eir.SourceLEAdvertisement)

	// result.Address stringifies to a MAC on Linux/Windows but to an opaque
	// UUID on macOS (ask @duckfullstop's MacBook how that discovery went).
	// Only store it when it is actually MAC-shaped.
	if hw, err := net.ParseMAC(result.Address.String()); err == nil && len(hw) == eir.AddressLength {
		// length already checked, SetAddress cannot refuse this
		_ = r.SetAddress(hw)
	}

	// 0 is how most platforms spell "no reading", not a real 0 dBm signal
	if result.RSSI != 0 {
		r.SetRSSI(clampSigned(result.RSSI))
	}

	if name := result.LocalName(); name != "" {
		r.SetName(name)
	}

	return r
}

// clampSigned squeezes the stack's int16 RSSI into the -127..+127 range the
// wire format actually uses.
func clampSigned(v int16) int8 {
	switch {
	case v < -127:
		return -127
	case v > 127:
		return 127
	}
	return int8(v)
}
