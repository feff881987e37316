// Package eir maintains incrementally-assembled Bluetooth discovery records.
//
// A single physical device announces itself in fragments: a Classic extended
// inquiry response here, an LE advertisement plus scan response there, each
// carrying some subset of the device's metadata. Report folds those partial
// observations into one record, tracking at the bit level which field groups
// actually hold data so that "we never saw a TX power" stays distinguishable
// from "TX power is zero".
package eir

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"tinygo.org/x/bluetooth"
)

// ErrInvalidArgument is wrapped by mutators that reject their input, e.g. an
// address buffer that cannot possibly hold a whole address.
var ErrInvalidArgument = errors.New("invalid argument")

// AddressLength is the wire length of a Bluetooth device address in bytes.
const AddressLength = 6

// SignalUnknown is returned by RSSI and TxPower when no reading is present.
// Valid readings occupy -127..+127 dBm, so -128 is free for the sentinel.
const SignalUnknown int8 = -128

// Device address types as reported alongside LE advertisements.
const (
	AddressTypePublic uint8 = 0x00
	AddressTypeRandom uint8 = 0x01
)

// GAP advertising flag bits, as carried in the Flags AD structure.
const (
	FlagLimitedDiscoverable = 0x01 // LE Limited Discoverable Mode
	FlagGeneralDiscoverable = 0x02 // LE General Discoverable Mode
	FlagLEOnly              = 0x04 // BR/EDR Not Supported
	FlagBothController      = 0x08 // Simultaneous LE and BR/EDR (Controller)
	FlagBothHost            = 0x10 // Simultaneous LE and BR/EDR (Host)
)

// Source records which protocol last supplied a report's semantics. Some
// field groups only ever appear for one source: device class and device ID
// come from Classic inquiry, flags and TX power from LE advertisements.
type Source uint8

const (
	SourceUnset Source = iota
	SourceLEAdvertisement
	SourceClassicInquiry
)

func (s Source) String() string {
	switch s {
	case SourceLEAdvertisement:
		return "le-advertisement"
	case SourceClassicInquiry:
		return "classic-inquiry"
	default:
		return "unset"
	}
}

// DeviceID is the Device ID profile record carried in a Classic extended
// inquiry response. The four fields are stored and merged as one unit.
type DeviceID struct {
	VendorIDSource uint16
	VendorID       uint16
	ProductID      uint16
	VersionID      uint16
}

// ConnectionInterval is the peripheral's preferred connection interval range
// hint, in units of 1.25 ms. Stored and merged as one unit.
type ConnectionInterval struct {
	Min uint16
	Max uint16
}

// Report is one device's accumulated discovery metadata. Which field groups
// hold data is tracked in a DataMask; accessors for absent groups return
// zero/sentinel values rather than failing, so presence must be checked via
// Mask when it matters.
//
// A Report carries no locking of its own. It expects a single writer at any
// instant; whoever owns the record (typically a discovery engine holding one
// Report per tracked device) must serialise mutators and Merge against reads.
type Report struct {
	// Timestamp of the last mutation that stored or changed data.
	Timestamp time.Time

	mask   DataMask
	source Source

	addr      [AddressLength]byte
	addrType  uint8
	name      string
	shortName string

	rssi    int8
	txPower int8
	flags   uint8

	companyID   uint16
	companyData []byte

	services         []bluetooth.UUID
	servicesComplete bool

	deviceClass uint32
	deviceID    DeviceID
	connInt     ConnectionInterval
}

// New returns an empty report: no field groups populated, provenance unset.
func New() *Report {
	return &Report{Timestamp: time.Now()}
}

// Copy returns an independent snapshot of the report. The copy shares no
// storage with the original; the two may diverge through later mutation.
func (r *Report) Copy() *Report {
	c := *r
	if r.companyData != nil {
		c.companyData = append([]byte(nil), r.companyData...)
	}
	if r.services != nil {
		c.services = append([]bluetooth.UUID(nil), r.services...)
	}
	return &c
}

// Clear empties the report in place: every field group back to its zero
// value, presence mask empty, provenance unset. The instance itself lives on.
func (r *Report) Clear() {
	*r = Report{Timestamp: time.Now()}
}

// touch marks a field group populated and records the mutation time.
func (r *Report) touch(bit DataMask) {
	r.mask |= bit
	r.Timestamp = time.Now()
}

// Mask returns the set of field groups currently holding data.
func (r *Report) Mask() DataMask {
	return r.mask
}

// Source returns the report's provenance.
func (r *Report) Source() Source {
	return r.source
}

// SetSource records the report's provenance.
func (r *Report) SetSource(s Source) {
	r.source = s
}

// SetAddress stores the 48-bit device address. addr must supply at least
// AddressLength bytes; shorter buffers are rejected and the report is left
// untouched.
func (r *Report) SetAddress(addr []byte) error {
	if len(addr) < AddressLength {
		return fmt.Errorf("address buffer is %d bytes, need %d: %w", len(addr), AddressLength, ErrInvalidArgument)
	}
	copy(r.addr[:], addr)
	r.touch(DataAddress)
	return nil
}

// Address returns the stored device address, all zeroes when absent.
func (r *Report) Address() [AddressLength]byte {
	return r.addr
}

// AddressString renders the address in the usual colon-separated form.
func (r *Report) AddressString() string {
	return net.HardwareAddr(r.addr[:]).String()
}

// SetAddressType records the address type (public/random). The raw value is
// stored as the wire gave it; interpreting it is the caller's business.
func (r *Report) SetAddressType(t uint8) {
	r.addrType = t
	r.touch(DataAddressType)
}

func (r *Report) AddressType() uint8 {
	return r.addrType
}

// SetName stores the complete local device name.
func (r *Report) SetName(name string) {
	r.name = name
	r.touch(DataName)
}

func (r *Report) Name() string {
	return r.name
}

// SetShortName stores the shortened local name, which advertisers fall back
// to when the complete name does not fit the packet.
func (r *Report) SetShortName(name string) {
	r.shortName = name
	r.touch(DataShortName)
}

func (r *Report) ShortName() string {
	return r.shortName
}

// SetRSSI stores the received signal strength in dBm.
func (r *Report) SetRSSI(rssi int8) {
	r.rssi = rssi
	r.touch(DataRSSI)
}

// RSSI returns the received signal strength, or SignalUnknown when absent.
func (r *Report) RSSI() int8 {
	if r.mask&DataRSSI == 0 {
		return SignalUnknown
	}
	return r.rssi
}

// SetTxPower stores the advertised transmit power level in dBm.
func (r *Report) SetTxPower(power int8) {
	r.txPower = power
	r.touch(DataTxPower)
}

// TxPower returns the advertised transmit power, or SignalUnknown when absent.
func (r *Report) TxPower() int8 {
	if r.mask&DataTxPower == 0 {
		return SignalUnknown
	}
	return r.txPower
}

// SetFlags stores the GAP advertising flags octet as the wire gave it.
func (r *Report) SetFlags(flags uint8) {
	r.flags = flags
	r.touch(DataFlags)
}

func (r *Report) Flags() uint8 {
	return r.flags
}

// SetManufacturerData stores the manufacturer specific data slot. A report
// holds at most one company→payload association; any previous slot is
// replaced, whether or not the company identifier matches. The payload is
// copied, so the caller may reuse its buffer.
func (r *Report) SetManufacturerData(company uint16, payload []byte) {
	r.companyID = company
	r.companyData = append([]byte(nil), payload...)
	r.touch(DataManufacturerData)
}

// ManufacturerData returns the single company→payload slot. The payload is a
// copy and safe for the caller to retain; it is nil when the slot is empty.
func (r *Report) ManufacturerData() (company uint16, payload []byte) {
	return r.companyID, append([]byte(nil), r.companyData...)
}

// AddService appends a service class UUID to the list. A UUID that is
// already present is dropped silently; list order is first-seen.
func (r *Report) AddService(uuid bluetooth.UUID) {
	for _, have := range r.services {
		if have == uuid {
			return
		}
	}
	r.services = append(r.services, uuid)
	r.touch(DataServices)
}

// AddServiceString parses uuid in its canonical 128-bit textual form and
// appends it to the service list. Malformed text is rejected and the list is
// left alone.
func (r *Report) AddServiceString(uuid string) error {
	parsed, err := bluetooth.ParseUUID(uuid)
	if err != nil {
		return fmt.Errorf("service uuid %q: %w", uuid, ErrInvalidArgument)
	}
	r.AddService(parsed)
	return nil
}

// Services returns a copy of the service UUID list in first-seen order.
func (r *Report) Services() []bluetooth.UUID {
	return append([]bluetooth.UUID(nil), r.services...)
}

// SetServicesComplete records whether the advertised service list was
// exhaustive or got truncated to fit the packet.
func (r *Report) SetServicesComplete(complete bool) {
	r.servicesComplete = complete
	r.touch(DataServicesComplete)
}

func (r *Report) ServicesComplete() bool {
	return r.servicesComplete
}

// SetDeviceClass stores the 24-bit Class of Device value from a Classic
// inquiry response. Bits above the wire width are discarded.
func (r *Report) SetDeviceClass(class uint32) {
	r.deviceClass = class & 0xffffff
	r.touch(DataDeviceClass)
}

func (r *Report) DeviceClass() uint32 {
	return r.deviceClass
}

// SetDeviceID stores the Device ID profile record as one unit.
func (r *Report) SetDeviceID(id DeviceID) {
	r.deviceID = id
	r.touch(DataDeviceID)
}

func (r *Report) DeviceID() DeviceID {
	return r.deviceID
}

// SetConnectionInterval stores the preferred connection interval range hint.
func (r *Report) SetConnectionInterval(ci ConnectionInterval) {
	r.connInt = ci
	r.touch(DataConnectionInterval)
}

func (r *Report) ConnectionInterval() ConnectionInterval {
	return r.connInt
}

// Describe renders a diagnostic view of the populated field groups. The
// service list can get long, so spelling it out is gated on includeServices;
// when false only the list length is shown.
func (r *Report) Describe(includeServices bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "report[%s, source=%s", r.mask, r.source)
	if r.mask&DataAddress != 0 {
		fmt.Fprintf(&b, ", addr=%s", r.AddressString())
	}
	if r.mask&DataAddressType != 0 {
		fmt.Fprintf(&b, ", addrtype=%#02x", r.addrType)
	}
	if r.mask&DataName != 0 {
		fmt.Fprintf(&b, ", name=%q", r.name)
	}
	if r.mask&DataShortName != 0 {
		fmt.Fprintf(&b, ", shortname=%q", r.shortName)
	}
	if r.mask&DataRSSI != 0 {
		fmt.Fprintf(&b, ", rssi=%ddBm", r.rssi)
	}
	if r.mask&DataTxPower != 0 {
		fmt.Fprintf(&b, ", txpower=%ddBm", r.txPower)
	}
	if r.mask&DataFlags != 0 {
		fmt.Fprintf(&b, ", flags=%#02x", r.flags)
	}
	if r.mask&DataManufacturerData != 0 {
		fmt.Fprintf(&b, ", mfg=%#04x:%x", r.companyID, r.companyData)
	}
	if r.mask&DataServices != 0 {
		if includeServices {
			uuids := make([]string, len(r.services))
			for i, u := range r.services {
				uuids[i] = u.String()
			}
			fmt.Fprintf(&b, ", services=[%s]", strings.Join(uuids, " "))
		} else {
			fmt.Fprintf(&b, ", services=%d", len(r.services))
		}
	}
	if r.mask&DataServicesComplete != 0 {
		fmt.Fprintf(&b, ", svccomplete=%t", r.servicesComplete)
	}
	if r.mask&DataDeviceClass != 0 {
		fmt.Fprintf(&b, ", class=%#06x", r.deviceClass)
	}
	if r.mask&DataDeviceID != 0 {
		fmt.Fprintf(&b, ", devid=%04x/%04x/%04x/%04x",
			r.deviceID.VendorIDSource, r.deviceID.VendorID, r.deviceID.ProductID, r.deviceID.VersionID)
	}
	if r.mask&DataConnectionInterval != 0 {
		fmt.Fprintf(&b, ", connint=%d-%d", r.connInt.Min, r.connInt.Max)
	}
	b.WriteString("]")
	return b.String()
}

// String implements fmt.Stringer with the service list elided.
func (r *Report) String() string {
	return r.Describe(false)
}
