package eir

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tinygo.org/x/bluetooth"
)

var (
	uuidBattery    = bluetooth.New16BitUUID(0x180F)
	uuidDeviceInfo = bluetooth.New16BitUUID(0x180A)
	uuidHeartRate  = bluetooth.New16BitUUID(0x180D)

	testAddr = []byte{0xde, 0xad, 0xbe, 0xef, 0x00, 0x01}
)

func TestNewReportIsEmpty(t *testing.T) {
	r := New()

	assert.Equal(t, DataMask(0), r.Mask())
	assert.Equal(t, SourceUnset, r.Source())
	assert.Equal(t, [AddressLength]byte{}, r.Address())
	assert.Empty(t, r.Name())
	assert.Empty(t, r.ShortName())
	assert.Equal(t, SignalUnknown, r.RSSI())
	assert.Equal(t, SignalUnknown, r.TxPower())
	assert.Equal(t, uint8(0), r.Flags())
	assert.Empty(t, r.Services())
	assert.False(t, r.ServicesComplete())
	assert.Equal(t, uint32(0), r.DeviceClass())
	assert.Equal(t, DeviceID{}, r.DeviceID())
	assert.Equal(t, ConnectionInterval{}, r.ConnectionInterval())
	assert.False(t, r.Timestamp.IsZero())

	company, payload := r.ManufacturerData()
	assert.Equal(t, uint16(0), company)
	assert.Empty(t, payload)
}

func TestSettersMarkPresence(t *testing.T) {
	r := New()

	require.NoError(t, r.SetAddress(testAddr))
	r.SetAddressType(AddressTypeRandom)
	r.SetName("Thermo-1")
	r.SetShortName("Thermo")
	r.SetRSSI(-60)
	r.SetTxPower(-4)
	r.SetFlags(FlagGeneralDiscoverable | FlagLEOnly)
	r.SetManufacturerData(0x004c, []byte{0x02, 0x15})
	r.AddService(uuidBattery)
	r.SetServicesComplete(true)
	r.SetDeviceClass(0x5a020c)
	r.SetDeviceID(DeviceID{VendorIDSource: 1, VendorID: 0x1234, ProductID: 2, VersionID: 3})
	r.SetConnectionInterval(ConnectionInterval{Min: 6, Max: 12})

	want := DataAddress | DataAddressType | DataName | DataShortName | DataRSSI |
		DataTxPower | DataFlags | DataManufacturerData | DataServices |
		DataServicesComplete | DataDeviceClass | DataDeviceID | DataConnectionInterval
	assert.Equal(t, want, r.Mask())

	assert.Equal(t, "de:ad:be:ef:00:01", r.AddressString())
	assert.Equal(t, AddressTypeRandom, r.AddressType())
	assert.Equal(t, "Thermo-1", r.Name())
	assert.Equal(t, "Thermo", r.ShortName())
	assert.Equal(t, int8(-60), r.RSSI())
	assert.Equal(t, int8(-4), r.TxPower())
	assert.Equal(t, uint8(FlagGeneralDiscoverable|FlagLEOnly), r.Flags())
	assert.Equal(t, []bluetooth.UUID{uuidBattery}, r.Services())
	assert.True(t, r.ServicesComplete())
	assert.Equal(t, uint32(0x5a020c), r.DeviceClass())
	assert.Equal(t, ConnectionInterval{Min: 6, Max: 12}, r.ConnectionInterval())

	company, payload := r.ManufacturerData()
	assert.Equal(t, uint16(0x004c), company)
	assert.Equal(t, []byte{0x02, 0x15}, payload)
}

func TestSetAddressRejectsShortBuffer(t *testing.T) {
	r := New()

	err := r.SetAddress([]byte{0xde, 0xad, 0xbe})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	// rejected input must not leave any trace behind
	assert.Equal(t, DataMask(0), r.Mask())
	assert.Equal(t, [AddressLength]byte{}, r.Address())
}

func TestAddServiceDeduplicates(t *testing.T) {
	r := New()

	r.AddService(uuidBattery)
	r.AddService(uuidBattery)

	assert.Len(t, r.Services(), 1)
	assert.True(t, r.Mask().Has(DataServices))
}

func TestAddServiceStringCanonicalForm(t *testing.T) {
	r := New()

	require.NoError(t, r.AddServiceString("0000180f-0000-1000-8000-00805f9b34fb"))
	assert.Equal(t, []bluetooth.UUID{uuidBattery}, r.Services())

	err := r.AddServiceString("not-a-uuid")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	assert.Len(t, r.Services(), 1)
}

func TestManufacturerDataSingleSlot(t *testing.T) {
	r := New()

	r.SetManufacturerData(0x004c, []byte{0x01})
	r.SetManufacturerData(0x0075, []byte{0x02, 0x03})

	company, payload := r.ManufacturerData()
	assert.Equal(t, uint16(0x0075), company)
	assert.Equal(t, []byte{0x02, 0x03}, payload)
}

func TestManufacturerDataIsCopied(t *testing.T) {
	r := New()

	buf := []byte{0x01, 0x02}
	r.SetManufacturerData(0x004c, buf)
	buf[0] = 0xff

	_, payload := r.ManufacturerData()
	assert.Equal(t, []byte{0x01, 0x02}, payload)

	// mutating the returned copy must not touch the stored slot either
	payload[1] = 0xff
	_, again := r.ManufacturerData()
	assert.Equal(t, []byte{0x01, 0x02}, again)
}

func TestManufacturerDataFromWireCapture(t *testing.T) {
	// iBeacon-style frame captured off the air, company ID already split off
	// by the parser upstream of us
	payload, err := hex.DecodeString("0215f7826da64fa24e988024bc5b71e0893e00010002c5")
	require.NoError(t, err)

	r := New()
	r.SetManufacturerData(0x004c, payload)

	company, got := r.ManufacturerData()
	assert.Equal(t, uint16(0x004c), company)
	assert.Equal(t, payload, got)
	assert.True(t, r.Mask().Has(DataManufacturerData))
}

func TestDeviceClassDiscardsHighBits(t *testing.T) {
	r := New()

	r.SetDeviceClass(0xff5a020c)
	assert.Equal(t, uint32(0x5a020c), r.DeviceClass())
}

func TestClearResetsEverything(t *testing.T) {
	r := New()
	require.NoError(t, r.SetAddress(testAddr))
	r.SetName("Thermo-1")
	r.SetRSSI(-60)
	r.AddService(uuidBattery)
	r.SetSource(SourceLEAdvertisement)

	r.Clear()

	assert.Equal(t, DataMask(0), r.Mask())
	assert.Equal(t, SourceUnset, r.Source())
	assert.Equal(t, [AddressLength]byte{}, r.Address())
	assert.Empty(t, r.Name())
	assert.Equal(t, SignalUnknown, r.RSSI())
	assert.Empty(t, r.Services())
}

func TestCopyIsIndependent(t *testing.T) {
	orig := New()
	orig.SetName("Thermo-1")
	orig.AddService(uuidBattery)
	orig.SetManufacturerData(0x004c, []byte{0x01})

	snap := orig.Copy()
	require.Equal(t, orig.Mask(), snap.Mask())

	// diverge both sides, check neither bleeds into the other
	orig.AddService(uuidDeviceInfo)
	snap.AddService(uuidHeartRate)
	orig.SetManufacturerData(0x004c, []byte{0xff})

	assert.Equal(t, []bluetooth.UUID{uuidBattery, uuidDeviceInfo}, orig.Services())
	assert.Equal(t, []bluetooth.UUID{uuidBattery, uuidHeartRate}, snap.Services())

	_, payload := snap.ManufacturerData()
	assert.Equal(t, []byte{0x01}, payload)
}

func TestSetterAdvancesTimestamp(t *testing.T) {
	r := New()
	before := r.Timestamp

	r.SetRSSI(-42)
	assert.False(t, r.Timestamp.Before(before))
}

func TestDescribe(t *testing.T) {
	r := New()
	r.SetSource(SourceLEAdvertisement)
	r.SetName("Thermo-1")
	r.SetRSSI(-60)
	r.AddService(uuidBattery)

	short := r.Describe(false)
	assert.Contains(t, short, `name="Thermo-1"`)
	assert.Contains(t, short, "rssi=-60dBm")
	assert.Contains(t, short, "source=le-advertisement")
	assert.Contains(t, short, "services=1")
	assert.NotContains(t, short, uuidBattery.String())

	long := r.Describe(true)
	assert.Contains(t, long, uuidBattery.String())

	assert.Equal(t, short, r.String())
}

func TestDescribeEmpty(t *testing.T) {
	assert.Equal(t, "report[none, source=unset]", New().Describe(true))
}
