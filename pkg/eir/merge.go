package eir

import "bytes"

// Merge folds every field group present in other into r and returns the mask
// of groups whose value actually changed. A group changes when other carries
// it and r either lacked it or held a different value; identical values
// contribute presence but no change bit. Groups absent in other are left
// alone, so a caller can distinguish "nothing new in this packet" (empty
// mask) from "device data updated" and notify accordingly.
//
// The service UUID list merges as a set union. Manufacturer specific data is
// a single slot and is replaced outright. Device ID and connection interval
// move as whole units. r's timestamp advances to the later of the two only
// when at least one group changed; provenance is taken from other unless
// other's is still unset. Merging a report into itself is a no-op.
func (r *Report) Merge(other *Report) DataMask {
	if other == nil || other == r {
		return 0
	}

	var changed DataMask
	om := other.mask

	if om&DataAddress != 0 && (r.mask&DataAddress == 0 || r.addr != other.addr) {
		r.addr = other.addr
		changed |= DataAddress
	}
	if om&DataAddressType != 0 && (r.mask&DataAddressType == 0 || r.addrType != other.addrType) {
		r.addrType = other.addrType
		changed |= DataAddressType
	}
	if om&DataName != 0 && (r.mask&DataName == 0 || r.name != other.name) {
		r.name = other.name
		changed |= DataName
	}
	if om&DataShortName != 0 && (r.mask&DataShortName == 0 || r.shortName != other.shortName) {
		r.shortName = other.shortName
		changed |= DataShortName
	}
	if om&DataRSSI != 0 && (r.mask&DataRSSI == 0 || r.rssi != other.rssi) {
		r.rssi = other.rssi
		changed |= DataRSSI
	}
	if om&DataTxPower != 0 && (r.mask&DataTxPower == 0 || r.txPower != other.txPower) {
		r.txPower = other.txPower
		changed |= DataTxPower
	}
	if om&DataFlags != 0 && (r.mask&DataFlags == 0 || r.flags != other.flags) {
		r.flags = other.flags
		changed |= DataFlags
	}
	if om&DataManufacturerData != 0 &&
		(r.mask&DataManufacturerData == 0 ||
			r.companyID != other.companyID ||
			!bytes.Equal(r.companyData, other.companyData)) {
		r.companyID = other.companyID
		r.companyData = append([]byte(nil), other.companyData...)
		changed |= DataManufacturerData
	}
	if om&DataServices != 0 {
		added := false
	union:
		for _, u := range other.services {
			for _, have := range r.services {
				if have == u {
					continue union
				}
			}
			r.services = append(r.services, u)
			added = true
		}
		if added || r.mask&DataServices == 0 {
			changed |= DataServices
		}
	}
	if om&DataServicesComplete != 0 && (r.mask&DataServicesComplete == 0 || r.servicesComplete != other.servicesComplete) {
		r.servicesComplete = other.servicesComplete
		changed |= DataServicesComplete
	}
	if om&DataDeviceClass != 0 && (r.mask&DataDeviceClass == 0 || r.deviceClass != other.deviceClass) {
		r.deviceClass = other.deviceClass
		changed |= DataDeviceClass
	}
	if om&DataDeviceID != 0 && (r.mask&DataDeviceID == 0 || r.deviceID != other.deviceID) {
		r.deviceID = other.deviceID
		changed |= DataDeviceID
	}
	if om&DataConnectionInterval != 0 && (r.mask&DataConnectionInterval == 0 || r.connInt != other.connInt) {
		r.connInt = other.connInt
		changed |= DataConnectionInterval
	}

	r.mask |= om

	if changed != 0 && other.Timestamp.After(r.Timestamp) {
		r.Timestamp = other.Timestamp
	}
	if other.source != SourceUnset {
		r.source = other.source
	}
	return changed
}
