package discovery

import (
	"fmt"
	"strings"
)

// TXT record keys.
const (
	// TXTKeyDeviceID is the CoIoT device identifier.
	TXTKeyDeviceID = "id"

	// TXTKeyModel is the device type.
	TXTKeyModel = "model"

	// TXTKeyFirmware is the firmware version.
	TXTKeyFirmware = "fw"

	// TXTKeyAuth reports HTTP authentication ("true"/"false").
	TXTKeyAuth = "auth"
)

// TXTRecord is a single mDNS TXT key-value pair.
type TXTRecord struct {
	Key   string
	Value string
}

// EncodeServiceTXT builds the TXT records for an advertised service.
func EncodeServiceTXT(info *ServiceInfo) []TXTRecord {
	records := []TXTRecord{
		{Key: TXTKeyDeviceID, Value: info.DeviceID},
		{Key: TXTKeyModel, Value: info.Model},
	}
	if info.Firmware != "" {
		records = append(records, TXTRecord{Key: TXTKeyFirmware, Value: info.Firmware})
	}
	records = append(records, TXTRecord{Key: TXTKeyAuth, Value: fmt.Sprintf("%t", info.AuthEnabled)})
	return records
}

// DecodeServiceTXT parses the TXT records of a discovered service.
// The device id is required; everything else is optional.
func DecodeServiceTXT(records []TXTRecord) (*ServiceInfo, error) {
	info := &ServiceInfo{}
	for _, r := range records {
		switch r.Key {
		case TXTKeyDeviceID:
			info.DeviceID = r.Value
		case TXTKeyModel:
			info.Model = r.Value
		case TXTKeyFirmware:
			info.Firmware = r.Value
		case TXTKeyAuth:
			info.AuthEnabled = r.Value == "true"
		}
	}
	if info.DeviceID == "" {
		return nil, ErrMissingDeviceID
	}
	return info, nil
}

// TXTRecordsToStrings converts records to the "key=value" strings zeroconf
// expects.
func TXTRecordsToStrings(records []TXTRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, fmt.Sprintf("%s=%s", r.Key, r.Value))
	}
	return out
}

// StringsToTXTRecords parses "key=value" strings into records. Entries
// without "=" are treated as flag keys with an empty value.
func StringsToTXTRecords(strs []string) []TXTRecord {
	records := make([]TXTRecord, 0, len(strs))
	for _, s := range strs {
		key, value, _ := strings.Cut(s, "=")
		records = append(records, TXTRecord{Key: key, Value: value})
	}
	return records
}
