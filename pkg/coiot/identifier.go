package coiot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tefinger/fake-shelly/pkg/device"
)

// Identifier builds the global device identifier "{type}#{id}#1" a device
// advertises in option 3332 and its mDNS records.
func Identifier(d device.Device) string {
	return fmt.Sprintf("%s#%s#%d", d.Type(), d.ID(), IdentifierRevision)
}

// ParseIdentifier splits an identifier into its device type, device id and
// revision fields.
func ParseIdentifier(s string) (deviceType, deviceID string, revision int, err error) {
	parts := strings.Split(s, "#")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return "", "", 0, fmt.Errorf("%w: %q", ErrBadIdentifier, s)
	}
	revision, err = strconv.Atoi(parts[2])
	if err != nil {
		return "", "", 0, fmt.Errorf("%w: %q", ErrBadIdentifier, s)
	}
	return parts[0], parts[1], revision, nil
}
