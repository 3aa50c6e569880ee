package messaging

import (
	"strings"

	"github.com/ttacon/libphonenumber"
)

// unknownRegion labels numbers libphonenumber cannot place.
const unknownRegion = "unknown"

// RegionCode returns the ISO region of an E.164 number for logs and metric
// labels. It is never used to accept or reject input.
func RegionCode(phone string) string {
	phone = strings.TrimPrefix(strings.TrimSpace(phone), WhatsAppChannelPrefix)
	if phone == "" {
		return unknownRegion
	}
	num, err := libphonenumber.Parse(phone, "")
	if err != nil {
		return unknownRegion
	}
	region := libphonenumber.GetRegionCodeForNumber(num)
	if region == "" || region == "ZZ" {
		return unknownRegion
	}
	return region
}
