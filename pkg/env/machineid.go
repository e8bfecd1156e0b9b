package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// AppID keys the protected machine ID.
const AppID = "microctl"

// deviceIDLen is enough to be unique on a network while staying readable.
const deviceIDLen = 12

// DeviceID derives a stable ID for this host. It falls back to the
// hostname when no machine ID is available.
func DeviceID() string {
	id, err := machineid.ProtectedID(AppID)
	if err == nil && len(id) >= deviceIDLen {
		return id[:deviceIDLen]
	}
	glog.Warningf("machine id unavailable: %v", err)
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "microctl"
}
