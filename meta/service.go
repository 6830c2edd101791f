package meta

import "sync/atomic"

// ServiceInfo identifies the running binary in traces and server headers.
type ServiceInfo struct {
	Name    string
	Version string
}

var service atomic.Pointer[ServiceInfo] //nolint:gochecknoglobals // set once at startup

// SetServiceInfo records the service identity. Only the first call has effect.
func SetServiceInfo(name, version string) {
	service.CompareAndSwap(nil, &ServiceInfo{Name: name, Version: version})
}

// Service returns the identity recorded by SetServiceInfo, or the zero value.
func Service() ServiceInfo {
	if info := service.Load(); info != nil {
		return *info
	}
	return ServiceInfo{}
}
