package app

import "github.com/Roy2player/MSAPI-sub000/internal/wire"

// Reserved control ciphers, all of which fall inside
// wire.ReservedCipherLo..wire.ReservedCipherHi (spec.md §4.5).
const (
	CipherHello             uint64 = 934875930
	CipherMetadataResponse  uint64 = 934875931
	CipherParametersResponse uint64 = 934875932
	CipherMetadataRequest   uint64 = 934875933
	CipherParametersRequest uint64 = 934875934
	CipherActionPause       uint64 = 934875935
	CipherActionRun         uint64 = 934875936
	CipherActionDelete      uint64 = 934875937
	CipherActionModify      uint64 = 934875938
)

// IsReserved reports whether cipher falls in the standard protocol's
// control band.
func IsReserved(cipher uint64) bool {
	return cipher >= wire.ReservedCipherLo && cipher <= wire.ReservedCipherHi
}

// isManagerOnly reports whether cipher must only be honored on the
// manager connection (id 0). Modify, metadata/parameters req-resp, and
// hello are accepted on any connection; only run/pause/delete are
// restricted to the manager (spec.md §4.5).
func isManagerOnly(cipher uint64) bool {
	switch cipher {
	case CipherActionPause, CipherActionRun, CipherActionDelete:
		return true
	default:
		return false
	}
}
