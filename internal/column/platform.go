package column

import (
	"fmt"
	"runtime"
	"unsafe"
)

// init validates that the running platform matches the on-disk format's
// compatibility contract: native byte order must be little-endian, and the
// architecture must be one of the tested 64-bit targets. Column files are
// not portable across byte orders; opening one on a big-endian host would
// silently misinterpret every value.
func init() {
	switch runtime.GOARCH {
	case "amd64", "arm64":
	default:
		panic(fmt.Sprintf("column: unsupported architecture %q (requires amd64 or arm64)", runtime.GOARCH))
	}

	if !isLittleEndian() {
		panic("column: host is not little-endian, column file format is incompatible")
	}
}

func isLittleEndian() bool {
	var i uint16 = 1
	b := (*[2]byte)(unsafe.Pointer(&i))
	return b[0] == 1
}
