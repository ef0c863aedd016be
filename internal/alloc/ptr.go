// Copyright 2024 The goblosc Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package alloc

import "unsafe"

// uintptrOf returns the address of the first byte of buf. It does not
// retain the pointer beyond the call, so it is safe with respect to the
// garbage collector: the slice header keeps buf alive for the duration of
// the call that uses the returned value.
func uintptrOf(buf []byte) uintptr {
	if len(buf) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&buf[0]))
}
