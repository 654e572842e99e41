// Package ir provides the value and schema types shared by chainq's
// packages, and their canonical JSON encoding.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal.
//
// Key design constraints:
//   - NO float types anywhere - use int64 for numbers
//   - Canonical JSON (RFC 8785 key order, NFC strings) for every snapshot
//     that is compared byte for byte
package ir
