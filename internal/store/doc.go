// Package store is the SQLite-backed implementation of the engine's
// external collaborators: the transaction source and the customer
// store.
//
// Layout decisions:
//   - Dates are stored as ISO-8601 day strings (YYYY-MM-DD); NULL maps
//     to the engine's zero time.
//   - Amounts are stored as decimal strings and parsed exactly; no
//     float conversion happens on the storage path.
//   - Shop-group filtering happens in Go after the scan, because the
//     filter semantics (case-insensitive, NFC-normalized CJK substring
//     match) don't translate to portable SQL.
//
// The store also carries the CSV import path used by `semir import`
// and a deterministic demo fixture used by `semir seed`.
package store
