// Package report defines the result structure produced by one analytics
// run: overview counters, grade/season/shop dimension tables, the
// shop-nested breakdowns, the sorted customer detail list, the
// anonymous-buyer block, and the reconciliation records.
//
// Everything in this package is at the output boundary. Monetary values
// are float64 here; the engine carries exact decimals internally and
// converts only when assembling a Report. Dates render as YYYY-MM-DD
// (JSON null when absent) so renderers and golden files stay stable.
package report
