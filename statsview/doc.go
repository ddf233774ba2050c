// Package statsview is an optional package that is built only when the
// statsview build constraint is present
//
//	It provides a HTTP server running locally offering runtime statistics
//	for the emulation and presentation goroutines. Underlying functionality
//	provided by "github.com/go-echarts/statsview"
//
//	After launch, graphical statistics will be viewable at:
//
//		localhost:12600/debug/statsview
//
//	And standard Go pprof statistics available at:
//
//		localhost:12600/debug/pprof/
package statsview

// DefaultAddress is used when Launch is given an empty address.
const DefaultAddress = "localhost:12600"

const url = "/debug/statsview"
