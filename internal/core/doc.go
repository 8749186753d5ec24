// Package core ties the parsing, search and census packages together into
// the operations the HTTP layer exposes.
//
// It holds no transport code and can be driven from handlers, a CLI or
// tests alike.
//
// # Loaded Files
//
// A file must be loaded before it can be viewed or searched. Loading only
// checks that the path lies inside the data directory and exists; the file
// is registered under its base name without extension:
//
//	f, err := svc.LoadFile(ctx, "data/resources/stars/ten-star.csv")
//	// f.Name == "ten-star"
//
// At most [ServiceConfig.MaxLoadedFiles] distinct names can be registered.
//
// # Record Kinds
//
// Viewing a file parses it through a registered record kind. The built-in
// kinds are registered at init time using [RegisterKind]:
//
//   - raw: rows of strings, no column enforcement
//   - student: id,name,major
//   - star: id,name,x,y,z
//
// # Search
//
// Searches parse the file into a search index, which is cached by path,
// header flag, size and modification time, so an unchanged file is parsed
// once. A numeric column is tried as an index first and falls back to a
// header name, which supports headers such as "2020".
//
// # Concurrency
//
// All parsing runs under a [ParseLimiter]. Requests that cannot get a slot
// within the configured wait fail with [ErrTooManyParses].
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Codes are grouped by category:
//
//   - FILE001-FILE005: loading and locating files
//   - PARSE001-PARSE004: malformed data and parse capacity
//   - SRCH001-SRCH005: search arguments and columns
//   - CEN001-CEN004: census lookups
//   - REQ001-REQ004: missing or malformed parameters, cancellation, timeouts
//   - RATE001: request throttling
package core
