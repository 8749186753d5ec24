// Package csv parses delimited text into typed datasets.
//
// A [Parser] reads a character stream line by line, splits every line on
// commas that are not enclosed in double quotes, and hands each row to a
// [RowFactory] which turns it into a value of the target type:
//
//	p, err := csv.NewParser(f, csv.StudentRecordFactory(), csv.Options{HasHeader: true})
//	if err != nil {
//	    return err
//	}
//	records, err := p.Parse()
//
// # Tokenization
//
// A comma is a field boundary only when an even number of quote characters
// follows it on the same line. Quote characters are kept in the tokens, so
// the line
//
//	1,"Kent, RI",99
//
// yields the three tokens 1, "Kent, RI" and 99. Trailing empty tokens are
// dropped, but a row always has at least one token: a blank line is the
// single empty string.
//
// # Errors
//
// Every malformed row is reported as a [*FactoryFailure] carrying the
// offending row, whether it was rejected by a factory or by column-count
// enforcement ([ErrInconsistentColumns]). Stream failures are reported as
// [*ReadError].
package csv
