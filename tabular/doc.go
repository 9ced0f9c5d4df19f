// Package tabular decodes uploaded CSV and XLSX files into canonical rows.
//
// Parsers are looked up by file extension through a Registry. Every parser
// produces a Table whose first source row is the header. Header names are
// made unique (name, name.1, ...) and blank headers become "Unnamed: <i>".
// Every row carries an explicit value for every header column; missing and
// NA cells are Null.
//
// Cell values are canonicalized before they leave the package: timestamps
// render as ISO-8601 strings, text is valid UTF-8 with invalid bytes dropped,
// and numbers are finite.
package tabular
