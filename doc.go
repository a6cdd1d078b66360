// Package tsspec holds the error model and input decoding shared by the
// TensorStore spec packages.
//
// Every validation failure is an Issue carrying a JSON Pointer, a stable
// code and a message; Issues implements error and matches the sentinel
// kinds (ErrUnknownVariant, ErrMissingField, ...) with errors.Is.
//
// JSON and YAML documents decode into plain values through DecodeJSON and
// DecodeYAML, which enforce the duplicate key, depth and size limits of a
// ParseOpt:
//
//	raw, err := tsspec.Decode(ctx, data, tsspec.DefaultParseOpt())
//	if iss, ok := tsspec.AsIssues(err); ok {
//		for _, it := range iss {
//			fmt.Println(it.Field(), it.Message)
//		}
//	}
//
// The schema DSL lives in dsl/, the TensorStore categories in kvstore/,
// codec/ and driver/, and the entry point in tensorstore/.
package tsspec
