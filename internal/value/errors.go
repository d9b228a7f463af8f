package value

import "errors"

var (
	// ErrValueShape is returned when the value's kind cannot produce the requested shape
	ErrValueShape = errors.New("value does not fit requested shape")
	// ErrUTF8 is returned when an octet string requested as text is not valid UTF-8
	ErrUTF8 = errors.New("octet string is not valid UTF-8")
	// ErrUnsupportedShape is returned for shapes SNMP values never represent
	ErrUnsupportedShape = errors.New("shape not supported by SNMP values")
	// ErrMissingField is returned when a required record field is absent
	ErrMissingField = errors.New("missing field")
)
