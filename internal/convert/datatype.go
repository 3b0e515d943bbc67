package convert

import (
	"fmt"
	"strings"
)

// Datatype is the declared type of a staging column.
type Datatype string

const (
	String   Datatype = "string"
	Int      Datatype = "int"
	Datetime Datatype = "datetime"
	Decimal  Datatype = "decimal"
	Float    Datatype = "float"
	Bool     Datatype = "bool"
)

// Datatypes lists every supported datatype in documentation order.
var Datatypes = []Datatype{String, Int, Datetime, Decimal, Float, Bool}

// Names returns the datatype names as plain strings.
func Names() []string {
	out := make([]string, len(Datatypes))
	for i, dt := range Datatypes {
		out[i] = string(dt)
	}

	return out
}

// ParseDatatype parses a datatype name. An empty name means String.
func ParseDatatype(s string) (Datatype, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return String, nil
	}

	for _, dt := range Datatypes {
		if string(dt) == name {
			return dt, nil
		}
	}

	return "", fmt.Errorf("unknown datatype %q", s)
}
