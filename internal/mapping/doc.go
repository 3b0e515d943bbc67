// Package mapping provides the YAML schema for staging-table field mappings,
// its loader, the path expression parser, and compilation of the loaded
// definitions into validated TableMapping values.
//
// # Schema Overview
//
// A mapping file describes one table, or several under a "tables" key:
//
//	table_name: STG_VEHICLE
//	options:
//	  empty_axis: drop          # drop | null
//	  infer_joins: true         # correlate arrays sharing an identifier name
//	  timestamp_precision: 1s
//	joins:
//	  - left: policy.vehicleList[]
//	    right: policy.registrantList[]
//	    on: registrantId        # or left_key / right_key
//	    type: left              # left | inner
//	    ties: all               # all | first | error
//	fields:
//	  POLICY_NO:
//	    json_path: policy.policyNumber
//	  VIN:
//	    json_path: policy.vehicleList[].vin
//	  LOAD_FLAG:
//	    value: 1
//	    datatype: int
//	  LOAD_TS:
//	    value: current_timestamp()
//	    datatype: datetime
//
// Field order in the file is the column order of every output row.
//
// # Field Sources
//
// Each field has exactly one source, compiled into a closed variant:
//   - PathLookup: "json_path" resolved against the source document
//   - Literal: "value" coerced once to the declared datatype
//   - Computed: "value" written as a call, e.g. current_timestamp()
//
// A field with neither or both keys is a configuration error, reported before
// any document is processed.
//
// # Path Syntax
//
// Paths are dotted key sequences:
//   - Simple keys: "policyNumber"
//   - Nested keys: "policy.insured.lastName"
//   - Array expansion: "policy.vehicleList[]"
//   - Keys after expansion: "policy.vehicleList[].vin"
package mapping
