package common

// UnknownStr is the String() value for enum values outside their declared range.
const UnknownStr = "unknown"
