package common

// RRTVersion is the current version of the translator.
const RRTVersion = "0.2.0"
