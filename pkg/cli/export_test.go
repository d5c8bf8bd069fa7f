package cli

// WriteOutput exports writeOutput for testing
var WriteOutput = writeOutput

// PrintSummary exports printSummary for testing
var PrintSummary = printSummary

// ValidateConcurrency exports validateConcurrency for testing
var ValidateConcurrency = validateConcurrency
