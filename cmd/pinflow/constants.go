package main

// Output format constants.
const (
	jsonFormat = "json"
	yamlFormat = "yaml"
	textFormat = "text"
)

// stdinPath names standard input in file arguments.
const stdinPath = "-"
