// Package utils provides small helpers shared by the CLI, the HTTP API and
// the chat commands: parsing of switch values and platform ids, and text
// helpers for embeds.
package utils
