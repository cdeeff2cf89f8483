// Package bot owns the Discord session shared by the directory provider and
// the command layer.
package bot
