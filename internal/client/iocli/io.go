// Package iocli abstracts terminal interaction of the CLI.
package iocli

//go:generate moq -out io_mock.go . IO

// IO is the terminal seen by CLI commands.
type IO interface {
	Println(a ...any)
	Printf(format string, a ...any)
	ReadInput(prompt string) (string, error)
	ReadPassword(prompt string) (string, error)
	// Confirm asks a yes/no question; anything but y/yes is "no".
	Confirm(prompt string) (bool, error)
	Write(p []byte) (n int, err error)
}
