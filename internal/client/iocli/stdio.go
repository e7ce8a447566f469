package iocli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Stdio реализует IO поверх потоков процесса.
// Пароль читается без эха, если ввод является терминалом.
type Stdio struct {
	in     *bufio.Reader
	out    io.Writer
	fd     int
	isTerm bool
}

var _ IO = (*Stdio)(nil)

// NewStdio создает IO для os.Stdin/os.Stdout
func NewStdio() *Stdio {
	fd := int(os.Stdin.Fd())
	return &Stdio{
		in:     bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		fd:     fd,
		isTerm: term.IsTerminal(fd),
	}
}

// New создает IO для произвольных потоков (скрипты, тесты)
func New(in io.Reader, out io.Writer) *Stdio {
	return &Stdio{
		in:  bufio.NewReader(in),
		out: out,
		fd:  -1,
	}
}

func (s *Stdio) Println(a ...any) {
	_, _ = fmt.Fprintln(s.out, a...)
}

func (s *Stdio) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(s.out, format, a...)
}

func (s *Stdio) Write(p []byte) (int, error) {
	return s.out.Write(p)
}

func (s *Stdio) ReadInput(prompt string) (string, error) {
	s.Printf("%s", prompt)
	return s.readLine()
}

func (s *Stdio) ReadPassword(prompt string) (string, error) {
	s.Printf("%s", prompt)
	if !s.isTerm {
		return s.readLine()
	}

	pwBytes, err := term.ReadPassword(s.fd)
	s.Println("")
	if err != nil {
		return "", err
	}
	return string(pwBytes), nil
}

func (s *Stdio) Confirm(prompt string) (bool, error) {
	s.Printf("%s [y/N]: ", prompt)
	answer, err := s.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func (s *Stdio) readLine() (string, error) {
	input, err := s.in.ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
