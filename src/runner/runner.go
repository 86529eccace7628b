// Package runner spawns spell entry commands under the platform shell and
// exposes their output either whole or as an ordered chunk stream.
package runner

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os/exec"
	"runtime"
	"strings"
)

const readBufSize = 4096

// chunkBuffer bounds the chunk channel. A full buffer back-pressures the
// reader goroutine, which only delays pipe reads; order and content are
// unaffected.
const chunkBuffer = 64

// Child is a spawned spell process whose stdout is being streamed.
type Child struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
}

func shellCommand(entry string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.Command("cmd", "/C", entry)
	}
	return exec.Command("sh", "-c", entry)
}

// Spawn launches the entry command with the selection piped to stdin and
// stdout available for streaming. Stderr is discarded. The stdin write
// happens on its own goroutine so a child that never reads cannot stall
// the caller.
func Spawn(entry, dir, input string) (*Child, error) {
	cmd := shellCommand(entry)
	cmd.Dir = dir

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("spawn %q: %w", entry, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("spawn %q: %w", entry, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("spawn %q: %w", entry, err)
	}

	go func() {
		_, _ = io.WriteString(stdin, input)
		_ = stdin.Close()
	}()

	return &Child{cmd: cmd, stdout: stdout}, nil
}

// Chunks starts the dedicated reader goroutine and returns its channel.
// Each non-empty read is forwarded as one chunk, in read order. The
// channel closes on end-of-stream or read error; the two are deliberately
// indistinguishable to consumers.
func (c *Child) Chunks() <-chan string {
	ch := make(chan string, chunkBuffer)
	go func() {
		defer close(ch)
		buf := make([]byte, readBufSize)
		for {
			n, err := c.stdout.Read(buf)
			if n > 0 {
				ch <- lossyString(buf[:n])
			}
			if err != nil {
				return
			}
		}
	}()
	return ch
}

// Wait blocks until the child exits. Exit status is irrelevant to spell
// delivery; the output already streamed is the result.
func (c *Child) Wait() error {
	return c.cmd.Wait()
}

// Run spawns the entry command, feeds it input, waits for exit, and
// returns everything it wrote to stdout. A non-zero exit is not an error:
// the spell's output is whatever it produced. Spawn failures are.
func Run(entry, dir, input string) (string, error) {
	cmd := shellCommand(entry)
	cmd.Dir = dir
	cmd.Stdin = strings.NewReader(input)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("spawn %q: %w", entry, err)
	}
	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return "", fmt.Errorf("run %q: %w", entry, err)
		}
		log.Printf("Runner: %q exited non-zero: %v", entry, err)
	}

	return lossyString(out.Bytes()), nil
}

// lossyString decodes bytes as UTF-8, replacing invalid sequences instead
// of rejecting them.
func lossyString(b []byte) string {
	return strings.ToValidUTF8(string(b), "�")
}
