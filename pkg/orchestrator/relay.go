package orchestrator

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"unicode"
)

// StderrPrefix marks relayed lines that came from the artifact's stderr.
const StderrPrefix = "Error:"

type relayLine struct {
	stderr bool
	text   string
}

// RunArtifact runs the freshly built shader compiler with no arguments and
// relays its output line by line: stdout lines as-is, stderr lines prefixed
// with "Error:". Both pipes are drained concurrently so a child that fills
// one while the other is idle cannot block.
func (b *Builder) RunArtifact(ctx context.Context, artifact string) error {
	b.log.Info("artifact", "run", "progress", "Running shader compiler...")

	if err := checkExecutable(artifact); err != nil {
		return b.launchFailed(artifact, err)
	}

	cmd := exec.CommandContext(ctx, artifact)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return b.launchFailed(artifact, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return b.launchFailed(artifact, err)
	}
	if err := cmd.Start(); err != nil {
		return b.launchFailed(artifact, err)
	}

	lines := make(chan relayLine)
	readErrs := make([]error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		readErrs[0] = readLines(stdout, false, lines)
	}()
	go func() {
		defer wg.Done()
		readErrs[1] = readLines(stderr, true, lines)
	}()
	go func() {
		wg.Wait()
		close(lines)
	}()

	for l := range lines {
		if l.stderr {
			fmt.Fprintln(b.stdout, StderrPrefix, l.text)
		} else {
			fmt.Fprintln(b.stdout, l.text)
		}
	}

	// Pipes must be fully read before Wait closes them.
	waitErr := cmd.Wait()
	if waitErr != nil {
		if _, ok := waitErr.(*exec.ExitError); !ok {
			return b.launchFailed(artifact, waitErr)
		}
		b.log.Error("artifact", "run", "failure", "Shader compiler exited with an error.", "exit_code", exitCode(waitErr))
		return &StageError{Kind: ErrArtifactExit, Path: artifact, ExitCode: exitCode(waitErr), Err: waitErr}
	}
	if err := errors.Join(readErrs...); err != nil {
		b.log.Warn("artifact", "relay", "warning", "Output relay ended early", "error", err)
	}
	b.log.Info("artifact", "run", "success", "Shader compiler finished successfully.")
	return nil
}

func (b *Builder) launchFailed(artifact string, err error) error {
	b.log.Error("artifact", "run", "error", "Failed to run shader compiler", "path", artifact, "error", err)
	return &StageError{Kind: ErrArtifactLaunch, Path: artifact, ExitCode: -1, Err: err}
}

// readLines sends every line of r, trailing whitespace removed, to out.
func readLines(r io.Reader, stderr bool, out chan<- relayLine) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			out <- relayLine{stderr: stderr, text: strings.TrimRightFunc(line, unicode.IsSpace)}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
