// Package sevenzip builds cb7 archives by running an external 7-Zip binary.
package sevenzip

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"comicpack/internal/faults"
	"comicpack/internal/fileutil"
)

// outputTail bounds how much 7-Zip output is kept in an error.
const outputTail = 2048

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, dir, binary string, args []string) ([]byte, error)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps 7-Zip CLI interactions.
type Client struct {
	binary  string
	timeout time.Duration
	exec    Executor
}

// New constructs a 7-Zip client for an already resolved binary.
func New(binary string, timeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("7-Zip binary required")
	}
	client := &Client{
		binary:  binary,
		timeout: time.Duration(timeoutSeconds) * time.Second,
		exec:    commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Binary returns the executable the client runs.
func (c *Client) Binary() string { return c.binary }

// Args returns the 7-Zip command line that adds names to archive.
func Args(archive string, names []string) []string {
	args := []string{"a", "-t7z", "-mx=9", "-ms=on", "-scsUTF-8", "-bb0", archive}
	return append(args, names...)
}

// Create archives files, which must all live in one directory, into out. The
// members are added in the order given and keep their base names. 7-Zip
// writes to a temporary file that is renamed to out without overwriting.
func (c *Client) Create(ctx context.Context, out string, files []string) error {
	outDir := filepath.Dir(out)
	fail := func(msg string, err error) error {
		return faults.Wrap(faults.ErrAssembly, outDir, faults.StageAssemble, msg, err)
	}
	if len(files) == 0 {
		return fail("no members", nil)
	}

	srcDir := filepath.Dir(files[0])
	names := make([]string, len(files))
	for i, f := range files {
		if filepath.Dir(f) != srcDir {
			return fail(fmt.Sprintf("member %s is outside %s", f, srcDir), nil)
		}
		names[i] = filepath.Base(f)
	}

	tmp, err := tempPath(out)
	if err != nil {
		return fail("choose temporary archive", err)
	}
	defer func() { _ = os.Remove(tmp) }()

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	output, err := c.exec.Run(runCtx, srcDir, c.binary, Args(tmp, names))
	if err != nil {
		if detail := tail(output); detail != "" {
			err = fmt.Errorf("%w: %s", err, detail)
		}
		return fail("7-Zip", err)
	}
	if _, err := os.Stat(tmp); err != nil {
		return fail("7-Zip produced no archive", err)
	}
	if err := fileutil.RenameNoReplace(tmp, out); err != nil {
		return fail("publish archive", err)
	}
	return nil
}

func tempPath(out string) (string, error) {
	dir, base := filepath.Split(out)
	for range 8 {
		candidate := filepath.Join(dir, "."+base+"."+uuid.NewString()[:8]+".tmp")
		if _, err := os.Lstat(candidate); errors.Is(err, fs.ErrNotExist) {
			return candidate, nil
		}
	}
	return "", errors.New("no unused temporary name")
}

func tail(output []byte) string {
	output = bytes.TrimSpace(output)
	if len(output) > outputTail {
		output = output[len(output)-outputTail:]
	}
	return string(output)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, dir, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("run %s: %w", filepath.Base(binary), err)
	}
	return out, nil
}
