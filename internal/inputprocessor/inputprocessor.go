package inputprocessor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"intentbot/internal/util"
)

// Input sources.
const (
	SourceRaw   = "raw"
	SourceFile  = "file"
	SourceStdin = "stdin"
)

// StdinMarker as input reads the message from standard input.
const StdinMarker = "-"

// maxInputBytes caps file and stdin input.
const maxInputBytes = 1 << 20

// Result holds the message text and where it came from.
type Result struct {
	Body     string
	Source   string
	FilePath string // absolute path when Source is SourceFile
}

// Processor defines the interface for processing input strings
type Processor interface {
	Process(ctx context.Context, input string) (Result, error)
}

// New creates a processor that reads StdinMarker from os.Stdin.
func New() Processor {
	return NewWithStdin(os.Stdin)
}

// NewWithStdin creates a processor reading StdinMarker from stdin.
func NewWithStdin(stdin io.Reader) Processor {
	return &defaultProcessor{stdin: stdin}
}

type defaultProcessor struct {
	stdin io.Reader
}

// Process resolves input to message text: "-" reads stdin, an existing
// regular file is read and cleaned, anything else is the message itself.
func (p *defaultProcessor) Process(ctx context.Context, input string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	if input == StdinMarker {
		data, err := io.ReadAll(io.LimitReader(p.stdin, maxInputBytes+1))
		if err != nil {
			return Result{}, fmt.Errorf("failed to read stdin: %w", err)
		}
		if len(data) > maxInputBytes {
			return Result{}, fmt.Errorf("stdin input exceeds %d bytes", maxInputBytes)
		}
		body, err := util.CleanFileContent(data, "stdin")
		if err != nil {
			return Result{}, err
		}
		return Result{Body: body, Source: SourceStdin}, nil
	}

	// --- Detect File ---
	// Multi-line input can never be a path.
	if !strings.ContainsAny(input, "\n\r") {
		fi, err := os.Stat(input)
		switch {
		case err == nil && fi.Mode().IsRegular():
			return p.readFile(input, fi.Size())
		case err == nil:
			log.Debugf("Input '%s' is not a regular file, treating as raw text", input)
		case !errors.Is(err, os.ErrNotExist) && !errors.Is(err, os.ErrInvalid):
			log.WithError(err).Debugf("Cannot stat '%s', treating as raw text", input)
		}
	}

	// --- Default: Treat as Raw String ---
	return Result{Body: input, Source: SourceRaw}, nil
}

func (p *defaultProcessor) readFile(path string, size int64) (Result, error) {
	if size > maxInputBytes {
		return Result{}, fmt.Errorf("file '%s' exceeds %d bytes", path, maxInputBytes)
	}
	binary, err := util.IsLikelyBinary(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to inspect file '%s': %w", path, err)
	}
	if binary {
		return Result{}, fmt.Errorf("file '%s' looks binary", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return Result{}, fmt.Errorf("permission denied reading file '%s': %w", path, err)
		}
		return Result{}, fmt.Errorf("failed to read file '%s': %w", path, err)
	}
	body, err := util.CleanFileContent(data, path)
	if err != nil {
		return Result{}, err
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		log.WithError(err).Warnf("Failed to get absolute path for '%s', using original path", path)
		absPath = path
	}
	log.Debugf("Input '%s' detected as a file", path)
	return Result{Body: body, Source: SourceFile, FilePath: absPath}, nil
}

// Ensure defaultProcessor satisfies the Processor interface.
var _ Processor = (*defaultProcessor)(nil)
