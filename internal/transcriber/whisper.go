// Package transcriber turns audio files into text via an external speech-to-text process.
package transcriber

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// ErrTranscription marks a failed transcription attempt, distinct from upload and
// storage failures. Callers may treat it as non-fatal (degraded success).
var ErrTranscription = errors.New("transcription failed")

// fp16Notice is a benign whisper diagnostic printed on CPU-only machines.
const fp16Notice = "FP16"

// Result is the structured payload the transcription process reports on stdout.
type Result struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
}

// Transcriber produces a transcript for an audio file, with an optional language hint.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, languageHint string) (*Result, error)
}

// Whisper runs a whisper transcription script out-of-process and parses the JSON
// payload it writes to stdout.
type Whisper struct {
	Command string // interpreter, e.g. "python3"
	Script  string // transcription script path
	logger  *zap.Logger
}

// NewWhisper creates a subprocess-backed transcriber.
func NewWhisper(command, script string, logger *zap.Logger) *Whisper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Whisper{Command: command, Script: script, logger: logger}
}

// Transcribe runs the transcription process on audioPath. The last parseable JSON
// line on stdout wins; earlier parse failures are logged and skipped. The call fails
// when the process exits non-zero or exits cleanly without ever producing a payload.
func (w *Whisper) Transcribe(ctx context.Context, audioPath, languageHint string) (*Result, error) {
	args := []string{w.Script, audioPath}
	if languageHint != "" {
		args = append(args, languageHint)
	}
	cmd := exec.CommandContext(ctx, w.Command, args...)
	cmd.Env = append(os.Environ(), "PYTHONIOENCODING=utf-8")

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdout pipe: %v", ErrTranscription, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stderr pipe: %v", ErrTranscription, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: start %s: %v", ErrTranscription, w.Command, err)
	}

	go func() {
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			line := scanner.Text()
			if strings.Contains(line, fp16Notice) {
				continue
			}
			if strings.TrimSpace(line) != "" {
				w.logger.Warn("transcriber stderr", zap.String("line", line))
			}
		}
	}()

	var payload *Result
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var r Result
		if err := json.Unmarshal([]byte(line), &r); err != nil {
			w.logger.Warn("unparseable transcriber output", zap.String("line", preview(line)))
			continue
		}
		payload = &r
	}

	if err := cmd.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTranscription, err)
	}
	if payload == nil {
		return nil, fmt.Errorf("%w: process exited without a payload", ErrTranscription)
	}
	w.logger.Info("transcription complete",
		zap.String("audio", audioPath),
		zap.String("language", payload.Language),
		zap.Int("chars", len(payload.Text)),
	)
	return payload, nil
}

func preview(s string) string {
	if len(s) > 120 {
		return s[:120] + "…"
	}
	return s
}
