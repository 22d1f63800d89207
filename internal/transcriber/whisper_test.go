package transcriber

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScript writes a shell script standing in for the whisper process.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transcribe.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestWhisper_Transcribe(t *testing.T) {
	tests := []struct {
		name     string
		script   string
		hint     string
		wantErr  bool
		wantText string
		wantLang string
	}{
		{
			name:     "parses json payload",
			script:   `echo '{"text":"hello world","language":"en"}'`,
			wantText: "hello world",
			wantLang: "en",
		},
		{
			name: "junk lines before payload are skipped",
			script: `echo 'Loading model...'
echo 'not json at all'
echo '{"text":"cats are great","language":"en"}'`,
			wantText: "cats are great",
			wantLang: "en",
		},
		{
			name: "last payload wins",
			script: `echo '{"text":"partial"}'
echo '{"text":"full transcript","language":"de"}'`,
			wantText: "full transcript",
			wantLang: "de",
		},
		{
			name:     "language hint is forwarded as an argument",
			script:   `printf '{"text":"hola","language":"%s"}\n' "$2"`,
			hint:     "es",
			wantText: "hola",
			wantLang: "es",
		},
		{
			name:    "non-zero exit fails even with payload",
			script:  `echo '{"text":"ignored"}'; exit 3`,
			wantErr: true,
		},
		{
			name:    "clean exit without payload fails",
			script:  `echo 'no structured output here'`,
			wantErr: true,
		},
		{
			name: "fp16 stderr noise does not affect the result",
			script: `echo 'UserWarning: FP16 is not supported on CPU; using FP32 instead' >&2
echo '{"text":"still fine","language":"en"}'`,
			wantText: "still fine",
			wantLang: "en",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWhisper("sh", writeScript(t, tt.script), nil)

			result, err := w.Transcribe(context.Background(), "/tmp/audio.mp3", tt.hint)

			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrTranscription)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, result.Text)
			assert.Equal(t, tt.wantLang, result.Language)
		})
	}
}

func TestWhisper_Transcribe_MissingCommand(t *testing.T) {
	w := NewWhisper("/nonexistent/interpreter", "script.py", nil)
	_, err := w.Transcribe(context.Background(), "/tmp/audio.mp3", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTranscription)
}
