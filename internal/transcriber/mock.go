package transcriber

import (
	"context"
	"fmt"
	"path/filepath"
)

// Mock returns a fixed transcript naming the file. Enabled with
// USE_MOCK_TRANSCRIBE=true.
type Mock struct{}

// Transcribe implements Transcriber.
func (Mock) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return fmt.Sprintf("MOCK TRANSCRIPT: %s", filepath.Base(audioPath)), nil
}
