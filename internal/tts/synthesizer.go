package tts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"insightcast/internal/core"
)

// maxConcurrentTurns bounds in-flight speech requests per conversation.
const maxConcurrentTurns = 4

// ErrEmptyConversation is returned when there is nothing to speak.
var ErrEmptyConversation = errors.New("conversation has no lines")

// Speaker turns one utterance into audio.
type Speaker interface {
	Speak(ctx context.Context, text, voice string) ([]byte, error)
}

// Synthesizer renders a whole conversation into one mp3 file.
type Synthesizer struct {
	speaker      Speaker
	hostVoice    string
	analystVoice string
	outputDir    string
	log          *slog.Logger
}

// NewSynthesizer creates a synthesizer backed by client.
func NewSynthesizer(client *Client, log *slog.Logger) *Synthesizer {
	return newSynthesizer(client, client.Config.HostVoice, client.Config.AnalystVoice, client.Config.OutputDir, log)
}

func newSynthesizer(speaker Speaker, hostVoice, analystVoice, outputDir string, log *slog.Logger) *Synthesizer {
	if log == nil {
		log = slog.Default()
	}
	return &Synthesizer{
		speaker:      speaker,
		hostVoice:    hostVoice,
		analystVoice: analystVoice,
		outputDir:    outputDir,
		log:          log.With("component", "tts"),
	}
}

// Synthesize speaks every non-blank line concurrently, the Host voice on even
// indices and the Analyst voice on odd indices, and writes the turns in order to
// <output dir>/podcast_<id>.mp3. It returns the file path.
func (s *Synthesizer) Synthesize(ctx context.Context, conv core.Conversation) (string, error) {
	// Voices follow the position in the conversation, so a skipped blank
	// line does not swap the speakers after it.
	spoken := 0
	for _, line := range conv {
		if strings.TrimSpace(line) != "" {
			spoken++
		}
	}
	if spoken == 0 {
		return "", ErrEmptyConversation
	}

	start := time.Now()
	turns := make([][]byte, len(conv))
	p := pool.New().WithMaxGoroutines(maxConcurrentTurns).WithContext(ctx).WithCancelOnError()
	for i, line := range conv {
		if strings.TrimSpace(line) == "" {
			continue
		}
		voice := s.voiceFor(i)
		p.Go(func(ctx context.Context) error {
			audio, err := s.speaker.Speak(ctx, line, voice)
			if err != nil {
				return fmt.Errorf("turn %d: %w", i+1, err)
			}
			turns[i] = audio
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return "", fmt.Errorf("failed to synthesize podcast: %w", err)
	}

	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	name := fmt.Sprintf("podcast_%s.mp3", strings.ReplaceAll(uuid.NewString(), "-", ""))
	outputPath := filepath.Join(s.outputDir, name)
	if err := os.WriteFile(outputPath, bytes.Join(turns, nil), 0o644); err != nil {
		return "", fmt.Errorf("failed to write podcast audio: %w", err)
	}

	s.log.Info("Podcast audio generated",
		"path", outputPath,
		"turns", spoken,
		"duration", time.Since(start))
	return outputPath, nil
}

func (s *Synthesizer) voiceFor(i int) string {
	if i%2 == 0 {
		return s.hostVoice
	}
	return s.analystVoice
}
