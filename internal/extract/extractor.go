package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// ErrExtractionFailed wraps every failure to turn a staged artifact into
// analyzable content. Extraction is never retried.
var ErrExtractionFailed = errors.New("extraction failed")

// Content is the analyzable payload produced from a staged artifact: either
// plain text, or a path to an audio file. When the audio file was derived
// from a video, the extractor owns it and Close removes it.
type Content struct {
	Text      string
	AudioPath string
	cleanup   func() error
}

// IsAudio reports whether the content should be sent to audio analysis.
func (c *Content) IsAudio() bool {
	return c.AudioPath != ""
}

// Close releases any derived transient resource. Safe to call on text and
// passthrough-audio content, and safe to call more than once.
func (c *Content) Close() error {
	if c.cleanup == nil {
		return nil
	}
	cleanup := c.cleanup
	c.cleanup = nil

	if err := cleanup(); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// DerivedAudio returns audio content that owns the file at path; Close
// removes it. Used for tracks stripped out of video containers.
func DerivedAudio(path string) *Content {
	return &Content{
		AudioPath: path,
		cleanup:   func() error { return os.Remove(path) },
	}
}

// Extractor turns a staged file into analyzable content based on its declared
// media type.
type Extractor interface {
	Extract(ctx context.Context, path, declaredType string) (*Content, error)
}

// FileExtractor dispatches on the declared media type: audio files pass
// through, videos get their audio track derived, everything else goes through
// text extraction.
type FileExtractor struct {
	logger zerolog.Logger
}

// NewFileExtractor constructs the default extractor.
func NewFileExtractor(logger zerolog.Logger) *FileExtractor {
	return &FileExtractor{
		logger: logger.With().Str("component", "extractor").Logger(),
	}
}

func (e *FileExtractor) Extract(ctx context.Context, path, declaredType string) (*Content, error) {
	mediaType := strings.ToLower(strings.TrimSpace(declaredType))

	switch {
	case strings.HasPrefix(mediaType, "audio/"):
		return &Content{AudioPath: path}, nil
	case strings.HasPrefix(mediaType, "video/"):
		audioPath, err := e.deriveAudio(ctx, path)
		if err != nil {
			return nil, err
		}
		e.logger.Debug().Str("audio_path", audioPath).Msg("derived audio track from video")
		return DerivedAudio(audioPath), nil
	default:
		text, err := e.extractText(path, mediaType)
		if err != nil {
			return nil, err
		}
		return &Content{Text: text}, nil
	}
}

// deriveAudio strips the audio track from a video into an mp3 next to the
// staging file. The caller never sees the video again; the derived file is
// removed through Content.Close.
func (e *FileExtractor) deriveAudio(ctx context.Context, videoPath string) (string, error) {
	audioPath := strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".mp3"

	err := ffmpeg.Input(videoPath).
		Output(audioPath, ffmpeg.KwArgs{"vn": "", "acodec": "libmp3lame", "q:a": 2}).
		OverWriteOutput().
		Silent(true).
		Run()
	if err != nil {
		return "", fmt.Errorf("%w: derive audio track: %v", ErrExtractionFailed, err)
	}

	if ctx.Err() != nil {
		_ = os.Remove(audioPath)
		return "", fmt.Errorf("%w: %v", ErrExtractionFailed, ctx.Err())
	}

	return audioPath, nil
}

func (e *FileExtractor) extractText(path, mediaType string) (string, error) {
	if mediaType == "application/pdf" {
		return e.extractPDF(path)
	}

	if isTextLike(mediaType) {
		return readTextFile(path)
	}

	// Declared type is unknown or generic; trust the bytes over the header.
	detected, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: detect file type: %v", ErrExtractionFailed, err)
	}
	if detected.Is("application/pdf") {
		return e.extractPDF(path)
	}
	if isTextLike(detected.String()) {
		return readTextFile(path)
	}

	return "", fmt.Errorf("%w: unsupported media type %q", ErrExtractionFailed, mediaType)
}

func (e *FileExtractor) extractPDF(path string) (string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: open pdf: %v", ErrExtractionFailed, err)
	}
	defer file.Close()

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: read pdf text: %v", ErrExtractionFailed, err)
	}

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("%w: read pdf text: %v", ErrExtractionFailed, err)
	}

	text := strings.TrimSpace(buf.String())
	if text == "" {
		return "", fmt.Errorf("%w: pdf contains no extractable text", ErrExtractionFailed)
	}

	return text, nil
}

func readTextFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: read file: %v", ErrExtractionFailed, err)
	}
	return string(data), nil
}

func isTextLike(mediaType string) bool {
	base, _, _ := strings.Cut(mediaType, ";")
	base = strings.TrimSpace(base)

	if strings.HasPrefix(base, "text/") {
		return true
	}
	switch base {
	case "application/json", "application/xml", "application/x-yaml", "application/yaml":
		return true
	default:
		return false
	}
}
