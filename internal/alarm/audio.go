package alarm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/tartampluch/go-medreminder/internal/config"
)

// ErrAudioUnavailable means no speech engine or audio player could be found.
// The session logs it once and carries on silently.
var ErrAudioUnavailable = errors.New(config.ErrAudioUnavailable)

// Speaker reads text aloud in the voice for lang (a BCP 47 tag). Speak
// blocks until the utterance ends or ctx is cancelled.
type Speaker interface {
	Speak(ctx context.Context, text, lang string) error
}

// TonePlayer plays one beep, blocking until it ends or ctx is cancelled.
type TonePlayer interface {
	Play(ctx context.Context, t Tone) error
}

// CommandSpeaker drives the platform's text-to-speech command. Command, when
// set, replaces auto-detection and receives the text as its only argument.
type CommandSpeaker struct {
	Command string
}

func (s CommandSpeaker) Speak(ctx context.Context, text, lang string) error {
	name, args, err := s.resolve(text, lang)
	if err != nil {
		return err
	}
	return exec.CommandContext(ctx, name, args...).Run()
}

func (s CommandSpeaker) resolve(text, lang string) (string, []string, error) {
	if s.Command != "" {
		return s.Command, []string{text}, nil
	}
	voice, _, _ := strings.Cut(lang, "-")

	switch runtime.GOOS {
	case "darwin":
		return "say", []string{text}, nil
	case "windows":
		script := "Add-Type -AssemblyName System.Speech; " +
			"(New-Object System.Speech.Synthesis.SpeechSynthesizer).Speak('" + strings.ReplaceAll(text, "'", "''") + "')"
		return "powershell", []string{"-NoProfile", "-Command", script}, nil
	}

	for _, candidate := range []string{"espeak-ng", "espeak"} {
		if path, err := exec.LookPath(candidate); err == nil {
			return path, []string{"-v", voice, text}, nil
		}
	}
	if path, err := exec.LookPath("spd-say"); err == nil {
		return path, []string{"-w", "-l", voice, text}, nil
	}
	return "", nil, ErrAudioUnavailable
}

// CommandTonePlayer renders the tone to a temporary WAV file once and plays
// it with the platform's audio command. Command, when set, replaces
// auto-detection and receives the file path as its only argument.
type CommandTonePlayer struct {
	Command string

	once    sync.Once
	path    string
	initErr error
}

func (p *CommandTonePlayer) Play(ctx context.Context, t Tone) error {
	p.once.Do(func() { p.path, p.initErr = writeWAV(t) })
	if p.initErr != nil {
		return fmt.Errorf("%w: %v", ErrAudioUnavailable, p.initErr)
	}

	name, args, err := p.resolve()
	if err != nil {
		return err
	}
	return exec.CommandContext(ctx, name, args...).Run()
}

// Close removes the rendered WAV file.
func (p *CommandTonePlayer) Close() error {
	if p.path == "" {
		return nil
	}
	return os.Remove(p.path)
}

func (p *CommandTonePlayer) resolve() (string, []string, error) {
	if p.Command != "" {
		return p.Command, []string{p.path}, nil
	}
	switch runtime.GOOS {
	case "darwin":
		return "afplay", []string{p.path}, nil
	case "windows":
		script := "(New-Object Media.SoundPlayer '" + p.path + "').PlaySync()"
		return "powershell", []string{"-NoProfile", "-Command", script}, nil
	}
	for _, candidate := range []string{"paplay", "aplay", "pw-play"} {
		if path, err := exec.LookPath(candidate); err == nil {
			return path, []string{p.path}, nil
		}
	}
	return "", nil, ErrAudioUnavailable
}

func writeWAV(t Tone) (string, error) {
	f, err := os.CreateTemp("", "medreminder-tone-*.wav")
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()
	if _, err := f.Write(t.WAV()); err != nil {
		_ = os.Remove(f.Name())
		return "", err
	}
	return filepath.Clean(f.Name()), nil
}
