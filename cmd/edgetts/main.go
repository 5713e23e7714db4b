package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iorilu/edge-tts/internal/submaker"
	"github.com/iorilu/edge-tts/internal/synth"
	"github.com/iorilu/edge-tts/internal/voices"
)

var version = "0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "expected 'speak', 'voices' or 'version'")
		os.Exit(2)
	}

	switch os.Args[1] {
	case "speak":
		if err := runSpeak(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	case "voices":
		if err := runVoices(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	case "version":
		fmt.Println(version)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		os.Exit(2)
	}
}

func runSpeak(args []string) error {
	speakCmd := flag.NewFlagSet("speak", flag.ExitOnError)
	var (
		text        string
		textFile    string
		voice       string
		command     string
		wavPath     string
		srtPath     string
		wordsInCue  int
		sampleRate  int
		channels    int
		timeoutSecs int
	)
	speakCmd.StringVar(&text, "text", "", "Text to synthesize")
	speakCmd.StringVar(&textFile, "file", "", "Read the text from a file instead")
	speakCmd.StringVar(&voice, "voice", "en-US-AriaNeural", "Voice short name")
	speakCmd.StringVar(&command, "command", "", "External synthesis command (mock voice when empty)")
	speakCmd.StringVar(&wavPath, "out", "output.wav", "WAV output path")
	speakCmd.StringVar(&srtPath, "srt", "", "SRT output path (skipped when empty)")
	speakCmd.IntVar(&wordsInCue, "words-per-cue", submaker.DefaultWordsInCue, "Words per subtitle cue")
	speakCmd.IntVar(&sampleRate, "sample-rate", 24000, "PCM sample rate")
	speakCmd.IntVar(&channels, "channels", 1, "PCM channel count")
	speakCmd.IntVar(&timeoutSecs, "timeout", 45, "Synthesis timeout in seconds")
	speakCmd.Parse(args)

	if textFile != "" {
		data, err := os.ReadFile(textFile)
		if err != nil {
			return fmt.Errorf("read text file: %w", err)
		}
		text = string(data)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("nothing to synthesize: pass -text or -file")
	}

	var synthesizer synth.Synthesizer
	if command != "" {
		var err error
		synthesizer, err = synth.NewExecSynth(command, sampleRate, channels)
		if err != nil {
			return err
		}
	} else {
		synthesizer = synth.NewMockSynth(sampleRate, channels)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)
	defer cancel()

	sm := submaker.New(text)
	var pcm []byte
	events, errs := synthesizer.Synthesize(ctx, synth.Request{
		SessionID: uuid.NewString(),
		Text:      text,
		Voice:     voice,
	})
	for events != nil || errs != nil {
		select {
		case evt, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			switch evt.Type {
			case synth.EventAudio:
				pcm = append(pcm, evt.PCM...)
			case synth.EventWordBoundary:
				sm.AddCuePart(evt.OffsetTicks, evt.DurationTicks, evt.Text)
			}
		case err, ok := <-errs:
			if ok && err != nil {
				return fmt.Errorf("synthesis failed: %w", err)
			}
			errs = nil
		}
	}

	if err := synth.WriteWAV(wavPath, pcm, sampleRate, channels); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d words)\n", wavPath, sm.Len())

	if srtPath != "" {
		doc := sm.GetSRT(wordsInCue)
		if err := os.WriteFile(srtPath, []byte(doc), 0o644); err != nil {
			return fmt.Errorf("write srt: %w", err)
		}
		fmt.Printf("wrote %s\n", srtPath)
	}
	return nil
}

func runVoices(args []string) error {
	voicesCmd := flag.NewFlagSet("voices", flag.ExitOnError)
	var (
		endpoint string
		language string
		gender   string
		locale   string
	)
	voicesCmd.StringVar(&endpoint, "url", "", "Voice list endpoint (builtin catalog when empty)")
	voicesCmd.StringVar(&language, "language", "", "Filter by language, e.g. en")
	voicesCmd.StringVar(&gender, "gender", "", "Filter by gender")
	voicesCmd.StringVar(&locale, "locale", "", "Filter by locale, e.g. en-US")
	voicesCmd.Parse(args)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	manager, err := voices.Load(ctx, endpoint)
	if err != nil {
		return err
	}
	matched := manager.Find(voices.Filter{Language: language, Gender: gender, Locale: locale})
	if len(matched) == 0 {
		return fmt.Errorf("no voices matched")
	}
	for _, v := range matched {
		fmt.Printf("%-28s %-8s %s\n", v.ShortName, v.Gender, v.Locale)
	}
	return nil
}
