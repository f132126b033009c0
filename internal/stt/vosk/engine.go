// Package vosk implements stt.Engine with the Vosk offline recognizer.
package vosk

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	vosk "github.com/alphacep/vosk-api/go"

	"github.com/emmett/holidayvox/internal/stt"
)

// Engine implements the stt.Engine interface using Vosk
type Engine struct {
	model       *vosk.VoskModel
	recognizer  *vosk.VoskRecognizer
	config      stt.Config
	mu          sync.Mutex
	initialized bool
}

// voskResult is the JSON document returned by the recognizer
type voskResult struct {
	Text   string `json:"text"`
	Result []struct {
		Conf float64 `json:"conf"`
		Word string  `json:"word"`
	} `json:"result,omitempty"`
	Partial string `json:"partial,omitempty"`
}

// New creates a new Vosk STT engine
func New() *Engine {
	return &Engine{}
}

// Initialize loads the model and creates a recognizer
func (v *Engine) Initialize(config stt.Config) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.initialized {
		return fmt.Errorf("engine already initialized")
	}

	vosk.SetLogLevel(-1)

	model, err := vosk.NewModel(config.ModelPath)
	if err != nil {
		return fmt.Errorf("failed to load model from %s: %w", config.ModelPath, err)
	}
	if model == nil {
		return fmt.Errorf("failed to load model from %s: model returned nil", config.ModelPath)
	}

	recognizer, err := vosk.NewRecognizer(model, float64(config.SampleRate))
	if err != nil {
		model.Free()
		return fmt.Errorf("failed to create recognizer: %w", err)
	}
	// Word results carry the confidence scores
	recognizer.SetWords(1)

	v.model = model
	v.recognizer = recognizer
	v.config = config
	v.initialized = true

	return nil
}

// ProcessAudio accepts a block of PCM and reports a partial or final result
func (v *Engine) ProcessAudio(ctx context.Context, audioData []byte) (*stt.Result, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.initialized {
		return nil, fmt.Errorf("engine not initialized")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if v.recognizer.AcceptWaveform(audioData) > 0 {
		return parse(v.recognizer.Result(), false)
	}
	return parse(v.recognizer.PartialResult(), true)
}

// FinalResult returns the pending utterance and resets the recognizer
func (v *Engine) FinalResult() (*stt.Result, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.initialized {
		return nil, fmt.Errorf("engine not initialized")
	}

	return parse(v.recognizer.FinalResult(), false)
}

// Reset drops the audio of the current utterance
func (v *Engine) Reset() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.initialized {
		return fmt.Errorf("engine not initialized")
	}

	v.recognizer.Reset()
	return nil
}

// Close releases the recognizer and the model
func (v *Engine) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.initialized {
		return nil
	}

	if v.recognizer != nil {
		v.recognizer.Free()
		v.recognizer = nil
	}
	if v.model != nil {
		v.model.Free()
		v.model = nil
	}

	v.initialized = false
	return nil
}

func parse(raw string, partial bool) (*stt.Result, error) {
	var res voskResult
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return nil, fmt.Errorf("failed to parse result: %w", err)
	}

	if partial {
		return &stt.Result{Text: res.Partial, Partial: true}, nil
	}

	var confidence float64
	if len(res.Result) > 0 {
		for _, w := range res.Result {
			confidence += w.Conf
		}
		confidence /= float64(len(res.Result))
	}

	return &stt.Result{Text: res.Text, Confidence: confidence}, nil
}
