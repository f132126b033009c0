// Package espeak speaks text through libespeak-ng.
package espeak

/*
#cgo LDFLAGS: -lespeak-ng
#include <stdlib.h>
#include <string.h>
#include <espeak-ng/speak_lib.h>

static int
espeak_open(const char *voice, int rate, int volume)
{
	if (espeak_Initialize(AUDIO_OUTPUT_SYNCH_PLAYBACK, 500, NULL, 0) < 0)
	{ return -1; }

	if (voice && voice[0] && espeak_SetVoiceByName(voice) != EE_OK)
	{
		espeak_VOICE specs;
		memset(&specs, 0, sizeof(specs));
		specs.languages = voice;
		if (espeak_SetVoiceByProperties(&specs) != EE_OK)
		{ return -2; }
	}

	if (rate > 0)
	{ espeak_SetParameter(espeakRATE, rate, 0); }
	if (volume > 0)
	{ espeak_SetParameter(espeakVOLUME, volume, 0); }

	return 0;
}

static int
espeak_say(const char *text)
{
	if (!text)
	{ return -1; }

	if (espeak_Synth(text, strlen(text) + 1, 0, POS_CHARACTER, 0, espeakCHARS_UTF8, NULL, NULL) != EE_OK)
	{ return -2; }

	return espeak_Synchronize() == EE_OK ? 0 : -3;
}
*/
import "C"

import (
	"context"
	"fmt"
	"sync"
	"unsafe"

	"github.com/emmett/holidayvox/internal/tts"
)

// Engine implements tts.Synthesizer with espeak-ng
type Engine struct {
	mu     sync.Mutex
	config tts.Config
	open   bool
}

// New initializes espeak-ng with the configured voice and rate
func New(config tts.Config) (*Engine, error) {
	cvoice := C.CString(config.Voice)
	defer C.free(unsafe.Pointer(cvoice))

	switch rc := C.espeak_open(cvoice, C.int(config.Rate), C.int(config.Volume)); rc {
	case 0:
	case -2:
		C.espeak_Terminate()
		return nil, fmt.Errorf("espeak: voice %q not available", config.Voice)
	default:
		return nil, fmt.Errorf("espeak: initialization failed: %d", int(rc))
	}

	return &Engine{config: config, open: true}, nil
}

// Synthesize speaks text and blocks until playback has finished
func (e *Engine) Synthesize(ctx context.Context, text string) error {
	if text == "" {
		return tts.ErrEmptyText
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.open {
		return fmt.Errorf("espeak: engine closed")
	}

	ctext := C.CString(text)
	defer C.free(unsafe.Pointer(ctext))

	if rc := C.espeak_say(ctext); rc != 0 {
		return fmt.Errorf("espeak_say failed: %d", int(rc))
	}

	return nil
}

// Close terminates espeak-ng
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.open {
		return nil
	}
	C.espeak_Terminate()
	e.open = false
	return nil
}
