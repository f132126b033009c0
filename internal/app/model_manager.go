package app

import (
	"context"
	"fmt"
	"io"

	"github.com/emmett/holidayvox/internal/models"
)

// ModelManager prints and downloads recognizer models for the CLI
type ModelManager struct {
	registry *models.Registry
	out      io.Writer
}

func NewModelManager(registry *models.Registry, out io.Writer) *ModelManager {
	return &ModelManager{registry: registry, out: out}
}

func (m *ModelManager) ListModels() error {
	fmt.Fprintln(m.out, "Available models for download:")
	fmt.Fprintln(m.out)

	for i, model := range models.AvailableModels {
		fmt.Fprintf(m.out, "%d. %s\n", i+1, model.Name)
		fmt.Fprintf(m.out, "   Language: %s\n", model.Language)
		fmt.Fprintf(m.out, "   Size:     %s\n", model.Size)
		fmt.Fprintf(m.out, "   Info:     %s\n", model.Description)

		downloaded, _ := m.registry.IsDownloaded(model.Name)
		if downloaded {
			fmt.Fprintf(m.out, "   Status:   ✓ Downloaded\n")
		} else {
			fmt.Fprintf(m.out, "   Status:   Not downloaded\n")
		}
		fmt.Fprintln(m.out)
	}

	fmt.Fprintln(m.out, "To download a model, use:")
	fmt.Fprintln(m.out, "  holidayvox --download-model <model-name>")
	return nil
}

func (m *ModelManager) ListDownloaded() error {
	downloaded, err := m.registry.ListDownloaded()
	if err != nil {
		return fmt.Errorf("error listing models: %w", err)
	}

	if len(downloaded) == 0 {
		fmt.Fprintln(m.out, "No models downloaded yet.")
		fmt.Fprintln(m.out)
		fmt.Fprintln(m.out, "Use 'holidayvox --list-models' to see available models")
		fmt.Fprintln(m.out, "Use 'holidayvox --download-model <name>' to download a model")
		return nil
	}

	fmt.Fprintf(m.out, "Downloaded models (%d):\n", len(downloaded))
	fmt.Fprintln(m.out)

	for i, name := range downloaded {
		fmt.Fprintf(m.out, "%d. %s", i+1, name)
		if name == models.DefaultModelName {
			fmt.Fprintf(m.out, " [DEFAULT]")
		}
		fmt.Fprintln(m.out)
		fmt.Fprintf(m.out, "   Path: %s\n", m.registry.Path(name))
	}
	fmt.Fprintln(m.out)
	fmt.Fprintln(m.out, "To use a model, run:")
	fmt.Fprintln(m.out, "  holidayvox --model <model-name>")
	return nil
}

func (m *ModelManager) Download(ctx context.Context, name string) error {
	model := models.FindModel(name)
	if model == nil {
		fmt.Fprintln(m.out, "Use 'holidayvox --list-models' to see available models")
		return fmt.Errorf("unknown model: %s", name)
	}

	downloaded, err := m.registry.IsDownloaded(name)
	if err != nil {
		return fmt.Errorf("error checking model: %w", err)
	}

	if downloaded {
		fmt.Fprintf(m.out, "Model '%s' is already downloaded.\n", name)
		fmt.Fprintf(m.out, "Location: %s\n", m.registry.Path(name))
		return nil
	}

	fmt.Fprintf(m.out, "Downloading model: %s (%s)\n", model.Name, model.Size)
	fmt.Fprintf(m.out, "Description: %s\n", model.Description)
	fmt.Fprintln(m.out)

	err = m.registry.Download(ctx, name, func(downloaded, total int64) {
		if total <= 0 {
			fmt.Fprintf(m.out, "\rProgress: %d bytes", downloaded)
			return
		}
		percent := float64(downloaded) / float64(total) * 100
		fmt.Fprintf(m.out, "\rProgress: %.1f%% (%d/%d bytes)", percent, downloaded, total)
	})
	if err != nil {
		return fmt.Errorf("error downloading model: %w", err)
	}

	fmt.Fprintln(m.out)
	fmt.Fprintf(m.out, "✓ Model '%s' downloaded successfully!\n", name)
	return nil
}
