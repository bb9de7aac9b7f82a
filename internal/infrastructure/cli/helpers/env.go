package helpers

import (
	"context"
	"fmt"

	"github.com/doeshing/aura-go/internal/app"
	configinfra "github.com/doeshing/aura-go/internal/infrastructure/config"
	"github.com/doeshing/aura-go/internal/ports"
)

// Env is shared by every subcommand. The container is built on first use so
// persistent flags such as --config are parsed before anything is opened.
type Env struct {
	ConfigPath string
	Verbose    bool
	// Adapters overrides container adapters; ConfigPath and Verbose are
	// filled in from the fields above.
	Adapters app.Options
	Prompter ports.ConfirmationPrompter

	container *app.Container
}

// Container returns the lazily built container.
func (e *Env) Container(ctx context.Context) (*app.Container, error) {
	if e.container != nil {
		return e.container, nil
	}
	opts := e.Adapters
	opts.ConfigPath = e.ConfigPath
	opts.Verbose = e.Verbose
	container, err := app.BuildContainer(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to start assistant: %w", err)
	}
	e.container = container
	return container, nil
}

// Loader returns a config loader without building the rest of the container.
func (e *Env) Loader() *configinfra.FileLoader {
	if e.container != nil && e.container.ConfigLoader != nil {
		return e.container.ConfigLoader
	}
	return configinfra.NewFileLoader(e.ConfigPath)
}

// Close releases the container if one was built.
func (e *Env) Close() {
	if e.container == nil {
		return
	}
	e.container.Close()
	e.container = nil
}
