package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/shinobix/pkg/app/screens"
	"github.com/kerbaras/shinobix/pkg/services"
)

type Options struct {
	SearchDebounce time.Duration
}

type App struct {
	controller *services.Controller
	opts       Options
}

func NewApp(controller *services.Controller, opts Options) *App {
	return &App{controller: controller, opts: opts}
}

func (a *App) Run(ctx context.Context) error {
	model := screens.NewRootScreen(ctx, a.controller, screens.RootOptions{
		SearchDebounce: a.opts.SearchDebounce,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
