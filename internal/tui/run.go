package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/contactform/internal/clock"
	"github.com/muurk/contactform/internal/config"
	"github.com/muurk/contactform/internal/form"
	"github.com/muurk/contactform/internal/page"
)

// Options configures Run.
type Options struct {
	// JumpToContact opens the form already scrolled to the contact section.
	JumpToContact bool

	// Sender replaces the submission client built from config.
	Sender form.Sender

	// Scheduler drives the button reversion timer. Nil uses wall-clock time.
	Scheduler clock.Scheduler
}

// Run shows the form until the user quits or ctx is canceled.
func Run(ctx context.Context, cfg *config.Config, opts Options) error {
	sched := NewRefreshingScheduler(opts.Scheduler)

	var pageOpts []page.Option
	if opts.Sender != nil {
		pageOpts = append(pageOpts, page.WithSender(opts.Sender))
	}
	pg, err := page.New(cfg, sched, pageOpts...)
	if err != nil {
		return fmt.Errorf("failed to build form: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var modelOpts []ModelOption
	if opts.JumpToContact {
		modelOpts = append(modelOpts, WithJumpToContact())
	}

	p := tea.NewProgram(NewModel(ctx, pg, modelOpts...),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	sched.Notifier.Attach(p)

	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("form UI failed: %w", err)
	}
	return nil
}
