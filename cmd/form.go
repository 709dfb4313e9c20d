package cmd

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/relay/internal/config"
	"github.com/zjrosen/relay/internal/formui"
	"github.com/zjrosen/relay/internal/log"
	"github.com/zjrosen/relay/internal/mediator"
	"github.com/zjrosen/relay/internal/styles"
	"github.com/zjrosen/relay/internal/watcher"
)

var formCmd = &cobra.Command{
	Use:   "form",
	Short: "Fill in a form whose OK button is governed by a mediator",
	Long: `Opens a name/email form. The OK button is enabled only while both
fields are filled in. With --script, a fixed sequence of edits and clicks is
played instead and the form state is printed after each step.

Theme colors are re-applied when the config file changes.`,
	RunE: runFormCmd,
}

func init() {
	rootCmd.AddCommand(formCmd)

	formCmd.Flags().Bool("script", false, "play the scripted scenario instead of opening the form")
}

func runFormCmd(cmd *cobra.Command, _ []string) error {
	if script, _ := cmd.Flags().GetBool("script"); script {
		return runFormScript(cmd.OutOrStdout())
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	opts := formui.Options{Listener: log.NewListener(ctx)}
	if path := viper.ConfigFileUsed(); path != "" {
		w, err := watcher.New(watcher.Config{Path: path})
		if err != nil {
			return err
		}
		changes, err := w.Start()
		if err != nil {
			return err
		}
		defer func() { _ = w.Stop() }()
		opts.ConfigChanges = changes
		opts.Reload = reloadTheme
	}

	zone.NewGlobal()
	model := formui.New(opts)
	final, err := tea.NewProgram(model, tea.WithContext(ctx), tea.WithMouseCellMotion()).Run()
	if err != nil {
		return fmt.Errorf("running form: %w", err)
	}
	if m, ok := final.(formui.Model); ok {
		for _, a := range m.Actions() {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), a)
		}
	}
	return nil
}

// reloadTheme re-reads the config file and applies its theme colors.
func reloadTheme() error {
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	next := config.Defaults()
	if err := viper.Unmarshal(&next); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	cfg = next
	styles.ApplyTheme(cfg.Theme.Muted, cfg.Theme.Error, cfg.Theme.Success)
	log.Info(log.CatConfig, "config reloaded", "path", viper.ConfigFileUsed())
	return nil
}

// runFormScript plays the form scenario: fill both fields, click OK, clear
// the email, click the now disabled OK, then click Cancel.
func runFormScript(out io.Writer) error {
	form := mediator.NewForm(mediator.FormOptions{
		OnOK: func(name, email string) {
			_, _ = fmt.Fprintf(out, "OK clicked: name=%q email=%q\n", name, email)
		},
		OnCancel: func() {
			_, _ = fmt.Fprintln(out, "Cancel clicked")
		},
	})

	show := func(step string) {
		_, _ = fmt.Fprintf(out, "%-22s %s\n", step, form)
	}

	show("start")
	form.Name.SetValue("Fred")
	show("name=Fred")
	form.Email.SetValue("fred@bloggers.com")
	show("email=fred@bloggers.com")
	form.OK.Click()
	form.Email.SetValue("")
	show("email cleared")
	if !form.OK.Click() {
		_, _ = fmt.Fprintln(out, "OK ignored (disabled)")
	}
	form.Cancel.Click()
	return nil
}
