package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/daily-hours/internal/prefs"
)

var themeCmd = &cobra.Command{
	Use:   "theme [toggle|light|dark]",
	Short: "Show or change the colour theme",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTheme,
}

func runTheme(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	p := prefs.Open(cfg.PrefsDir())

	if len(args) == 0 {
		fmt.Println(p.Theme())
		return nil
	}

	var theme prefs.Theme
	var err error
	if args[0] == "toggle" {
		theme, err = p.ToggleTheme()
	} else {
		if theme, err = prefs.ParseTheme(args[0]); err != nil {
			return err
		}
		err = p.SetTheme(theme)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	fmt.Printf("Theme set to %s\n", theme)
	return nil
}
