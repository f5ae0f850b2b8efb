package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"lexive/internal/bot"
)

var dividerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A"))

// contentCmds returns one command per lookup command of the bot.
func contentCmds() []*cobra.Command {
	specs := []struct {
		name  string
		use   string
		short string
	}{
		{"info", "info NAME", "Describe a card, mage, nemesis, breach or mechanic"},
		{"card", "card NUMBER", "Find a card by its printed number, such as AE12 or O1a5"},
		{"box", "box NAME", "List the numbered cards of a box"},
		{"search", "search PATTERN", "Find content whose text contains a pattern"},
		{"unique", "unique", "List the unique mechanics"},
	}
	cmds := make([]*cobra.Command, 0, len(specs)+1)
	for _, s := range specs {
		name := s.name
		cmds = append(cmds, &cobra.Command{
			Use:   s.use,
			Short: s.short,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runBotCommand(cmd, name, args)
			},
		})
	}
	cmds = append(cmds, &cobra.Command{
		Use:   "random [flags]",
		Short: "Draw a random nemesis, mages and market",
		Long: `Draws a random battle. Flags are those of the chat command; run
"lexive random -h" to list them. Global flags are not read by this
command, so point it at a configuration with LEXIVE_* variables or a .env
file.`,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBotCommand(cmd, "random", args)
		},
	})
	return cmds
}

func runBotCommand(cmd *cobra.Command, name string, args []string) error {
	ctx := context.Background()
	d, cleanup, err := newDispatcher(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	reply, err := d.Run(ctx, name, bot.Request{Guild: guildID, Author: "cli", Owner: true}, args)
	if err != nil {
		return err
	}
	printReply(cmd.OutOrStdout(), reply)
	return nil
}

func printReply(w io.Writer, r bot.Reply) {
	for i, m := range r.Messages {
		if i > 0 {
			fmt.Fprintln(w, dividerStyle.Render(strings.Repeat("─", 40)))
		}
		fmt.Fprintln(w, m)
	}
	for _, f := range r.Files {
		fmt.Fprintln(w, "Attachment: "+f)
	}
	if r.Empty() {
		fmt.Fprintln(w, "Nothing found.")
	}
}
