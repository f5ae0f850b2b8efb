package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"lexive/internal/codeparser"
)

var (
	renderName  string
	renderType  string
	checkStrict bool
)

// renderCmd compiles a card code given on the command line
var renderCmd = &cobra.Command{
	Use:   "render CODE",
	Short: "Compile a card code into rules text",
	Long: `Compiles a card code, such as "A=3" or "D=2;E", into the text printed
on the card. Special tokens are rendered around the main effect.

Example:
  lexive render "D=2" --name Spark --type S`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

// specialCmd shows only the card-level extra tokens
var specialCmd = &cobra.Command{
	Use:   "special CODE",
	Short: "Render the special text of a card code",
	Args:  cobra.ExactArgs(1),
	RunE:  runSpecial,
}

// checkCmd audits every player card in the catalog
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Compile every player card and report differences with the printed text",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

func init() {
	for _, c := range []*cobra.Command{renderCmd, specialCmd} {
		c.Flags().StringVar(&renderName, "name", "", "Card name substituted into the text")
		c.Flags().StringVar(&renderType, "type", "", "Card type letter (G, R or S)")
	}
	checkCmd.Flags().BoolVar(&checkStrict, "strict", false, "Fail when any difference is found")
}

func newCompiler() *codeparser.Compiler {
	return codeparser.New(codeparser.WithPrefix(cfg.Prefix))
}

func runRender(cmd *cobra.Command, args []string) error {
	parsed := codeparser.Parse(args[0])
	text := newCompiler().RenderAll(parsed, renderName, strings.ToUpper(renderType))
	logger.Debug("Rendered code", zap.String("code", args[0]), zap.String("parsed", parsed.String()))
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}

func runSpecial(cmd *cobra.Command, args []string) error {
	before, after := newCompiler().RenderSpecial(codeparser.Parse(args[0]), renderName, strings.ToUpper(renderType))
	out := cmd.OutOrStdout()
	if before == "" && after == "" {
		fmt.Fprintln(out, "No special text.")
		return nil
	}
	if before != "" {
		fmt.Fprintln(out, "Before: "+before)
	}
	if after != "" {
		fmt.Fprintln(out, "After: "+after)
	}
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	d, cleanup, err := newDispatcher(context.Background())
	if err != nil {
		return err
	}
	defer cleanup()

	out := cmd.OutOrStdout()
	problems := d.Formatter().Audit()
	errorCount := 0
	for _, p := range problems {
		label := "mismatch"
		if p.Diagnostic() {
			label = "error"
			errorCount++
		}
		fmt.Fprintf(out, "%s (%s) %s %s:\n  generated: %s\n  printed:   %s\n",
			p.Card, p.Box, p.Field, label,
			strings.ReplaceAll(p.Generated, "\n", " / "),
			strings.ReplaceAll(p.Printed, "\n", " / "))
	}
	fmt.Fprintf(out, "%d cards checked, %d differences, %d errors\n",
		countPlayerCards(d.Catalog().PlayerCards), len(problems), errorCount)

	if checkStrict && len(problems) > 0 {
		return fmt.Errorf("%d differences from the printed text", len(problems))
	}
	return nil
}

func countPlayerCards[V any](m map[string][]V) int {
	n := 0
	for _, v := range m {
		n += len(v)
	}
	return n
}
