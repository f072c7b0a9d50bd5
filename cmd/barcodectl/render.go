package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRenderCmd(g *globalFlags) *cobra.Command {
	var (
		rf  renderFlags
		out string
	)
	cmd := &cobra.Command{
		Use:   "render [flags] <code>",
		Short: "Render a single code to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := g.client()
			if err != nil {
				return err
			}
			dest := out
			if dest == "" {
				dest = args[0]
			}
			path, err := client.Render(cmd.Context(), args[0], rf.options(), dest)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	rf.register(cmd)
	cmd.Flags().StringVarP(&out, "output", "o", "", "output path; the extension follows --format (default <code>.<format>)")
	return cmd
}

func newPreviewCmd(g *globalFlags) *cobra.Command {
	var rf renderFlags
	cmd := &cobra.Command{
		Use:   "preview [flags] <code>",
		Short: "Print a code as a data URI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := g.client()
			if err != nil {
				return err
			}
			p, err := client.Preview(cmd.Context(), args[0], rf.options())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), p.Image)
			return nil
		},
	}
	rf.register(cmd)
	return cmd
}

func newSymbologiesCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "symbologies",
		Short: "List supported symbologies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := g.client()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, s := range client.Symbologies() {
				fmt.Fprintf(w, "%s %s %s\n",
					titleStyle.Render(s.Key),
					labelStyle.Render("lengths:"),
					valueStyle.Render(fmt.Sprint(s.Lengths)),
				)
			}
			return nil
		},
	}
}
