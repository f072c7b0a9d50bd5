package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	barcodex "github.com/kailas-cloud/barcodex/pkg/sdk"
)

func newGenerateCmd(g *globalFlags) *cobra.Command {
	var (
		rf       renderFlags
		prefix   string
		codesIn  string
		out      string
		maxCodes int
	)
	cmd := &cobra.Command{
		Use:   "generate [flags] [code...]",
		Short: "Render a batch of codes into a zip archive",
		Long: "Render every code into one image and pack them with report.json into a zip archive.\n" +
			"Codes come from the arguments and from --input (one per line, - for stdin).",
		RunE: func(cmd *cobra.Command, args []string) error {
			codes := append([]string(nil), args...)
			if codesIn != "" {
				more, err := readCodes(cmd.InOrStdin(), codesIn)
				if err != nil {
					return err
				}
				codes = append(codes, more...)
			}
			if len(codes) == 0 {
				return fmt.Errorf("no codes given (pass them as arguments or with --input)")
			}

			client, err := g.client(barcodex.WithMaxCodes(maxCodes))
			if err != nil {
				return err
			}
			opts := rf.options()
			opts.FilenamePrefix = prefix

			archive, err := client.Generate(cmd.Context(), codes, opts)
			if err != nil {
				if skipped, ok := barcodex.SkippedCodes(err); ok {
					printSkipped(cmd.ErrOrStderr(), skipped)
				}
				return err
			}

			dest := out
			if dest == "" {
				dest = archive.Filename
			}
			if dir := filepath.Dir(dest); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return err
				}
			}
			if err := os.WriteFile(dest, archive.Data, 0o644); err != nil {
				return fmt.Errorf("write archive: %w", err)
			}
			printReport(cmd.OutOrStdout(), dest, archive)
			return nil
		},
	}
	rf.register(cmd)
	cmd.Flags().StringVarP(&prefix, "prefix", "p", "", "file name prefix inside the archive")
	cmd.Flags().StringVarP(&codesIn, "input", "i", "", "file with one code per line (- for stdin)")
	cmd.Flags().StringVarP(&out, "output", "o", "", "archive path (default barcodes_<millis>.zip)")
	cmd.Flags().IntVar(&maxCodes, "max", 1000, "maximum number of codes per archive")
	return cmd
}

// readCodes returns the non-blank lines of path, or of stdin when path is "-".
func readCodes(stdin io.Reader, path string) ([]string, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(filepath.Clean(path))
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var codes []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			codes = append(codes, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read codes: %w", err)
	}
	return codes, nil
}

func printReport(w io.Writer, dest string, a *barcodex.Archive) {
	fmt.Fprintln(w, titleStyle.Render(dest))
	fmt.Fprintf(w, "  %s %s\n", labelStyle.Render("rendered:"), okStyle.Render(fmt.Sprint(a.Report.SuccessCount)))
	if a.Report.ErrorCount == 0 {
		fmt.Fprintf(w, "  %s %s\n", labelStyle.Render("skipped:"), valueStyle.Render("0"))
		return
	}
	fmt.Fprintf(w, "  %s %s\n", labelStyle.Render("skipped:"), warnStyle.Render(fmt.Sprint(a.Report.ErrorCount)))
	for _, e := range a.Report.Errors {
		fmt.Fprintf(w, "    %s %s %s\n", bulletStyle.Render("-"), valueStyle.Render(e.Code), labelStyle.Render(e.Reason))
	}
}

func printSkipped(w io.Writer, skipped []barcodex.ReportError) {
	fmt.Fprintln(w, warnStyle.Render("no barcodes were generated:"))
	for _, e := range skipped {
		fmt.Fprintf(w, "  %s %s %s\n", bulletStyle.Render("-"), valueStyle.Render(e.Code), labelStyle.Render(e.Reason))
	}
}
