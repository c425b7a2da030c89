package cli

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	appchecks "github.com/bryanwahyu/safeweb/internal/application/checks"
)

func newCheckCommand(o *rootOptions) *cobra.Command {
	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Analyze a URL, a message or a file",
	}

	checkCmd.AddCommand(
		&cobra.Command{
			Use:     "url <url>",
			Short:   "Check whether a link looks safe",
			Example: "  safeweb check url example.com\n  safeweb check url https://bit.ly/x --json",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return o.runCheck(cmd, func(ctx context.Context, svc *appchecks.Service) (appchecks.Outcome, error) {
					return svc.CheckURL(ctx, args[0])
				})
			},
		},
		&cobra.Command{
			Use:     "text <text|->",
			Short:   "Check a message; \"-\" reads it from stdin",
			Example: "  safeweb check text \"Your account was blocked, click here\"\n  pbpaste | safeweb check text -",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				text := args[0]
				if text == "-" {
					data, err := io.ReadAll(cmd.InOrStdin())
					if err != nil {
						return fmt.Errorf("read stdin: %w", err)
					}
					text = string(data)
				}
				return o.runCheck(cmd, func(ctx context.Context, svc *appchecks.Service) (appchecks.Outcome, error) {
					return svc.CheckText(ctx, text)
				})
			},
		},
		&cobra.Command{
			Use:   "file <path>",
			Short: "Check an image (jpeg, png, webp) or a text/html file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				path := args[0]
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				defer f.Close()

				mediaType, content, err := detectMediaType(path, f)
				if err != nil {
					return err
				}
				return o.runCheck(cmd, func(ctx context.Context, svc *appchecks.Service) (appchecks.Outcome, error) {
					return svc.CheckFile(ctx, filepath.Base(path), mediaType, content)
				})
			},
		},
	)
	return checkCmd
}

func (o *rootOptions) runCheck(cmd *cobra.Command, run func(context.Context, *appchecks.Service) (appchecks.Outcome, error)) error {
	// no local deadline or cancellation for the analysis and its history write
	ctx := context.WithoutCancel(cmd.Context())

	a, err := o.open(ctx, cmd.ErrOrStderr(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := run(ctx, a.checks)
	if err != nil {
		return err
	}
	if a.store.Degraded() {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: history could not be saved")
	}

	w := cmd.OutOrStdout()
	if o.asJSON {
		return printJSON(w, out)
	}
	printResult(w, out.Result)
	return nil
}

// detectMediaType uses the file extension, then content sniffing.
func detectMediaType(path string, r io.Reader) (string, io.Reader, error) {
	if mt := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); mt != "" {
		return mt, r, nil
	}
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", nil, err
	}
	head = head[:n]
	return http.DetectContentType(head), io.MultiReader(strings.NewReader(string(head)), r), nil
}
