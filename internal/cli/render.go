package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/policy-letter-api/internal/app"
	"github.com/policy-letter-api/internal/application/auth"
	"github.com/policy-letter-api/internal/application/letter"
	"github.com/policy-letter-api/internal/config"
	"github.com/policy-letter-api/internal/domain"
	"github.com/spf13/cobra"
)

type letterFactory func(ctx context.Context, cfg *config.Config, profiles letter.Profiles, withQR bool) (letter.Service, error)

var newLetters letterFactory = func(ctx context.Context, cfg *config.Config, profiles letter.Profiles, withQR bool) (letter.Service, error) {
	return app.NewLetterService(ctx, cfg, profiles, nil, withQR)
}

func renderCmd() *cobra.Command {
	var (
		file string
		out  string
		as   string
		noQR bool
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a letter request JSON file to PDF",
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			var req domain.LetterRequest
			if err := json.Unmarshal(raw, &req); err != nil {
				return fmt.Errorf("parse %s: %w", file, err)
			}

			cfg := config.Load()
			var profiles letter.Profiles
			if as != "" {
				users, err := config.LoadRoster(cfg)
				if err != nil {
					return err
				}
				profiles = auth.NewStaticRoster(users)
			}

			svc, err := newLetters(cmd.Context(), cfg, profiles, !noQR)
			if err != nil {
				return err
			}
			l, err := svc.Generate(cmd.Context(), &req, as)
			if err != nil {
				return err
			}
			if out == "" {
				out = l.FileName
			}
			if err := os.WriteFile(out, l.PDF, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%d bytes, %d pages)\n", l.Variant, out, len(l.PDF), l.Pages)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "letter request JSON (same body as POST /pdf/generate)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path (default letter_<policyNo>_<layout>.pdf)")
	cmd.Flags().StringVar(&as, "as", "", "roster email whose signer profile fills blank signer fields")
	cmd.Flags().BoolVar(&noQR, "no-qr", false, "skip the payment QR")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
