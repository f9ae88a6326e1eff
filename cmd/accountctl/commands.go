package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/baechuer/admin-dashboard/services/account-service/internal/domain"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/infrastructure/security"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/transport/http/dto"
)

func newMigrateRolesCmd(build appBuilder) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "migrate-roles",
		Short: "Normalize legacy admin flags into the role enum",
		Long: "Scans accounts without a stored role and writes the resolved role with a " +
			"conditional update. Safe to re-run and to run alongside live traffic.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := build()
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			rep, err := app.Runner.Run(ctx)
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), dto.NewMigrationReportData(rep)); err != nil {
				return err
			}
			if len(rep.Failures) > 0 {
				return fmt.Errorf("%d account(s) failed to migrate", len(rep.Failures))
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "overall deadline for the batch")
	return cmd
}

func newEnsureDefaultCmd(build appBuilder) *cobra.Command {
	return &cobra.Command{
		Use:   "ensure-default",
		Short: "Create the default SuperAdmin if no account exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := build()
			if err != nil {
				return err
			}
			defer app.Close()

			created, err := app.Seeder.EnsureDefaultAccount(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]bool{"created": created})
		},
	}
}

func newHashPasswordCmd() *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for a password (reads stdin when no argument is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var pw string
			if len(args) == 1 {
				pw = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return err
				}
				pw = strings.TrimRight(line, "\r\n")
			}
			if pw == "" {
				return domain.ErrMissingField("password")
			}

			hash, err := security.NewBcryptHasher(cost).Hash(pw)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}
	cmd.Flags().IntVar(&cost, "cost", security.DefaultBcryptCost, "bcrypt work factor")
	return cmd
}

// newIssueTokensCmd mints session claims for synthetic subjects, one per
// line. Meant for load tests against a non-production secret.
func newIssueTokensCmd() *cobra.Command {
	var (
		count  int
		role   string
		secret string
		issuer string
		ttl    time.Duration
		out    string
	)

	cmd := &cobra.Command{
		Use:   "issue-tokens",
		Short: "Mint session tokens for synthetic accounts (load testing)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if secret == "" {
				secret = os.Getenv("JWT_SECRET")
			}
			if secret == "" {
				return domain.ErrMissingField("secret")
			}
			if count <= 0 {
				return domain.ErrInvalidField("count", "must be positive")
			}
			r, err := domain.ParseRole(role)
			if err != nil {
				return err
			}

			signer := security.NewSessionSigner(secret, issuer, ttl)
			tokens := make([]string, count)

			g, _ := errgroup.WithContext(cmd.Context())
			g.SetLimit(8)
			for i := range tokens {
				g.Go(func() error {
					s, err := signer.Issue(uuid.NewString(), r)
					if err != nil {
						return err
					}
					tokens[i] = s.Token
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			bw := bufio.NewWriter(w)
			for _, t := range tokens {
				if _, err := bw.WriteString(t + "\n"); err != nil {
					return err
				}
			}
			return bw.Flush()
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1000, "number of tokens")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleMember), "role embedded in every token")
	cmd.Flags().StringVar(&secret, "secret", "", "HS256 secret (defaults to JWT_SECRET)")
	cmd.Flags().StringVar(&issuer, "issuer", "account-service", "token issuer")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output file, - for stdout")
	return cmd
}
