// Package org holds the organization and membership commands
package org

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tablero/internal/cli"
	"github.com/thenoetrevino/tablero/internal/cli/handler"
	"github.com/thenoetrevino/tablero/internal/cli/styles"
	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/types"
)

// OrgCmd returns the org parent command
func OrgCmd(open cli.Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "org",
		Short: "Manage organizations and their members",
	}

	cmd.AddCommand(createCmd(open))
	cmd.AddCommand(listCmd(open))
	cmd.AddCommand(quotaCmd(open))
	cmd.AddCommand(memberCmd(open))

	return cmd
}

type orgResult struct {
	*models.Organization
}

func (r orgResult) GetID() int { return r.ID.ToInt() }

func (r orgResult) Render(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s Organization '%s' created (ID: %d)\n",
		styles.SuccessStyle.Render("OK"), r.Name, r.ID)
	return err
}

type orgList []*models.Organization

func (l orgList) Render(w io.Writer) error {
	if len(l) == 0 {
		_, err := fmt.Fprintln(w, styles.SubtitleStyle.Render("no organizations"))
		return err
	}
	for _, o := range l {
		if _, err := fmt.Fprintf(w, "%s %s\n", styles.SubtitleStyle.Render(fmt.Sprintf("#%d", o.ID)), o.Name); err != nil {
			return err
		}
	}
	return nil
}

func createCmd(open cli.Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an organization owned by the acting user",
		Long: `Create an organization. The acting user becomes its owner.

Examples:
  tablero org create --name="Acme"
  ORG_ID=$(tablero org create --name="Acme" --quiet)
`,
		Args: cobra.NoArgs,
		RunE: handler.Command(open, handler.Func(runCreate)),
	}
	cmd.Flags().String("name", "", "Organization name (required)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func runCreate(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	name, err := args.MustGetString("name")
	if err != nil {
		return nil, err
	}
	org, err := c.App.OrgService.CreateOrganization(ctx, name)
	if err != nil {
		return nil, err
	}
	return orgResult{org}, nil
}

func listCmd(open cli.Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the acting user's organizations",
		Args:  cobra.NoArgs,
		RunE: handler.Command(open, handler.Func(func(ctx context.Context, c *cli.CLI, _ *handler.Arguments) (any, error) {
			orgs, err := c.App.OrgService.ListOrganizations(ctx)
			if err != nil {
				return nil, err
			}
			return orgList(orgs), nil
		})),
	}
}

type quotaResult struct {
	Resource types.Resource `json:"resource"`
	Allowed  bool           `json:"allowed"`
	Current  int            `json:"current"`
	Max      int            `json:"max"`
}

func (r quotaResult) Render(w io.Writer) error {
	limit := fmt.Sprint(r.Max)
	if r.Max < 0 {
		limit = "unlimited"
	}
	_, err := fmt.Fprintf(w, "%s %d of %s\n", styles.LabelStyle.Render(string(r.Resource)+":"), r.Current, limit)
	return err
}

func quotaCmd(open cli.Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quota <boards|columns|cards>",
		Short: "Show how much of a plan limit an organization uses",
		Args:  cobra.ExactArgs(1),
		RunE: handler.Command(open, handler.Func(func(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
			org, err := args.RequireID("org")
			if err != nil {
				return nil, err
			}
			resource := types.Resource(args.Args[0])
			q, err := c.App.OrgService.GetQuota(ctx, types.OrgID(org), resource)
			if err != nil {
				return nil, err
			}
			return quotaResult{Resource: resource, Allowed: q.Allowed, Current: q.Current, Max: q.Max}, nil
		})),
	}
	cmd.Flags().Int("org", 0, "Organization ID (required)")
	_ = cmd.MarkFlagRequired("org")
	return cmd
}
