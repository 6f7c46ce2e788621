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
	orgservice "github.com/thenoetrevino/tablero/internal/services/org"
	"github.com/thenoetrevino/tablero/internal/types"
)

func memberCmd(open cli.Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Manage organization members",
	}
	cmd.PersistentFlags().Int("org", 0, "Organization ID (required)")
	_ = cmd.MarkPersistentFlagRequired("org")

	cmd.AddCommand(memberAddCmd(open))
	cmd.AddCommand(memberRemoveCmd(open))
	cmd.AddCommand(memberListCmd(open))
	return cmd
}

type memberResult struct {
	Org    types.OrgID  `json:"org_id"`
	User   types.UserID `json:"user_id"`
	Role   types.Role   `json:"role,omitempty"`
	Action string       `json:"action"`
}

func (r memberResult) Render(w io.Writer) error {
	var err error
	if r.Action == "removed" {
		_, err = fmt.Fprintf(w, "%s %s removed from organization %d\n", styles.SuccessStyle.Render("OK"), r.User, r.Org)
	} else {
		_, err = fmt.Fprintf(w, "%s %s is now %s of organization %d\n", styles.SuccessStyle.Render("OK"), r.User, r.Role, r.Org)
	}
	return err
}

type memberList []*models.Membership

func (l memberList) Render(w io.Writer) error {
	for _, m := range l {
		if _, err := fmt.Fprintf(w, "%-20s %s\n", m.UserID, styles.SubtitleStyle.Render(m.Role.String())); err != nil {
			return err
		}
	}
	return nil
}

func memberAddCmd(open cli.Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <user>",
		Short: "Add a member or change their role",
		Long: `Add a member to an organization, or change the role of an existing one.
Admins manage members; only owners grant or revoke ownership.

Examples:
  tablero org member add mia --org=1 --role=member
  tablero org member add olive --org=1 --role=owner
`,
		Args: cobra.ExactArgs(1),
		RunE: handler.Command(open, handler.Func(runMemberAdd)),
	}
	cmd.Flags().String("role", "member", "Role: owner, admin, member or viewer")
	return cmd
}

func runMemberAdd(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	org, err := args.RequireID("org")
	if err != nil {
		return nil, err
	}
	role, err := types.ParseRole(args.GetString("role", "member"))
	if err != nil {
		return nil, &cli.ExitCodeError{Code: cli.ExitValidation, Err: err}
	}
	req := orgservice.AddMemberRequest{OrgID: types.OrgID(org), UserID: types.UserID(args.Args[0]), Role: role}
	if err := c.App.OrgService.AddMember(ctx, req); err != nil {
		return nil, err
	}
	return memberResult{Org: req.OrgID, User: req.UserID, Role: role, Action: "added"}, nil
}

func memberRemoveCmd(open cli.Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <user>",
		Short: "Remove a member",
		Args:  cobra.ExactArgs(1),
		RunE: handler.Command(open, handler.Func(func(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
			org, err := args.RequireID("org")
			if err != nil {
				return nil, err
			}
			user := types.UserID(args.Args[0])
			if err := c.App.OrgService.RemoveMember(ctx, types.OrgID(org), user); err != nil {
				return nil, err
			}
			return memberResult{Org: types.OrgID(org), User: user, Action: "removed"}, nil
		})),
	}
}

func memberListCmd(open cli.Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List members and their roles",
		Args:  cobra.NoArgs,
		RunE: handler.Command(open, handler.Func(func(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
			org, err := args.RequireID("org")
			if err != nil {
				return nil, err
			}
			members, err := c.App.OrgService.ListMembers(ctx, types.OrgID(org))
			if err != nil {
				return nil, err
			}
			return memberList(members), nil
		})),
	}
}
