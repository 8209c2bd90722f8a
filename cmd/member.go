package cmd

import (
	"github.com/spf13/cobra"

	"github.com/scrumebox/scrume/internal/models"
	"github.com/scrumebox/scrume/internal/output"
	"github.com/scrumebox/scrume/internal/scrum"
)

var (
	memberEmail string
	memberRole  string
	memberColor string
	memberName  string
)

var memberCmd = &cobra.Command{
	Use:   "member",
	Short: "Manage project team members",
}

var memberAddCmd = &cobra.Command{
	Use:   "add <project> <name>",
	Short: "Add a team member",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return memberAddRun(args[0], args[1])
	},
}

var memberListCmd = &cobra.Command{
	Use:     "list <project>",
	Aliases: []string{"ls"},
	Short:   "List a project's team members",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return memberListRun(args[0])
	},
}

var memberEditCmd = &cobra.Command{
	Use:   "edit <project> <member>",
	Short: "Edit a member's name, email, role, or color",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return memberEditRun(cmd, args[0], args[1])
	},
}

var memberRemoveCmd = &cobra.Command{
	Use:     "remove <project> <member>",
	Aliases: []string{"rm"},
	Short:   "Remove a member from a project",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return memberRemoveRun(args[0], args[1])
	},
}

func init() {
	memberAddCmd.Flags().StringVar(&memberEmail, "email", "", "Member email")
	memberAddCmd.Flags().StringVar(&memberRole, "role", "developer", "Role (product-owner, scrum-master, developer, designer, qa)")
	memberAddCmd.Flags().StringVar(&memberColor, "color", "", "Avatar color as a hex string")

	memberEditCmd.Flags().StringVar(&memberName, "name", "", "New name")
	memberEditCmd.Flags().StringVar(&memberEmail, "email", "", "New email")
	memberEditCmd.Flags().StringVar(&memberRole, "role", "", "New role")
	memberEditCmd.Flags().StringVar(&memberColor, "color", "", "New avatar color")

	memberCmd.AddCommand(memberAddCmd)
	memberCmd.AddCommand(memberListCmd)
	memberCmd.AddCommand(memberEditCmd)
	memberCmd.AddCommand(memberRemoveCmd)
	rootCmd.AddCommand(memberCmd)
}

func memberAddRun(projectRef, name string) error {
	c, err := getController()
	if err != nil {
		return err
	}
	p, err := resolveProject(c, projectRef)
	if err != nil {
		return err
	}

	role, err := models.ParseRole(memberRole)
	if err != nil {
		return err
	}

	m, err := c.AddMember(p.ID, scrum.MemberInput{
		Name:        name,
		Email:       memberEmail,
		Role:        role,
		AvatarColor: memberColor,
	})
	if err != nil {
		return err
	}
	ui.Success("Added member: %s (%s)", output.Cyan(m.Name), m.Role)
	ui.VerboseLog("ID: %s", m.ID)
	return nil
}

func memberListRun(projectRef string) error {
	c, err := getController()
	if err != nil {
		return err
	}
	p, err := resolveProject(c, projectRef)
	if err != nil {
		return err
	}

	if len(p.Members) == 0 {
		ui.Info("No members in %s.", p.Name)
		return nil
	}

	table := ui.Table([]string{"", "Name", "Role", "Email", "ID"})
	for i := range p.Members {
		m := &p.Members[i]
		table.Append([]string{
			m.Initials(),
			m.Name,
			output.RoleColor(m.Role),
			m.Email,
			shortID(m.ID),
		})
	}
	table.Render()
	return nil
}

func memberEditRun(cmd *cobra.Command, projectRef, memberRef string) error {
	c, err := getController()
	if err != nil {
		return err
	}
	p, err := resolveProject(c, projectRef)
	if err != nil {
		return err
	}
	m, err := resolveMember(p, memberRef)
	if err != nil {
		return err
	}

	updated := *m
	if cmd.Flags().Changed("name") {
		updated.Name = memberName
	}
	if cmd.Flags().Changed("email") {
		updated.Email = memberEmail
	}
	if cmd.Flags().Changed("role") {
		role, err := models.ParseRole(memberRole)
		if err != nil {
			return err
		}
		updated.Role = role
	}
	if cmd.Flags().Changed("color") {
		updated.AvatarColor = memberColor
	}

	if err := c.UpdateMember(p.ID, updated); err != nil {
		return err
	}
	ui.Success("Updated member: %s", output.Cyan(updated.Name))
	return nil
}

func memberRemoveRun(projectRef, memberRef string) error {
	c, err := getController()
	if err != nil {
		return err
	}
	p, err := resolveProject(c, projectRef)
	if err != nil {
		return err
	}
	m, err := resolveMember(p, memberRef)
	if err != nil {
		return err
	}

	name := m.Name
	if err := c.RemoveMember(p.ID, m.ID); err != nil {
		return err
	}
	ui.Success("Removed member: %s", output.Cyan(name))
	return nil
}
