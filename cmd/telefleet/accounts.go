package main

import (
	"errors"
	"fmt"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/danhigham/telefleet/internal/domain"
	"github.com/danhigham/telefleet/internal/login"
	"github.com/danhigham/telefleet/internal/ui"
)

var (
	okStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	keyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)

	accountsWidth int
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Add an account interactively",
	Long: `Walk through the Telegram login (API hash, API ID, phone number, login
code and, when enabled, the two-step verification password) and store the
resulting session.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := setup(false)
		if err != nil {
			return err
		}
		defer e.Close()

		flow := login.New(e.platform, e.store, e.logger.Named("login"))
		res, err := ui.RunLogin(cmd.Context(), flow)
		if errors.Is(err, ui.ErrCancelled) {
			fmt.Println("Login cancelled.")
			return nil
		}
		if err != nil {
			return err
		}

		name := domain.Account{
			Key:       res.Key,
			FirstName: res.User.FirstName,
			LastName:  res.User.LastName,
			Username:  res.User.Username,
		}.DisplayName()
		lipgloss.Println(okStyle.Render("✓") + " Account added as " + keyStyle.Render(res.Key) + " (" + name + ")")
		return nil
	},
}

var accountsCmd = &cobra.Command{
	Use:     "accounts",
	Aliases: []string{"list", "ls"},
	Short:   "List stored accounts",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := setup(false)
		if err != nil {
			return err
		}
		defer e.Close()

		list, err := e.store.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("list accounts: %w", err)
		}
		out, err := ui.RenderAccounts(list, accountsWidth)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete <key>",
	Aliases: []string{"rm"},
	Short:   "Remove a stored account",
	Long:    `Remove the record with the given key (for example session_3). The key is never reused.`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(false)
		if err != nil {
			return err
		}
		defer e.Close()

		removed, err := e.store.Delete(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("delete %s: %w", args[0], err)
		}
		if !removed {
			return fmt.Errorf("%s: %w", args[0], domain.ErrAccountNotFound)
		}
		lipgloss.Println(okStyle.Render("✓") + " Deleted " + keyStyle.Render(args[0]))
		return nil
	},
}

func init() {
	accountsCmd.Flags().IntVarP(&accountsWidth, "width", "w", 100, "render width")
}
