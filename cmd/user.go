package cmd

import (
	"fmt"

	"timesheet/database"
	"timesheet/repository"
	"timesheet/service"
	"timesheet/session"

	"github.com/spf13/cobra"
)

var newUser service.NewUser

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
}

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a user with a hashed password",
	Args:  cobra.NoArgs,
	RunE:  runUserAdd,
}

func init() {
	userAddCmd.Flags().StringVar(&newUser.Username, "username", "", "login name (required)")
	userAddCmd.Flags().StringVar(&newUser.Name, "name", "", "display name (defaults to the username)")
	userAddCmd.Flags().StringVar(&newUser.Role, "role", "employee", "employee, manager or admin")
	userAddCmd.Flags().StringVar(&newUser.Password, "password", "", "initial password, at least 8 characters (required)")
	_ = userAddCmd.MarkFlagRequired("username")
	_ = userAddCmd.MarkFlagRequired("password")

	userCmd.AddCommand(userAddCmd)
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	db, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer database.Close(db)

	sessions := session.NewMemoryStore()
	defer sessions.Close()

	auth, err := service.NewAuthService(repository.NewUserStore(db), sessions, service.AuthConfig{})
	if err != nil {
		return err
	}
	user, err := auth.CreateUser(cmd.Context(), newUser)
	if err != nil {
		return fmt.Errorf("add user: %s", service.MessageOf(err))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %s %q (id %d)\n", user.Role, user.Username, user.ID)
	return nil
}
