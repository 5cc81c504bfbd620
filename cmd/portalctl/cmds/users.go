package cmds

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var password string

var useraddCmd = &cobra.Command{
	Use:   "useradd <username>",
	Short: "Add an admin account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := credentialStore()
		if err != nil {
			return err
		}

		secret := password
		if secret == "" {
			// keep secrets out of shell history when the flag is omitted
			fmt.Fprint(os.Stderr, "password: ")
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			secret = strings.TrimRight(line, "\r\n")
		}

		if secret == "" {
			return errors.New("password must not be empty")
		}

		if err := creds.Add(cmd.Context(), args[0], secret); err != nil {
			return err
		}

		fmt.Printf("added %s\n", args[0])
		return nil
	},
}

var userdelCmd = &cobra.Command{
	Use:   "userdel <username>",
	Short: "Remove an admin account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := credentialStore()
		if err != nil {
			return err
		}

		if err := creds.Remove(cmd.Context(), args[0]); err != nil {
			return err
		}

		fmt.Printf("removed %s\n", args[0])
		return nil
	},
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List admin accounts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		creds, err := credentialStore()
		if err != nil {
			return err
		}

		names, err := creds.Usernames(cmd.Context())
		if err != nil {
			return err
		}

		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

func init() {
	useraddCmd.Flags().StringVar(&password, "password", "", "Password for the new account (prompted if omitted)")

	rootCmd.AddCommand(useraddCmd, userdelCmd, usersCmd)
}
