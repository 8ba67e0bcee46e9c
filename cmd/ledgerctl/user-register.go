package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ledgerbook/ledger-in-go/pkg/db"
	"github.com/ledgerbook/ledger-in-go/pkg/identity"
	"github.com/ledgerbook/ledger-in-go/pkg/mutation"
)

// userRegisterCmd represents the user register command
var userRegisterCmd = &cobra.Command{
	Use:   "register <name>",
	Short: "Register a user",
	Long: `Register a user through the mutation engine.

The password is read from LEDGER_PASSWORD and stored as a bcrypt hash.
The new user's id is printed on success.

Example:
  LEDGER_PASSWORD=s3cret ledgerctl user register olivia`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := registerUser(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to register user: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	userCmd.AddCommand(userRegisterCmd)
}

func registerUser(name string) error {
	pw, ok := os.LookupEnv("LEDGER_PASSWORD")
	if !ok || pw == "" {
		return fmt.Errorf("LEDGER_PASSWORD environment variable is required")
	}

	engine, database, err := openEngine()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close(database) }()

	o := engine.AttemptCreate(context.Background(), identity.Anonymous(), mutation.NewUser{Name: name, Password: pw})
	if err := o.Err(); err != nil {
		return err
	}
	fmt.Println(o.ID)
	return nil
}
