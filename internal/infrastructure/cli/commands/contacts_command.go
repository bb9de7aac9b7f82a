package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doeshing/aura-go/internal/infrastructure/cli/helpers"
)

// NewContactsCommand shows the address book used by call, message and email.
func NewContactsCommand(env *helpers.Env) *cobra.Command {
	contactsCmd := &cobra.Command{
		Use:   "contacts",
		Short: "List contacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := env.Container(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			contacts := container.Contacts.All()
			if len(contacts) == 0 {
				fmt.Fprintln(out, MsgNoContacts)
				return nil
			}
			for _, c := range contacts {
				fmt.Fprintf(out, "%-16s %-16s %s\n", c.Name, c.Phone, c.Email)
			}
			return nil
		},
	}

	contactsCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the contact book location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := env.Container(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), container.Contacts.Path())
			return nil
		},
	})
	return contactsCmd
}
