package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var contactName, contactEmail, contactMessage string

// contactCmd prints the WhatsApp link for the contact form
var contactCmd = &cobra.Command{
	Use:     "contact",
	Short:   "Build the WhatsApp link for a contact request",
	Example: `  dmparfum contact --name Ana --email ana@example.com --message "¿Tienen Sauvage 200ml?"`,
	Args:    cobra.NoArgs,
	RunE:    runContact,
}

func init() {
	contactCmd.Flags().StringVar(&contactName, "name", "", "Your name (required)")
	contactCmd.Flags().StringVar(&contactEmail, "email", "", "Your email (required)")
	contactCmd.Flags().StringVar(&contactMessage, "message", "", "Message for the shop (required)")
	contactCmd.MarkFlagRequired("name")
	contactCmd.MarkFlagRequired("email")
	contactCmd.MarkFlagRequired("message")
}

func runContact(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	link, err := a.ContactLink(contactName, contactEmail, contactMessage)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), link)
	return nil
}
