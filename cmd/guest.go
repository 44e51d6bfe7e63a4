package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var guestCmd = &cobra.Command{
	Use:   "guest",
	Short: "Inspect or clear names saved before sign-up",
}

var guestShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the saved names",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		gs, closeGuest, err := openGuest(cfg)
		if err != nil {
			return err
		}
		defer closeGuest()

		p, err := gs.Load(cmd.Context())
		if err != nil {
			return err
		}
		if p.IsZero() {
			fmt.Println("Nothing saved.")
			return nil
		}
		fmt.Printf("Your name:       %s\n", p.UserName)
		fmt.Printf("Person you care: %s\n", p.CaregivingName)
		return nil
	},
}

var guestClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget the saved names",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		gs, closeGuest, err := openGuest(cfg)
		if err != nil {
			return err
		}
		defer closeGuest()

		if err := gs.Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Guest progress cleared.")
		return nil
	},
}

func init() {
	guestCmd.AddCommand(guestShowCmd)
	guestCmd.AddCommand(guestClearCmd)
}
