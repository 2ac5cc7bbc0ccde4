package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quintessa/grantwatch/internal/item"
)

var linksCmd = &cobra.Command{
	Use:   "links",
	Short: "Manage registered links for AI extraction",
}

var linksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all registered links",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		links, err := st.ReadLinks()
		if err != nil {
			return err
		}

		if len(links) == 0 {
			fmt.Println("No links registered. Add one with: grantwatch links add <url> <group>")
			return nil
		}

		fmt.Println("Registered links:")
		fmt.Println()
		for _, l := range links {
			icon := " "
			if l.Ativo {
				icon = "*"
			}
			fmt.Printf("  [%s] %s %s\n", l.UID, icon, l.URL)
			fmt.Printf("        %s | %s", l.Grupo, l.Nome)
			if l.LastRun != "" {
				fmt.Printf(" | last run %s (%s, %s items)", l.LastRun, l.LastStatus, l.LastItems)
			}
			fmt.Println()
		}
		return nil
	},
}

var linkName string

var linksAddCmd = &cobra.Command{
	Use:   "add [url] [group]",
	Short: "Register a link",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		url, grupo := args[0], args[1]
		uid := item.LinkUID(url, item.NormalizeGroup(grupo))
		if existing, _ := st.FindLink(uid); existing != nil {
			fmt.Printf("Link already registered: [%s] %s\n", existing.UID, existing.URL)
			return nil
		}

		link, err := st.AddLink(url, grupo, linkName)
		if err != nil {
			return err
		}
		fmt.Printf("Registered link [%s]: %s (%s)\n", link.UID, link.URL, link.Grupo)
		return nil
	},
}

var linksRemoveCmd = &cobra.Command{
	Use:   "remove [uid]",
	Short: "Remove a registered link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		link, err := st.FindLink(args[0])
		if err != nil {
			return err
		}
		if link == nil {
			return fmt.Errorf("link %s not found", args[0])
		}

		if _, err := st.DeleteLink(args[0]); err != nil {
			return err
		}
		fmt.Printf("Removed link [%s]: %s\n", link.UID, link.URL)
		return nil
	},
}

var linksToggleCmd = &cobra.Command{
	Use:   "toggle [uid]",
	Short: "Toggle a link's active state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		link, err := st.FindLink(args[0])
		if err != nil {
			return err
		}
		if link == nil {
			return fmt.Errorf("link %s not found", args[0])
		}

		next := "true"
		state := "enabled"
		if link.Ativo {
			next = "false"
			state = "disabled"
		}
		if _, err := st.UpdateLink(link.UID, map[string]string{"ativo": next}); err != nil {
			return err
		}
		fmt.Printf("Link [%s] %s: %s\n", link.UID, link.URL, state)
		return nil
	},
}

var linksSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Register the curated default link set",
	Long:  "Inserts the curated list of funding sources. Links already registered (same url and group) are left untouched.",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		added, skipped := 0, 0
		for _, d := range defaultLinks {
			uid := item.LinkUID(d.url, item.NormalizeGroup(d.grupo))
			if existing, _ := st.FindLink(uid); existing != nil {
				skipped++
				continue
			}
			if _, err := st.AddLink(d.url, d.grupo, d.nome); err != nil {
				return fmt.Errorf("seeding %s: %w", d.url, err)
			}
			added++
		}

		fmt.Printf("Seeded %d link(s), %d already present.\n", added, skipped)
		return nil
	},
}

func init() {
	linksAddCmd.Flags().StringVar(&linkName, "name", "", "Display name for the link")

	linksCmd.AddCommand(linksListCmd)
	linksCmd.AddCommand(linksAddCmd)
	linksCmd.AddCommand(linksRemoveCmd)
	linksCmd.AddCommand(linksToggleCmd)
	linksCmd.AddCommand(linksSeedCmd)
}
