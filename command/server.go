package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/oomph-ac/presence/status"
	"github.com/spf13/cobra"
)

func (inv *invocation) newServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Manage the servers NPCs can send players to",
	}
	cmd.AddCommand(
		inv.newServerAddCmd(),
		inv.newServerRemoveCmd(),
		inv.newServerListCmd(),
		inv.newServerSetCmd(),
	)
	return cmd
}

func (inv *invocation) newServerAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name> <ip:port>",
		Short: "Register a server",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := status.ParseAddress(args[1])
			if err != nil {
				return err
			}
			inv.conf.Servers.Add(args[0], addr)
			if inv.conf.ServerAdded != nil {
				inv.conf.ServerAdded()
			}
			inv.reply(1, fmt.Sprintf("Added server '%s' (%v)", args[0], addr))
			return nil
		},
	}
}

func (inv *invocation) newServerRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Unregister a server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !inv.conf.Servers.Remove(args[0]) {
				return fmt.Errorf("Server '%s' not found", args[0])
			}
			inv.reply(1, fmt.Sprintf("Removed server '%s'", args[0]))
			return nil
		},
	}
}

func (inv *invocation) newServerListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every server with its last known status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all := inv.conf.Servers.All()
			if len(all) == 0 {
				inv.reply(0, "No servers registered")
				return nil
			}
			lines := make([]string, 0, len(all)+1)
			lines = append(lines, fmt.Sprintf("Servers (%d):", len(all)))
			for _, srv := range all {
				st := inv.conf.Snapshot.Get(srv.Name)
				state := "offline"
				if st.Online {
					state = fmt.Sprintf("online, %d/%d", st.Players, st.Max)
				}
				lines = append(lines, fmt.Sprintf("- %s (%v): %s", srv.Name, srv.Address, state))
			}
			inv.reply(len(all), strings.Join(lines, "\n"))
			return nil
		},
	}
}

func (inv *invocation) newServerSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <name>",
		Short: "Link the NPC you are looking at to a server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if _, err := inv.player(); err != nil {
				return err
			}
			if !inv.conf.Servers.Has(name) {
				return fmt.Errorf("Server '%s' not found", name)
			}
			_, p, err := inv.target()
			if err != nil {
				return err
			}
			updated, ok := inv.conf.Registry.SetServer(p.ID, name)
			if !ok {
				return errors.New("NPC not found")
			}
			// Labels of the proxy may now render differently.
			inv.conf.Handler.Relabel(p, updated)
			inv.reply(1, fmt.Sprintf("Set server '%s' on NPC '%s' (ID %d)", name, p.Name, p.ID))
			return nil
		},
	}
}
