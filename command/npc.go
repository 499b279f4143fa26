package command

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/oomph-ac/presence/entity"
	"github.com/spf13/cobra"
)

// maxNameLength is the longest player name the protocol accepts.
const maxNameLength = 16

func (inv *invocation) newCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create an NPC where you stand, wearing the skin of the player with the name passed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := inv.player()
			if err != nil {
				return err
			}
			name := args[0]
			if len(name) > maxNameLength {
				return fmt.Errorf("NPC names may be at most %d characters long", maxNameLength)
			}

			skin, err := inv.fetchSkin(name)
			if err != nil {
				inv.conf.Log.Debugf("no skin for %s: %v", name, err)
			}
			rot := s.Rotation()
			loc := entity.LocationOf(s.Position(), float32(rot.Yaw()), float32(rot.Pitch()))
			p := inv.conf.Registry.Create(name, loc, skin)
			inv.conf.Handler.Spawn(p)

			suffix := "with skin"
			if skin == nil {
				suffix = "(no skin found)"
			}
			inv.reply(1, fmt.Sprintf("Created NPC '%s' (ID %d) %s", p.Name, p.ID, suffix))
			return nil
		},
	}
}

func (inv *invocation) fetchSkin(name string) (*entity.Skin, error) {
	if inv.conf.Skins == nil {
		return nil, errors.New("skin lookup disabled")
	}
	return inv.conf.Skins.Fetch(context.Background(), name)
}

func (inv *invocation) newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove the NPC with the id passed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, ok := inv.conf.Registry.Remove(id)
			if !ok {
				return fmt.Errorf("No NPC found with ID %d", id)
			}
			inv.conf.Handler.Despawn(p)
			inv.reply(1, fmt.Sprintf("Removed NPC '%s' (ID %d)", p.Name, p.ID))
			return nil
		},
	}
}

func parseID(s string) (uint32, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, errors.New("Invalid NPC ID")
	}
	return uint32(id), nil
}

func (inv *invocation) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every NPC",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all := inv.conf.Registry.All()
			if len(all) == 0 {
				inv.reply(0, "No NPCs exist")
				return nil
			}
			lines := make([]string, 0, len(all)+1)
			lines = append(lines, fmt.Sprintf("NPCs (%d):", len(all)))
			for _, p := range all {
				line := fmt.Sprintf("- %d: %s at %.1f, %.1f, %.1f", p.ID, p.Name, p.Location.X, p.Location.Y, p.Location.Z)
				if p.Linked() {
					line += " -> " + p.Server
				}
				if p.LookAtNearest {
					line += " (looks at players)"
				}
				lines = append(lines, line)
			}
			inv.reply(len(all), strings.Join(lines, "\n"))
			return nil
		},
	}
}

func (inv *invocation) newLookNearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "looknear",
		Short: "Toggle whether the NPC you are looking at faces nearby players",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, p, err := inv.target()
			if err != nil {
				return err
			}
			enabled, ok := inv.conf.Registry.ToggleLookAtNearest(p.ID)
			if !ok {
				return errors.New("NPC not found")
			}
			state := "disabled"
			if enabled {
				state = "enabled"
			}
			inv.reply(1, fmt.Sprintf("Look-at-nearest %s for NPC '%s' (ID %d)", state, p.Name, p.ID))
			return nil
		},
	}
}

func (inv *invocation) newLabelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "label",
		Aliases: []string{"hologram"},
		Short:   "Manage the lines of text above NPCs",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <text...>",
		Short: "Add a line of text below the others above the NPC you are looking at",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, p, err := inv.target()
			if err != nil {
				return err
			}
			text := strings.Join(args, " ")
			updated, ok := inv.conf.Registry.AddLabel(p.ID, text)
			if !ok {
				return errors.New("NPC not found")
			}
			inv.conf.Handler.Relabel(p, updated)
			inv.reply(1, fmt.Sprintf("Added hologram '%s' to NPC '%s' (ID %d)", text, p.Name, p.ID))
			return nil
		},
	})
	return cmd
}
