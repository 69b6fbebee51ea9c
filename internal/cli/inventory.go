package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vitalquest/vitalquest/internal/daemon"
	"github.com/vitalquest/vitalquest/internal/domain"
)

func init() {
	itemAddCmd.Flags().StringVar(&itemType, "type", "consumable", "consumable, equipment or cosmetic")
	itemAddCmd.Flags().StringVar(&itemRarity, "rarity", "common", "common, uncommon, rare, epic or legendary")
	itemAddCmd.Flags().StringVar(&itemDescription, "description", "", "Item description")
	itemAddCmd.Flags().IntVar(&itemQuantity, "quantity", 1, "How many to add")
	itemAddCmd.Flags().IntVar(&itemHeal, "heal", 0, "HP restored per use")

	inventoryCmd.AddCommand(itemAddCmd, itemUseCmd, itemRmCmd)
	rootCmd.AddCommand(inventoryCmd)
}

var (
	itemType        string
	itemRarity      string
	itemDescription string
	itemQuantity    int
	itemHeal        int
)

var inventoryCmd = &cobra.Command{
	Use:     "inventory",
	Aliases: []string{"inv"},
	Short:   "List inventory items",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := daemon.New()
		if err != nil {
			return err
		}
		defer d.Close()

		items := d.Engine.Inventory()
		if len(items) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Inventory is empty.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tTYPE\tRARITY\tQTY\tEFFECT")
		for _, it := range items {
			effect := "-"
			if it.Effect.Type != "" {
				effect = fmt.Sprintf("%s %d", it.Effect.Type, it.Effect.Value)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
				it.ID, it.Name, it.Type, it.Rarity, it.Quantity, effect)
		}
		return w.Flush()
	},
}

var itemAddCmd = &cobra.Command{
	Use:   "add <id> <name>",
	Short: "Add items to the inventory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := daemon.New()
		if err != nil {
			return err
		}
		defer d.Close()

		item := domain.InventoryItem{
			ID:          args[0],
			Name:        args[1],
			Description: itemDescription,
			Type:        domain.ItemType(itemType),
			Rarity:      domain.AchievementRarity(itemRarity),
			Quantity:    itemQuantity,
		}
		if itemHeal != 0 {
			item.Effect = domain.ItemEffect{Type: domain.EffectHPRestore, Value: itemHeal}
		}
		if err := d.Engine.AddItem(item); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %d x %s.\n", item.Quantity, item.Name)
		return nil
	},
}

var itemUseCmd = &cobra.Command{
	Use:   "use <id>",
	Short: "Use one item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := daemon.New()
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.Engine.UseItem(args[0]); err != nil {
			return err
		}
		u, _ := d.Engine.User()
		fmt.Fprintf(cmd.OutOrStdout(), "Used %s. HP %d / %d.\n", args[0], u.Character.HP, u.Character.MaxHP)
		return nil
	},
}

var itemRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Discard a stack of items",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := daemon.New()
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.Engine.RemoveItem(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s.\n", args[0])
		return nil
	},
}
