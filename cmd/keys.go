package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openlocale/lingogate/pkg/apikey"
)

var Keys = &cobra.Command{
	Use:   "keys",
	Short: "Manage API keys and their quota overrides",
}

var keysAdd = &cobra.Command{
	Use:   "add [key]",
	Short: "Provision an API key with a request rate and optional char limit",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeysAdd,
}

var keysRemove = &cobra.Command{
	Use:   "remove [key]",
	Short: "Revoke an API key",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeysRemove,
}

func init() {
	Keys.PersistentFlags().String("db", "api_keys.db", "path to the API key SQLite database")
	keysAdd.Flags().Int64("req-limit", 1, "request rate multiplier for this key")
	keysAdd.Flags().Int64("char-limit", 0, "character limit override, 0 to keep the server default")
	Keys.AddCommand(keysAdd)
	Keys.AddCommand(keysRemove)
}

func runKeysAdd(cmd *cobra.Command, args []string) error {
	store, err := apikey.Open(cmd.Flag("db").Value.String())
	if err != nil {
		return err
	}
	defer store.Close()

	reqLimit, err := cmd.Flags().GetInt64("req-limit")
	if err != nil {
		return err
	}
	var charLimit *int64
	if cl, err := cmd.Flags().GetInt64("char-limit"); err != nil {
		return err
	} else if cl > 0 {
		charLimit = &cl
	}

	if err := store.Add(cmd.Context(), args[0], reqLimit, charLimit); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "added key %s\n", args[0])
	return nil
}

func runKeysRemove(cmd *cobra.Command, args []string) error {
	store, err := apikey.Open(cmd.Flag("db").Value.String())
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Remove(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "removed key %s\n", args[0])
	return nil
}
