package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ymlin/twscreener/internal/screen"
)

// policiesCmd lists built-in policies and validates policy files
var policiesCmd = &cobra.Command{
	Use:   "policies",
	Short: "列出內建策略",
	RunE:  listPolicies,
}

var checkPolicyCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "驗證策略 YAML 檔",
	Args:  cobra.ExactArgs(1),
	RunE:  checkPolicy,
}

func init() {
	rootCmd.AddCommand(policiesCmd)
	policiesCmd.AddCommand(checkPolicyCmd)
}

func listPolicies(cmd *cobra.Command, args []string) error {
	fmt.Println("內建策略:")
	for _, name := range screen.BuiltinNames() {
		policy, err := screen.Builtin(name)
		if err != nil {
			return err
		}
		fmt.Printf("\n  %s\n", name)
		for _, pred := range policy.Predicates {
			fmt.Printf("    - %s\n", pred.Label)
		}
	}
	return nil
}

func checkPolicy(cmd *cobra.Command, args []string) error {
	policy, err := screen.LoadPolicyFile(args[0])
	if err != nil {
		return fmt.Errorf("policy file invalid: %w", err)
	}

	fmt.Printf("OK: %s (%d rules)\n", policy.Name, len(policy.Predicates))
	for _, pred := range policy.Predicates {
		fmt.Printf("  - %s\n", pred.Label)
	}
	return nil
}
