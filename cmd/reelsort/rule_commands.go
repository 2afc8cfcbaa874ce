package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"reelsort/internal/naming"
	"reelsort/internal/rules"
)

func newRuleCommand(ctx *commandContext) *cobra.Command {
	ruleCmd := &cobra.Command{
		Use:   "rule",
		Short: "Manage transfer rules",
	}

	ruleCmd.AddCommand(newRuleListCommand(ctx))
	ruleCmd.AddCommand(newRuleShowCommand(ctx))
	ruleCmd.AddCommand(newRuleAddCommand(ctx))
	ruleCmd.AddCommand(newRuleEnableCommand(ctx, true))
	ruleCmd.AddCommand(newRuleEnableCommand(ctx, false))
	ruleCmd.AddCommand(newRuleRemoveCommand(ctx))

	return ruleCmd
}

func newRuleListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List transfer rules in evaluation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openRuleStore()
			if err != nil {
				return err
			}
			defer store.Close()

			listed, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, listed)
			}

			rows := make([][]string, 0, len(listed))
			for _, rule := range listed {
				rows = append(rows, []string{
					rule.ID,
					rule.Name,
					strconv.Itoa(rule.Priority),
					yesNo(rule.Enabled),
					rule.MediaType,
					rule.StorageType,
					strconv.Itoa(len(rule.Conditions)),
					truncate(rule.Template, 50),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Name", "Priority", "Enabled", "Media", "Storage", "Conditions", "Template"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
}

func newRuleShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one rule in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openRuleStore()
			if err != nil {
				return err
			}
			defer store.Close()

			rule, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd, rule)
		},
	}
}

func newRuleAddCommand(ctx *commandContext) *cobra.Command {
	var (
		name        string
		priority    int
		template    string
		mediaType   string
		storageType string
		disabled    bool
		conditions  []string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a transfer rule",
		Long: `Create a transfer rule. Conditions are given as repeatable --when flags
in the form "field operator value", for example:

  --when "genre equals Animation"
  --when "country in JP,KR"
  --when "keyword contains remux"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseConditions(conditions)
			if err != nil {
				return err
			}

			store, err := ctx.openRuleStore()
			if err != nil {
				return err
			}
			defer store.Close()

			created, err := store.Create(cmd.Context(), rules.Rule{
				Name:        name,
				Priority:    priority,
				Enabled:     !disabled,
				MediaType:   mediaType,
				StorageType: storageType,
				Conditions:  parsed,
				Template:    template,
			}, naming.ValidateTemplate)
			if err != nil {
				return err
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, created)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created rule %s (%s) at priority %d\n",
				created.Name, created.ID, created.Priority)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Rule name")
	cmd.Flags().IntVar(&priority, "priority", 100, "Evaluation priority; lower runs first")
	cmd.Flags().StringVar(&template, "template", "", "Naming template for matched files")
	cmd.Flags().StringVar(&mediaType, "media-type", "all", "Restrict to movie, tv, or all")
	cmd.Flags().StringVar(&storageType, "storage-type", "all", "Restrict to a storage backend or all")
	cmd.Flags().BoolVar(&disabled, "disabled", false, "Create the rule disabled")
	cmd.Flags().StringArrayVar(&conditions, "when", nil, `Condition "field operator value"; repeatable`)
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("template")
	return cmd
}

func newRuleEnableCommand(ctx *commandContext, enable bool) *cobra.Command {
	verb, short := "enable", "Enable a rule"
	if !enable {
		verb, short = "disable", "Disable a rule without deleting it"
	}
	return &cobra.Command{
		Use:   verb + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openRuleStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.SetEnabled(cmd.Context(), args[0], enable); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rule %s %sd\n", args[0], verb)
			return nil
		},
	}
}

func newRuleRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a rule permanently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openRuleStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rule %s removed\n", args[0])
			return nil
		},
	}
}

// parseConditions turns --when flags into rule conditions. The value part
// of an in-condition is a comma-separated list.
func parseConditions(specs []string) ([]rules.Condition, error) {
	conditions := make([]rules.Condition, 0, len(specs))
	for _, spec := range specs {
		parts := strings.SplitN(strings.TrimSpace(spec), " ", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf(`condition %q is not "field operator value"`, spec)
		}
		cond := rules.Condition{
			Field:    strings.ToLower(parts[0]),
			Operator: strings.ToLower(parts[1]),
		}
		if cond.Operator == rules.OpIn {
			for _, value := range strings.Split(parts[2], ",") {
				if trimmed := strings.TrimSpace(value); trimmed != "" {
					cond.Values = append(cond.Values, trimmed)
				}
			}
		} else {
			cond.Value = strings.TrimSpace(parts[2])
		}
		conditions = append(conditions, cond)
	}
	return conditions, nil
}
