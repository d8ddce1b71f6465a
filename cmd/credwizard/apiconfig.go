package main

import (
	"fmt"
	"os"

	"github.com/simon020286/go-wizard/apiconfig"
	"github.com/simon020286/go-wizard/internal/ui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func apiConfigCmd() *cobra.Command {
	var (
		caching    bool
		timeout    int
		visibility string
		roles      []string
		transports []string
		addTags    []string
		removeTags []string
		write      bool
	)

	cmd := &cobra.Command{
		Use:   "api-config <api.yaml>",
		Short: "Edit the runtime configuration of an API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read api config: %w", err)
			}
			var initial apiconfig.Config
			if err := yaml.Unmarshal(data, &initial); err != nil {
				return fmt.Errorf("parse api config: %w", err)
			}

			editor := apiconfig.NewEditor(initial)
			flags := cmd.Flags()

			var actions []apiconfig.Action
			if flags.Changed("caching") {
				actions = append(actions, apiconfig.Action{Kind: apiconfig.ActionResponseCaching, Value: caching})
			}
			if flags.Changed("cache-timeout") {
				actions = append(actions, apiconfig.Action{Kind: apiconfig.ActionCacheTimeout, Value: timeout})
			}
			if flags.Changed("visibility") {
				actions = append(actions, apiconfig.Action{Kind: apiconfig.ActionVisibility, Value: apiconfig.Visibility(visibility)})
			}
			if flags.Changed("roles") {
				actions = append(actions, apiconfig.Action{Kind: apiconfig.ActionVisibleRoles, Value: roles})
			}
			if flags.Changed("transports") {
				actions = append(actions, apiconfig.Action{Kind: apiconfig.ActionTransports, Value: transports})
			}
			for _, tag := range addTags {
				actions = append(actions, apiconfig.Action{Kind: apiconfig.ActionAddTag, Value: tag})
			}
			for _, tag := range removeTags {
				actions = append(actions, apiconfig.Action{Kind: apiconfig.ActionRemoveTag, Value: tag})
			}

			for _, a := range actions {
				if err := editor.Dispatch(a); err != nil {
					return err
				}
			}

			out, err := yaml.Marshal(editor.Config())
			if err != nil {
				return fmt.Errorf("encode api config: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(out))

			if !editor.Dirty() {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted("no changes"))
				return nil
			}
			if !write {
				editor.Discard()
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted("changes not saved, pass --write to save"))
				return nil
			}

			out, err = yaml.Marshal(editor.Commit())
			if err != nil {
				return fmt.Errorf("encode api config: %w", err)
			}
			if err := os.WriteFile(args[0], out, 0o644); err != nil {
				return fmt.Errorf("write api config: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.SuccessMsg("saved %s", args[0]))
			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVar(&caching, "caching", false, "Enable response caching")
	f.IntVar(&timeout, "cache-timeout", 0, "Response cache timeout in seconds")
	f.StringVar(&visibility, "visibility", "", "PUBLIC, PRIVATE or RESTRICTED")
	f.StringSliceVar(&roles, "roles", nil, "Roles allowed to see a restricted API")
	f.StringSliceVar(&transports, "transports", nil, "Allowed transports (http, https)")
	f.StringSliceVar(&addTags, "add-tag", nil, "Tag to add")
	f.StringSliceVar(&removeTags, "remove-tag", nil, "Tag to remove")
	f.BoolVar(&write, "write", false, "Write the edited configuration back to the file")
	return cmd
}
