package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/simon020286/go-wizard/approval"
	"github.com/simon020286/go-wizard/internal/ui"
	"github.com/spf13/cobra"
)

func approvalsCmd(dbPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "approvals",
		Short: "Inspect and decide pending approval requests",
	}
	cmd.AddCommand(approvalsListCmd(dbPath))
	cmd.AddCommand(approvalsCompleteCmd(dbPath))
	return cmd
}

func approvalsListCmd(dbPath *string) *cobra.Command {
	var workflowType, status string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List approval requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := approval.Open(*dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			requests, err := store.List(cmd.Context(), workflowType, approval.Status(status))
			if err != nil {
				return err
			}
			if len(requests) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted("no approval requests"))
				return nil
			}

			rows := make([][]string, len(requests))
			for i, r := range requests {
				rows[i] = []string{
					r.ExternalRef,
					r.WorkflowType,
					string(r.Status),
					strconv.Itoa(r.StepIndex),
					r.CreatedAt.Local().Format(time.DateTime),
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Table(
				[]string{"Ref", "Type", "Status", "Step", "Created"},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&workflowType, "type", "", "Filter by workflow type")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (CREATED, APPROVED, REJECTED)")
	return cmd
}

func approvalsCompleteCmd(dbPath *string) *cobra.Command {
	var decision, comment string

	cmd := &cobra.Command{
		Use:   "complete <ref>",
		Short: "Approve or reject a pending request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := approval.ParseDecision(decision)
			if err != nil {
				return err
			}

			store, err := approval.Open(*dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Complete(cmd.Context(), args[0], status, comment); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.SuccessMsg("%s %s", args[0], status))
			return nil
		},
	}

	cmd.Flags().StringVar(&decision, "decision", "", "APPROVED or REJECTED")
	cmd.Flags().StringVar(&comment, "comment", "", "Comment stored with the decision")
	_ = cmd.MarkFlagRequired("decision")
	return cmd
}
