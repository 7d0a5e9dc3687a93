package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/daily-hours/internal/tasks"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Add, edit or remove tasks of a day",
}

var taskAddCmd = &cobra.Command{
	Use:   "add <date> [description] [hours]",
	Short: "Add a task to a day",
	Args:  cobra.RangeArgs(1, 3),
	RunE:  runTaskAdd,
}

var taskSetCmd = &cobra.Command{
	Use:   "set <date> <row> <description|hours> <value>",
	Short: "Set the description or hours of a row",
	Long: `Set the description or hours of a row. Rows are numbered as in
"hrs show". On a day without tasks, row 1 is the empty placeholder: typing a
description into it creates a task, hours alone are ignored.`,
	Args: cobra.ExactArgs(4),
	RunE: runTaskSet,
}

var taskRmCmd = &cobra.Command{
	Use:   "rm <date> <row>",
	Short: "Remove a task from a day",
	Args:  cobra.ExactArgs(2),
	RunE:  runTaskRm,
}

var leaveCmd = &cobra.Command{
	Use:   "leave <date>",
	Short: "Mark a day as leave, or unmark it",
	Args:  cobra.ExactArgs(1),
	RunE:  runLeave,
}

func init() {
	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskSetCmd)
	taskCmd.AddCommand(taskRmCmd)
}

func runTaskAdd(cmd *cobra.Command, args []string) error {
	key, err := dateKeyArg(args[0])
	if err != nil {
		return err
	}
	if len(args) == 3 {
		if err := tasks.ValidateHours(args[2]); err != nil {
			return err
		}
	}

	ctx := context.Background()
	a := openApp(ctx)
	defer a.close()
	sess, err := a.openSession(ctx)
	if err != nil {
		return err
	}

	t, err := sess.AddTask(key)
	if err != nil {
		return err
	}
	row, err := sess.Row(key, t.ID)
	if err != nil {
		return err
	}
	if len(args) > 1 {
		if err := sess.EditDescription(key, row, args[1]); err != nil {
			return err
		}
	}
	if len(args) > 2 {
		if err := sess.EditHours(key, row, args[2]); err != nil {
			return err
		}
	}
	fmt.Printf("Added task #%d on %s\n", len(sess.Rows(key)), key)
	return nil
}

func runTaskSet(cmd *cobra.Command, args []string) error {
	key, err := dateKeyArg(args[0])
	if err != nil {
		return err
	}
	field, err := tasks.ParseField(args[2])
	if err != nil {
		return err
	}

	ctx := context.Background()
	a := openApp(ctx)
	defer a.close()
	sess, err := a.openSession(ctx)
	if err != nil {
		return err
	}

	row, err := rowArg(sess.Rows(key), args[1])
	if err != nil {
		return err
	}
	value := strings.TrimSpace(args[3])
	if field == tasks.FieldHours {
		err = sess.EditHours(key, row, value)
	} else {
		err = sess.EditDescription(key, row, args[3])
	}
	if err != nil {
		return err
	}
	if row.Placeholder && field == tasks.FieldHours {
		fmt.Fprintln(cmd.ErrOrStderr(), "Warning: add a description first; hours on an empty day are ignored")
		return nil
	}
	fmt.Printf("Updated %s of row %s on %s\n", field, args[1], key)
	return nil
}

func runTaskRm(cmd *cobra.Command, args []string) error {
	key, err := dateKeyArg(args[0])
	if err != nil {
		return err
	}

	ctx := context.Background()
	a := openApp(ctx)
	defer a.close()
	sess, err := a.openSession(ctx)
	if err != nil {
		return err
	}

	row, err := rowArg(sess.Rows(key), args[1])
	if err != nil {
		return err
	}
	if err := sess.RemoveTask(key, row.ID()); err != nil {
		return err
	}
	fmt.Printf("Removed row %s on %s\n", args[1], key)
	return nil
}

func runLeave(cmd *cobra.Command, args []string) error {
	key, err := dateKeyArg(args[0])
	if err != nil {
		return err
	}

	ctx := context.Background()
	a := openApp(ctx)
	defer a.close()
	sess, err := a.openSession(ctx)
	if err != nil {
		return err
	}

	if err := sess.ToggleLeave(key); err != nil {
		return err
	}
	if sess.Entry(key).IsLeave {
		fmt.Printf("%s marked as leave\n", key)
	} else {
		fmt.Printf("%s is a working day again\n", key)
	}
	return nil
}
