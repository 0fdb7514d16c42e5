package main

import (
	"fmt"
	"strconv"

	"relay-graphql/internal/cursor"

	"github.com/spf13/cobra"
)

func newCursorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cursor",
		Short: "Encode and decode connection cursors",
	}
	cmd.AddCommand(newCursorEncodeCommand(), newCursorDecodeCommand())
	return cmd
}

func newCursorEncodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "encode <offset>",
		Short: "Print the cursor of a zero-based row offset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			offset, err := strconv.Atoi(args[0])
			if err != nil || offset < 0 {
				return fmt.Errorf("offset must be a non-negative integer, got %q", args[0])
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cursor.Encode(offset))
			return err
		},
	}
}

func newCursorDecodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <cursor>",
		Short: "Print the row offset a cursor points at",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "" {
				return fmt.Errorf("cursor must not be empty")
			}
			offset, err := cursor.Decode(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), offset)
			return err
		},
	}
}
