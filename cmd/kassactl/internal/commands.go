package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newStateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show the device state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cctx := getCliContext(cmd)
			resp, err := cctx.Client.GetStateSystem(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
}

func newShiftCommand() *cobra.Command {
	var author string

	shiftCmd := &cobra.Command{
		Use:   "shift",
		Short: "Open or close the register shift",
	}

	openCmd := &cobra.Command{
		Use:   "open",
		Short: "Open a shift",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cctx := getCliContext(cmd)
			resp, err := cctx.Client.OpenShift(cmd.Context(), author)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	closeCmd := &cobra.Command{
		Use:   "close",
		Short: "Close the current shift",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cctx := getCliContext(cmd)
			resp, err := cctx.Client.CloseShift(cmd.Context(), author)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	shiftCmd.PersistentFlags().StringVar(&author, "author", "", "Operator name recorded on the shift report")
	shiftCmd.AddCommand(openCmd)
	shiftCmd.AddCommand(closeCmd)
	return shiftCmd
}

func newPrintCommand() *cobra.Command {
	var file string

	printCmd := &cobra.Command{
		Use:   "print",
		Short: "Print a fiscal document",
	}

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Print a sales check",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			command, err := readCommandFile(file)
			if err != nil {
				return err
			}
			cctx := getCliContext(cmd)
			resp, err := cctx.Client.PrintCheck(cmd.Context(), command)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	returnCmd := &cobra.Command{
		Use:   "return",
		Short: "Print a purchase return",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			command, err := readCommandFile(file)
			if err != nil {
				return err
			}
			cctx := getCliContext(cmd)
			resp, err := cctx.Client.PrintPurchaseReturn(cmd.Context(), command)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	printCmd.PersistentFlags().StringVar(&file, "file", "-",
		"JSON file describing the document ('-' reads stdin)")
	printCmd.AddCommand(checkCmd)
	printCmd.AddCommand(returnCmd)
	return printCmd
}

func newCommandCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "command <id>",
		Short: "Look up a previously submitted command by its identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cctx := getCliContext(cmd)
			resp, err := cctx.Client.DataCommandID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
}

// readCommandFile reads the document payload from path, or stdin for "-".
func readCommandFile(path string) (map[string]any, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	var command map[string]any
	if err := json.Unmarshal(data, &command); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return command, nil
}

// printJSON writes the response indented for human consumption.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
